// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import "encoding/json"

// InteractionEventType is the custom event clients send for
// autocomplete requests and confirmed submissions.
const InteractionEventType = "dev.timezoner.interaction"

const (
	eventTypeMember  = "m.room.member"
	eventTypeName    = "m.room.name"
	eventTypeMessage = "m.room.message"
)

var syncFilter = buildSyncFilter()

// buildSyncFilter restricts /sync to the event types the translator
// reads.
func buildSyncFilter() string {
	stateEventTypes := []string{eventTypeMember, eventTypeName}
	timelineEventTypes := []string{eventTypeMember, eventTypeName, eventTypeMessage, InteractionEventType}
	emptyTypes := []string{}

	filter := map[string]any{
		"room": map[string]any{
			"state": map[string]any{
				"types":                     stateEventTypes,
				"lazy_load_members":         false,
				"include_redundant_members": false,
			},
			"timeline": map[string]any{
				"types": timelineEventTypes,
				"limit": 100,
			},
			"ephemeral": map[string]any{
				"types": emptyTypes,
			},
			"account_data": map[string]any{
				"types": emptyTypes,
			},
		},
		"presence": map[string]any{
			"types": emptyTypes,
		},
		"account_data": map[string]any{
			"types": emptyTypes,
		},
	}

	data, err := json.Marshal(filter)
	if err != nil {
		panic("gateway: building sync filter: " + err.Error())
	}
	return string(data)
}
