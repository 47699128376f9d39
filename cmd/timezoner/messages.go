// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/bureau-foundation/timezoner/lib/tzcatalog"
)

const pickerURL = "https://kevinnovak.github.io/Time-Zone-Picker"

// maxDidYouMean caps the fuzzy candidates offered with a NotFound reply.
const maxDidYouMean = 3

const (
	messageSaved = "tada! now you can use `!timezone` to check it ^^"

	messageNotFound = "i couldn't find that timezone :( you can use this website to copy-paste instead: " + pickerURL

	messageInconsistent = "my timezone list disagrees with itself, so i couldn't save that. the bot owner has been told ^^'"

	messageNotSet = "you haven't set a timezone yet! use `!timezone <name>`, for example `!timezone Europe/Paris`"

	messageHelp = "**timezoner** remembers your timezone.\n\n" +
		"- `!timezone <name>` sets it, using an IANA name like `America/New_York` (find yours at " + pickerURL + ")\n" +
		"- `!timezone` shows the one you saved and the time there\n" +
		"- `!help` shows this message\n\n" +
		"clients with live suggestions can also search by city, country or abbreviation."
)

// notFoundMessage adds fuzzy candidates to the NotFound reply when
// there are any.
func notFoundMessage(candidates []tzcatalog.Zone) string {
	if len(candidates) == 0 {
		return messageNotFound
	}
	quoted := make([]string, len(candidates))
	for i, zone := range candidates {
		quoted[i] = "`" + string(zone) + "`"
	}
	return messageNotFound + "\n\ndid you mean " + strings.Join(quoted, ", ") + "?"
}

// internalErrorMessage quotes the report ID so the owner can find the
// details.
func internalErrorMessage(reportID string) string {
	return fmt.Sprintf("something went wrong on my side, sorry :( (ref %s)", reportID)
}

// showMessage describes a stored zone and the current time in it.
func showMessage(zone tzcatalog.Zone, now time.Time) string {
	location, err := zone.Location()
	if err != nil {
		return fmt.Sprintf("your timezone is `%s`", zone)
	}
	local := now.In(location)
	return fmt.Sprintf("your timezone is `%s`. it's %s on %s there (UTC%s)",
		zone, local.Format("15:04"), local.Format("Monday"), local.Format("-07:00"))
}
