// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/bureau-foundation/timezoner/lib/event"
	"github.com/bureau-foundation/timezoner/lib/statecache"
	"github.com/bureau-foundation/timezoner/messaging"
)

// SuggestionsEventType carries autocomplete results back to the client
// that asked.
const SuggestionsEventType = "dev.timezoner.suggestions"

// suggestionsContent is the SuggestionsEventType payload. Choices may
// be empty; a client should clear its list.
type suggestionsContent struct {
	RequestID string   `json:"request_id"`
	Target    string   `json:"target"`
	Choices   []string `json:"choices"`
}

const htmlFormat = "org.matrix.custom.html"

// Responder sends replies addressed to the user who asked. Matrix has
// no per-user ephemeral messages, so a status reply is an m.notice that
// mentions the requester.
type Responder struct {
	session  messaging.Session
	cache    *statecache.Cache
	markdown goldmark.Markdown
}

// NewResponder creates a Responder. cache supplies display names for
// mentions.
func NewResponder(session messaging.Session, cache *statecache.Cache) *Responder {
	return &Responder{
		session:  session,
		cache:    cache,
		markdown: goldmark.New(goldmark.WithExtensions(extension.Linkify)),
	}
}

// Notice replies to the sender of e with text, which is Markdown.
func (r *Responder) Notice(ctx context.Context, e event.Event, text string) error {
	name := r.cache.Snapshot().DisplayName(e.RoomID, e.Sender)

	rendered, err := r.render(text)
	if err != nil {
		return err
	}
	pill := fmt.Sprintf(`<a href="https://matrix.to/#/%s">%s</a>`,
		html.EscapeString(e.Sender), html.EscapeString(name))

	content := messaging.MessageContent{
		MsgType:       "m.notice",
		Body:          name + ": " + text,
		Format:        htmlFormat,
		FormattedBody: pill + ": " + rendered,
		Mentions:      &messaging.Mentions{UserIDs: []string{e.Sender}},
	}
	if _, err := r.session.SendMessage(ctx, e.RoomID, content); err != nil {
		return fmt.Errorf("replying to %s in %s: %w", e.Sender, e.RoomID, err)
	}
	return nil
}

// Suggestions answers an autocomplete request.
func (r *Responder) Suggestions(ctx context.Context, e event.Event, choices []string) error {
	if choices == nil {
		choices = []string{}
	}
	content := suggestionsContent{
		RequestID: e.Interaction.RequestID,
		Target:    e.Sender,
		Choices:   choices,
	}
	if _, err := r.session.SendEvent(ctx, e.RoomID, SuggestionsEventType, content); err != nil {
		return fmt.Errorf("sending suggestions to %s in %s: %w", e.Sender, e.RoomID, err)
	}
	return nil
}

// render converts Markdown to HTML. A reply that is a single paragraph
// loses its <p> wrapper so it reads inline after the mention.
func (r *Responder) render(text string) (string, error) {
	var buffer bytes.Buffer
	if err := r.markdown.Convert([]byte(text), &buffer); err != nil {
		return "", fmt.Errorf("rendering reply: %w", err)
	}
	rendered := strings.TrimSpace(buffer.String())
	if inner, ok := strings.CutPrefix(rendered, "<p>"); ok {
		if inner, ok := strings.CutSuffix(inner, "</p>"); ok && !strings.Contains(inner, "<p>") {
			return inner, nil
		}
	}
	return rendered, nil
}
