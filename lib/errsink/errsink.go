// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package errsink

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bureau-foundation/timezoner/lib/clock"
)

// Report is one failure delivered to the owner.
type Report struct {
	ID    uuid.UUID
	Time  time.Time
	Err   error
	Attrs map[string]string

	// Stack is the goroutine stack at the point of failure, set for
	// panics.
	Stack []byte
}

// Message returns the error text, or "" when Err is nil.
func (r Report) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Sink delivers a report somewhere the owner will see it.
type Sink interface {
	Send(ctx context.Context, report Report) error
}

// multiSink sends to every member and joins their errors.
type multiSink []Sink

// Multi returns a Sink that delivers each report to all of sinks. A
// failing member does not stop delivery to the rest.
func Multi(sinks ...Sink) Sink {
	return multiSink(sinks)
}

func (m multiSink) Send(ctx context.Context, report Report) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Send(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// deliveryTimeout bounds a single Report call. Reports are sent from
// handler goroutines, which have no cancellation of their own.
const deliveryTimeout = 15 * time.Second

// Reporter fills in report identity and delivers to a sink.
type Reporter struct {
	sink   Sink
	clock  clock.Clock
	logger *slog.Logger
}

// NewReporter returns a Reporter delivering to sink. A nil clock uses
// the system clock; a nil logger discards.
func NewReporter(sink Sink, clk clock.Clock, logger *slog.Logger) *Reporter {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reporter{sink: sink, clock: clk, logger: logger}
}

// Report assigns an ID and timestamp to report (keeping any already
// set), delivers it, and returns the completed report. Callers quote
// the ID back to the user so the owner can find the matching entry.
func (r *Reporter) Report(ctx context.Context, report Report) Report {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	if report.Time.IsZero() {
		report.Time = r.clock.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
	defer cancel()
	if err := r.sink.Send(ctx, report); err != nil {
		r.logger.Error("delivering error report failed",
			"report_id", report.ID.String(),
			"report_error", report.Message(),
			"error", err,
		)
	}
	return report
}
