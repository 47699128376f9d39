// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// timezoner-index builds the search index file timezoner loads at
// startup. The index is derived entirely from the time zone catalog
// compiled into the binary, so rebuilding it after a catalog update
// keeps the two in agreement.
//
// Usage:
//
//	timezoner-index --output /var/lib/timezoner/timezones.idx
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/timezoner/lib/tzcatalog"
	"github.com/bureau-foundation/timezoner/lib/tzindex"
	"github.com/bureau-foundation/timezoner/lib/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		output      string
		showVersion bool
	)
	flags := pflag.NewFlagSet("timezoner-index", pflag.ContinueOnError)
	flags.StringVarP(&output, "output", "o", "timezones.idx", "path of the index file to write")
	flags.BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if showVersion {
		fmt.Printf("timezoner-index %s\n", version.Info())
		return nil
	}
	if flags.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", flags.Args())
	}

	catalog := tzcatalog.Default()
	entries := tzindex.BuildEntries(catalog)
	if err := tzindex.Write(output, entries); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %d entries for %d zones to %s\n", len(entries), catalog.Len(), output)
	return nil
}
