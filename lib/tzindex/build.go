// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tzindex

import (
	"github.com/bureau-foundation/timezoner/lib/tzcatalog"
)

// BuildEntries generates the alias set for catalog from the embedded
// location tables. Earlier groups win display-string collisions:
//
//  1. city ("Tokyo")
//  2. city and country ("Tokyo, Japan")
//  3. country, for countries with a single zone ("Japan")
//  4. abbreviation ("JST")
//  5. the identifier itself ("Asia/Tokyo")
//
// Rows referring to zones outside catalog are skipped, so every entry
// resolves.
func BuildEntries(catalog *tzcatalog.Catalog) []Entry {
	locations := tzcatalog.Locations()

	zonesPerCountry := make(map[string]int)
	for _, location := range locations {
		zonesPerCountry[location.CountryCode]++
	}

	builder := entryBuilder{catalog: catalog, seen: make(map[string]bool)}

	for _, location := range locations {
		builder.add(location.City(), location.Zone)
	}
	for _, location := range locations {
		if location.Country == "" {
			continue
		}
		builder.add(location.City()+", "+location.Country, location.Zone)
	}
	for _, location := range locations {
		if zonesPerCountry[location.CountryCode] == 1 && location.Country != "" {
			builder.add(location.Country, location.Zone)
		}
	}
	for _, abbreviation := range tzcatalog.Abbreviations() {
		builder.add(abbreviation.Name, abbreviation.Zone)
	}
	for _, name := range catalog.Names() {
		builder.add(name, tzcatalog.Zone(name))
	}

	return builder.entries
}

type entryBuilder struct {
	catalog *tzcatalog.Catalog
	seen    map[string]bool
	entries []Entry
}

func (b *entryBuilder) add(display string, zone tzcatalog.Zone) {
	if display == "" || b.seen[display] || !b.catalog.Contains(string(zone)) {
		return
	}
	b.seen[display] = true
	b.entries = append(b.entries, Entry{Display: display, Zone: zone})
}
