// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tzcatalog

import (
	"bufio"
	_ "embed"
	"strings"
)

//go:embed data/zone.tab
var zoneTable string

//go:embed data/iso3166.tab
var countryTable string

//go:embed data/abbreviations.tab
var abbreviationTable string

// Location is one row of the tz database's zone.tab, joined with the
// country name from iso3166.tab.
type Location struct {
	CountryCode string
	Country     string
	Zone        Zone
	// Comment distinguishes zones within a multi-zone country, for
	// example "Mountain (most areas)". Empty for single-zone countries.
	Comment string
}

// City returns the last path element of the zone identifier with
// underscores as spaces: "America/Argentina/Buenos_Aires" yields
// "Buenos Aires".
func (l Location) City() string {
	name := string(l.Zone)
	if index := strings.LastIndexByte(name, '/'); index >= 0 {
		name = name[index+1:]
	}
	return strings.ReplaceAll(name, "_", " ")
}

// Locations returns the embedded zone.tab rows in file order.
func Locations() []Location {
	countries := tabFields(countryTable, 2)
	countryNames := make(map[string]string, len(countries))
	for _, fields := range countries {
		countryNames[fields[0]] = fields[1]
	}

	var locations []Location
	for _, fields := range tabFields(zoneTable, 3) {
		location := Location{
			CountryCode: fields[0],
			Country:     countryNames[fields[0]],
			Zone:        Zone(fields[2]),
		}
		if len(fields) > 3 {
			location.Comment = fields[3]
		}
		locations = append(locations, location)
	}
	return locations
}

// Abbreviation maps a commonly used abbreviation to a representative
// zone.
type Abbreviation struct {
	Name string
	Zone Zone
}

// Abbreviations returns the embedded abbreviation table in file order.
// No abbreviation is itself a catalog identifier.
func Abbreviations() []Abbreviation {
	var abbreviations []Abbreviation
	for _, fields := range tabFields(abbreviationTable, 2) {
		abbreviations = append(abbreviations, Abbreviation{Name: fields[0], Zone: Zone(fields[1])})
	}
	return abbreviations
}

// tabFields splits a tab-separated table, skipping comments and rows
// with fewer than minimum fields.
func tabFields(content string, minimum int) [][]string {
	var rows [][]string
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < minimum {
			continue
		}
		rows = append(rows, fields)
	}
	return rows
}
