// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tzcatalog

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	// Location must work on hosts without /usr/share/zoneinfo.
	_ "time/tzdata"
)

//go:embed data/zones.txt
var zonesFile string

// ErrUnknownZone is returned by Parse when a name is not in the catalog.
var ErrUnknownZone = errors.New("tzcatalog: unknown time zone")

// Zone is a canonical time zone identifier such as "Asia/Tokyo".
type Zone string

func (z Zone) String() string { return string(z) }

// Location loads the zone's rules from the tz database compiled into
// the binary.
func (z Zone) Location() (*time.Location, error) {
	location, err := time.LoadLocation(string(z))
	if err != nil {
		return nil, fmt.Errorf("tzcatalog: loading %s: %w", z, err)
	}
	return location, nil
}

// Catalog is an immutable set of zone identifiers. Safe for concurrent
// use.
type Catalog struct {
	members map[string]struct{}
	names   []string
}

// New builds a catalog over the given identifiers. Duplicates and empty
// strings are dropped.
func New(names []string) *Catalog {
	catalog := &Catalog{members: make(map[string]struct{}, len(names))}
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, exists := catalog.members[name]; exists {
			continue
		}
		catalog.members[name] = struct{}{}
		catalog.names = append(catalog.names, name)
	}
	slices.Sort(catalog.names)
	return catalog
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	return New(parseZoneList(zonesFile))
})

// Default returns the embedded IANA catalog.
func Default() *Catalog {
	return defaultCatalog()
}

func parseZoneList(content string) []string {
	var names []string
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names
}

// Lookup returns the zone named exactly name. Surrounding whitespace is
// ignored; case is not.
func (c *Catalog) Lookup(name string) (Zone, bool) {
	name = strings.TrimSpace(name)
	if _, exists := c.members[name]; !exists {
		return "", false
	}
	return Zone(name), true
}

// Parse is Lookup with an error for unknown names.
func (c *Catalog) Parse(name string) (Zone, error) {
	zone, ok := c.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownZone, name)
	}
	return zone, nil
}

// Contains reports whether name is a catalog member.
func (c *Catalog) Contains(name string) bool {
	_, exists := c.members[name]
	return exists
}

// Names returns every identifier in sorted order. The slice is a copy.
func (c *Catalog) Names() []string {
	return slices.Clone(c.names)
}

// Len returns the number of identifiers.
func (c *Catalog) Len() int {
	return len(c.names)
}
