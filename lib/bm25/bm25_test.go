// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bm25

import (
	"testing"
)

// placeDocuments builds single-field documents named after their text,
// the shape the timezone index uses.
func placeDocuments(names ...string) []Document {
	documents := make([]Document, len(names))
	for i, name := range names {
		documents[i] = Document{Name: name, Fields: []Field{{Text: name, Weight: 1}}}
	}
	return documents
}

func resultNames(results []Result) []string {
	names := make([]string, len(results))
	for i, result := range results {
		names[i] = result.Name
	}
	return names
}

func TestSearch(t *testing.T) {
	index := New(placeDocuments(
		"Tokyo",
		"Tokyo, Japan",
		"Asia/Tokyo",
		"New York",
		"New York, United States",
		"America/New_York",
		"York",
		"Paris, France",
		"Europe/Paris",
		"Buenos Aires, Argentina",
	))

	tests := []struct {
		query     string
		wantFirst string
		wantAny   []string // at least one of these should appear in results
	}{
		{query: "tokyo", wantFirst: "Tokyo"},
		{query: "new york", wantFirst: "New York"},
		{query: "paris france", wantFirst: "Paris, France"},
		{query: "argentina", wantFirst: "Buenos Aires, Argentina"},
		{query: "europe", wantFirst: "Europe/Paris"},
		{query: "york", wantAny: []string{"York", "New York"}},
	}

	for _, test := range tests {
		t.Run(test.query, func(t *testing.T) {
			results := index.Search(test.query, 5)
			if len(results) == 0 {
				t.Fatal("expected results, got none")
			}

			if test.wantFirst != "" && results[0].Name != test.wantFirst {
				t.Errorf("top result = %q (score %.3f), want %q", results[0].Name, results[0].Score, test.wantFirst)
				for i, result := range results {
					t.Logf("  [%d] %s (%.3f)", i, result.Name, result.Score)
				}
			}

			if len(test.wantAny) > 0 {
				found := false
				for _, result := range results {
					for _, wanted := range test.wantAny {
						if result.Name == wanted {
							found = true
						}
					}
				}
				if !found {
					t.Errorf("expected any of %v in results, got %v", test.wantAny, resultNames(results))
				}
			}
		})
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	index := New(placeDocuments("Tokyo"))

	results := index.Search("", 5)
	if len(results) != 0 {
		t.Errorf("empty query returned %d results, want 0", len(results))
	}
}

func TestSearch_NoDocuments(t *testing.T) {
	index := New(nil)
	results := index.Search("anything", 5)
	if len(results) != 0 {
		t.Errorf("empty index returned %d results, want 0", len(results))
	}
}

func TestSearch_NoMatch(t *testing.T) {
	index := New(placeDocuments("Tokyo"))

	results := index.Search("zzzzzzz", 5)
	if len(results) != 0 {
		t.Errorf("non-matching query returned %d results, want 0", len(results))
	}
}

func TestSearch_Limit(t *testing.T) {
	documents := make([]Document, 20)
	for i := range documents {
		documents[i] = Document{
			Name:   "zone",
			Fields: []Field{{Text: "shared place", Weight: 1}},
		}
	}

	index := New(documents)
	results := index.Search("shared place", 3)
	if len(results) != 3 {
		t.Errorf("limit 3 returned %d results", len(results))
	}
}

func TestSearch_TiesKeepDocumentOrder(t *testing.T) {
	index := New(placeDocuments("Kolkata one", "Kolkata two", "Kolkata six"))

	for attempt := 0; attempt < 10; attempt++ {
		results := index.Search("kolkata", 10)
		if len(results) != 3 {
			t.Fatalf("got %d results, want 3", len(results))
		}
		for i, result := range results {
			if result.Document != i {
				t.Fatalf("attempt %d: result %d is document %d, want document order", attempt, i, result.Document)
			}
		}
	}
}

func TestSearch_ScoreOrdering(t *testing.T) {
	index := New([]Document{
		{Name: "alpha", Fields: []Field{{Text: "alpha island once", Weight: 1}}},
		{Name: "beta", Fields: []Field{{Text: "beta something else entirely", Weight: 1}}},
		{Name: "gamma_island", Fields: []Field{
			{Text: "gamma_island", Weight: 3},
			{Text: "gamma island is an island in the sea", Weight: 2},
		}},
	})

	results := index.Search("island", 10)
	if len(results) < 2 {
		t.Fatalf("expected at least 2 results, got %d", len(results))
	}

	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not sorted by descending score: [%d] %.3f > [%d] %.3f",
				i, results[i].Score, i-1, results[i-1].Score)
		}
	}

	if results[0].Name != "gamma_island" {
		t.Errorf("top result = %q, want gamma_island (name match should win)", results[0].Name)
	}
}

func TestSearchClauses(t *testing.T) {
	index := New(placeDocuments(
		"Tokyo",          // 0
		"Tokelau",        // 1
		"Asia/Tokyo",     // 2
		"Toronto",        // 3
		"Sao Tome",       // 4
		"Asia/Kathmandu", // 5
	))

	tests := []struct {
		name    string
		clauses []Clause
		want    []string // unordered set
	}{
		{
			name:    "prefix expands",
			clauses: []Clause{{Token: "tok", Prefix: true}},
			want:    []string{"Tokyo", "Tokelau", "Asia/Tokyo"},
		},
		{
			name:    "exact term does not expand",
			clauses: []Clause{{Token: "tok"}},
			want:    nil,
		},
		{
			name: "must narrows",
			clauses: []Clause{
				{Token: "asia", Occur: Must},
				{Token: "tok", Prefix: true},
			},
			want: []string{"Asia/Tokyo", "Asia/Kathmandu"},
		},
		{
			name: "must not excludes",
			clauses: []Clause{
				{Token: "to", Prefix: true},
				{Token: "asia", Occur: MustNot},
			},
			want: []string{"Tokyo", "Tokelau", "Toronto", "Sao Tome"},
		},
		{
			name:    "only negative clauses match nothing",
			clauses: []Clause{{Token: "asia", Occur: MustNot}},
			want:    nil,
		},
		{
			name: "unknown must term matches nothing",
			clauses: []Clause{
				{Token: "tokyo"},
				{Token: "narnia", Occur: Must},
			},
			want: nil,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			results := index.SearchClauses(test.clauses, 10)
			got := make(map[string]bool)
			for _, result := range results {
				got[result.Name] = true
			}
			if len(got) != len(test.want) {
				t.Fatalf("got %v, want %v", resultNames(results), test.want)
			}
			for _, wanted := range test.want {
				if !got[wanted] {
					t.Errorf("missing %q in %v", wanted, resultNames(results))
				}
			}
		})
	}
}

func TestSearchClauses_PrefixPrefersShortDocuments(t *testing.T) {
	index := New(placeDocuments("Tokyo, Japan", "Tokyo"))
	results := index.SearchClauses([]Clause{{Token: "tok", Prefix: true}}, 10)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Name != "Tokyo" {
		t.Errorf("top result = %q, want the shorter document", results[0].Name)
	}
}

func TestFieldWeights(t *testing.T) {
	// Two documents with the same text, one in a high-weight field and
	// the other in a low-weight field.
	highWeight := Document{
		Name: "high",
		Fields: []Field{
			{Text: "pacific island chain", Weight: 5},
			{Text: "unrelated filler text", Weight: 1},
		},
	}
	lowWeight := Document{
		Name: "low",
		Fields: []Field{
			{Text: "unrelated filler text", Weight: 5},
			{Text: "pacific island chain", Weight: 1},
		},
	}

	index := New([]Document{highWeight, lowWeight})
	results := index.Search("pacific island chain", 10)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Name != "high" {
		t.Errorf("top result = %q, want %q (higher weight should win)", results[0].Name, "high")
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("high-weight score (%.3f) should exceed low-weight score (%.3f)",
			results[0].Score, results[1].Score)
	}
}

func TestFieldWeightZeroSkipped(t *testing.T) {
	document := Document{
		Name: "test",
		Fields: []Field{
			{Text: "visible content", Weight: 1},
			{Text: "invisible secret", Weight: 0},
			{Text: "also invisible", Weight: -1},
		},
	}

	index := New([]Document{document})

	if results := index.Search("visible", 5); len(results) != 1 {
		t.Errorf("expected 1 result for 'visible', got %d", len(results))
	}
	if results := index.Search("secret", 5); len(results) != 0 {
		t.Errorf("expected 0 results for 'secret' (weight 0 field), got %d", len(results))
	}
	if results := index.Search("invisible", 5); len(results) != 0 {
		t.Errorf("expected 0 results for 'invisible' (weight -1 field), got %d", len(results))
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"hello world", []string{"hello", "world"}},
		{"America/New_York", []string{"america", "new", "york"}},
		{"a I", nil},               // all tokens < 2 chars
		{"a I an", []string{"an"}}, // "an" is 2 chars, passes filter
		{"Réunion", []string{"reunion"}},
		{"Côte d'Ivoire", []string{"cote", "ivoire"}},
		{"Etc/GMT+10", []string{"etc", "gmt", "10"}},
		{"Åland Islands", []string{"aland", "islands"}},
		{"", nil},
		{"x", nil}, // single char discarded
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			got := Tokenize(test.input)
			if len(got) != len(test.want) {
				t.Fatalf("Tokenize(%q) = %v (len %d), want %v (len %d)",
					test.input, got, len(got), test.want, len(test.want))
			}
			for i := range got {
				if got[i] != test.want[i] {
					t.Errorf("Tokenize(%q)[%d] = %q, want %q",
						test.input, i, got[i], test.want[i])
				}
			}
		})
	}
}
