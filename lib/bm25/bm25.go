// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bm25

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// BM25 parameters (Okapi variant, standard values).
const (
	paramK1      = 1.2
	paramB       = 0.75
	paramEpsilon = 0.25
)

// tokenPattern splits folded text into runs of letters and digits.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Field is a weighted text field for BM25 indexing. The Weight
// controls how many times this field's tokens are repeated in the
// composite document (higher = more influence on ranking). A weight
// of 0 or negative causes the field to be skipped.
type Field struct {
	Text   string
	Weight int
}

// Document is a named collection of weighted text fields. Name is
// used for result identification only and is not scored unless
// explicitly included as a Field.
type Document struct {
	Name   string
	Fields []Field
}

// Result is a single search hit with its relevance score.
type Result struct {
	// Document is the position of the hit in the slice passed to New.
	Document int

	// Name is the document name (as provided at index construction).
	Name string

	// Score is the relevance score. Higher is more relevant. BM25
	// scores are corpus-dependent and unbounded.
	Score float64
}

// Occur says how a clause constrains the documents it is scored
// against.
type Occur int

const (
	// Should clauses contribute to the score but are not required.
	Should Occur = iota
	// Must clauses exclude documents that do not match them.
	Must
	// MustNot clauses exclude documents that match them and never
	// contribute to the score.
	MustNot
)

// Clause is one term of a structured query. Token must already be in
// the form Tokenize produces.
type Clause struct {
	Token string
	Occur Occur
	// Prefix matches every indexed term beginning with Token. The
	// clause scores the best-matching expansion.
	Prefix bool
}

// Index is a BM25 (Okapi) index over documents. The index is built
// at construction time and is immutable thereafter. It is safe for
// concurrent read access.
type Index struct {
	// documents stores the original documents for name retrieval.
	documents []Document

	// documentTermFrequencies[i][term] is the term frequency in
	// the composite document for document i.
	documentTermFrequencies []map[string]int

	// documentLengths[i] is the total token count for document i.
	documentLengths []int

	// averageDocumentLength is the mean of documentLengths.
	averageDocumentLength float64

	// inverseDocumentFrequency[term] is the precomputed IDF score
	// for each term in the corpus.
	inverseDocumentFrequency map[string]float64

	// vocabulary holds every indexed term in sorted order for prefix
	// expansion.
	vocabulary []string
}

// New creates a BM25 index from the given documents. Construction is
// O(total tokens) and takes well under a millisecond for a few
// thousand short documents.
func New(documents []Document) *Index {
	index := &Index{
		documents:                documents,
		documentTermFrequencies:  make([]map[string]int, len(documents)),
		documentLengths:          make([]int, len(documents)),
		inverseDocumentFrequency: make(map[string]float64),
	}

	// Track how many documents contain each term (for IDF).
	documentFrequency := make(map[string]int)

	var totalLength int

	for i, document := range documents {
		tokens := buildCompositeTokens(document)
		index.documentLengths[i] = len(tokens)
		totalLength += len(tokens)

		termFrequency := make(map[string]int)
		for _, token := range tokens {
			if termFrequency[token] == 0 {
				documentFrequency[token]++
			}
			termFrequency[token]++
		}
		index.documentTermFrequencies[i] = termFrequency
	}

	if len(documents) > 0 {
		index.averageDocumentLength = float64(totalLength) / float64(len(documents))
	}

	// Terms that appear in nearly every document get a small positive
	// score (epsilon) rather than a negative one.
	documentCount := float64(len(documents))
	index.vocabulary = make([]string, 0, len(documentFrequency))
	for term, frequency := range documentFrequency {
		idf := math.Log(1 + (documentCount-float64(frequency)+0.5)/(float64(frequency)+0.5))
		if idf < 0 {
			idf = paramEpsilon
		}
		index.inverseDocumentFrequency[term] = idf
		index.vocabulary = append(index.vocabulary, term)
	}
	sort.Strings(index.vocabulary)

	return index
}

// Len returns the number of indexed documents.
func (index *Index) Len() int {
	return len(index.documents)
}

// Search returns up to limit documents ranked by BM25 relevance to
// the free-text query. Every query token is a Should clause. Returns
// an empty slice if the query produces no tokens or matches nothing.
func (index *Index) Search(query string, limit int) []Result {
	queryTokens := Tokenize(query)
	clauses := make([]Clause, len(queryTokens))
	for i, token := range queryTokens {
		clauses[i] = Clause{Token: token}
	}
	return index.SearchClauses(clauses, limit)
}

// SearchClauses returns up to limit documents matching a structured
// query, ranked by the summed BM25 score of the positive clauses. A
// document is a hit when it satisfies every Must clause, matches no
// MustNot clause, and matches at least one positive clause. Equal
// scores keep document order. A query without Should or Must clauses
// matches nothing.
func (index *Index) SearchClauses(clauses []Clause, limit int) []Result {
	expanded := make([][]string, len(clauses))
	positive := false
	for i, clause := range clauses {
		expanded[i] = index.expand(clause)
		if clause.Occur != MustNot {
			positive = true
		}
	}
	if !positive {
		return nil
	}

	type scored struct {
		index int
		score float64
	}
	var hits []scored

	for i := range index.documents {
		score, ok := index.scoreClauses(i, clauses, expanded)
		if ok {
			hits = append(hits, scored{index: i, score: score})
		}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].score > hits[b].score
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	results := make([]Result, len(hits))
	for i, hit := range hits {
		results[i] = Result{
			Document: hit.index,
			Name:     index.documents[hit.index].Name,
			Score:    hit.score,
		}
	}
	return results
}

// expand returns the indexed terms a clause can match.
func (index *Index) expand(clause Clause) []string {
	if !clause.Prefix {
		if _, exists := index.inverseDocumentFrequency[clause.Token]; exists {
			return []string{clause.Token}
		}
		return nil
	}

	start := sort.SearchStrings(index.vocabulary, clause.Token)
	end := start
	for end < len(index.vocabulary) && strings.HasPrefix(index.vocabulary[end], clause.Token) {
		end++
	}
	return index.vocabulary[start:end]
}

func (index *Index) scoreClauses(documentIndex int, clauses []Clause, expanded [][]string) (float64, bool) {
	var total float64
	matched := false
	for i, clause := range clauses {
		var best float64
		for _, term := range expanded[i] {
			if termScore := index.termScore(documentIndex, term); termScore > best {
				best = termScore
			}
		}

		switch clause.Occur {
		case MustNot:
			if best > 0 {
				return 0, false
			}
		case Must:
			if best == 0 {
				return 0, false
			}
			total += best
			matched = true
		default:
			if best > 0 {
				total += best
				matched = true
			}
		}
	}
	return total, matched
}

// termScore computes the BM25 contribution of one indexed term to one
// document. Zero when the document does not contain the term.
func (index *Index) termScore(documentIndex int, term string) float64 {
	frequency := float64(index.documentTermFrequencies[documentIndex][term])
	if frequency == 0 {
		return 0
	}
	idf := index.inverseDocumentFrequency[term]
	documentLength := float64(index.documentLengths[documentIndex])

	// IDF * (tf * (k1 + 1)) / (tf + k1 * (1 - b + b * dl/avgdl))
	numerator := frequency * (paramK1 + 1)
	denominator := frequency + paramK1*(1-paramB+paramB*documentLength/index.averageDocumentLength)
	return idf * numerator / denominator
}

// buildCompositeTokens creates a weighted token sequence from a
// document by repeating each field's tokens according to the field
// weight.
func buildCompositeTokens(document Document) []string {
	var tokens []string

	for _, field := range document.Fields {
		if field.Weight <= 0 {
			continue
		}
		fieldTokens := Tokenize(field.Text)
		for i := 0; i < field.Weight; i++ {
			tokens = append(tokens, fieldTokens...)
		}
	}

	return tokens
}

// Tokenize splits text into lower-case letter and digit runs with
// diacritics removed ("Réunion" becomes "reunion"), discarding tokens
// shorter than 2 characters.
func Tokenize(text string) []string {
	matches := tokenPattern.FindAllString(Fold(text), -1)

	tokens := matches[:0]
	for _, match := range matches {
		if utf8.RuneCountInString(match) >= 2 {
			tokens = append(tokens, match)
		}
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

// Fold lower-cases text and strips combining marks.
func Fold(text string) string {
	// Transformers carry state, so each call builds its own chain.
	folding := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folding, text)
	if err != nil {
		folded = text
	}
	return strings.ToLower(folded)
}
