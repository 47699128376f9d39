// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tzindex

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bureau-foundation/timezoner/lib/bm25"
)

// DisplayField is the only searchable field name accepted in
// field-qualified terms ("display:tokyo").
const DisplayField = "display"

// SyntaxError describes input that is not a valid query.
type SyntaxError struct {
	// Offset is the byte offset in the input where the problem was
	// detected.
	Offset int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("tzindex: query syntax error at offset %d: %s", e.Offset, e.Reason)
}

// Query is a parsed search query.
type Query struct {
	clauses []bm25.Clause
}

// Empty reports whether the query has no clauses left after
// tokenization. An empty query matches nothing.
func (q Query) Empty() bool {
	return len(q.clauses) == 0
}

// String renders the clauses for logging.
func (q Query) String() string {
	parts := make([]string, len(q.clauses))
	for i, clause := range q.clauses {
		var builder strings.Builder
		switch clause.Occur {
		case bm25.Must:
			builder.WriteByte('+')
		case bm25.MustNot:
			builder.WriteByte('-')
		}
		builder.WriteString(clause.Token)
		if clause.Prefix {
			builder.WriteByte('*')
		}
		parts[i] = builder.String()
	}
	return strings.Join(parts, " ")
}

// ParseQuery parses raw user input.
//
// Grammar, informally:
//
//	query  = { term | "(" | ")" }
//	term   = [ "+" | "-" ] [ "display:" ] ( word | '"' phrase '"' )
//
// Bare words are optional (Should) clauses. "+" makes a term required
// and "-" excludes it. Every token of a quoted phrase carries the
// phrase's operator, with bare phrases required. A word ending in "*"
// is a prefix; so is the last word of the input when nothing follows
// it, which is what makes search-as-you-type work. Parentheses must
// balance but do not group.
func ParseQuery(raw string) (Query, error) {
	parser := queryParser{input: raw}
	return parser.parse()
}

type queryParser struct {
	input    string
	position int
	clauses  []bm25.Clause
}

func (p *queryParser) parse() (Query, error) {
	var openParens []int

	for {
		p.skipSpace()
		if p.position >= len(p.input) {
			break
		}

		switch p.input[p.position] {
		case '(':
			openParens = append(openParens, p.position)
			p.position++
		case ')':
			if len(openParens) == 0 {
				return Query{}, &SyntaxError{Offset: p.position, Reason: "unbalanced ')'"}
			}
			openParens = openParens[:len(openParens)-1]
			p.position++
		default:
			if err := p.parseTerm(); err != nil {
				return Query{}, err
			}
		}
	}

	if len(openParens) > 0 {
		return Query{}, &SyntaxError{Offset: openParens[len(openParens)-1], Reason: "unbalanced '('"}
	}
	return Query{clauses: p.clauses}, nil
}

func (p *queryParser) parseTerm() error {
	occur := bm25.Should
	switch p.input[p.position] {
	case '+':
		occur = bm25.Must
	case '-':
		occur = bm25.MustNot
	}
	if occur != bm25.Should {
		operatorOffset := p.position
		p.position++
		if p.atTermBoundary() {
			return &SyntaxError{Offset: operatorOffset, Reason: "operator without a term"}
		}
	}

	if field, length := p.fieldPrefix(); length > 0 {
		if field != DisplayField {
			return &SyntaxError{Offset: p.position, Reason: fmt.Sprintf("unknown field %q", field)}
		}
		p.position += length
		if p.atTermBoundary() {
			return &SyntaxError{Offset: p.position, Reason: "field without a value"}
		}
	}

	if p.input[p.position] == '"' {
		return p.parsePhrase(occur)
	}
	p.parseWord(occur)
	return nil
}

func (p *queryParser) parsePhrase(occur bm25.Occur) error {
	openOffset := p.position
	closing := strings.IndexByte(p.input[openOffset+1:], '"')
	if closing < 0 {
		return &SyntaxError{Offset: openOffset, Reason: "unterminated quote"}
	}
	phrase := p.input[openOffset+1 : openOffset+1+closing]
	p.position = openOffset + closing + 2

	if occur == bm25.Should {
		occur = bm25.Must
	}
	for _, token := range bm25.Tokenize(phrase) {
		p.clauses = append(p.clauses, bm25.Clause{Token: token, Occur: occur})
	}
	return nil
}

func (p *queryParser) parseWord(occur bm25.Occur) {
	start := p.position
	for p.position < len(p.input) {
		r, size := utf8.DecodeRuneInString(p.input[p.position:])
		if unicode.IsSpace(r) || r == '(' || r == ')' || r == '"' {
			break
		}
		p.position += size
	}
	word := p.input[start:p.position]

	explicitPrefix := strings.HasSuffix(word, "*")
	word = strings.TrimRight(word, "*")
	prefix := explicitPrefix || (p.position == len(p.input) && occur != bm25.MustNot)

	tokens := tokenizeAll(word)
	for i, token := range tokens {
		last := i == len(tokens)-1
		if last && prefix {
			p.clauses = append(p.clauses, bm25.Clause{Token: token, Occur: occur, Prefix: true})
			continue
		}
		if utf8.RuneCountInString(token) < 2 {
			continue
		}
		p.clauses = append(p.clauses, bm25.Clause{Token: token, Occur: occur})
	}
}

// fieldPrefix detects "name:" at the current position.
func (p *queryParser) fieldPrefix() (string, int) {
	end := p.position
	for end < len(p.input) {
		c := p.input[end]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			end++
			continue
		}
		break
	}
	if end == p.position || end >= len(p.input) || p.input[end] != ':' {
		return "", 0
	}
	return strings.ToLower(p.input[p.position:end]), end - p.position + 1
}

func (p *queryParser) atTermBoundary() bool {
	if p.position >= len(p.input) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(p.input[p.position:])
	return unicode.IsSpace(r) || r == '(' || r == ')'
}

func (p *queryParser) skipSpace() {
	for p.position < len(p.input) {
		r, size := utf8.DecodeRuneInString(p.input[p.position:])
		if !unicode.IsSpace(r) {
			return
		}
		p.position += size
	}
}

// tokenizeAll splits like bm25.Tokenize but keeps single-character
// tokens, so a trailing "new y" still expands "y" as a prefix.
func tokenizeAll(text string) []string {
	return strings.FieldsFunc(bm25.Fold(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
