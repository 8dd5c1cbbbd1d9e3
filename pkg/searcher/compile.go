// SPDX-License-Identifier: GPL-2.0-or-later

// Package searcher compiles a user query into a fuzzy-matching regex
// ("swiper" mode), scores candidate strings against it, and ranks the
// results deterministically.
package searcher

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// CompileError reports an invalid query.
type CompileError struct {
	Query string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("invalid search query: %q", e.Query)
}

var wordOrSpaces = regexp.MustCompile(`( +)|([^ ]+)`)

// compileSwiper compiles a non-empty query into a fuzzy-matching regex.
//
// Rules: a leading space (including a query that is only spaces) is a
// CompileError. Trailing spaces are trimmed. A single internal space
// becomes the lazy-any gap ".*?"; a run of N>=2 spaces becomes a literal
// gap of exactly N-1 spaces. A run of non-space characters becomes an
// escaped, capturing literal. The whole pattern is case-insensitive unless
// the query contains an uppercase letter.
func compileSwiper(query string) (*regexp.Regexp, error) {
	if strings.HasPrefix(query, " ") {
		return nil, &CompileError{Query: query}
	}

	trimmed := strings.TrimRight(query, " ")

	var caseFlag string
	if hasUpper(query) {
		caseFlag = "(?-i)"
	} else {
		caseFlag = "(?i)"
	}

	var b strings.Builder
	b.WriteString(caseFlag)

	for _, m := range wordOrSpaces.FindAllString(trimmed, -1) {
		if m[0] == ' ' {
			switch len(m) {
			case 1:
				b.WriteString(".*?")
			default:
				fmt.Fprintf(&b, " {%d}", len(m)-1)
			}
			continue
		}
		b.WriteString("(")
		b.WriteString(regexp.QuoteMeta(m))
		b.WriteString(")")
	}

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, &CompileError{Query: query}
	}
	return re, nil
}

func hasUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}
