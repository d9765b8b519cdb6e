// Copyright (c) 2026 VeriClass. All rights reserved.

// Package slug turns arbitrary Unicode titles into the ASCII identifiers
// used in course URLs, e.g. "CS301 2026-spring" -> "cs301-2026-spring".
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, transform.RemoveFunc(isMn))

// From converts s into a URL-safe slug: accents are decomposed and
// dropped, ASCII letters are lowercased, and every other run of
// characters collapses into a single hyphen. Leading and trailing
// hyphens never appear in the result.
func From(s string) string {
	decomposed, _, err := transform.String(stripAccents, s)
	if err != nil {
		decomposed = s
	}

	var builder strings.Builder
	builder.Grow(len(decomposed))

	pendingHyphen := false
	for _, r := range decomposed {
		r = unicode.ToLower(r)
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			pendingHyphen = builder.Len() > 0
			continue
		}
		if pendingHyphen {
			builder.WriteByte('-')
			pendingHyphen = false
		}
		builder.WriteRune(r)
	}

	return builder.String()
}

// isMn reports whether r is a combining mark left over from NFD
// decomposition.
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
