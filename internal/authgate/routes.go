// Copyright (c) 2026 VeriClass. All rights reserved.

package authgate

import (
	"path"
	"strings"
)

// # Route Classification

// RouteClass is the access policy assigned to a request path.
type RouteClass int

const (
	// RoutePublic paths are served to everyone; no validation is performed.
	RoutePublic RouteClass = iota

	// RouteProtected paths require a valid session.
	RouteProtected

	// RouteAuthOnly paths (login, registration) are only for anonymous
	// visitors; an authenticated user is redirected to their dashboard.
	RouteAuthOnly

	// RouteExcluded paths bypass the gate entirely: the API namespace,
	// internal endpoints, and static assets.
	RouteExcluded
)

// String returns the policy name for logging.
func (c RouteClass) String() string {
	switch c {
	case RouteProtected:
		return "protected"
	case RouteAuthOnly:
		return "auth_only"
	case RouteExcluded:
		return "excluded"
	default:
		return "public"
	}
}

// RouteTable is the static route policy, kept as data rather than inlined
// conditionals. Entries are path prefixes matched on whole segments.
type RouteTable struct {
	Protected []string
	Public    []string
	AuthOnly  []string
}

// DefaultRouteTable returns the route policy of the VeriClass frontend.
func DefaultRouteTable() RouteTable {
	return RouteTable{
		Protected: []string{
			"/admin",
			"/faculty",
			"/student",
			"/profile",
			"/settings",
		},
		Public: []string{
			"/",
			"/about",
			"/contact",
			"/privacy",
		},
		AuthOnly: []string{
			"/auth/login",
			"/auth/register",
			"/auth/forgot-password",
			"/auth/reset-password",
		},
	}
}

// staticExtensions are asset suffixes excluded from session validation.
var staticExtensions = map[string]struct{}{
	".css": {}, ".js": {}, ".map": {},
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".svg": {}, ".webp": {}, ".ico": {},
	".woff": {}, ".woff2": {}, ".ttf": {},
	".txt": {}, ".xml": {},
}

// Classifier maps request paths to a [RouteClass].
//
// # Purity
//
// Classify is a pure function of the path and the table: no side effects
// and no failure modes. At the observed route count a linear scan over the
// prefix lists outperforms anything fancier; revisit with a sorted-prefix
// lookup only if the tables grow by an order of magnitude.
type Classifier struct {
	table RouteTable
}

// NewClassifier constructs a Classifier over the given route table.
func NewClassifier(table RouteTable) *Classifier {
	return &Classifier{table: table}
}

// Classify returns the access policy for a request path.
//
// # Precedence
//
// Excluded is checked first and short-circuits. Protected is checked before
// Public so that an entry accidentally present in both tables fails safe —
// the tables are disjoint by construction, but the ordering is a tested
// invariant rather than an assumption.
func (classifier *Classifier) Classify(requestPath string) RouteClass {
	cleaned := cleanPath(requestPath)

	if isExcluded(cleaned) {
		return RouteExcluded
	}

	if matchesAny(cleaned, classifier.table.Protected) {
		return RouteProtected
	}

	if matchesAny(cleaned, classifier.table.AuthOnly) {
		return RouteAuthOnly
	}

	if matchesAny(cleaned, classifier.table.Public) {
		return RoutePublic
	}

	// Unknown paths fall through to the frontend's own 404 page.
	return RoutePublic
}

// isExcluded reports whether the path bypasses the gate.
func isExcluded(cleaned string) bool {
	if cleaned == "/favicon.ico" {
		return true
	}

	// API namespace and internal endpoints carry their own auth.
	if matchesPrefix(cleaned, "/api") || matchesPrefix(cleaned, "/_internal") {
		return true
	}

	if _, ok := staticExtensions[strings.ToLower(path.Ext(cleaned))]; ok {
		return true
	}

	return false
}

// matchesAny reports whether the path matches any table entry.
func matchesAny(cleaned string, entries []string) bool {
	for _, entry := range entries {
		if matchesPrefix(cleaned, entry) {
			return true
		}
	}
	return false
}

// matchesPrefix matches whole path segments: the path equals the entry or
// continues past it with a separator. "/dashboardX" must not match a
// "/dashboard" entry, which rules out a raw string-prefix test.
func matchesPrefix(cleaned, entry string) bool {
	if entry == "/" {
		return cleaned == "/"
	}
	return cleaned == entry || strings.HasPrefix(cleaned, entry+"/")
}

// cleanPath normalizes the request path before matching.
func cleanPath(requestPath string) string {
	if requestPath == "" {
		return "/"
	}
	cleaned := path.Clean(requestPath)
	if !strings.HasPrefix(cleaned, "/") {
		cleaned = "/" + cleaned
	}
	return cleaned
}
