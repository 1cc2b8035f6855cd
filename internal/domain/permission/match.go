// Package permission decides whether a set of stored permission entries
// allows a request.
package permission

import (
	"regexp"
	"strings"
	"sync"

	"github.com/phrazzld/lmsgate/internal/domain"
)

// compiled holds one matcher per lowercased pattern. Malformed patterns are
// stored as nil.
var compiled sync.Map

// Allows reports whether any entry in perms admits the request.
//
// routePattern is the pattern the router matched (for example
// "/v1/cal/events/:id") and requestPath the concrete path. An entry matches
// when its pattern equals the route pattern or key-matches the path, where
// ":name" matches one segment and "*" matches the rest. Every other
// character matches only itself. Comparison is case insensitive. Entries
// with malformed patterns never match. Verbs are expected to be filtered by
// the caller.
func Allows(perms []domain.Permission, routePattern, requestPath string) bool {
	route := strings.ToLower(routePattern)
	path := strings.ToLower(requestPath)

	for _, p := range perms {
		pattern := strings.ToLower(p.Pattern)
		if pattern == "" {
			continue
		}
		if pattern == route {
			return true
		}
		if re := matcher(pattern); re != nil && re.MatchString(path) {
			return true
		}
	}
	return false
}

// AllowsVerb is Allows restricted to entries for verb.
func AllowsVerb(perms []domain.Permission, verb, routePattern, requestPath string) bool {
	matching := make([]domain.Permission, 0, len(perms))
	for _, p := range perms {
		if strings.EqualFold(p.Verb, verb) {
			matching = append(matching, p)
		}
	}
	return Allows(matching, routePattern, requestPath)
}

// matcher returns the cached matcher for pattern, or nil when the pattern
// is malformed.
func matcher(pattern string) *regexp.Regexp {
	if re, ok := compiled.Load(pattern); ok {
		return re.(*regexp.Regexp)
	}
	actual, _ := compiled.LoadOrStore(pattern, compile(pattern))
	return actual.(*regexp.Regexp)
}

// compile translates pattern into an anchored expression. Literal segments
// are quoted so they match only themselves.
func compile(pattern string) *regexp.Regexp {
	if domain.ValidatePattern(pattern) != nil {
		return nil
	}
	segments := strings.Split(pattern, "/")
	for i, seg := range segments {
		switch {
		case seg == "*":
			segments[i] = ".*"
		case strings.HasPrefix(seg, ":"):
			segments[i] = "[^/]+"
		default:
			segments[i] = regexp.QuoteMeta(seg)
		}
	}
	return regexp.MustCompile("^" + strings.Join(segments, "/") + "$")
}
