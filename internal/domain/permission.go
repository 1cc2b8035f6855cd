package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Permission allows one API client to call routes matching Pattern with Verb.
// Pattern is stored lowercase and Verb uppercase so lookups never need to
// normalize case.
type Permission struct {
	ID      int64  `json:"id"`
	APIID   int64  `json:"api_id"`
	Pattern string `json:"pattern"`
	Verb    string `json:"verb"`
}

var (
	paramSegment   = regexp.MustCompile(`^:[A-Za-z0-9_]+$`)
	literalSegment = regexp.MustCompile(`^[A-Za-z0-9._~-]*$`)
)

var knownVerbs = map[string]struct{}{
	"GET":     {},
	"POST":    {},
	"PUT":     {},
	"PATCH":   {},
	"DELETE":  {},
	"HEAD":    {},
	"OPTIONS": {},
}

// NormalizePermission builds a Permission from loosely typed input.
//
// A non-numeric apiID is stored as 0 rather than rejected, matching how
// existing administrative tooling writes these rows.
func NormalizePermission(apiID string, pattern, verb string) Permission {
	id, err := strconv.ParseInt(strings.TrimSpace(apiID), 10, 64)
	if err != nil {
		id = 0
	}
	return Permission{
		APIID:   id,
		Pattern: strings.ToLower(strings.TrimSpace(pattern)),
		Verb:    strings.ToUpper(strings.TrimSpace(verb)),
	}
}

// Normalize lowercases the pattern and uppercases the verb in place.
func (p *Permission) Normalize() {
	p.Pattern = strings.ToLower(strings.TrimSpace(p.Pattern))
	p.Verb = strings.ToUpper(strings.TrimSpace(p.Verb))
}

// Validate checks that p names a well-formed pattern and a known verb.
func (p Permission) Validate() error {
	if p.Pattern == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyPattern)
	}
	if err := ValidatePattern(p.Pattern); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if _, ok := knownVerbs[strings.ToUpper(p.Verb)]; !ok {
		return fmt.Errorf("%w: %w %q", ErrValidation, ErrInvalidVerb, p.Verb)
	}
	return nil
}

// ValidatePattern checks the shape of a permission pattern. It must start
// with "/", and each segment is either a ":name" parameter, a literal path
// segment, or a "*" wildcard in last position.
func ValidatePattern(pattern string) error {
	if !strings.HasPrefix(pattern, "/") {
		return fmt.Errorf("%w %q: must start with /", ErrInvalidPattern, pattern)
	}
	segments := strings.Split(pattern[1:], "/")
	for i, seg := range segments {
		switch {
		case seg == "*":
			if i != len(segments)-1 {
				return fmt.Errorf("%w %q: * must be the last segment", ErrInvalidPattern, pattern)
			}
		case strings.HasPrefix(seg, ":"):
			if !paramSegment.MatchString(seg) {
				return fmt.Errorf("%w %q: bad parameter %q", ErrInvalidPattern, pattern, seg)
			}
		case !literalSegment.MatchString(seg):
			return fmt.Errorf("%w %q: bad segment %q", ErrInvalidPattern, pattern, seg)
		}
	}
	return nil
}
