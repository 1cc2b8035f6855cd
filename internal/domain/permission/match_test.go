package permission

import (
	"testing"

	"github.com/casbin/casbin/v2/util"
	"github.com/phrazzld/lmsgate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllows(t *testing.T) {
	t.Parallel()

	perms := []domain.Permission{
		{APIID: 7, Pattern: "/v1/cal/events/:id", Verb: "GET"},
		{APIID: 7, Pattern: "/v1/docs/*", Verb: "GET"},
		{APIID: 7, Pattern: "/v1/umr/calendars", Verb: "GET"},
	}

	tests := []struct {
		name         string
		routePattern string
		requestPath  string
		want         bool
	}{
		{"exact route pattern", "/v1/cal/events/:id", "/v1/cal/events/42", true},
		{"key match on path", "/v1/cal/events/{id}", "/v1/cal/events/42", true},
		{"case insensitive path", "", "/V1/UMR/Calendars", true},
		{"wildcard", "", "/v1/docs/routes", true},
		{"different route", "/v1/objects/:ref_id", "/v1/objects/3", false},
		{"parameter does not span segments", "", "/v1/cal/events/42/extra", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Allows(perms, tc.routePattern, tc.requestPath))
		})
	}
}

func TestAllowsEmpty(t *testing.T) {
	t.Parallel()

	assert.False(t, Allows(nil, "/v1/cal/events", "/v1/cal/events"))
	assert.False(t, Allows([]domain.Permission{{Pattern: ""}}, "", "/"))
}

func TestAllowsVerb(t *testing.T) {
	t.Parallel()

	perms := []domain.Permission{
		{Pattern: "/v1/umr/calendars", Verb: "GET"},
	}

	assert.True(t, AllowsVerb(perms, "get", "/v1/umr/calendars", "/v1/umr/calendars"))
	assert.False(t, AllowsVerb(perms, "DELETE", "/v1/umr/calendars", "/v1/umr/calendars"))
}

func TestAllowsTreatsLiteralsLiterally(t *testing.T) {
	t.Parallel()

	dotted := []domain.Permission{{Pattern: "/v1/cal.events", Verb: "GET"}}
	assert.True(t, Allows(dotted, "", "/v1/cal.events"))
	assert.False(t, Allows(dotted, "", "/v1/calXevents"))

	for _, pattern := range []string{"/v1/objects/(", "/v1/objects/[a", "/v1/cal/events+", "v1/no/slash", "/v1/*/mid"} {
		t.Run(pattern, func(t *testing.T) {
			perms := []domain.Permission{{Pattern: pattern, Verb: "GET"}}
			assert.NotPanics(t, func() {
				assert.False(t, Allows(perms, "/v1/objects/:ref_id", "/v1/objects/3"))
			})
		})
	}
}

func TestMatcherIsCached(t *testing.T) {
	t.Parallel()

	first := matcher("/v1/umr/calendar/:calendarid/events")
	require.NotNil(t, first)
	assert.Same(t, first, matcher("/v1/umr/calendar/:calendarid/events"))
	assert.Nil(t, matcher("/v1/objects/("))
}

func TestMatcherAgreesWithKeyMatch2(t *testing.T) {
	t.Parallel()

	patterns := []string{"/v1/cal/events/:id", "/v1/docs/*", "/v1/umr/calendar/:calendarid/events", "/v1/objects"}
	paths := []string{"/v1/cal/events/42", "/v1/cal/events", "/v1/docs/route", "/v1/docs/",
		"/v1/umr/calendar/3/events", "/v1/umr/calendar//events", "/v1/objects", "/v1/objects/1"}

	for _, pattern := range patterns {
		re := matcher(pattern)
		require.NotNil(t, re, pattern)
		for _, path := range paths {
			assert.Equal(t, util.KeyMatch2(path, pattern), re.MatchString(path), "%s against %s", path, pattern)
		}
	}
}
