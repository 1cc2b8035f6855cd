package api

import (
	"fmt"

	"github.com/phrazzld/lmsgate/internal/api/router"
	"github.com/phrazzld/lmsgate/internal/api/shared"
	"github.com/phrazzld/lmsgate/internal/store"
)

// calendarFailureCode is the numeric code of calendar_v1 domain failures.
const calendarFailureCode = -15

// CalendarHandler serves /v1/cal. The user is resolved by middleware and
// read from the context as the effective user.
type CalendarHandler struct {
	calendars store.CalendarStore
}

// NewCalendarHandler creates a CalendarHandler over calendars.
func NewCalendarHandler(calendars store.CalendarStore) *CalendarHandler {
	return &CalendarHandler{calendars: calendars}
}

// Events returns the upcoming events of the effective user.
func (h *CalendarHandler) Events(c *router.Ctx) error {
	userID, err := effectiveUser(c)
	if err != nil {
		return err
	}

	events, err := h.calendars.UpcomingEvents(c.Context(), userID)
	if err != nil {
		return shared.DomainFailure(
			fmt.Sprintf("Error: Could not retrieve any events for user %d.", userID),
			calendarFailureCode, err)
	}
	return c.Success(events)
}

// ICalURL returns the desktop calendar subscription URL of the effective user.
func (h *CalendarHandler) ICalURL(c *router.Ctx) error {
	userID, err := effectiveUser(c)
	if err != nil {
		return err
	}

	url, err := h.calendars.ICalURL(c.Context(), userID)
	if err != nil {
		return shared.DomainFailure(
			fmt.Sprintf("Error: Could not retrieve ICAL url for user %d.", userID),
			calendarFailureCode, err)
	}
	return c.Success(url)
}

// effectiveUser reads the user set by RequireSelfOrAdmin or ResolveSelf.
// Routes mounted without either are a wiring bug.
func effectiveUser(c *router.Ctx) (int64, error) {
	userID, ok := shared.EffectiveUserID(c.Context())
	if !ok {
		return 0, fmt.Errorf("route %s %s has no effective user", c.Route().Verb, c.Route().Pattern)
	}
	return userID, nil
}
