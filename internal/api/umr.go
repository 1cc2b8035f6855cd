package api

import (
	"github.com/phrazzld/lmsgate/internal/api/router"
	"github.com/phrazzld/lmsgate/internal/api/shared"
	"github.com/phrazzld/lmsgate/internal/store"
)

const (
	calendarIDsParam = "calendarids"

	msgCalendarsNotFound = "No calendar(s) found for the given calendar id(s)."
	msgCalendarsFailed   = "Could not retrieve calendar(s)."
)

// UMRHandler serves the calendar part of /v1/umr for the token's user.
type UMRHandler struct {
	calendars store.CalendarStore
}

// NewUMRHandler creates a UMRHandler over calendars.
func NewUMRHandler(calendars store.CalendarStore) *UMRHandler {
	return &UMRHandler{calendars: calendars}
}

// Calendars returns all calendars of the user, or those listed in the
// optional calendarids query parameter.
func (h *UMRHandler) Calendars(c *router.Ctx) error {
	userID, err := tokenUser(c)
	if err != nil {
		return err
	}

	var ids []int64
	if raw := c.Query(calendarIDsParam); raw != "" {
		if ids, err = shared.ParseIDList(raw); err != nil {
			return err
		}
	}
	return h.calendarsOf(c, userID, ids)
}

// Calendar returns a single calendar by its path id.
func (h *UMRHandler) Calendar(c *router.Ctx) error {
	userID, err := tokenUser(c)
	if err != nil {
		return err
	}
	id, err := shared.ParseID(c.Param("calendarId"))
	if err != nil {
		return err
	}
	return h.calendarsOf(c, userID, []int64{id})
}

// Events returns the events of every calendar in the mandatory calendarids
// query parameter.
func (h *UMRHandler) Events(c *router.Ctx) error {
	userID, err := tokenUser(c)
	if err != nil {
		return err
	}
	raw, err := shared.RequireQuery(c.Request(), calendarIDsParam)
	if err != nil {
		return err
	}
	ids, err := shared.ParseIDList(raw)
	if err != nil {
		return err
	}
	return h.eventsOf(c, userID, ids)
}

// CalendarEvents returns the events of the calendar in the path.
func (h *UMRHandler) CalendarEvents(c *router.Ctx) error {
	userID, err := tokenUser(c)
	if err != nil {
		return err
	}
	id, err := shared.ParseID(c.Param("calendarId"))
	if err != nil {
		return err
	}
	return h.eventsOf(c, userID, []int64{id})
}

func (h *UMRHandler) calendarsOf(c *router.Ctx, userID int64, ids []int64) error {
	calendars, err := h.calendars.Calendars(c.Context(), userID, ids)
	if err != nil {
		return mapStoreError(err, msgCalendarsNotFound, failedCalendars(ids))
	}
	return c.Success(calendars)
}

func (h *UMRHandler) eventsOf(c *router.Ctx, userID int64, ids []int64) error {
	events, err := h.calendars.EventsOfCalendars(c.Context(), userID, ids)
	if err != nil {
		return mapStoreError(err, msgCalendarsNotFound, failedCalendars(ids))
	}
	return c.Success(events)
}

func failedCalendars(ids []int64) *shared.Error {
	return shared.New(shared.KindDomainOperationFailed, "", msgCalendarsFailed).
		WithData(map[string]any{"calendar_ids": ids})
}

// tokenUser returns the user id carried by the access token.
func tokenUser(c *router.Ctx) (int64, error) {
	token, ok := shared.AccessTokenFromContext(c.Context())
	if !ok {
		return 0, shared.ErrTokenMissing()
	}
	return token.UserID, nil
}
