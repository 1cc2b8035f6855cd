package domain

import "time"

// CalendarEvent is a single appointment from an LMS calendar.
type CalendarEvent struct {
	EventID     int64     `json:"event_id"`
	CalendarID  int64     `json:"calendar_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	FullDay     bool      `json:"full_day"`
}

// Calendar is a category of events visible to a user.
type Calendar struct {
	CalendarID int64  `json:"calendar_id"`
	Title      string `json:"title"`
	Color      string `json:"color,omitempty"`
	Type       int    `json:"type"`
	ObjectID   int64  `json:"obj_id"`
}

// CalendarEvents groups the events of one calendar.
type CalendarEvents struct {
	CalendarID int64           `json:"calendar_id"`
	Events     []CalendarEvent `json:"events"`
}

// ICalURL is the subscription address of a user's desktop calendar.
type ICalURL struct {
	UserID int64  `json:"user_id"`
	URL    string `json:"ical_url"`
}
