package store

import (
	"context"

	"github.com/phrazzld/lmsgate/internal/domain"
)

// UserDirectory resolves LMS accounts.
type UserDirectory interface {
	// LoginToUserID returns ErrUserNotFound for an unknown login.
	LoginToUserID(ctx context.Context, login string) (int64, error)

	// IsAdminByUserID reports whether the user holds the administrator role.
	IsAdminByUserID(ctx context.Context, userID int64) (bool, error)
}

// CalendarStore reads the calendars and appointments of LMS users.
type CalendarStore interface {
	// UpcomingEvents returns the user's events that have not ended yet.
	UpcomingEvents(ctx context.Context, userID int64) ([]domain.CalendarEvent, error)

	// ICalURL returns the subscription URL of the user's desktop calendar.
	ICalURL(ctx context.Context, userID int64) (*domain.ICalURL, error)

	// Calendars returns the user's calendars, limited to ids when ids is non-empty.
	Calendars(ctx context.Context, userID int64, ids []int64) ([]domain.Calendar, error)

	// EventsOfCalendars returns the events of each requested calendar the user can see.
	EventsOfCalendars(ctx context.Context, userID int64, ids []int64) ([]domain.CalendarEvents, error)
}

// ObjectStore reads repository objects.
type ObjectStore interface {
	// GetByRefID returns ErrObjectNotFound for an unknown reference and
	// domain.ErrObjectInTrash for a deleted one.
	GetByRefID(ctx context.Context, refID int64) (*domain.ObjectMetadata, error)
}
