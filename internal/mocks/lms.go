package mocks

import (
	"context"

	"github.com/phrazzld/lmsgate/internal/domain"
	"github.com/phrazzld/lmsgate/internal/store"
)

// MockAPIClientStore implements store.APIClientStore.
type MockAPIClientStore struct {
	GetByIDFn  func(ctx context.Context, id int64) (*domain.APIClient, error)
	GetByKeyFn func(ctx context.Context, apiKey string) (*domain.APIClient, error)

	Clients map[int64]*domain.APIClient
}

func (m *MockAPIClientStore) GetByID(ctx context.Context, id int64) (*domain.APIClient, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	if c, ok := m.Clients[id]; ok {
		return c, nil
	}
	return nil, store.ErrAPIClientNotFound
}

func (m *MockAPIClientStore) GetByKey(ctx context.Context, apiKey string) (*domain.APIClient, error) {
	if m.GetByKeyFn != nil {
		return m.GetByKeyFn(ctx, apiKey)
	}
	for _, c := range m.Clients {
		if c.APIKey == apiKey {
			return c, nil
		}
	}
	return nil, store.ErrAPIClientNotFound
}

// MockUserDirectory implements store.UserDirectory.
type MockUserDirectory struct {
	LoginToUserIDFn   func(ctx context.Context, login string) (int64, error)
	IsAdminByUserIDFn func(ctx context.Context, userID int64) (bool, error)

	Logins   map[string]int64
	Admins   map[int64]bool
	AdminErr error
}

func (m *MockUserDirectory) LoginToUserID(ctx context.Context, login string) (int64, error) {
	if m.LoginToUserIDFn != nil {
		return m.LoginToUserIDFn(ctx, login)
	}
	if id, ok := m.Logins[login]; ok {
		return id, nil
	}
	return 0, store.ErrUserNotFound
}

func (m *MockUserDirectory) IsAdminByUserID(ctx context.Context, userID int64) (bool, error) {
	if m.IsAdminByUserIDFn != nil {
		return m.IsAdminByUserIDFn(ctx, userID)
	}
	if m.AdminErr != nil {
		return false, m.AdminErr
	}
	return m.Admins[userID], nil
}

// MockCalendarStore implements store.CalendarStore.
type MockCalendarStore struct {
	UpcomingEventsFn    func(ctx context.Context, userID int64) ([]domain.CalendarEvent, error)
	ICalURLFn           func(ctx context.Context, userID int64) (*domain.ICalURL, error)
	CalendarsFn         func(ctx context.Context, userID int64, ids []int64) ([]domain.Calendar, error)
	EventsOfCalendarsFn func(ctx context.Context, userID int64, ids []int64) ([]domain.CalendarEvents, error)

	Events map[int64][]domain.CalendarEvent
	Err    error
}

func (m *MockCalendarStore) UpcomingEvents(ctx context.Context, userID int64) ([]domain.CalendarEvent, error) {
	if m.UpcomingEventsFn != nil {
		return m.UpcomingEventsFn(ctx, userID)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	events := m.Events[userID]
	if events == nil {
		events = []domain.CalendarEvent{}
	}
	return events, nil
}

func (m *MockCalendarStore) ICalURL(ctx context.Context, userID int64) (*domain.ICalURL, error) {
	if m.ICalURLFn != nil {
		return m.ICalURLFn(ctx, userID)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return &domain.ICalURL{UserID: userID, URL: "https://lms.example.org/calendar.php?token=test"}, nil
}

func (m *MockCalendarStore) Calendars(ctx context.Context, userID int64, ids []int64) ([]domain.Calendar, error) {
	if m.CalendarsFn != nil {
		return m.CalendarsFn(ctx, userID, ids)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return []domain.Calendar{}, nil
}

func (m *MockCalendarStore) EventsOfCalendars(ctx context.Context, userID int64, ids []int64) ([]domain.CalendarEvents, error) {
	if m.EventsOfCalendarsFn != nil {
		return m.EventsOfCalendarsFn(ctx, userID, ids)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]domain.CalendarEvents, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.CalendarEvents{CalendarID: id, Events: []domain.CalendarEvent{}})
	}
	return out, nil
}

// MockObjectStore implements store.ObjectStore.
type MockObjectStore struct {
	GetByRefIDFn func(ctx context.Context, refID int64) (*domain.ObjectMetadata, error)

	Objects map[int64]*domain.ObjectMetadata
	Trashed map[int64]bool
}

func (m *MockObjectStore) GetByRefID(ctx context.Context, refID int64) (*domain.ObjectMetadata, error) {
	if m.GetByRefIDFn != nil {
		return m.GetByRefIDFn(ctx, refID)
	}
	if m.Trashed[refID] {
		return nil, domain.ErrObjectInTrash
	}
	if obj, ok := m.Objects[refID]; ok {
		return obj, nil
	}
	return nil, store.ErrObjectNotFound
}
