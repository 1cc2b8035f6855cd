package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lmsgate/internal/domain"
	"github.com/phrazzld/lmsgate/internal/platform/logger"
	"github.com/phrazzld/lmsgate/internal/store"
)

// icalSelectionAll is the token selection covering every visible calendar.
const icalSelectionAll = 1

// visibleCategories restricts c to the categories user $1 may read: their
// personal calendars (type 1) and calendars shared with them.
const visibleCategories = `((c.type = 1 AND c.obj_id = $1)
	OR c.cat_id IN (SELECT s.cat_id FROM cal_shared s WHERE s.obj_id = $1))`

// PostgresCalendarStore implements store.CalendarStore over the LMS
// calendar tables.
type PostgresCalendarStore struct {
	db       store.DBTX
	baseURL  string
	clientID string
	timeFunc func() time.Time
	logger   *slog.Logger
}

var _ store.CalendarStore = (*PostgresCalendarStore)(nil)

// NewPostgresCalendarStore creates a calendar store. baseURL and clientID
// are used to build iCal subscription addresses.
func NewPostgresCalendarStore(db store.DBTX, baseURL, clientID string, logger *slog.Logger) *PostgresCalendarStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCalendarStore{
		db:       db,
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: clientID,
		timeFunc: time.Now,
		logger:   logger.With(slog.String("component", "calendar_store")),
	}
}

// placeholders returns "$start, $start+1, ..." for n parameters.
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "$" + strconv.Itoa(start+i)
	}
	return strings.Join(parts, ", ")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// UpcomingEvents implements store.CalendarStore.UpcomingEvents.
func (s *PostgresCalendarStore) UpcomingEvents(ctx context.Context, userID int64) ([]domain.CalendarEvent, error) {
	query := `
		SELECT e.cal_id, a.cat_id, e.title, e.description, e.location, e.starta, e.enda, e.fullday
		FROM cal_entries e
		JOIN cal_cat_assignments a ON a.cal_id = e.cal_id
		JOIN cal_categories c ON c.cat_id = a.cat_id
		WHERE ` + visibleCategories + ` AND e.enda >= $2
		ORDER BY e.starta, e.cal_id
	`
	events, err := s.queryEvents(ctx, query, userID, s.timeFunc().UTC())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load upcoming events",
			"error", err,
			"user_id", userID)
		return nil, err
	}
	return events, nil
}

// ICalURL implements store.CalendarStore.ICalURL. A subscription token is
// created on first use.
func (s *PostgresCalendarStore) ICalURL(ctx context.Context, userID int64) (*domain.ICalURL, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT hash FROM cal_auth_token WHERE user_id = $1 AND selection = $2 AND calendar = 0`,
		userID, icalSelectionAll,
	).Scan(&hash)

	if errors.Is(err, sql.ErrNoRows) {
		hash = strings.ReplaceAll(uuid.NewString(), "-", "")
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO cal_auth_token (user_id, hash, selection, calendar) VALUES ($1, $2, $3, 0)`,
			userID, hash, icalSelectionAll)
		if err == nil {
			log.Info("created calendar subscription token", "user_id", userID)
		}
	}
	if err != nil {
		log.Error("failed to load calendar token", "error", err, "user_id", userID)
		return nil, MapError(err)
	}

	return &domain.ICalURL{
		UserID: userID,
		URL: fmt.Sprintf("%s/calendar.php?client_id=%s&token=%s",
			s.baseURL, url.QueryEscape(s.clientID), hash),
	}, nil
}

// Calendars implements store.CalendarStore.Calendars. Requesting a calendar
// the user cannot see yields ErrCalendarNotFound.
func (s *PostgresCalendarStore) Calendars(ctx context.Context, userID int64, ids []int64) ([]domain.Calendar, error) {
	query := `
		SELECT c.cat_id, c.title, c.color, c.type, c.obj_id
		FROM cal_categories c
		WHERE ` + visibleCategories
	args := []any{userID}
	if len(ids) > 0 {
		query += ` AND c.cat_id IN (` + placeholders(2, len(ids)) + `)`
		args = append(args, int64Args(ids)...)
	}
	query += ` ORDER BY c.cat_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load calendars",
			"error", err,
			"user_id", userID)
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	calendars := []domain.Calendar{}
	found := make(map[int64]struct{})
	for rows.Next() {
		var c domain.Calendar
		if err := rows.Scan(&c.CalendarID, &c.Title, &c.Color, &c.Type, &c.ObjectID); err != nil {
			return nil, MapError(err)
		}
		found[c.CalendarID] = struct{}{}
		calendars = append(calendars, c)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return nil, fmt.Errorf("%w: calendar %d of user %d", store.ErrCalendarNotFound, id, userID)
		}
	}
	return calendars, nil
}

// EventsOfCalendars implements store.CalendarStore.EventsOfCalendars. The
// result follows the order of ids.
func (s *PostgresCalendarStore) EventsOfCalendars(
	ctx context.Context,
	userID int64,
	ids []int64,
) ([]domain.CalendarEvents, error) {
	if len(ids) == 0 {
		return []domain.CalendarEvents{}, nil
	}
	if _, err := s.Calendars(ctx, userID, ids); err != nil {
		return nil, err
	}

	query := `
		SELECT e.cal_id, a.cat_id, e.title, e.description, e.location, e.starta, e.enda, e.fullday
		FROM cal_entries e
		JOIN cal_cat_assignments a ON a.cal_id = e.cal_id
		WHERE a.cat_id IN (` + placeholders(1, len(ids)) + `)
		ORDER BY a.cat_id, e.starta, e.cal_id
	`
	events, err := s.queryEvents(ctx, query, int64Args(ids)...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load calendar events",
			"error", err,
			"user_id", userID)
		return nil, err
	}

	byCalendar := make(map[int64][]domain.CalendarEvent, len(ids))
	for _, e := range events {
		byCalendar[e.CalendarID] = append(byCalendar[e.CalendarID], e)
	}

	result := make([]domain.CalendarEvents, 0, len(ids))
	for _, id := range ids {
		calEvents := byCalendar[id]
		if calEvents == nil {
			calEvents = []domain.CalendarEvent{}
		}
		result = append(result, domain.CalendarEvents{CalendarID: id, Events: calEvents})
	}
	return result, nil
}

func (s *PostgresCalendarStore) queryEvents(ctx context.Context, query string, args ...any) ([]domain.CalendarEvent, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	events := []domain.CalendarEvent{}
	for rows.Next() {
		var e domain.CalendarEvent
		if err := rows.Scan(
			&e.EventID,
			&e.CalendarID,
			&e.Title,
			&e.Description,
			&e.Location,
			&e.Start,
			&e.End,
			&e.FullDay,
		); err != nil {
			return nil, MapError(err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return events, nil
}
