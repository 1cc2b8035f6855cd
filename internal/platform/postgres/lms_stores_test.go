package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/lmsgate/internal/domain"
	"github.com/phrazzld/lmsgate/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func TestUserDirectory(t *testing.T) {
	db, mock := newMock(t)
	dir := NewPostgresUserDirectory(db, 0, nil)
	ctx := context.Background()

	mock.ExpectQuery("SELECT usr_id FROM usr_data WHERE login").
		WithArgs("root").
		WillReturnRows(sqlmock.NewRows([]string{"usr_id"}).AddRow(int64(6)))
	mock.ExpectQuery("SELECT usr_id FROM usr_data WHERE login").
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("FROM rbac_ua").
		WithArgs(int64(6), DefaultAdminRoleID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	id, err := dir.LoginToUserID(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, int64(6), id)

	_, err = dir.LoginToUserID(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	isAdmin, err := dir.IsAdminByUserID(ctx, 6)
	require.NoError(t, err)
	assert.True(t, isAdmin)
}

func TestUserDirectoryCustomAdminRole(t *testing.T) {
	db, mock := newMock(t)
	dir := NewPostgresUserDirectory(db, 14, nil)

	mock.ExpectQuery("FROM rbac_ua").
		WithArgs(int64(99), int64(14)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	isAdmin, err := dir.IsAdminByUserID(context.Background(), 99)
	require.NoError(t, err)
	assert.False(t, isAdmin)
}

func TestAPIClientStore(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresAPIClientStore(db, nil)
	columns := []string{"id", "api_key", "api_secret", "redirect_uri", "consent_type", "permissions_enabled"}

	mock.ExpectQuery("FROM rest_api_keys WHERE id").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(int64(7), "apollon", "hash", "", "", true))
	mock.ExpectQuery("FROM rest_api_keys WHERE api_key").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	client, err := s.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "apollon", client.APIKey)
	assert.True(t, client.PermissionsEnabled)

	_, err = s.GetByKey(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrAPIClientNotFound)
}

func TestObjectStore(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresObjectStore(db, nil)
	columns := []string{"ref_id", "title", "description", "owner", "create_date", "last_update", "import_id", "deleted"}
	created := time.Date(2015, 3, 1, 9, 30, 0, 0, time.UTC)
	updated := time.Date(2016, 4, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM object_reference r").
		WithArgs(int64(70)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(int64(70), "Algebra I", "Winter term", int64(6), created, updated, "imp-1", nil))
	mock.ExpectQuery("FROM object_reference r").
		WithArgs(int64(71)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(int64(71), "Old", "", int64(6), created, updated, "", updated))
	mock.ExpectQuery("FROM object_reference r").
		WithArgs(int64(72)).
		WillReturnError(sql.ErrNoRows)

	ctx := context.Background()
	obj, err := s.GetByRefID(ctx, 70)
	require.NoError(t, err)
	assert.Equal(t, &domain.ObjectMetadata{
		RefID:      70,
		Title:      "Algebra I",
		Desc:       "Winter term",
		Owner:      6,
		CreateDate: "2015-03-01 09:30:00",
		LastUpdate: "2016-04-02 10:00:00",
		ImportID:   "imp-1",
	}, obj)

	_, err = s.GetByRefID(ctx, 71)
	assert.ErrorIs(t, err, domain.ErrObjectInTrash)

	_, err = s.GetByRefID(ctx, 72)
	assert.ErrorIs(t, err, store.ErrObjectNotFound)
}

func eventRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"cal_id", "cat_id", "title", "description", "location", "starta", "enda", "fullday"})
}

func TestCalendarStoreUpcomingEvents(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresCalendarStore(db, "https://lms.example.org/", "default", nil)
	now := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	s.timeFunc = func() time.Time { return now }

	start := now.Add(24 * time.Hour)
	mock.ExpectQuery("FROM cal_entries e").
		WithArgs(int64(42), now).
		WillReturnRows(eventRows().AddRow(int64(1), int64(10), "Exam", "", "Room 3", start, start.Add(time.Hour), false))

	events, err := s.UpcomingEvents(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Exam", events[0].Title)
	assert.Equal(t, int64(10), events[0].CalendarID)
}

func TestCalendarStoreICalURL(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresCalendarStore(db, "https://lms.example.org/", "my client", nil)

	mock.ExpectQuery("SELECT hash FROM cal_auth_token").
		WithArgs(int64(42), icalSelectionAll).
		WillReturnRows(sqlmock.NewRows([]string{"hash"}).AddRow("abc123"))

	u, err := s.ICalURL(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "https://lms.example.org/calendar.php?client_id=my+client&token=abc123", u.URL)
	assert.Equal(t, int64(42), u.UserID)
}

func TestCalendarStoreICalURLCreatesToken(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresCalendarStore(db, "https://lms.example.org", "default", nil)

	mock.ExpectQuery("SELECT hash FROM cal_auth_token").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO cal_auth_token").
		WithArgs(int64(42), sqlmock.AnyArg(), icalSelectionAll).
		WillReturnResult(sqlmock.NewResult(0, 1))

	u, err := s.ICalURL(context.Background(), 42)
	require.NoError(t, err)
	assert.Regexp(t, `^https://lms\.example\.org/calendar\.php\?client_id=default&token=[0-9a-f]{32}$`, u.URL)
}

func TestCalendarStoreCalendars(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresCalendarStore(db, "", "", nil)
	columns := []string{"cat_id", "title", "color", "type", "obj_id"}

	mock.ExpectQuery("FROM cal_categories c").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(1), "Personal", "#fff", 1, int64(42)).
			AddRow(int64(2), "Course", "#000", 2, int64(300)))
	mock.ExpectQuery("AND c.cat_id IN \\(\\$2, \\$3\\)").
		WithArgs(int64(42), int64(1), int64(5)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(int64(1), "Personal", "#fff", 1, int64(42)))

	ctx := context.Background()
	all, err := s.Calendars(ctx, 42, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = s.Calendars(ctx, 42, []int64{1, 5})
	assert.ErrorIs(t, err, store.ErrCalendarNotFound)
}

func TestCalendarStoreEventsOfCalendars(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresCalendarStore(db, "", "", nil)
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM cal_categories c").
		WithArgs(int64(42), int64(2), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"cat_id", "title", "color", "type", "obj_id"}).
			AddRow(int64(1), "Personal", "", 1, int64(42)).
			AddRow(int64(2), "Shared", "", 2, int64(300)))
	mock.ExpectQuery("WHERE a.cat_id IN \\(\\$1, \\$2\\)").
		WithArgs(int64(2), int64(1)).
		WillReturnRows(eventRows().AddRow(int64(8), int64(1), "Lecture", "", "", start, start.Add(time.Hour), false))

	result, err := s.EventsOfCalendars(context.Background(), 42, []int64{2, 1})
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, int64(2), result[0].CalendarID)
	assert.Empty(t, result[0].Events)
	assert.NotNil(t, result[0].Events)
	assert.Equal(t, int64(1), result[1].CalendarID)
	assert.Equal(t, "Lecture", result[1].Events[0].Title)
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "$2, $3, $4", placeholders(2, 3))
	assert.Equal(t, "$1", placeholders(1, 1))
}
