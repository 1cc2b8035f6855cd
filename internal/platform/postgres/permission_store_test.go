package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/lmsgate/internal/domain"
	"github.com/phrazzld/lmsgate/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPermissionStore(t *testing.T) (*PostgresPermissionStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgresPermissionStore(db, nil), mock
}

func permissionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "api_id", "pattern", "verb"})
}

func TestPermissionStoreCreateNormalizes(t *testing.T) {
	s, mock := newMockPermissionStore(t)

	mock.ExpectQuery("INSERT INTO rest_permissions").
		WithArgs(int64(7), "/cal/events", "GET").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	p := domain.NormalizePermission("7", "/Cal/Events", "get")
	require.NoError(t, s.Create(context.Background(), &p))

	assert.Equal(t, domain.Permission{ID: 11, APIID: 7, Pattern: "/cal/events", Verb: "GET"}, p)
}

func TestPermissionStoreCreateRejectsInvalid(t *testing.T) {
	s, _ := newMockPermissionStore(t)

	err := s.Create(context.Background(), &domain.Permission{APIID: 1, Pattern: "/x", Verb: "FETCH"})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.ErrorIs(t, err, domain.ErrInvalidVerb)
}

func TestPermissionStoreCreateDuplicate(t *testing.T) {
	s, mock := newMockPermissionStore(t)

	mock.ExpectQuery("INSERT INTO rest_permissions").
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})

	err := s.Create(context.Background(), &domain.Permission{APIID: 1, Pattern: "/x", Verb: "GET"})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestPermissionStoreGetByID(t *testing.T) {
	s, mock := newMockPermissionStore(t)

	mock.ExpectQuery("FROM rest_permissions p\\s+JOIN rest_api_keys k ON k.id = p.api_id").
		WithArgs(int64(3)).
		WillReturnRows(permissionRows().AddRow(int64(3), int64(7), "/v1/cal/events", "GET"))
	mock.ExpectQuery("FROM rest_permissions").
		WithArgs(int64(4)).
		WillReturnError(sql.ErrNoRows)

	p, err := s.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, &domain.Permission{ID: 3, APIID: 7, Pattern: "/v1/cal/events", Verb: "GET"}, p)

	_, err = s.GetByID(context.Background(), 4)
	assert.ErrorIs(t, err, store.ErrPermissionNotFound)
}

func TestPermissionStoreUpdateAndDelete(t *testing.T) {
	s, mock := newMockPermissionStore(t)

	mock.ExpectExec("UPDATE rest_permissions").
		WithArgs(int64(7), "/v1/objects/:ref_id", "GET", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE rest_permissions").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM rest_permissions WHERE id").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM rest_permissions WHERE id").
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	require.NoError(t, s.Update(ctx, &domain.Permission{ID: 3, APIID: 7, Pattern: "/V1/Objects/:ref_id", Verb: "get"}))
	assert.ErrorIs(t, s.Update(ctx, &domain.Permission{ID: 99, APIID: 7, Pattern: "/x", Verb: "GET"}), store.ErrPermissionNotFound)
	require.NoError(t, s.Delete(ctx, 3))
	assert.ErrorIs(t, s.Delete(ctx, 9), store.ErrPermissionNotFound)
}

func TestPermissionStoreFindForRequest(t *testing.T) {
	s, mock := newMockPermissionStore(t)

	mock.ExpectQuery("WHERE p.api_id = \\$1 AND p.verb = upper\\(\\$2\\)").
		WithArgs(int64(7), "get").
		WillReturnRows(permissionRows().
			AddRow(int64(1), int64(7), "/v1/cal/events", "GET").
			AddRow(int64(2), int64(7), "/v1/cal/events/:id", "GET"))

	perms, err := s.FindForRequest(context.Background(), 7, "get")
	require.NoError(t, err)
	assert.Len(t, perms, 2)
	assert.Equal(t, "/v1/cal/events/:id", perms[1].Pattern)
}

func TestPermissionStoreListByAPIIDEmpty(t *testing.T) {
	s, mock := newMockPermissionStore(t)

	mock.ExpectQuery("WHERE p.api_id = \\$1 ORDER BY p.id").
		WithArgs(int64(5)).
		WillReturnRows(permissionRows())

	perms, err := s.ListByAPIID(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestPermissionStoreReplaceForAPI(t *testing.T) {
	s, mock := newMockPermissionStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM rest_permissions WHERE api_id").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO rest_permissions").
		WithArgs(int64(7), "/v1/cal/events", "GET").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO rest_permissions").
		WithArgs(int64(7), "/v1/docs/routes", "GET").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := s.ReplaceForAPI(context.Background(), 7, []domain.Permission{
		{APIID: 99, Pattern: "/V1/Cal/Events", Verb: "get"},
		{Pattern: "/v1/docs/routes", Verb: "GET"},
	})
	require.NoError(t, err)
}

func TestPermissionStoreReplaceForAPIRollsBack(t *testing.T) {
	s, mock := newMockPermissionStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM rest_permissions WHERE api_id").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO rest_permissions").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := s.ReplaceForAPI(context.Background(), 7, []domain.Permission{
		{Pattern: "/v1/cal/events", Verb: "GET"},
	})
	assert.Error(t, err)
}

func TestPermissionStoreWithTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM rest_permissions WHERE api_id").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)

	txStore := NewPostgresPermissionStore(db, nil).WithTx(tx)
	require.NoError(t, txStore.ReplaceForAPI(context.Background(), 7, nil))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
