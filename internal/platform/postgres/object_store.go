package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/lmsgate/internal/domain"
	"github.com/phrazzld/lmsgate/internal/platform/logger"
	"github.com/phrazzld/lmsgate/internal/store"
)

// lmsDateLayout is how the LMS renders timestamps.
const lmsDateLayout = "2006-01-02 15:04:05"

// PostgresObjectStore implements store.ObjectStore.
type PostgresObjectStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.ObjectStore = (*PostgresObjectStore)(nil)

// NewPostgresObjectStore creates an ObjectStore over db. logger may be nil.
func NewPostgresObjectStore(db store.DBTX, logger *slog.Logger) *PostgresObjectStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresObjectStore{db: db, logger: logger.With(slog.String("component", "object_store"))}
}

// GetByRefID implements store.ObjectStore.GetByRefID.
func (s *PostgresObjectStore) GetByRefID(ctx context.Context, refID int64) (*domain.ObjectMetadata, error) {
	query := `
		SELECT r.ref_id, o.title, o.description, o.owner, o.create_date, o.last_update, o.import_id, r.deleted
		FROM object_reference r
		JOIN object_data o ON o.obj_id = r.obj_id
		WHERE r.ref_id = $1
	`

	var (
		obj        domain.ObjectMetadata
		created    time.Time
		lastUpdate time.Time
		deleted    sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, refID).Scan(
		&obj.RefID,
		&obj.Title,
		&obj.Desc,
		&obj.Owner,
		&created,
		&lastUpdate,
		&obj.ImportID,
		&deleted,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrObjectNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load object",
			"error", err,
			"ref_id", refID)
		return nil, MapError(err)
	}

	if deleted.Valid {
		return nil, domain.ErrObjectInTrash
	}

	obj.CreateDate = created.Format(lmsDateLayout)
	obj.LastUpdate = lastUpdate.Format(lmsDateLayout)
	return &obj, nil
}
