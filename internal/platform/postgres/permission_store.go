package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/lmsgate/internal/domain"
	"github.com/phrazzld/lmsgate/internal/platform/logger"
	"github.com/phrazzld/lmsgate/internal/store"
)

// PostgresPermissionStore implements store.PermissionStore.
type PostgresPermissionStore struct {
	db     store.DBTX
	conn   *sql.DB // nil when bound to a transaction
	logger *slog.Logger
}

var _ store.PermissionStore = (*PostgresPermissionStore)(nil)

// NewPostgresPermissionStore creates a permission store. If logger is nil,
// slog.Default is used.
func NewPostgresPermissionStore(db *sql.DB, logger *slog.Logger) *PostgresPermissionStore {
	if db == nil {
		// ALLOW-PANIC: constructor misuse
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPermissionStore{
		db:     db,
		conn:   db,
		logger: logger.With(slog.String("component", "permission_store")),
	}
}

// WithTx implements store.PermissionStore.WithTx.
func (s *PostgresPermissionStore) WithTx(tx *sql.Tx) store.PermissionStore {
	return &PostgresPermissionStore{db: tx, logger: s.logger}
}

// selectPermissions joins each entry to its owning API client.
var selectPermissions = fmt.Sprintf(`
	SELECT p.id, p.api_id, p.pattern, p.verb
	FROM %s p
	JOIN %s k ON k.id = p.%s`,
	store.PermissionsTable, store.APIClientsTable, store.JoinKey(store.APIClientsTable))

func prepareForWrite(p *domain.Permission) error {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	return nil
}

// Create implements store.PermissionStore.Create.
func (s *PostgresPermissionStore) Create(ctx context.Context, p *domain.Permission) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := prepareForWrite(p); err != nil {
		log.Warn("permission validation failed during create", "error", err)
		return err
	}

	query := `
		INSERT INTO rest_permissions (api_id, pattern, verb)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	if err := s.db.QueryRowContext(ctx, query, p.APIID, p.Pattern, p.Verb).Scan(&p.ID); err != nil {
		log.Error("failed to create permission",
			"error", err,
			"api_id", p.APIID,
			"pattern", p.Pattern,
			"verb", p.Verb)
		return MapError(err)
	}

	log.Info("permission created", "permission_id", p.ID, "api_id", p.APIID)
	return nil
}

// GetByID implements store.PermissionStore.GetByID.
func (s *PostgresPermissionStore) GetByID(ctx context.Context, id int64) (*domain.Permission, error) {
	var p domain.Permission
	err := s.db.QueryRowContext(ctx, selectPermissions+` WHERE p.id = $1`, id).
		Scan(&p.ID, &p.APIID, &p.Pattern, &p.Verb)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPermissionNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get permission",
			"error", err,
			"permission_id", id)
		return nil, MapError(err)
	}
	return &p, nil
}

// Update implements store.PermissionStore.Update.
func (s *PostgresPermissionStore) Update(ctx context.Context, p *domain.Permission) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := prepareForWrite(p); err != nil {
		log.Warn("permission validation failed during update", "error", err, "permission_id", p.ID)
		return err
	}

	query := `
		UPDATE rest_permissions
		SET api_id = $1, pattern = $2, verb = $3
		WHERE id = $4
	`
	result, err := s.db.ExecContext(ctx, query, p.APIID, p.Pattern, p.Verb, p.ID)
	if err != nil {
		log.Error("failed to update permission", "error", err, "permission_id", p.ID)
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrPermissionNotFound)
}

// Delete implements store.PermissionStore.Delete.
func (s *PostgresPermissionStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM rest_permissions WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete permission",
			"error", err,
			"permission_id", id)
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrPermissionNotFound)
}

// ListByAPIID implements store.PermissionStore.ListByAPIID.
func (s *PostgresPermissionStore) ListByAPIID(ctx context.Context, apiID int64) ([]domain.Permission, error) {
	return s.query(ctx, selectPermissions+` WHERE p.api_id = $1 ORDER BY p.id`, apiID)
}

// FindForRequest implements store.PermissionStore.FindForRequest.
func (s *PostgresPermissionStore) FindForRequest(
	ctx context.Context,
	apiID int64,
	verb string,
) ([]domain.Permission, error) {
	return s.query(ctx,
		selectPermissions+` WHERE p.api_id = $1 AND p.verb = upper($2) ORDER BY p.id`,
		apiID, verb)
}

// ReplaceForAPI implements store.PermissionStore.ReplaceForAPI.
func (s *PostgresPermissionStore) ReplaceForAPI(
	ctx context.Context,
	apiID int64,
	perms []domain.Permission,
) error {
	replace := func(ctx context.Context, tx store.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM rest_permissions WHERE api_id = $1`, apiID); err != nil {
			return MapError(err)
		}
		for i := range perms {
			p := perms[i]
			p.APIID = apiID
			if err := prepareForWrite(&p); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO rest_permissions (api_id, pattern, verb) VALUES ($1, $2, $3)`,
				p.APIID, p.Pattern, p.Verb); err != nil {
				return MapError(err)
			}
		}
		return nil
	}

	if s.conn == nil {
		return replace(ctx, s.db)
	}

	err := store.RunInTransaction(ctx, s.conn, func(ctx context.Context, tx *sql.Tx) error {
		return replace(ctx, tx)
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to replace permissions",
			"error", err,
			"api_id", apiID,
			"count", len(perms))
		return err
	}
	return nil
}

func (s *PostgresPermissionStore) query(ctx context.Context, query string, args ...any) ([]domain.Permission, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query permissions", "error", err)
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var perms []domain.Permission
	for rows.Next() {
		var p domain.Permission
		if err := rows.Scan(&p.ID, &p.APIID, &p.Pattern, &p.Verb); err != nil {
			return nil, MapError(err)
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return perms, nil
}
