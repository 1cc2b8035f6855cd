package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/lmsgate/internal/platform/logger"
	"github.com/phrazzld/lmsgate/internal/store"
)

// DefaultAdminRoleID is the role id of the LMS's global administrator role.
const DefaultAdminRoleID int64 = 2

// PostgresUserDirectory implements store.UserDirectory over the LMS's
// usr_data and rbac_ua tables.
type PostgresUserDirectory struct {
	db          store.DBTX
	adminRoleID int64
	logger      *slog.Logger
}

var _ store.UserDirectory = (*PostgresUserDirectory)(nil)

// NewPostgresUserDirectory creates a directory that treats members of
// adminRoleID as administrators. A non-positive id selects DefaultAdminRoleID.
func NewPostgresUserDirectory(db store.DBTX, adminRoleID int64, logger *slog.Logger) *PostgresUserDirectory {
	if adminRoleID <= 0 {
		adminRoleID = DefaultAdminRoleID
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserDirectory{
		db:          db,
		adminRoleID: adminRoleID,
		logger:      logger.With(slog.String("component", "user_directory")),
	}
}

// LoginToUserID implements store.UserDirectory.LoginToUserID.
func (d *PostgresUserDirectory) LoginToUserID(ctx context.Context, login string) (int64, error) {
	var id int64
	err := d.db.QueryRowContext(ctx, `SELECT usr_id FROM usr_data WHERE login = $1`, login).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, store.ErrUserNotFound
		}
		logger.FromContextOrDefault(ctx, d.logger).Error("failed to resolve login", "error", err)
		return 0, MapError(err)
	}
	return id, nil
}

// IsAdminByUserID implements store.UserDirectory.IsAdminByUserID.
func (d *PostgresUserDirectory) IsAdminByUserID(ctx context.Context, userID int64) (bool, error) {
	var isAdmin bool
	err := d.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM rbac_ua WHERE usr_id = $1 AND rol_id = $2)`,
		userID, d.adminRoleID,
	).Scan(&isAdmin)
	if err != nil {
		logger.FromContextOrDefault(ctx, d.logger).Error("failed to check admin role",
			"error", err,
			"user_id", userID)
		return false, MapError(err)
	}
	return isAdmin, nil
}
