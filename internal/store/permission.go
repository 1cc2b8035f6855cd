package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/lmsgate/internal/domain"
)

// Table names of the gateway schema.
const (
	PermissionsTable = "rest_permissions"
	APIClientsTable  = "rest_api_keys"
)

// PermissionStore defines persistence for route permission entries.
// Writes normalize the pattern to lowercase and the verb to uppercase.
type PermissionStore interface {
	// Create saves p and sets its ID.
	Create(ctx context.Context, p *domain.Permission) error

	// GetByID returns ErrPermissionNotFound if no entry has id.
	GetByID(ctx context.Context, id int64) (*domain.Permission, error)

	// Update replaces pattern, verb and api id of the entry with p.ID.
	Update(ctx context.Context, p *domain.Permission) error

	Delete(ctx context.Context, id int64) error

	// ListByAPIID returns all entries of one API client ordered by id.
	ListByAPIID(ctx context.Context, apiID int64) ([]domain.Permission, error)

	// FindForRequest returns the entries of apiID for verb. Pattern matching
	// against the request path is left to the caller.
	FindForRequest(ctx context.Context, apiID int64, verb string) ([]domain.Permission, error)

	// ReplaceForAPI atomically swaps all entries of apiID for perms.
	ReplaceForAPI(ctx context.Context, apiID int64, perms []domain.Permission) error

	// WithTx returns a store bound to tx.
	WithTx(tx *sql.Tx) PermissionStore
}

// JoinKey returns the column of the permissions table that references table.
// Permissions reference API clients through api_id; every other relation
// joins on the primary key.
func JoinKey(table string) string {
	if table == APIClientsTable {
		return "api_id"
	}
	return "id"
}
