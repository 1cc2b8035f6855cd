package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/lmsgate/internal/domain"
	"github.com/phrazzld/lmsgate/internal/platform/logger"
	"github.com/phrazzld/lmsgate/internal/store"
)

// PostgresAPIClientStore implements store.APIClientStore.
type PostgresAPIClientStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.APIClientStore = (*PostgresAPIClientStore)(nil)

// NewPostgresAPIClientStore creates an APIClientStore over db. logger may be nil.
func NewPostgresAPIClientStore(db store.DBTX, logger *slog.Logger) *PostgresAPIClientStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAPIClientStore{
		db:     db,
		logger: logger.With(slog.String("component", "api_client_store")),
	}
}

const selectAPIClient = `
	SELECT id, api_key, COALESCE(api_secret, ''), COALESCE(redirect_uri, ''),
	       COALESCE(consent_type, ''), permissions_enabled
	FROM rest_api_keys`

// GetByID implements store.APIClientStore.GetByID.
func (s *PostgresAPIClientStore) GetByID(ctx context.Context, id int64) (*domain.APIClient, error) {
	return s.get(ctx, selectAPIClient+` WHERE id = $1`, id)
}

// GetByKey implements store.APIClientStore.GetByKey.
func (s *PostgresAPIClientStore) GetByKey(ctx context.Context, apiKey string) (*domain.APIClient, error) {
	return s.get(ctx, selectAPIClient+` WHERE api_key = $1`, apiKey)
}

func (s *PostgresAPIClientStore) get(ctx context.Context, query string, arg any) (*domain.APIClient, error) {
	var c domain.APIClient
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&c.ID,
		&c.APIKey,
		&c.APISecretHash,
		&c.RedirectURI,
		&c.ConsentType,
		&c.PermissionsEnabled,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAPIClientNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load api client", "error", err)
		return nil, MapError(err)
	}
	return &c, nil
}
