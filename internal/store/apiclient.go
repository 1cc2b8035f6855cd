package store

import (
	"context"

	"github.com/phrazzld/lmsgate/internal/domain"
)

// APIClientStore reads registered API clients.
type APIClientStore interface {
	// GetByID returns ErrAPIClientNotFound if no client has id.
	GetByID(ctx context.Context, id int64) (*domain.APIClient, error)

	// GetByKey returns ErrAPIClientNotFound if no client uses apiKey.
	GetByKey(ctx context.Context, apiKey string) (*domain.APIClient, error)
}
