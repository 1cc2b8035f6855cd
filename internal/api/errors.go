package api

import (
	"errors"

	"github.com/phrazzld/lmsgate/internal/api/shared"
	"github.com/phrazzld/lmsgate/internal/docs"
	"github.com/phrazzld/lmsgate/internal/domain"
	"github.com/phrazzld/lmsgate/internal/store"
)

// mapStoreError classifies a collaborator failure. Lookups that found
// nothing become 404 with message notFound; everything else becomes
// fallback so internal details never reach the client.
func mapStoreError(err error, notFound string, fallback *shared.Error) error {
	switch {
	case err == nil:
		return nil
	case store.IsNotFoundError(err),
		errors.Is(err, domain.ErrObjectInTrash),
		errors.Is(err, docs.ErrNotFound):
		return shared.NotFound(notFound, err)
	case errors.Is(err, domain.ErrValidation):
		return shared.Wrap(shared.KindValidationFailed, "", err.Error(), err)
	default:
		fallback.Err = err
		return fallback
	}
}
