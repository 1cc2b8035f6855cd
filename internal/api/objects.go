package api

import (
	"errors"
	"strconv"

	"github.com/phrazzld/lmsgate/internal/api/router"
	"github.com/phrazzld/lmsgate/internal/api/shared"
	"github.com/phrazzld/lmsgate/internal/domain"
	"github.com/phrazzld/lmsgate/internal/store"
)

// ObjectsHandler serves /v1/objects.
type ObjectsHandler struct {
	objects store.ObjectStore
}

// NewObjectsHandler creates an ObjectsHandler over objects.
func NewObjectsHandler(objects store.ObjectStore) *ObjectsHandler {
	return &ObjectsHandler{objects: objects}
}

// Get returns the metadata of the repository object at :ref_id.
func (h *ObjectsHandler) Get(c *router.Ctx) error {
	raw := c.Param("ref_id")
	refID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return shared.Wrap(shared.KindValidationFailed, "", "ref_id needs to be numeric.",
			errors.Join(domain.ErrNonNumericRefID, err))
	}

	obj, err := h.objects.GetByRefID(c.Context(), refID)
	switch {
	case errors.Is(err, domain.ErrObjectInTrash):
		return shared.NotFound("Object has been deleted.", err)
	case err != nil:
		return mapStoreError(err, "Object not found.",
			shared.New(shared.KindDomainOperationFailed, "", "Can't read object."))
	}
	return c.Success(obj)
}
