package api

import (
	"fmt"
	"strings"

	"github.com/phrazzld/lmsgate/internal/api/router"
	"github.com/phrazzld/lmsgate/internal/api/shared"
	"github.com/phrazzld/lmsgate/internal/docs"
)

// DocsRouteQuery is the query of GET /v1/docs/route. A route without a
// leading slash is looked up as if it had one.
type DocsRouteQuery struct {
	Verb  string `validate:"required,oneof=GET POST PUT PATCH DELETE HEAD OPTIONS"`
	Route string `validate:"required"`
}

// DocsHandler serves /v1/docs from the documentation registry.
type DocsHandler struct {
	registry *docs.Registry
}

// NewDocsHandler creates a DocsHandler over registry.
func NewDocsHandler(registry *docs.Registry) *DocsHandler {
	return &DocsHandler{registry: registry}
}

// Route returns the documentation of one (verb, route) pair.
func (h *DocsHandler) Route(c *router.Ctx) error {
	verb, err := shared.RequireQuery(c.Request(), "verb")
	if err != nil {
		return err
	}
	route, err := shared.RequireQuery(c.Request(), "route")
	if err != nil {
		return err
	}

	q := DocsRouteQuery{Verb: strings.ToUpper(strings.TrimSpace(verb)), Route: strings.TrimSpace(route)}
	if err := shared.ValidateRequest(q); err != nil {
		return shared.Wrap(shared.KindValidationFailed, "", "Invalid documentation query.", err)
	}

	entries, err := h.registry.GetDocumentation(q.Route, q.Verb)
	if err != nil {
		return mapStoreError(err,
			fmt.Sprintf("No documentation found for route '%s %s'.", q.Verb, q.Route),
			shared.New(shared.KindDomainOperationFailed, "", shared.MsgInternal))
	}
	return c.Success(entries)
}

// Routes returns the whole catalog.
func (h *DocsHandler) Routes(c *router.Ctx) error {
	return c.Success(h.registry.GetCompleteAPIDocumentation())
}
