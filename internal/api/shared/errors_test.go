package shared

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindDefaults(t *testing.T) {
	tests := []struct {
		kind   Kind
		status int
		name   string
	}{
		{KindRouteNotFound, http.StatusNotFound, "route_not_found"},
		{KindUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{KindForbidden, http.StatusUnauthorized, "forbidden"},
		{KindValidationFailed, http.StatusBadRequest, "validation_failed"},
		{KindDomainOperationFailed, http.StatusInternalServerError, "domain_operation_failed"},
		{KindUnhandledFault, http.StatusInternalServerError, "unhandled_fault"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, tc.kind.Status())
			assert.Equal(t, tc.name, tc.kind.String())
		})
	}

	assert.Equal(t, "kind(42)", Kind(42).String())
}

func TestErrorWrappingAndKind(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("load events: %w", DomainFailure("Error: Could not retrieve any events for user 7.", -15, cause))

	assert.Equal(t, KindDomainOperationFailed, KindOf(err))
	assert.ErrorIs(t, err, cause)

	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, e.HTTPStatus())
	assert.Equal(t, Envelope{
		Msg:  "Error: Could not retrieve any events for user 7.",
		Data: map[string]int{"code": -15},
		Code: "-15",
	}, e.Envelope())

	assert.Equal(t, KindUnknown, KindOf(cause))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    *Error
		status int
		code   string
	}{
		{"no route", ErrNoRoute(), http.StatusNotFound, CodeNoRoute},
		{"no admin", ErrNoAdmin(), http.StatusUnauthorized, CodeNoAdmin},
		{"no permission", ErrNoPermission(), http.StatusUnauthorized, CodeNoPermission},
		{"token missing", ErrTokenMissing(), http.StatusUnauthorized, CodeTokenMissing},
		{"token invalid", ErrTokenInvalid(nil), http.StatusUnauthorized, CodeTokenInvalid},
		{"token expired", ErrTokenExpired(nil), http.StatusUnauthorized, CodeTokenExpired},
		{"id parse", IDParseProblem("a,b", nil), http.StatusUnprocessableEntity, CodeIDParseProblem},
		{"missing parameter", MissingParameter("calendarids"), http.StatusBadRequest, CodeMissingParameter},
		{"not found", NotFound("nothing here", nil), http.StatusNotFound, CodeNotFound},
		{"unhandled", UnhandledFault(FaultDetail{}, nil), http.StatusInternalServerError, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, tc.err.HTTPStatus())
			assert.Equal(t, tc.code, tc.err.RESTCode())
		})
	}
}

func TestCreateFailedPlaceholders(t *testing.T) {
	err := CreateFailed("Client %id% is missing field '%fieldName%'.", "12", "api_key", nil)

	assert.Equal(t, "Client 12 is missing field 'api_key'.", err.Message)
	assert.Equal(t, CodeCreateFailed, err.RESTCode())
	assert.Equal(t, map[string]string{"id": "12", "field": "api_key"}, err.Data)
}

func TestWithStatusDoesNotMutate(t *testing.T) {
	base := ErrNoAdmin()
	forbidden := base.WithStatus(http.StatusForbidden)

	assert.Equal(t, http.StatusUnauthorized, base.HTTPStatus())
	assert.Equal(t, http.StatusForbidden, forbidden.HTTPStatus())
}

func TestErrorMessageDoesNotLeakIntoEnvelope(t *testing.T) {
	err := ErrTokenInvalid(errors.New("signature is invalid"))

	assert.Contains(t, err.Error(), "signature is invalid")
	assert.NotContains(t, err.Envelope().Msg, "signature")
}
