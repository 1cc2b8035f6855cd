package shared

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validatedQuery struct {
	Verb string `validate:"required,oneof=GET POST PUT DELETE PATCH get post put delete patch"`
}

type selfValidating struct{ ok bool }

func (s selfValidating) Validate() error {
	if !s.ok {
		return MissingParameter("ok")
	}
	return nil
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(validatedQuery{Verb: "GET"}))
	assert.Error(t, ValidateRequest(validatedQuery{Verb: "TRACE"}))
	assert.Error(t, ValidateRequest(validatedQuery{}))

	assert.NoError(t, ValidateRequest(selfValidating{ok: true}))
	assert.Equal(t, KindValidationFailed, KindOf(ValidateRequest(selfValidating{})))
}

func TestParseIDList(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int64
		wantErr bool
	}{
		{name: "single", input: "10", want: []int64{10}},
		{name: "several", input: "1,2,3,10", want: []int64{1, 2, 3, 10}},
		{name: "whitespace", input: " 4 , 5", want: []int64{4, 5}},
		{name: "empty", input: "", wantErr: true},
		{name: "blank element", input: "1,,2", wantErr: true},
		{name: "non numeric", input: "1,abc", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ids, err := ParseIDList(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				e, ok := AsError(err)
				require.True(t, ok)
				assert.Equal(t, http.StatusUnprocessableEntity, e.HTTPStatus())
				assert.Equal(t, CodeIDParseProblem, e.RESTCode())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids)
		})
	}
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = ParseID("forty-two")
	assert.Equal(t, KindValidationFailed, KindOf(err))
}

func TestRequireQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/umr/calendar/events?calendarids=1,2", nil)
	value, err := RequireQuery(req, "calendarids")
	require.NoError(t, err)
	assert.Equal(t, "1,2", value)

	req = httptest.NewRequest(http.MethodGet, "/v1/umr/calendar/events", nil)
	_, err = RequireQuery(req, "calendarids")
	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, e.HTTPStatus())
	assert.Equal(t, CodeMissingParameter, e.RESTCode())
}
