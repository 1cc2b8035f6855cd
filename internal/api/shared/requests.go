package shared

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ErrEmptyIDList is returned by ParseIDList for input without any ids.
var ErrEmptyIDList = errors.New("id list is empty")

// ValidateRequest validates v with its own Validate method when it has one,
// and with struct tags otherwise.
func ValidateRequest(v any) error {
	if validator, ok := v.(interface{ Validate() error }); ok {
		return validator.Validate()
	}
	return validate.Struct(v)
}

// ParseID parses a single numeric identifier.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, IDParseProblem(raw, err)
	}
	return id, nil
}

// ParseIDList parses a comma separated list of numeric ids such as "1,2,3".
// Whitespace around ids is ignored; an empty element is an error.
func ParseIDList(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, IDParseProblem(raw, ErrEmptyIDList)
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for i, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, IDParseProblem(raw, fmt.Errorf("element %d: %w", i, err))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// RequireQuery returns the named query parameter or a MissingParameter error.
func RequireQuery(r *http.Request, name string) (string, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return "", MissingParameter(name)
	}
	return value, nil
}
