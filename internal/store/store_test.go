package store_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/phrazzld/lmsgate/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestJoinKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "api_id", store.JoinKey(store.APIClientsTable))
	assert.Equal(t, "id", store.JoinKey(store.PermissionsTable))
	assert.Equal(t, "id", store.JoinKey("usr_data"))
}

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"generic", errors.New("some error"), false},
		{"base", store.ErrNotFound, true},
		{"permission", store.ErrPermissionNotFound, true},
		{"wrapped object", fmt.Errorf("lookup: %w", store.ErrObjectNotFound), true},
		{"duplicate", store.ErrDuplicate, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, store.IsNotFoundError(tc.err))
		})
	}
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	err := store.NewStoreError("permission", "create", "insert failed", store.ErrDuplicate)
	assert.Equal(t, "create operation on permission failed: insert failed: entity already exists", err.Error())
	assert.ErrorIs(t, err, store.ErrDuplicate)

	bare := store.NewStoreError("api client", "get", "lookup failed", nil)
	assert.Equal(t, "get operation on api client failed: lookup failed", bare.Error())
}
