package mocks

import (
	"context"
	"database/sql"
	"strings"

	"github.com/phrazzld/lmsgate/internal/domain"
	"github.com/phrazzld/lmsgate/internal/store"
)

// MockPermissionStore implements store.PermissionStore over an in-memory slice.
type MockPermissionStore struct {
	CreateFn         func(ctx context.Context, p *domain.Permission) error
	GetByIDFn        func(ctx context.Context, id int64) (*domain.Permission, error)
	UpdateFn         func(ctx context.Context, p *domain.Permission) error
	DeleteFn         func(ctx context.Context, id int64) error
	ListByAPIIDFn    func(ctx context.Context, apiID int64) ([]domain.Permission, error)
	FindForRequestFn func(ctx context.Context, apiID int64, verb string) ([]domain.Permission, error)
	ReplaceForAPIFn  func(ctx context.Context, apiID int64, perms []domain.Permission) error

	Permissions []domain.Permission
	FindErr     error
	nextID      int64
}

func (m *MockPermissionStore) Create(ctx context.Context, p *domain.Permission) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		return err
	}
	m.nextID++
	p.ID = m.nextID
	m.Permissions = append(m.Permissions, *p)
	return nil
}

func (m *MockPermissionStore) GetByID(ctx context.Context, id int64) (*domain.Permission, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	for _, p := range m.Permissions {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, store.ErrPermissionNotFound
}

func (m *MockPermissionStore) Update(ctx context.Context, p *domain.Permission) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, p)
	}
	p.Normalize()
	for i := range m.Permissions {
		if m.Permissions[i].ID == p.ID {
			m.Permissions[i] = *p
			return nil
		}
	}
	return store.ErrPermissionNotFound
}

func (m *MockPermissionStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	for i := range m.Permissions {
		if m.Permissions[i].ID == id {
			m.Permissions = append(m.Permissions[:i], m.Permissions[i+1:]...)
			return nil
		}
	}
	return store.ErrPermissionNotFound
}

func (m *MockPermissionStore) ListByAPIID(ctx context.Context, apiID int64) ([]domain.Permission, error) {
	if m.ListByAPIIDFn != nil {
		return m.ListByAPIIDFn(ctx, apiID)
	}
	var out []domain.Permission
	for _, p := range m.Permissions {
		if p.APIID == apiID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockPermissionStore) FindForRequest(ctx context.Context, apiID int64, verb string) ([]domain.Permission, error) {
	if m.FindForRequestFn != nil {
		return m.FindForRequestFn(ctx, apiID, verb)
	}
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	var out []domain.Permission
	for _, p := range m.Permissions {
		if p.APIID == apiID && strings.EqualFold(p.Verb, verb) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockPermissionStore) ReplaceForAPI(ctx context.Context, apiID int64, perms []domain.Permission) error {
	if m.ReplaceForAPIFn != nil {
		return m.ReplaceForAPIFn(ctx, apiID, perms)
	}
	kept := m.Permissions[:0]
	for _, p := range m.Permissions {
		if p.APIID != apiID {
			kept = append(kept, p)
		}
	}
	m.Permissions = kept
	for _, p := range perms {
		p.APIID = apiID
		if err := m.Create(ctx, &p); err != nil {
			return err
		}
	}
	return nil
}

// WithTx returns the mock itself.
func (m *MockPermissionStore) WithTx(_ *sql.Tx) store.PermissionStore {
	return m
}
