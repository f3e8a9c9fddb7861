package user

import "github.com/simp-lee/userapi/internal/router"

// AppName is the namespace under which user route names are registered,
// e.g. "users:users-list".
const AppName = "users"

const (
	prefix   = "users"
	basename = "users"
)

// UserModule declares the user resource routes.
type UserModule struct {
	viewset *UserViewSet
}

// NewModule creates a new UserModule with the given viewset.
// Panics if vs is nil.
func NewModule(vs *UserViewSet) *UserModule {
	if vs == nil {
		panic("user.NewModule: viewset must not be nil")
	}
	return &UserModule{viewset: vs}
}

// AppName returns the route namespace of the module.
func (m *UserModule) AppName() string {
	return AppName
}

// Register binds the "users" prefix to the user viewset.
func (m *UserModule) Register(r *router.Registrar) error {
	return r.Register(prefix, m.viewset, basename)
}
