package app

import "github.com/simp-lee/userapi/internal/router"

// Module defines the contract for a self-registering business module.
// Each module registers its viewsets under its own route namespace.
type Module interface {
	AppName() string
	Register(r *router.Registrar) error
}
