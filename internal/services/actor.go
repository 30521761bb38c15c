package services

import (
	"errors"

	"github.com/konstanta-tech/tracker/internal/permission"
	"github.com/konstanta-tech/tracker/pkg/response"
	"gorm.io/gorm"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   uint
	Role string
}

// IsAdmin reports whether the actor holds the administrator role.
func (a Actor) IsAdmin() bool {
	return a.Role == permission.Admin
}

// Can reports whether the actor's role grants p.
func (a Actor) Can(p permission.Permission) bool {
	return permission.Has(a.Role, p)
}

// notFoundOr maps gorm's missing-record error to a 404 AppError and passes
// every other error through.
func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NewNotFound(msg)
	}
	return err
}
