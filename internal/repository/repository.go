// Package repository provides the GORM-backed implementations of the
// repository interfaces consumed by the service layer. All lookups
// filter soft-deleted rows centrally here so callers never have to
// remember the is_active condition.
package repository

import (
	"errors"

	"gorm.io/gorm"

	"clinic-manager-server/internal/service"
)

// translate maps GORM errors to the sentinel errors the services
// branch on.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return service.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return service.ErrDuplicateKey
	}
	return err
}
