package workflow

import (
	"errors"
	"fmt"

	"github.com/kosta-developer/DEVELOPER-Back/internal/store"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrAuthRequired     = errors.New("login required")
	ErrValidation       = errors.New("validation failed")
	ErrDuplicate        = errors.New("already exists")
)

// fromStore maps repository errors onto the workflow taxonomy.
func fromStore(err error, what string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	case errors.Is(err, store.ErrConflict):
		return fmt.Errorf("%s: %w", what, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", what, err)
}
