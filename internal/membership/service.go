// internal/membership/service.go
package membership

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("user already exists")
)

// Repository defines the contract for the user registry.
type Repository interface {
	GetUserByID(ctx context.Context, id string) (*User, error)
	RegisterUser(ctx context.Context, id string, user *User) error
}
