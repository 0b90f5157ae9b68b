package store

import (
	"context"
	"errors"

	"github.com/medipoint/medipointbackend/models"
)

var (
	ErrNotFound       = errors.New("identity not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// Query narrows a List call. Nil pointer fields mean "don't filter".
type Query struct {
	Name           string
	Specialization string
	Status         *bool
	Limit          int
	Skip           int
}

// IdentityStore is the credential store. Every mutation is a single-document
// operation; concurrent token mutations for the same identity resolve
// last-write-wins at the store, which is accepted.
type IdentityStore interface {
	Insert(ctx context.Context, role *models.Role, ident *models.Identity) error
	FindByID(ctx context.Context, role *models.Role, id string) (*models.Identity, error)
	FindByEmail(ctx context.Context, role *models.Role, email string) (*models.Identity, error)
	// FindByIDWithToken matches only when the token is still listed on the
	// identity, so a revoked session never resolves.
	FindByIDWithToken(ctx context.Context, role *models.Role, id, token string) (*models.Identity, error)
	FindByResetCode(ctx context.Context, role *models.Role, code string) (*models.Identity, error)
	List(ctx context.Context, role *models.Role, q Query) ([]models.Identity, error)
	Update(ctx context.Context, role *models.Role, id string, fields map[string]any) error
	AppendToken(ctx context.Context, role *models.Role, id, token string) error
	RemoveToken(ctx context.Context, role *models.Role, id, token string) error
	ClearTokens(ctx context.Context, role *models.Role, id string) error
	Delete(ctx context.Context, role *models.Role, id string) error
}
