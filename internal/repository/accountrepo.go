// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/ecorecicla/greengo/internal/model"
	"github.com/gofrs/uuid/v5"
)

// AccountRepository provides access to provisioned user accounts.
// The shipped implementation is in-memory; a real backend would plug in here.
type AccountRepository interface {
	// Create inserts a new account.
	Create(ctx context.Context, a *model.Account) error
	// GetByID loads an account by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error)
	// GetByEmail loads an account by email.
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
}
