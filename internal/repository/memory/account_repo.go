// Package memory implements repositories backed by process memory.
// Persistence is out of scope for this app; everything resets on restart.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/ecorecicla/greengo/internal/errs"
	"github.com/ecorecicla/greengo/internal/model"
	"github.com/gofrs/uuid/v5"
)

// AccountRepo stores accounts keyed by lowercased email.
type AccountRepo struct {
	mu      sync.RWMutex
	byEmail map[string]*model.Account
}

// NewAccountRepo constructs an empty in-memory account store.
func NewAccountRepo() *AccountRepo {
	return &AccountRepo{byEmail: make(map[string]*model.Account)}
}

// Create inserts a new account. Returns errs.ErrAlreadyExists on a taken email.
func (r *AccountRepo) Create(_ context.Context, a *model.Account) error {
	key := normalize(a.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[key]; ok {
		return errs.ErrAlreadyExists
	}
	cpy := *a
	r.byEmail[key] = &cpy
	return nil
}

// GetByID loads an account by ID.
func (r *AccountRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.byEmail {
		if a.ID == id {
			cpy := *a
			return &cpy, nil
		}
	}
	return nil, errs.ErrNotFound
}

// GetByEmail loads an account by email, case-insensitively.
func (r *AccountRepo) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byEmail[normalize(email)]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cpy := *a
	return &cpy, nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
