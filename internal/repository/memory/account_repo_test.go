package memory

import (
	"context"
	"testing"
	"time"

	"github.com/ecorecicla/greengo/internal/errs"
	"github.com/ecorecicla/greengo/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
)

func TestAccountRepo_CreateAndGet(t *testing.T) {
	t.Parallel()
	r := NewAccountRepo()
	ctx := context.Background()

	a := &model.Account{
		ID:        uuid.Must(uuid.NewV4()),
		Email:     "maria@example.com",
		PwdHash:   []byte("h"),
		Salt:      []byte("s"),
		CreatedAt: time.Now(),
	}
	require.NoError(t, r.Create(ctx, a))

	got, err := r.GetByEmail(ctx, "maria@example.com")
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)

	// lookup is case/space insensitive
	got, err = r.GetByEmail(ctx, "  Maria@Example.COM ")
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)

	got, err = r.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "maria@example.com", got.Email)
}

func TestAccountRepo_DuplicateAndMissing(t *testing.T) {
	t.Parallel()
	r := NewAccountRepo()
	ctx := context.Background()

	a := &model.Account{ID: uuid.Must(uuid.NewV4()), Email: "maria@example.com"}
	require.NoError(t, r.Create(ctx, a))

	dup := &model.Account{ID: uuid.Must(uuid.NewV4()), Email: "MARIA@example.com"}
	require.ErrorIs(t, r.Create(ctx, dup), errs.ErrAlreadyExists)

	_, err := r.GetByEmail(ctx, "nadie@example.com")
	require.ErrorIs(t, err, errs.ErrNotFound)

	_, err = r.GetByID(ctx, uuid.Must(uuid.NewV4()))
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestAccountRepo_ReturnsCopies(t *testing.T) {
	t.Parallel()
	r := NewAccountRepo()
	ctx := context.Background()

	a := &model.Account{ID: uuid.Must(uuid.NewV4()), Email: "x@y.z", PwdHash: []byte("h")}
	require.NoError(t, r.Create(ctx, a))

	got, err := r.GetByEmail(ctx, "x@y.z")
	require.NoError(t, err)
	got.Email = "mutated"

	again, err := r.GetByEmail(ctx, "x@y.z")
	require.NoError(t, err)
	require.Equal(t, "x@y.z", again.Email)
}
