package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookmarket/internal/domain"
)

func TestFavoriteOncePerBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.listedBook(t, "Keeper", 18)

	saved, err := f.favs.Add(ctx, f.buyer, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Keeper", saved.Book.Title)

	_, err = f.favs.Add(ctx, f.buyer, b.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 1, f.count(t, `SELECT COUNT(*) FROM favorites`))

	// someone else may save the same book
	_, err = f.favs.Add(ctx, f.other, b.ID)
	require.NoError(t, err)

	list, err := f.favs.List(ctx, f.buyer)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].Book.ID)

	_, err = f.favs.Get(ctx, f.other, saved.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.favs.Remove(ctx, f.other, saved.ID), domain.ErrNotFound)
	require.NoError(t, f.favs.Remove(ctx, f.buyer, saved.ID))
}

func TestCannotFavoriteHiddenBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hidden, err := f.catalog.CreateForSeller(ctx, f.seller, bookInput("Draft", 5))
	require.NoError(t, err)

	_, err = f.favs.Add(ctx, f.buyer, hidden.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.favs.Add(ctx, f.seller, hidden.ID)
	assert.NoError(t, err)
}
