// db/repo_inventory_test.go
package db

import (
	"context"
	"errors"
	"sync"
	"testing"

	"uniloans/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveUntilEmptyAndReleaseBack(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	it := seedItem(t, r, "Balon de futbol", 5)

	for i := 4; i >= 0; i-- {
		got, err := r.ReserveItem(ctx, it.ID)
		require.NoError(t, err)
		assert.Equal(t, i, got.AvailableQty)
	}

	_, err := r.ReserveItem(ctx, it.ID)
	assert.ErrorIs(t, err, ErrOutOfStock)

	for i := 1; i <= 5; i++ {
		got, err := r.ReleaseItem(ctx, it.ID)
		require.NoError(t, err)
		assert.Equal(t, i, got.AvailableQty)
	}
}

func TestReleaseBeyondTotalIsNotApplied(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	it := seedItem(t, r, "Cuerda", 2)

	_, err := r.ReleaseItem(ctx, it.ID)
	assert.ErrorIs(t, err, ErrInventoryInconsistency)

	got, err := r.FindItemByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AvailableQty)
	assert.Equal(t, 2, got.TotalQty)
}

func TestReserveUnknownOrInactiveItem(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	_, err := r.ReserveItem(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	it := seedItem(t, r, "Ajedrez", 3)
	_, err = r.SoftDeleteItem(ctx, it.ID)
	require.NoError(t, err)

	_, err = r.ReserveItem(ctx, it.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentReserveOfLastUnit(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	it := seedItem(t, r, "Tripode", 1)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.ReserveItem(ctx, it.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, outOfStock int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrOutOfStock):
			outOfStock++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, outOfStock)

	got, err := r.FindItemByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AvailableQty)
}

func TestSetQuantitiesValidation(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	it := seedItem(t, r, "Red de voleibol", 4)

	_, err := r.SetQuantities(ctx, it.ID, 4, 5)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = r.SetQuantities(ctx, it.ID, -1, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	got, err := r.SetQuantities(ctx, it.ID, 10, 7)
	require.NoError(t, err)
	assert.Equal(t, 10, got.TotalQty)
	assert.Equal(t, 7, got.AvailableQty)

	_, err = r.SetQuantities(ctx, uuid.NewString(), 1, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateItemValidation(t *testing.T) {
	r := newTestRepo(t)
	err := r.CreateItem(context.Background(), &models.Item{
		ID: uuid.NewString(), Name: "Roto", TotalQty: 1, AvailableQty: 2, Active: true,
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestSoftDeleteHidesFromLookupsButKeepsRow(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	it := seedItem(t, r, "Guantes", 2)

	_, err := r.SoftDeleteItem(ctx, it.ID)
	require.NoError(t, err)

	_, err = r.FindItemByName(ctx, "Guantes")
	assert.ErrorIs(t, err, ErrNotFound)

	// row survives for loan history
	got, err := r.FindItemByID(ctx, it.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	// second delete is a no-op conflict
	_, err = r.SoftDeleteItem(ctx, it.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAvailableItems(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	a := seedItem(t, r, "A", 1)
	seedItem(t, r, "B", 2)

	_, err := r.ReserveItem(ctx, a.ID)
	require.NoError(t, err)

	items, err := r.ListAvailableItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "B", items[0].Name)
}
