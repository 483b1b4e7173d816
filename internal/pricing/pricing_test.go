package pricing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-seating/internal/models"
	"ms-seating/internal/pricing"
)

type recordingStore struct {
	written []models.RowPrice
	err     error
}

func (r *recordingStore) UpsertRowPrices(_ context.Context, prices []models.RowPrice) error {
	if r.err != nil {
		return r.err
	}
	r.written = prices
	return nil
}

func TestAssignDecrementsPerRow(t *testing.T) {
	store := &recordingStore{}
	a := pricing.NewAssigner(store)

	prices, err := a.Assign(context.Background(), "event1", 100, []string{"A", "B", "C", "D", "E"}, 0)
	require.NoError(t, err)

	want := []int64{10000, 8000, 6000, 4000, 2000}
	require.Len(t, prices, 5)
	for i, p := range prices {
		assert.Equal(t, "event1", p.EventID)
		assert.Equal(t, want[i], p.PriceCents, "row %s", p.RowName)
	}
	assert.Equal(t, prices, store.written)
}

func TestAssignClampsAtZero(t *testing.T) {
	store := &recordingStore{}
	a := pricing.NewAssigner(store)

	rows := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	prices, err := a.Assign(context.Background(), "event1", 100, rows, 0)
	require.NoError(t, err)

	// Rows F, G, H would price below zero with the default decrement.
	assert.Equal(t, int64(0), prices[5].PriceCents)
	assert.Equal(t, int64(0), prices[6].PriceCents)
	assert.Equal(t, int64(0), prices[7].PriceCents)

	// Monotonically non-increasing front to back.
	for i := 1; i < len(prices); i++ {
		assert.LessOrEqual(t, prices[i].PriceCents, prices[i-1].PriceCents)
	}
}

func TestAssignCustomDecrement(t *testing.T) {
	store := &recordingStore{}
	a := pricing.NewAssigner(store)

	prices, err := a.Assign(context.Background(), "event1", 50, []string{"A", "B"}, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), prices[0].PriceCents)
	assert.Equal(t, int64(4500), prices[1].PriceCents)
}

func TestAssignValidation(t *testing.T) {
	a := pricing.NewAssigner(&recordingStore{})
	ctx := context.Background()

	_, err := a.Assign(ctx, "", 100, []string{"A"}, 0)
	assert.Error(t, err)

	_, err = a.Assign(ctx, "event1", 0, []string{"A"}, 0)
	assert.Error(t, err)

	_, err = a.Assign(ctx, "event1", 100, nil, 0)
	assert.Error(t, err)
}
