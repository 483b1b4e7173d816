package db_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-seating/internal/models"
)

func TestUpsertRowPricesOverwrites(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	first := []models.RowPrice{
		{EventID: "event1", RowName: "A", PriceCents: 10000},
		{EventID: "event1", RowName: "B", PriceCents: 8000},
	}
	require.NoError(t, d.UpsertRowPrices(ctx, first))

	// Re-running the assigner must replace, not accumulate.
	second := []models.RowPrice{
		{EventID: "event1", RowName: "A", PriceCents: 5000},
		{EventID: "event1", RowName: "B", PriceCents: 3000},
		{EventID: "event1", RowName: "C", PriceCents: 1000},
	}
	require.NoError(t, d.UpsertRowPrices(ctx, second))

	prices, err := d.PricesByEvent(ctx, "event1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"A": 5000, "B": 3000, "C": 1000}, prices)
}

func TestPricesByEventIsScopedToEvent(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, d.UpsertRowPrices(ctx, []models.RowPrice{
		{EventID: "event1", RowName: "A", PriceCents: 10000},
		{EventID: "event2", RowName: "A", PriceCents: 2000},
	}))

	prices, err := d.PricesByEvent(ctx, "event1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"A": 10000}, prices)

	empty, err := d.PricesByEvent(ctx, "event3")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
