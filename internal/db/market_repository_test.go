package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/gw2flip/internal/market"
	"github.com/udisondev/gw2flip/internal/model"
)

func sampleSnapshot() *market.Snapshot {
	return &market.Snapshot{
		FetchedAt: time.Now().UTC().Truncate(time.Microsecond),
		Items: []*model.Item{
			{ID: 1, Name: "Copper Ore", Sellable: true},
			{ID: 2, Name: "Copper Ingot", Sellable: true},
			{ID: 3, Name: "Reagent", VendorPrice: 150, Sellable: true},
			{ID: 4, Name: "Bound", Restricted: true},
		},
		Recipes: []*model.Recipe{
			{ID: 10, OutputItemID: 2, OutputQty: 1, Ingredients: []model.RecipeIngredient{
				{ItemID: 1, Qty: 2},
				{ItemID: 3, Qty: 1},
			}},
		},
		Books: []*model.OrderBook{
			{
				ItemID: 1,
				Sells:  []model.Listing{{UnitPrice: 5, Quantity: 100}, {UnitPrice: 6, Quantity: 10}},
				Buys:   []model.Listing{{UnitPrice: 3, Quantity: 50}},
			},
			{
				ItemID: 2,
				Buys:   []model.Listing{{UnitPrice: 20, Quantity: 30}},
			},
		},
	}
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()

	want := sampleSnapshot()
	require.NoError(t, d.SaveSnapshot(ctx, want))

	got, err := d.LoadSnapshot(ctx)
	require.NoError(t, err)

	assert.True(t, want.FetchedAt.Equal(got.FetchedAt))
	require.Len(t, got.Items, 4)
	assert.Equal(t, want.Items[2].VendorPrice, got.Items[2].VendorPrice)
	assert.True(t, got.Items[3].Restricted)

	require.Len(t, got.Recipes, 1)
	assert.Equal(t, want.Recipes[0].OutputItemID, got.Recipes[0].OutputItemID)
	require.Len(t, got.Recipes[0].Ingredients, 2)
	assert.ElementsMatch(t, want.Recipes[0].Ingredients, got.Recipes[0].Ingredients)

	require.Len(t, got.Books, 2)
	var ore *model.OrderBook
	for _, b := range got.Books {
		if b.ItemID == 1 {
			ore = b
		}
	}
	require.NotNil(t, ore)
	assert.Equal(t, want.Books[0].Sells, ore.Sells, "tier order preserved")
	assert.Equal(t, want.Books[0].Buys, ore.Buys)
}

func TestSaveSnapshotReplacesPrevious(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()

	require.NoError(t, d.SaveSnapshot(ctx, sampleSnapshot()))

	second := &market.Snapshot{
		FetchedAt: time.Now().UTC(),
		Items:     []*model.Item{{ID: 99, Name: "Lone", Sellable: true}},
	}
	require.NoError(t, d.SaveSnapshot(ctx, second))

	got, err := d.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int32(99), got.Items[0].ID)
	assert.Empty(t, got.Recipes)
	assert.Empty(t, got.Books)
}

func TestLoadSnapshotEmptyStore(t *testing.T) {
	d := testDB(t)

	_, err := d.LoadSnapshot(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}
