package craft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/gw2flip/internal/model"
)

// Test fixture helpers shared by the package tests.

func testItem(id int32, name string, opts ...func(*model.Item)) *model.Item {
	it := &model.Item{ID: id, Name: name, Sellable: true}
	for _, opt := range opts {
		opt(it)
	}
	return it
}

func notSellable(it *model.Item) { it.Sellable = false }
func restricted(it *model.Item)  { it.Restricted = true }

func vendor(p model.Money) func(*model.Item) {
	return func(it *model.Item) { it.VendorPrice = p }
}

func testRecipe(id, output int32, outQty int64, ings ...model.RecipeIngredient) *model.Recipe {
	return &model.Recipe{ID: id, OutputItemID: output, OutputQty: outQty, Ingredients: ings}
}

func ing(itemID int32, qty int64) model.RecipeIngredient {
	return model.RecipeIngredient{ItemID: itemID, Qty: qty}
}

func sellTiers(itemID int32, tiers ...model.Listing) *model.OrderBook {
	return &model.OrderBook{ItemID: itemID, Sells: tiers}
}

func tier(price model.Money, qty int64) model.Listing {
	return model.Listing{UnitPrice: price, Quantity: qty}
}

func TestGraphLookups(t *testing.T) {
	t.Parallel()

	g := NewGraph(
		[]*model.Item{testItem(1, "Ore"), testItem(2, "Ingot")},
		[]*model.Recipe{
			testRecipe(20, 2, 1, ing(1, 2)),
			testRecipe(10, 2, 1, ing(1, 3)),
		},
		[]*model.OrderBook{sellTiers(1, tier(5, 100))},
	)

	_, ok := g.Item(1)
	assert.True(t, ok)
	_, ok = g.Item(99)
	assert.False(t, ok, "absent id is a lookup miss, not an error")

	assert.Empty(t, g.RecipesFor(1), "raw material has no recipes")

	recipes := g.RecipesFor(2)
	require.Len(t, recipes, 2)
	assert.Equal(t, int32(10), recipes[0].ID, "recipes ordered by id")
	assert.Equal(t, int32(20), recipes[1].ID)

	assert.Equal(t, []int32{1, 2}, g.ItemIDs())
	assert.Nil(t, g.OrderBook(2), "no trading post presence")
}

func TestRecipeUsesFor(t *testing.T) {
	t.Parallel()

	r := testRecipe(1, 2, 5, ing(1, 1))
	assert.Equal(t, int64(0), r.UsesFor(0))
	assert.Equal(t, int64(1), r.UsesFor(1))
	assert.Equal(t, int64(1), r.UsesFor(5))
	assert.Equal(t, int64(2), r.UsesFor(6), "surplus accepted, uses never split")
}
