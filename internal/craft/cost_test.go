package craft

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/gw2flip/internal/model"
)

func newResolver(items []*model.Item, recipes []*model.Recipe, books []*model.OrderBook) *Resolver {
	g := NewGraph(items, recipes, books)
	return NewResolver(g, NewSimulator(g))
}

func TestUnitCostUnavailable(t *testing.T) {
	t.Parallel()

	// No recipe, no vendor price, not sellable: a dead end, not an error.
	r := newResolver([]*model.Item{testItem(1, "Husk", notSellable)}, nil, nil)

	c := r.UnitCost(1)
	assert.False(t, c.Available())
	assert.Equal(t, SourceUnavailable, c.Source)
}

func TestUnitCostBuyBeatsCraft(t *testing.T) {
	t.Parallel()

	// Craft cost = 2x3 + 1x5 = 11, market offer 9: buying wins.
	r := newResolver(
		[]*model.Item{testItem(1, "A"), testItem(2, "B"), testItem(3, "C")},
		[]*model.Recipe{testRecipe(100, 3, 1, ing(1, 2), ing(2, 1))},
		[]*model.OrderBook{
			sellTiers(1, tier(3, 100)),
			sellTiers(2, tier(5, 100)),
			sellTiers(3, tier(9, 100)),
		},
	)

	c := r.UnitCost(3)
	require.True(t, c.Available())
	assert.Equal(t, SourceBuy, c.Source)
	assert.Equal(t, model.Money(9), c.Unit)
}

func TestUnitCostCraftBeatsBuy(t *testing.T) {
	t.Parallel()

	r := newResolver(
		[]*model.Item{testItem(1, "A"), testItem(2, "B"), testItem(3, "C")},
		[]*model.Recipe{testRecipe(100, 3, 1, ing(1, 2), ing(2, 1))},
		[]*model.OrderBook{
			sellTiers(1, tier(3, 100)),
			sellTiers(2, tier(5, 100)),
			sellTiers(3, tier(12, 100)),
		},
	)

	c := r.UnitCost(3)
	require.True(t, c.Available())
	assert.Equal(t, SourceCraft, c.Source)
	assert.Equal(t, model.Money(11), c.Unit)
	assert.Equal(t, int32(100), c.RecipeID)
}

func TestUnitCostCraftDivisionRoundsUp(t *testing.T) {
	t.Parallel()

	// Total ingredient cost 11 over 2 outputs: unit cost 6, never 5.
	r := newResolver(
		[]*model.Item{testItem(1, "A"), testItem(3, "C")},
		[]*model.Recipe{testRecipe(100, 3, 2, ing(1, 11))},
		[]*model.OrderBook{sellTiers(1, tier(1, 100))},
	)

	c := r.UnitCost(3)
	require.True(t, c.Available())
	assert.Equal(t, model.Money(6), c.Unit)
}

func TestUnitCostBuyWinsTies(t *testing.T) {
	t.Parallel()

	// Buy, craft and vendor all cost 10: tie order Buy > Craft > Vendor.
	r := newResolver(
		[]*model.Item{testItem(1, "A"), testItem(3, "C", vendor(10))},
		[]*model.Recipe{testRecipe(100, 3, 1, ing(1, 1))},
		[]*model.OrderBook{
			sellTiers(1, tier(10, 100)),
			sellTiers(3, tier(10, 100)),
		},
	)

	c := r.UnitCost(3)
	assert.Equal(t, SourceBuy, c.Source)
	assert.Equal(t, model.Money(10), c.Unit)
}

func TestUnitCostCraftWinsTieOverVendor(t *testing.T) {
	t.Parallel()

	r := newResolver(
		[]*model.Item{testItem(1, "A"), testItem(3, "C", vendor(10))},
		[]*model.Recipe{testRecipe(100, 3, 1, ing(1, 1))},
		[]*model.OrderBook{sellTiers(1, tier(10, 100))},
	)

	c := r.UnitCost(3)
	assert.Equal(t, SourceCraft, c.Source)
	assert.Equal(t, model.Money(10), c.Unit)
}

func TestUnitCostEqualRecipesLowestIDWins(t *testing.T) {
	t.Parallel()

	r := newResolver(
		[]*model.Item{testItem(1, "A"), testItem(2, "B"), testItem(3, "C")},
		[]*model.Recipe{
			testRecipe(200, 3, 1, ing(2, 1)),
			testRecipe(100, 3, 1, ing(1, 1)),
		},
		[]*model.OrderBook{
			sellTiers(1, tier(7, 100)),
			sellTiers(2, tier(7, 100)),
		},
	)

	c := r.UnitCost(3)
	require.Equal(t, SourceCraft, c.Source)
	assert.Equal(t, int32(100), c.RecipeID)
}

func TestUnitCostSelfCycleTerminates(t *testing.T) {
	t.Parallel()

	// X's only recipe requires X itself: the craft candidate is suppressed
	// and X resolves through the market alone.
	r := newResolver(
		[]*model.Item{testItem(1, "X")},
		[]*model.Recipe{testRecipe(100, 1, 1, ing(1, 2))},
		[]*model.OrderBook{sellTiers(1, tier(4, 100))},
	)

	c := r.UnitCost(1)
	require.True(t, c.Available())
	assert.Equal(t, SourceBuy, c.Source)
	assert.Equal(t, model.Money(4), c.Unit)
}

func TestUnitCostMutualCycleTerminates(t *testing.T) {
	t.Parallel()

	// A <- B <- A. Both sides also purchasable; resolution must terminate
	// and give each item its standalone answer.
	items := []*model.Item{testItem(1, "A"), testItem(2, "B")}
	recipes := []*model.Recipe{
		testRecipe(100, 1, 1, ing(2, 1)),
		testRecipe(200, 2, 1, ing(1, 1)),
	}
	books := []*model.OrderBook{
		sellTiers(1, tier(10, 100)),
		sellTiers(2, tier(3, 100)),
	}

	r := newResolver(items, recipes, books)
	a := r.UnitCost(1)
	require.True(t, a.Available())
	assert.Equal(t, SourceCraft, a.Source, "crafting A from bought B is cheaper")
	assert.Equal(t, model.Money(3), a.Unit)

	b := r.UnitCost(2)
	assert.Equal(t, SourceBuy, b.Source)
	assert.Equal(t, model.Money(3), b.Unit)

	// Resolution order must not change the answers.
	r2 := newResolver(items, recipes, books)
	b2 := r2.UnitCost(2)
	a2 := r2.UnitCost(1)
	assert.Equal(t, a, a2)
	assert.Equal(t, b, b2)
}

func TestUnitCostUnavailableIngredientKillsRecipe(t *testing.T) {
	t.Parallel()

	r := newResolver(
		[]*model.Item{testItem(1, "A", notSellable), testItem(3, "C")},
		[]*model.Recipe{testRecipe(100, 3, 1, ing(1, 1))},
		nil,
	)

	c := r.UnitCost(3)
	assert.False(t, c.Available())
}

func TestUnitCostConcurrentRequestsAgree(t *testing.T) {
	t.Parallel()

	r := newResolver(
		[]*model.Item{testItem(1, "A"), testItem(2, "B"), testItem(3, "C")},
		[]*model.Recipe{
			testRecipe(100, 3, 1, ing(1, 2), ing(2, 1)),
			testRecipe(200, 2, 1, ing(1, 3)),
		},
		[]*model.OrderBook{
			sellTiers(1, tier(3, 100)),
			sellTiers(2, tier(20, 100)),
			sellTiers(3, tier(50, 100)),
		},
	)

	want := Cost{Source: SourceCraft, Unit: 15, RecipeID: 100} // 2x3 + min(20, 3x3)

	var wg sync.WaitGroup
	results := make([]Cost, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = r.UnitCost(3)
		}()
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}
