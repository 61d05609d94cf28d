package craft

import (
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/udisondev/gw2flip/internal/model"
)

// Cost — цена получения одной единицы предмета с пометкой источника.
// SourceUnavailable — валидный терминальный ответ ("сейчас не достать"),
// а не ошибка.
type Cost struct {
	Source   Source
	Unit     model.Money
	RecipeID int32 // set only for SourceCraft
}

// Available reports whether the item can presently be obtained at all.
func (c Cost) Available() bool {
	return c.Source != SourceUnavailable
}

// Resolver computes minimum unit costs over the recipe graph: memoized
// depth-first search with a per-resolution visiting set as the cycle guard.
//
// The memo behaves as a compute-once map: concurrent requests for the same
// item coalesce onto a single computation (singleflight), which makes the
// full-catalog sweep safe to parallelize. Results are pure functions of the
// snapshot; the resolver never mutates graph data.
type Resolver struct {
	graph *Graph
	sim   *Simulator

	mu    sync.RWMutex
	memo  map[int32]Cost
	group singleflight.Group
}

// NewResolver builds a resolver over the indexed snapshot. The memo lives
// for one run and is discarded with the resolver.
func NewResolver(g *Graph, sim *Simulator) *Resolver {
	return &Resolver{graph: g, sim: sim, memo: make(map[int32]Cost)}
}

// UnitCost returns the cheapest way to obtain a single unit of the item:
// the minimum over the best trading post offer, the vendor price and the
// craft cost of every producing recipe. Ties break Buy > Craft > Vendor.
func (r *Resolver) UnitCost(itemID int32) Cost {
	if c, ok := r.cached(itemID); ok {
		return c
	}
	v, _, _ := r.group.Do(strconv.FormatInt(int64(itemID), 10), func() (any, error) {
		return r.resolve(itemID, make(map[int32]bool), make(map[int32]bool)), nil
	})
	return v.(Cost)
}

// CraftUnitCost returns the craft candidate only: the unit cost of the
// cheapest producing recipe, ignoring the item's own buy and vendor prices.
// Used as the quick profitability pre-filter before running the precise
// liquidity simulation.
func (r *Resolver) CraftUnitCost(itemID int32) Cost {
	visiting := map[int32]bool{itemID: true}
	return r.craftCandidate(itemID, visiting, make(map[int32]bool))
}

func (r *Resolver) cached(itemID int32) (Cost, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.memo[itemID]
	return c, ok
}

// resolve runs the guarded DFS. visiting holds the active call path; a
// craft candidate referencing an in-progress item is suppressed instead of
// recursed into. cuts tracks which in-progress items were referenced below
// the current frame: a result computed under an active cut is path-dependent
// and must not be memoized until its cycle head unwinds.
func (r *Resolver) resolve(itemID int32, visiting, cuts map[int32]bool) Cost {
	if c, ok := r.cached(itemID); ok {
		return c
	}

	visiting[itemID] = true
	result := r.candidates(itemID, visiting, cuts)
	delete(visiting, itemID)

	// References to this item are settled by this frame.
	delete(cuts, itemID)
	if len(cuts) == 0 {
		r.mu.Lock()
		r.memo[itemID] = result
		r.mu.Unlock()
	}
	return result
}

func (r *Resolver) candidates(itemID int32, visiting, cuts map[int32]bool) Cost {
	item, _ := r.graph.Item(itemID)

	best := Cost{Source: SourceUnavailable}
	have := false

	// Buy: best trading post offer, if the item is listable at all.
	if item == nil || item.Sellable {
		if price, ok := r.sim.Book(itemID).BestSellOffer(); ok {
			best = Cost{Source: SourceBuy, Unit: price}
			have = true
		}
	}

	// Craft: cheapest producing recipe. Strictly-less keeps the buy
	// candidate on ties (cheapest-effort preference).
	if craft := r.craftCandidate(itemID, visiting, cuts); craft.Available() {
		if !have || craft.Unit < best.Unit {
			best = craft
			have = true
		}
	}

	// Vendor: flat fixed price, lowest tie priority.
	if item != nil && item.HasVendorPrice() {
		if !have || item.VendorPrice < best.Unit {
			best = Cost{Source: SourceVendor, Unit: item.VendorPrice}
			have = true
		}
	}

	return best
}

// craftCandidate prices every producing recipe and keeps the cheapest.
// Recipes come pre-sorted by ID, so equal-cost recipes resolve to the
// lowest ID. A recipe is unavailable when any ingredient is unavailable or
// sits on the active call path.
func (r *Resolver) craftCandidate(itemID int32, visiting, cuts map[int32]bool) Cost {
	best := Cost{Source: SourceUnavailable}
	have := false

	for _, recipe := range r.graph.RecipesFor(itemID) {
		var total model.Money
		feasible := true
		for _, ing := range recipe.Ingredients {
			if visiting[ing.ItemID] {
				cuts[ing.ItemID] = true
				feasible = false
				break
			}
			c := r.resolve(ing.ItemID, visiting, cuts)
			if !c.Available() {
				feasible = false
				break
			}
			total += c.Unit.Mul(ing.Qty)
		}
		if !feasible {
			continue
		}
		unit := total.DivCeil(recipe.OutputQty)
		if !have || unit < best.Unit {
			best = Cost{Source: SourceCraft, Unit: unit, RecipeID: recipe.ID}
			have = true
		}
	}
	return best
}
