package craft

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/gw2flip/internal/model"
)

// Options — настройки оптимизатора прибыли.
type Options struct {
	// FeePct — суммарный процент, который trading post удерживает с
	// продавца (listing fee + exchange fee).
	FeePct int64

	// MinProfit filters ranking output below this total profit.
	MinProfit model.Money

	// Parallelism bounds the catalog sweep; 0 means GOMAXPROCS.
	Parallelism int
}

// Opportunity — результат оптимизации: сколько единиц крафтить и что это
// принесёт при текущей глубине стаканов.
type Opportunity struct {
	ItemID   int32
	Name     string
	RecipeID int32

	// Quantity — q*: произведённое и проданное количество.
	Quantity int64
	// Uses — число дискретных прогонов рецепта, ceil(q*/output).
	Uses int64

	Cost    model.Money // total crafting cost at q*
	Revenue model.Money // net sale revenue at q* (fees deducted)
	Profit  model.Money

	// ProfitPerStep — прибыль на один прогон рецепта, мера эффективности
	// по времени.
	ProfitPerStep model.Money
	// ProfitOnCostBps — прибыль на вложенный капитал в базисных пунктах
	// (10000 = 100%).
	ProfitOnCostBps int64
}

// Optimizer находит оптимальное количество производства, опираясь на
// монотонность предельной стоимости и выручки.
type Optimizer struct {
	graph *Graph
	sim   *Simulator
	res   *Resolver
	opts  Options
}

// NewOptimizer wires the curves and the unit-cost resolver together.
func NewOptimizer(g *Graph, sim *Simulator, res *Resolver, opts Options) *Optimizer {
	return &Optimizer{graph: g, sim: sim, res: res, opts: opts}
}

// OptimalQuantity finds the profit-maximizing production quantity for the
// item: the largest quantity whose marginal profit is strictly positive,
// capped by ingredient supply and sell-side liquidity.
//
// Production advances one whole recipe use at a time — marginal cost within
// a use's surplus region is zero, so per-unit stepping would overshoot.
// Returns nil, nil when the item is excluded from ranking: not sellable,
// restricted, recipe-less, or simply not profitable at any quantity.
func (o *Optimizer) OptimalQuantity(itemID int32) (*Opportunity, error) {
	item, ok := o.graph.Item(itemID)
	if !ok {
		return nil, unknownItem(itemID)
	}
	if !item.Sellable || item.Restricted {
		return nil, nil
	}
	recipes := o.graph.RecipesFor(itemID)
	if len(recipes) == 0 {
		return nil, nil
	}

	var best *Opportunity
	for _, r := range recipes {
		opp := o.optimizeRecipe(item, r)
		if opp == nil {
			continue
		}
		// Ties keep the earlier (lowest ID) recipe.
		if best == nil || opp.Profit > best.Profit {
			best = opp
		}
	}
	if best == nil || best.Profit <= 0 || best.Profit < o.opts.MinProfit {
		return nil, nil
	}
	return best, nil
}

// optimizeRecipe walks whole recipe uses until the next one stops paying:
// craft cost per use is non-decreasing (tiers deplete upward) and net sale
// revenue per use is non-increasing (orders deplete downward), so the first
// non-positive marginal ends the search.
func (o *Optimizer) optimizeRecipe(item *model.Item, r *model.Recipe) *Opportunity {
	book := o.sim.Book(item.ID)

	var (
		prevProfit model.Money
		result     *Opportunity
	)
	for uses := int64(1); ; uses++ {
		qty := uses * r.OutputQty

		cost, ok := o.sim.RecipeCost(r, qty)
		if !ok {
			break // ingredient supply exhausted
		}
		revenue, filled := book.SellRevenue(qty, o.opts.FeePct)
		if filled < qty {
			break // sell-side liquidity exhausted
		}

		profit := revenue - cost
		if profit-prevProfit <= 0 {
			break
		}
		prevProfit = profit

		result = &Opportunity{
			ItemID:        item.ID,
			Name:          item.Name,
			RecipeID:      r.ID,
			Quantity:      qty,
			Uses:          uses,
			Cost:          cost,
			Revenue:       revenue,
			Profit:        profit,
			ProfitPerStep: profit.DivFloor(uses),
		}
		if cost > 0 {
			result.ProfitOnCostBps = profit.Mul(10000).DivFloor(cost.Copper()).Copper()
		}
	}
	return result
}

// RankOpportunities sweeps the full catalog in parallel and returns every
// profitable crafting opportunity, most profitable first by the given key.
//
// A cheap unit-cost estimate (resolver) gates the expensive liquidity
// simulation: an item whose estimated craft cost already exceeds its best
// net instant-sell price cannot become profitable with depth applied.
func (o *Optimizer) RankOpportunities(ctx context.Context, key SortKey) ([]Opportunity, error) {
	par := o.opts.Parallelism
	if par <= 0 {
		par = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(par)

	var (
		mu   sync.Mutex
		opps []Opportunity
	)
	for _, id := range o.graph.ItemIDs() {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !o.worthSimulating(id) {
				return nil
			}
			opp, err := o.OptimalQuantity(id)
			if err != nil || opp == nil {
				return err
			}
			mu.Lock()
			opps = append(opps, *opp)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	SortOpportunities(opps, key)
	return opps, nil
}

func (o *Optimizer) worthSimulating(itemID int32) bool {
	item, ok := o.graph.Item(itemID)
	if !ok || !item.Sellable || item.Restricted {
		return false
	}
	if len(o.graph.RecipesFor(itemID)) == 0 {
		return false
	}
	bid, ok := o.sim.Book(itemID).BestBuyOrder()
	if !ok {
		return false
	}
	estimate := o.res.CraftUnitCost(itemID)
	if !estimate.Available() {
		return false
	}
	return bid.SaleRevenue(o.opts.FeePct) > estimate.Unit
}

// SortKey — ключ сортировки ранжирования.
type SortKey string

const (
	SortByProfit SortKey = "profit"
	SortByStep   SortKey = "step"
	SortByROI    SortKey = "roi"
	SortByQty    SortKey = "qty"
)

// SortOpportunities orders descending by the key, item ID as the final
// deterministic tie-break.
func SortOpportunities(opps []Opportunity, key SortKey) {
	sort.SliceStable(opps, func(i, j int) bool {
		a, b := &opps[i], &opps[j]
		switch key {
		case SortByStep:
			if a.ProfitPerStep != b.ProfitPerStep {
				return a.ProfitPerStep > b.ProfitPerStep
			}
		case SortByROI:
			if a.ProfitOnCostBps != b.ProfitOnCostBps {
				return a.ProfitOnCostBps > b.ProfitOnCostBps
			}
		case SortByQty:
			if a.Quantity != b.Quantity {
				return a.Quantity > b.Quantity
			}
		default:
			if a.Profit != b.Profit {
				return a.Profit > b.Profit
			}
		}
		return a.ItemID < b.ItemID
	})
}
