package craft

import (
	"sort"
	"sync"

	"github.com/udisondev/gw2flip/internal/model"
)

// Book — стакан предмета, отсортированный для симуляции ликвидности.
// Снапшоту на входе не доверяем: сортируем сами.
type Book struct {
	sells []model.Listing // ascending by price: cheapest offer first
	buys  []model.Listing // descending by price: best standing order first

	sellDepth int64
	buyDepth  int64
}

// NewBook normalizes an order book snapshot. A nil book yields an empty
// Book on which every curve caps at quantity 0.
func NewBook(ob *model.OrderBook) *Book {
	b := &Book{}
	if ob == nil {
		return b
	}
	b.sells = make([]model.Listing, len(ob.Sells))
	copy(b.sells, ob.Sells)
	sort.SliceStable(b.sells, func(i, j int) bool {
		return b.sells[i].UnitPrice < b.sells[j].UnitPrice
	})
	b.buys = make([]model.Listing, len(ob.Buys))
	copy(b.buys, ob.Buys)
	sort.SliceStable(b.buys, func(i, j int) bool {
		return b.buys[i].UnitPrice > b.buys[j].UnitPrice
	})
	for _, l := range b.sells {
		b.sellDepth += l.Quantity
	}
	for _, l := range b.buys {
		b.buyDepth += l.Quantity
	}
	return b
}

// SellDepth — суммарное количество на sell-стороне (сколько можно купить).
func (b *Book) SellDepth() int64 { return b.sellDepth }

// BuyDepth — суммарное количество на buy-стороне (сколько можно продать).
func (b *Book) BuyDepth() int64 { return b.buyDepth }

// BestSellOffer returns the cheapest sell tier price, i.e. the cost of
// buying a single unit right now.
func (b *Book) BestSellOffer() (model.Money, bool) {
	if len(b.sells) == 0 {
		return 0, false
	}
	return b.sells[0].UnitPrice, true
}

// BestBuyOrder returns the highest standing buy order price, i.e. the gross
// revenue of selling a single unit right now.
func (b *Book) BestBuyOrder() (model.Money, bool) {
	if len(b.buys) == 0 {
		return 0, false
	}
	return b.buys[0].UnitPrice, true
}

// BuyCost walks the sell tiers cheapest-first and returns the cumulative
// cost of buying qty units together with the quantity actually satisfiable.
// When listed supply is shallower than qty the partial cost for the maximum
// satisfiable quantity is returned — never an extrapolated price.
func (b *Book) BuyCost(qty int64) (model.Money, int64) {
	var cost model.Money
	var filled int64
	for _, l := range b.sells {
		if filled >= qty {
			break
		}
		take := qty - filled
		if take > l.Quantity {
			take = l.Quantity
		}
		cost += l.UnitPrice.Mul(take)
		filled += take
	}
	return cost, filled
}

// SellRevenue is the symmetric walk over the buy tiers, best order first.
// The trading post fee is deducted per unit, rounded down, so the marginal
// net revenue inherits the tiers' non-increasing ordering.
func (b *Book) SellRevenue(qty int64, feePct int64) (model.Money, int64) {
	var revenue model.Money
	var filled int64
	for _, l := range b.buys {
		if filled >= qty {
			break
		}
		take := qty - filled
		if take > l.Quantity {
			take = l.Quantity
		}
		revenue += l.UnitPrice.SaleRevenue(feePct).Mul(take)
		filled += take
	}
	return revenue, filled
}

// Source — способ получения предмета.
type Source int

const (
	SourceUnavailable Source = iota
	SourceBuy                // trading post
	SourceCraft
	SourceVendor
)

// String returns human-readable source name.
func (s Source) String() string {
	switch s {
	case SourceBuy:
		return "Buy"
	case SourceCraft:
		return "Craft"
	case SourceVendor:
		return "Vendor"
	default:
		return "Unavailable"
	}
}

// Acquisition — самый дешёвый способ получить конкретное количество
// предмета: источник, суммарная стоимость и выбранный рецепт (для Craft).
type Acquisition struct {
	Source   Source
	Cost     model.Money
	RecipeID int32 // set only for SourceCraft
	Uses     int64 // discrete recipe uses, only for SourceCraft
}

// Simulator отвечает за кривые стоимости/выручки как функции количества.
// Стаканы сортируются лениво и один раз; дальше только чтение, поэтому
// параллельный прогон по каталогу безопасен.
type Simulator struct {
	graph *Graph

	mu    sync.Mutex
	books map[int32]*Book
}

// NewSimulator wraps the graph with lazily normalized books.
func NewSimulator(g *Graph) *Simulator {
	return &Simulator{graph: g, books: make(map[int32]*Book)}
}

// Book returns the normalized order book for the item, building it on first
// use. Items without trading post presence get an empty book.
func (s *Simulator) Book(itemID int32) *Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.books[itemID]; ok {
		return b
	}
	b := NewBook(s.graph.OrderBook(itemID))
	s.books[itemID] = b
	return b
}

// AcquireCost returns the cheapest way to obtain qty units of the item,
// re-deciding buy-vs-craft-vs-vendor at this specific quantity. The choice
// may flip as qty grows — shallow sell listings make buying expensive while
// craft cost stays linear; that crossover is the whole point of walking
// tiers instead of multiplying a unit price.
//
// ok is false when no source can supply the full quantity.
func (s *Simulator) AcquireCost(itemID int32, qty int64) (Acquisition, bool) {
	return s.acquireCost(itemID, qty, make(map[int32]bool))
}

func (s *Simulator) acquireCost(itemID int32, qty int64, visiting map[int32]bool) (Acquisition, bool) {
	if qty <= 0 {
		return Acquisition{Source: SourceUnavailable}, false
	}

	item, _ := s.graph.Item(itemID)

	best := Acquisition{Source: SourceUnavailable}
	have := false

	// Buy from the trading post, if the snapshot has enough depth.
	if item == nil || item.Sellable {
		if cost, filled := s.Book(itemID).BuyCost(qty); filled == qty {
			best = Acquisition{Source: SourceBuy, Cost: cost}
			have = true
		}
	}

	// Craft via any producing recipe, unless this item is already being
	// resolved higher up the call path (cycle cut).
	if !visiting[itemID] {
		visiting[itemID] = true
		for _, r := range s.graph.RecipesFor(itemID) {
			cost, ok := s.craftCost(r, qty, visiting)
			if !ok {
				continue
			}
			if !have || cost < best.Cost {
				best = Acquisition{
					Source:   SourceCraft,
					Cost:     cost,
					RecipeID: r.ID,
					Uses:     r.UsesFor(qty),
				}
				have = true
			}
		}
		delete(visiting, itemID)
	}

	// Vendor supply is flat-priced and unbounded.
	if item != nil && item.HasVendorPrice() {
		cost := item.VendorPrice.Mul(qty)
		if !have || cost < best.Cost {
			best = Acquisition{Source: SourceVendor, Cost: cost}
			have = true
		}
	}

	return best, have
}

// craftCost prices qty outputs of the recipe: ceil recipe uses, each
// ingredient acquired at its own derived quantity via the cheapest source.
func (s *Simulator) craftCost(r *model.Recipe, qty int64, visiting map[int32]bool) (model.Money, bool) {
	uses := r.UsesFor(qty)
	var total model.Money
	for _, ing := range r.Ingredients {
		need := ing.Qty * uses
		acq, ok := s.acquireCost(ing.ItemID, need, visiting)
		if !ok {
			return 0, false
		}
		total += acq.Cost
	}
	return total, true
}

// RecipeCost prices qty outputs of one specific recipe, ingredients
// acquired at their derived quantities via the cheapest source each.
func (s *Simulator) RecipeCost(r *model.Recipe, qty int64) (model.Money, bool) {
	visiting := map[int32]bool{r.OutputItemID: true}
	return s.craftCost(r, qty, visiting)
}

// CraftCost is the craft-only cost curve for the item at qty: the cheapest
// producing recipe at that quantity, ingredients priced per AcquireCost.
// ok is false when the item has no recipe or some ingredient cannot be
// supplied at the derived quantity.
func (s *Simulator) CraftCost(itemID int32, qty int64) (Acquisition, bool) {
	visiting := map[int32]bool{itemID: true}
	best := Acquisition{Source: SourceUnavailable}
	have := false
	for _, r := range s.graph.RecipesFor(itemID) {
		cost, ok := s.craftCost(r, qty, visiting)
		if !ok {
			continue
		}
		if !have || cost < best.Cost {
			best = Acquisition{Source: SourceCraft, Cost: cost, RecipeID: r.ID, Uses: r.UsesFor(qty)}
			have = true
		}
	}
	return best, have
}
