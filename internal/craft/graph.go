package craft

import (
	"sort"

	"github.com/udisondev/gw2flip/internal/model"
)

// Graph — индекс снапшота рынка: предметы по ID и рецепты по ID
// производимого предмета. Строится один раз за прогон и после этого
// только читается.
type Graph struct {
	items   map[int32]*model.Item
	recipes map[int32][]*model.Recipe
	books   map[int32]*model.OrderBook

	itemIDs []int32 // sorted, for deterministic sweeps
}

// NewGraph indexes the snapshot. Recipes for the same output are ordered by
// recipe ID so that equal-cost candidates resolve deterministically (lowest
// ID wins).
func NewGraph(items []*model.Item, recipes []*model.Recipe, books []*model.OrderBook) *Graph {
	g := &Graph{
		items:   make(map[int32]*model.Item, len(items)),
		recipes: make(map[int32][]*model.Recipe, len(recipes)),
		books:   make(map[int32]*model.OrderBook, len(books)),
	}
	for _, it := range items {
		g.items[it.ID] = it
	}
	for _, r := range recipes {
		g.recipes[r.OutputItemID] = append(g.recipes[r.OutputItemID], r)
	}
	for _, rs := range g.recipes {
		sort.Slice(rs, func(i, j int) bool { return rs[i].ID < rs[j].ID })
	}
	for _, b := range books {
		g.books[b.ItemID] = b
	}

	g.itemIDs = make([]int32, 0, len(g.items))
	for id := range g.items {
		g.itemIDs = append(g.itemIDs, id)
	}
	sort.Slice(g.itemIDs, func(i, j int) bool { return g.itemIDs[i] < g.itemIDs[j] })

	return g
}

// Item returns the item by ID. Absent ID is a lookup miss, not an error:
// the caller decides whether that means stale data (external query) or
// simply an unpriced ingredient.
func (g *Graph) Item(id int32) (*model.Item, bool) {
	it, ok := g.items[id]
	return it, ok
}

// ItemIDs returns all item IDs in ascending order.
func (g *Graph) ItemIDs() []int32 {
	return g.itemIDs
}

// RecipesFor returns all recipes producing the given item, ordered by
// recipe ID. Empty slice when the item is not craftable.
func (g *Graph) RecipesFor(outputItemID int32) []*model.Recipe {
	return g.recipes[outputItemID]
}

// OrderBook returns the item's order book, or nil when the item has no
// trading post presence in the snapshot.
func (g *Graph) OrderBook(itemID int32) *model.OrderBook {
	return g.books[itemID]
}
