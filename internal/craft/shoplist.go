package craft

import (
	"fmt"

	"github.com/udisondev/gw2flip/internal/model"
)

// ShoppingNode — узел плана: сколько единиц предмета нужно и как их
// получить. Для Craft-узлов присутствуют дети — ингредиенты с их
// собственными количествами; Buy/Vendor-узлы всегда листья.
type ShoppingNode struct {
	ItemID   int32
	Name     string
	Quantity int64 // required by the parent (or the caller at the root)
	Source   Source
	Cost     model.Money // total cost of acquiring Quantity via Source

	// Craft only: chosen recipe, discrete use count and actual production.
	// Produced may exceed Quantity — surplus from ceil rounding is accepted,
	// recipe uses are never split.
	RecipeID int32
	Uses     int64
	Produced int64

	Children []*ShoppingNode
}

// Builder decomposes a target quantity into a concrete buy/craft plan.
// The buy-vs-craft decision is re-evaluated at every node's own required
// quantity, so a deep ingredient may be bought in one plan and crafted in
// another depending on how much of it is needed.
type Builder struct {
	graph *Graph
	sim   *Simulator
}

// NewBuilder builds shopping lists over the same simulator the optimizer
// uses, keeping plan costs identical to curve costs.
func NewBuilder(g *Graph, sim *Simulator) *Builder {
	return &Builder{graph: g, sim: sim}
}

// Build returns the plan realizing qty units of the item.
func (b *Builder) Build(itemID int32, qty int64) (*ShoppingNode, error) {
	if _, ok := b.graph.Item(itemID); !ok {
		return nil, unknownItem(itemID)
	}
	if qty <= 0 {
		return nil, fmt.Errorf("building shopping list for item %d: quantity %d must be positive", itemID, qty)
	}
	return b.build(itemID, qty, make(map[int32]bool))
}

func (b *Builder) build(itemID int32, qty int64, visiting map[int32]bool) (*ShoppingNode, error) {
	acq, ok := b.sim.acquireCost(itemID, qty, visiting)
	if !ok {
		return nil, fmt.Errorf("%w: %d x item %d", ErrUnobtainable, qty, itemID)
	}

	node := &ShoppingNode{
		ItemID:   itemID,
		Quantity: qty,
		Source:   acq.Source,
		Cost:     acq.Cost,
	}
	if item, ok := b.graph.Item(itemID); ok {
		node.Name = item.Name
	}
	if acq.Source != SourceCraft {
		return node, nil
	}

	recipe := b.recipeByID(itemID, acq.RecipeID)
	if recipe == nil {
		return nil, fmt.Errorf("building shopping list: recipe %d for item %d not in graph", acq.RecipeID, itemID)
	}
	node.RecipeID = recipe.ID
	node.Uses = acq.Uses
	node.Produced = acq.Uses * recipe.OutputQty

	visiting[itemID] = true
	defer delete(visiting, itemID)
	for _, ing := range recipe.Ingredients {
		child, err := b.build(ing.ItemID, ing.Qty*acq.Uses, visiting)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

func (b *Builder) recipeByID(outputItemID, recipeID int32) *model.Recipe {
	for _, r := range b.graph.RecipesFor(outputItemID) {
		if r.ID == recipeID {
			return r
		}
	}
	return nil
}

// Walk visits the tree depth-first, parents before children.
func (n *ShoppingNode) Walk(fn func(node *ShoppingNode, depth int)) {
	n.walk(fn, 0)
}

func (n *ShoppingNode) walk(fn func(*ShoppingNode, int), depth int) {
	fn(n, depth)
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}
