package model

// Recipe — рецепт крафта: фиксированные пропорции ингредиентов на
// OutputQty единиц результата. Предмет может иметь ноль, один или
// несколько рецептов; выбор между ними делает cost resolver по цене,
// приоритета среди рецептов нет.
type Recipe struct {
	ID           int32
	OutputItemID int32
	OutputQty    int64 // >= 1
	Ingredients  []RecipeIngredient
}

// RecipeIngredient — позиция рецепта: Qty единиц предмета ItemID
// на один прогон рецепта.
type RecipeIngredient struct {
	ItemID int32
	Qty    int64 // >= 1
}

// UsesFor returns the number of discrete recipe uses needed to produce at
// least qty outputs. Partial uses do not exist: the surplus from rounding
// up is accepted, not split.
func (r *Recipe) UsesFor(qty int64) int64 {
	if qty <= 0 {
		return 0
	}
	return (qty + r.OutputQty - 1) / r.OutputQty
}
