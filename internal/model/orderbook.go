package model

// Listing — один ценовой уровень стакана: Quantity единиц по UnitPrice.
type Listing struct {
	UnitPrice Money
	Quantity  int64
}

// OrderBook — стакан предмета на trading post, снятый одним снапшотом.
//
// Sells are offers a buyer pays (cheapest consumed first), Buys are standing
// orders a seller fills (highest consumed first). Input order is not trusted;
// the liquidity simulator sorts tiers itself before walking them.
type OrderBook struct {
	ItemID int32
	Sells  []Listing
	Buys   []Listing
}

// SellDepth returns the total quantity listed on the sell side.
func (b *OrderBook) SellDepth() int64 {
	var total int64
	for _, l := range b.Sells {
		total += l.Quantity
	}
	return total
}

// BuyDepth returns the total quantity wanted on the buy side.
func (b *OrderBook) BuyDepth() int64 {
	var total int64
	for _, l := range b.Buys {
		total += l.Quantity
	}
	return total
}
