package model

// Item — предмет в снапшоте рынка. Неизменяем после загрузки.
type Item struct {
	ID   int32
	Name string

	// VendorPrice — фиксированная цена у NPC-вендора; 0 если предмет
	// у вендора не продаётся.
	VendorPrice Money

	// Sellable reports whether the item can be listed on the trading post.
	Sellable bool

	// Restricted items (account bound, soulbound on acquire) cannot be
	// resold and are skipped when ranking opportunities.
	Restricted bool
}

// HasVendorPrice reports whether the item can be bought from a vendor
// at a fixed price.
func (i *Item) HasVendorPrice() bool {
	return i.VendorPrice > 0
}
