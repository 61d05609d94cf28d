package market

import "github.com/udisondev/gw2flip/internal/model"

// Предметы, которые продают NPC-вендоры по фиксированной цене. API это
// не отдаёт, поэтому список ведётся руками: стандартная вендорная цена —
// vendor_value × 8 за единицу.
// https://forum-en.gw2archive.eu/forum/community/api/How-to-get-the-vendor-sell-price
var vendorPurchasable = map[int32]bool{
	8576:  true, // Bottle of Rice Wine
	76839: true, // Milling Basin
	70647: true, // Crystalline Bottle
	75762: true, // Bag of Mortar
	75087: true, // Essence of Elegance
	13010: true, // Minor Rune of Holding
	13006: true, // Rune of Holding
	13007: true, // Major Rune of Holding
	13008: true, // Greater Rune of Holding
	13009: true, // Superior Rune of Holding
	12136: true, // Bag of Flour
	19792: true, // Spool of Jute Thread
	19789: true, // Spool of Wool Thread
	19794: true, // Spool of Cotton Thread
	19793: true, // Spool of Linen Thread
	19791: true, // Spool of Silk Thread
	19790: true, // Spool of Gossamer Thread
	19704: true, // Lump of Tin
	19750: true, // Lump of Coal
	19924: true, // Lump of Primordium
	12157: true, // Jar of Vinegar
	12151: true, // Packet of Baking Powder
	12158: true, // Jar of Vegetable Oil
	12153: true, // Packet of Salt
	12155: true, // Bag of Sugar
	12156: true, // Jug of Water
	12324: true, // Bag of Starch
	12271: true, // Bottle of Soy Sauce
}

// Продаются пачками по 10 за 1.49.60g; цена за штуку округлена вверх,
// чтобы не занизить себестоимость.
var vendorFixedPrice = map[int32]model.Money{
	46747: 150, // Thermocatalytic Reagent
	91739: 150, // Pile of Compost Starter
}

// vendorPrice returns the fixed per-unit vendor price for the item, or 0
// when vendors don't sell it.
func vendorPrice(id int32, vendorValue int64) model.Money {
	if p, ok := vendorFixedPrice[id]; ok {
		return p
	}
	if vendorPurchasable[id] {
		return model.FromCopper(vendorValue * 8)
	}
	return 0
}
