package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/udisondev/gw2flip/internal/market"
	"github.com/udisondev/gw2flip/internal/model"
)

// ErrNoSnapshot is returned by LoadSnapshot when nothing has been persisted
// yet (first run, or the store was wiped).
var ErrNoSnapshot = errors.New("no snapshot stored")

// SaveSnapshot replaces the persisted snapshot with the given one in a
// single transaction. Держим ровно один снапшот: история не нужна,
// ядро всегда работает с последним срезом.
func (d *DB) SaveSnapshot(ctx context.Context, snap *market.Snapshot) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning snapshot transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"listings", "recipe_ingredients", "recipes", "items", "snapshot_meta"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"items"},
		[]string{"id", "name", "vendor_price", "sellable", "restricted"},
		pgx.CopyFromSlice(len(snap.Items), func(i int) ([]any, error) {
			it := snap.Items[i]
			return []any{it.ID, it.Name, it.VendorPrice.Copper(), it.Sellable, it.Restricted}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copying items: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"recipes"},
		[]string{"id", "output_item_id", "output_qty"},
		pgx.CopyFromSlice(len(snap.Recipes), func(i int) ([]any, error) {
			r := snap.Recipes[i]
			return []any{r.ID, r.OutputItemID, r.OutputQty}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copying recipes: %w", err)
	}

	type ingRow struct {
		recipeID int32
		ing      model.RecipeIngredient
	}
	var ings []ingRow
	for _, r := range snap.Recipes {
		for _, ing := range r.Ingredients {
			ings = append(ings, ingRow{recipeID: r.ID, ing: ing})
		}
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"recipe_ingredients"},
		[]string{"recipe_id", "item_id", "qty"},
		pgx.CopyFromSlice(len(ings), func(i int) ([]any, error) {
			return []any{ings[i].recipeID, ings[i].ing.ItemID, ings[i].ing.Qty}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copying recipe ingredients: %w", err)
	}

	type listingRow struct {
		itemID int32
		side   string
		tier   int
		l      model.Listing
	}
	var rows []listingRow
	for _, b := range snap.Books {
		for i, l := range b.Buys {
			rows = append(rows, listingRow{itemID: b.ItemID, side: "b", tier: i, l: l})
		}
		for i, l := range b.Sells {
			rows = append(rows, listingRow{itemID: b.ItemID, side: "s", tier: i, l: l})
		}
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"listings"},
		[]string{"item_id", "side", "tier", "unit_price", "quantity"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			return []any{r.itemID, r.side, r.tier, r.l.UnitPrice.Copper(), r.l.Quantity}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copying listings: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO snapshot_meta (id, fetched_at) VALUES (1, $1)`, snap.FetchedAt,
	); err != nil {
		return fmt.Errorf("recording snapshot meta: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot rebuilds the last persisted snapshot for offline runs.
func (d *DB) LoadSnapshot(ctx context.Context) (*market.Snapshot, error) {
	snap := &market.Snapshot{}

	var fetchedAt time.Time
	err := d.pool.QueryRow(ctx, `SELECT fetched_at FROM snapshot_meta WHERE id = 1`).Scan(&fetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("querying snapshot meta: %w", err)
	}
	snap.FetchedAt = fetchedAt

	items, err := d.loadItems(ctx)
	if err != nil {
		return nil, err
	}
	snap.Items = items

	recipes, err := d.loadRecipes(ctx)
	if err != nil {
		return nil, err
	}
	snap.Recipes = recipes

	books, err := d.loadBooks(ctx)
	if err != nil {
		return nil, err
	}
	snap.Books = books

	return snap, nil
}

func (d *DB) loadItems(ctx context.Context) ([]*model.Item, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, name, vendor_price, sellable, restricted FROM items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	var items []*model.Item
	for rows.Next() {
		var (
			it    model.Item
			price int64
		)
		if err := rows.Scan(&it.ID, &it.Name, &price, &it.Sellable, &it.Restricted); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		it.VendorPrice = model.FromCopper(price)
		items = append(items, &it)
	}
	return items, rows.Err()
}

func (d *DB) loadRecipes(ctx context.Context) ([]*model.Recipe, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, output_item_id, output_qty FROM recipes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying recipes: %w", err)
	}
	defer rows.Close()

	byID := make(map[int32]*model.Recipe)
	var recipes []*model.Recipe
	for rows.Next() {
		var r model.Recipe
		if err := rows.Scan(&r.ID, &r.OutputItemID, &r.OutputQty); err != nil {
			return nil, fmt.Errorf("scanning recipe: %w", err)
		}
		byID[r.ID] = &r
		recipes = append(recipes, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	ingRows, err := d.pool.Query(ctx,
		`SELECT recipe_id, item_id, qty FROM recipe_ingredients ORDER BY recipe_id, item_id`)
	if err != nil {
		return nil, fmt.Errorf("querying recipe ingredients: %w", err)
	}
	defer ingRows.Close()

	for ingRows.Next() {
		var (
			recipeID int32
			ing      model.RecipeIngredient
		)
		if err := ingRows.Scan(&recipeID, &ing.ItemID, &ing.Qty); err != nil {
			return nil, fmt.Errorf("scanning recipe ingredient: %w", err)
		}
		if r, ok := byID[recipeID]; ok {
			r.Ingredients = append(r.Ingredients, ing)
		}
	}
	return recipes, ingRows.Err()
}

func (d *DB) loadBooks(ctx context.Context) ([]*model.OrderBook, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT item_id, side, unit_price, quantity FROM listings ORDER BY item_id, side, tier`)
	if err != nil {
		return nil, fmt.Errorf("querying listings: %w", err)
	}
	defer rows.Close()

	byItem := make(map[int32]*model.OrderBook)
	var books []*model.OrderBook
	for rows.Next() {
		var (
			itemID int32
			side   string
			price  int64
			qty    int64
		)
		if err := rows.Scan(&itemID, &side, &price, &qty); err != nil {
			return nil, fmt.Errorf("scanning listing: %w", err)
		}
		book, ok := byItem[itemID]
		if !ok {
			book = &model.OrderBook{ItemID: itemID}
			byItem[itemID] = book
			books = append(books, book)
		}
		listing := model.Listing{UnitPrice: model.FromCopper(price), Quantity: qty}
		if side == "b" {
			book.Buys = append(book.Buys, listing)
		} else {
			book.Sells = append(book.Sells, listing)
		}
	}
	return books, rows.Err()
}
