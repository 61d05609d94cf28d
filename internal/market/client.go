package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/gw2flip/internal/model"
)

const pageSize = 200

// Client — HTTP-клиент API trading post. Все ответы проходят через Cache,
// поэтому повторный запуск в пределах TTL не создаёт сетевого трафика.
type Client struct {
	baseURL   string
	chunkSize int
	http      *http.Client
	cache     *Cache
}

// NewClient wires the API client. chunkSize caps how many ids go into one
// listings request (the API rejects oversized id lists).
func NewClient(baseURL string, chunkSize int, timeout time.Duration, cache *Cache) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		chunkSize: chunkSize,
		http:      &http.Client{Timeout: timeout},
		cache:     cache,
	}
}

// API wire types. Only fields the engine needs are mapped.

type apiItem struct {
	ID           int32    `json:"id"`
	Name         string   `json:"name"`
	VendorValue  int64    `json:"vendor_value"`
	Flags        []string `json:"flags"`
	Restrictions []string `json:"restrictions"`
}

type apiRecipe struct {
	ID              int32           `json:"id"`
	OutputItemID    int32           `json:"output_item_id"`
	OutputItemCount int64           `json:"output_item_count"`
	Ingredients     []apiIngredient `json:"ingredients"`
}

type apiIngredient struct {
	ItemID int32 `json:"item_id"`
	Count  int64 `json:"count"`
}

type apiListings struct {
	ID    int32        `json:"id"`
	Buys  []apiListing `json:"buys"`
	Sells []apiListing `json:"sells"`
}

type apiListing struct {
	UnitPrice int64 `json:"unit_price"`
	Quantity  int64 `json:"quantity"`
}

func (a apiItem) toModel() *model.Item {
	sellable := true
	restricted := len(a.Restrictions) > 0
	for _, f := range a.Flags {
		switch f {
		case "NoSell":
			sellable = false
		case "AccountBound", "SoulbindOnAcquire":
			restricted = true
		}
	}
	return &model.Item{
		ID:          a.ID,
		Name:        a.Name,
		VendorPrice: vendorPrice(a.ID, a.VendorValue),
		Sellable:    sellable,
		Restricted:  restricted,
	}
}

func (a apiRecipe) toModel() *model.Recipe {
	r := &model.Recipe{
		ID:           a.ID,
		OutputItemID: a.OutputItemID,
		OutputQty:    a.OutputItemCount,
	}
	if r.OutputQty < 1 {
		r.OutputQty = 1
	}
	for _, ing := range a.Ingredients {
		r.Ingredients = append(r.Ingredients, model.RecipeIngredient{
			ItemID: ing.ItemID,
			Qty:    ing.Count,
		})
	}
	return r
}

func (a apiListings) toModel() *model.OrderBook {
	book := &model.OrderBook{ItemID: a.ID}
	for _, l := range a.Sells {
		book.Sells = append(book.Sells, model.Listing{UnitPrice: model.FromCopper(l.UnitPrice), Quantity: l.Quantity})
	}
	for _, l := range a.Buys {
		book.Buys = append(book.Buys, model.Listing{UnitPrice: model.FromCopper(l.UnitPrice), Quantity: l.Quantity})
	}
	return book
}

// FetchSnapshot downloads the full catalog: recipes and items in parallel,
// then order books for every item a recipe touches. The result is handed to
// the engine as-is and never mutated afterwards.
func (c *Client) FetchSnapshot(ctx context.Context) (*Snapshot, error) {
	var (
		items   []apiItem
		recipes []apiRecipe
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.getPaginated(gctx, "/items", &items)
	})
	g.Go(func() error {
		return c.getPaginated(gctx, "/recipes", &recipes)
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetching catalog: %w", err)
	}
	slog.Info("catalog fetched", "items", len(items), "recipes", len(recipes))

	snap := &Snapshot{FetchedAt: time.Now()}
	for _, it := range items {
		snap.Items = append(snap.Items, it.toModel())
	}
	for _, r := range recipes {
		snap.Recipes = append(snap.Recipes, r.toModel())
	}

	books, err := c.FetchOrderBooks(ctx, tradedItemIDs(snap.Recipes))
	if err != nil {
		return nil, err
	}
	snap.Books = books
	return snap, nil
}

// FetchOrderBooks downloads listings for the given item ids in chunks.
// Items without any listings are absent from the API response and simply
// get no book.
func (c *Client) FetchOrderBooks(ctx context.Context, ids []int32) ([]*model.OrderBook, error) {
	var books []*model.OrderBook
	for start := 0; start < len(ids); start += c.chunkSize {
		end := start + c.chunkSize
		if end > len(ids) {
			end = len(ids)
		}
		var chunk []apiListings
		if err := c.get(ctx, "/commerce/listings?ids="+joinIDs(ids[start:end]), &chunk); err != nil {
			return nil, fmt.Errorf("fetching listings [%d:%d]: %w", start, end, err)
		}
		for _, l := range chunk {
			books = append(books, l.toModel())
		}
	}
	slog.Info("order books fetched", "requested", len(ids), "listed", len(books))
	return books, nil
}

// tradedItemIDs collects every item id a recipe outputs or consumes —
// the only markets the engine ever prices.
func tradedItemIDs(recipes []*model.Recipe) []int32 {
	seen := make(map[int32]bool)
	for _, r := range recipes {
		seen[r.OutputItemID] = true
		for _, ing := range r.Ingredients {
			seen[ing.ItemID] = true
		}
	}
	ids := make([]int32, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// getPaginated walks page=N responses until a short page ends the listing.
func (c *Client) getPaginated(ctx context.Context, endpoint string, out any) error {
	raw := make([]json.RawMessage, 0, 4*pageSize)
	for page := 0; ; page++ {
		var batch []json.RawMessage
		url := fmt.Sprintf("%s?page=%d&page_size=%d", endpoint, page, pageSize)
		if err := c.get(ctx, url, &batch); err != nil {
			return fmt.Errorf("page %d of %s: %w", page, endpoint, err)
		}
		raw = append(raw, batch...)
		if len(batch) < pageSize {
			break
		}
	}
	joined, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("merging pages of %s: %w", endpoint, err)
	}
	return json.Unmarshal(joined, out)
}

// get performs one cached GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	url := c.baseURL + path
	if data, ok := c.cache.Get(url); ok {
		return json.Unmarshal(data, out)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request %s: %w", url, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return fmt.Errorf("requesting %s: unexpected status %s", url, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response %s: %w", url, err)
	}
	if err := c.cache.Put(url, data); err != nil {
		slog.Warn("response not cached", "url", url, "err", err)
	}
	return json.Unmarshal(data, out)
}

func joinIDs(ids []int32) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(int64(id), 10)
	}
	return strings.Join(parts, ",")
}
