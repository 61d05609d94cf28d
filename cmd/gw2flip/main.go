// gw2flip finds items that are cheaper to craft than to buy and ranks them
// by what reselling the crafted output earns once order book depth and
// trading post fees are accounted for.
//
// Usage:
//
//	gw2flip                       # rank all profitable crafts
//	gw2flip -item 19721           # shopping list for the optimal quantity
//	gw2flip -item 19721 -count 50 # shopping list for exactly 50
//	gw2flip -sort roi -csv out.csv
//	gw2flip -offline              # use the last snapshot persisted in postgres
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/udisondev/gw2flip/internal/config"
	"github.com/udisondev/gw2flip/internal/craft"
	"github.com/udisondev/gw2flip/internal/db"
	"github.com/udisondev/gw2flip/internal/market"
	"github.com/udisondev/gw2flip/internal/model"
	"github.com/udisondev/gw2flip/internal/report"
)

const defaultConfigPath = "config/gw2flip.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var (
		configPath = flag.String("config", defaultConfigPath, "path to YAML config")
		itemID     = flag.Int("item", 0, "item id: print a shopping list instead of the ranking")
		count      = flag.Int64("count", 0, "shopping list quantity; 0 = the item's optimal quantity")
		sortKey    = flag.String("sort", "", "ranking sort key: profit, step, roi, qty")
		csvPath    = flag.String("csv", "", "also write the ranking as CSV to this path")
		offline    = flag.Bool("offline", false, "use the snapshot persisted in postgres instead of the API")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	})))
	if *sortKey == "" {
		*sortKey = cfg.SortKey
	}

	snap, err := loadSnapshot(ctx, cfg, *offline)
	if err != nil {
		return err
	}
	items, recipes, books := snap.Counts()
	slog.Info("snapshot ready", "items", items, "recipes", recipes, "books", books,
		"fetched_at", snap.FetchedAt.Format(time.RFC3339))

	graph := craft.NewGraph(snap.Items, snap.Recipes, snap.Books)
	sim := craft.NewSimulator(graph)
	resolver := craft.NewResolver(graph, sim)
	optimizer := craft.NewOptimizer(graph, sim, resolver, craft.Options{
		FeePct:      cfg.TotalFeePct(),
		MinProfit:   model.FromCopper(cfg.MinProfit),
		Parallelism: cfg.Parallelism,
	})

	if *itemID != 0 {
		return shoppingListMode(optimizer, craft.NewBuilder(graph, sim), int32(*itemID), *count)
	}
	return rankMode(ctx, optimizer, craft.SortKey(*sortKey), *csvPath)
}

// loadSnapshot fetches from the API (persisting a copy when the database is
// enabled) or, in offline mode, rebuilds the last persisted snapshot.
func loadSnapshot(ctx context.Context, cfg config.Config, offline bool) (*market.Snapshot, error) {
	if offline {
		if !cfg.Database.Enabled {
			return nil, fmt.Errorf("offline mode requires database.enabled in config")
		}
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		snap, err := database.LoadSnapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading persisted snapshot: %w", err)
		}
		return snap, nil
	}

	cache, err := market.NewCache(cfg.API.CacheDir, time.Duration(cfg.API.CacheTTLMin)*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("initializing response cache: %w", err)
	}
	client := market.NewClient(cfg.API.BaseURL, cfg.API.ChunkSize,
		time.Duration(cfg.API.TimeoutSec)*time.Second, cache)
	snap, err := client.FetchSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching snapshot: %w", err)
	}

	if cfg.Database.Enabled {
		if err := persistSnapshot(ctx, cfg, snap); err != nil {
			// A failed save must not kill the run: the fetched snapshot
			// in memory is complete.
			slog.Warn("snapshot not persisted", "err", err)
		}
	}
	return snap, nil
}

func persistSnapshot(ctx context.Context, cfg config.Config, snap *market.Snapshot) error {
	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()
	if err := database.SaveSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	slog.Info("snapshot persisted")
	return nil
}

func rankMode(ctx context.Context, optimizer *craft.Optimizer, key craft.SortKey, csvPath string) error {
	started := time.Now()
	opps, err := optimizer.RankOpportunities(ctx, key)
	if err != nil {
		return fmt.Errorf("ranking opportunities: %w", err)
	}
	slog.Info("ranking complete", "opportunities", len(opps), "took", time.Since(started))

	if err := report.WriteRankings(os.Stdout, opps); err != nil {
		return fmt.Errorf("rendering ranking: %w", err)
	}
	if csvPath != "" {
		f, err := os.Create(csvPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", csvPath, err)
		}
		defer f.Close()
		if err := report.WriteRankingsCSV(f, opps); err != nil {
			return fmt.Errorf("writing %s: %w", csvPath, err)
		}
		slog.Info("csv written", "path", csvPath)
	}
	return nil
}

func shoppingListMode(optimizer *craft.Optimizer, builder *craft.Builder, itemID int32, count int64) error {
	if count == 0 {
		opp, err := optimizer.OptimalQuantity(itemID)
		if err != nil {
			return fmt.Errorf("finding optimal quantity: %w", err)
		}
		if opp == nil {
			fmt.Printf("item %d is not profitable to craft at any quantity\n", itemID)
			return nil
		}
		count = opp.Quantity
		slog.Info("using optimal quantity", "item", itemID, "qty", count, "profit", opp.Profit.String())
	}

	list, err := builder.Build(itemID, count)
	if err != nil {
		return fmt.Errorf("building shopping list: %w", err)
	}
	return report.WriteShoppingList(os.Stdout, list)
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
