// Package market assembles immutable trading post snapshots for the
// crafting engine: HTTP API client, response cache and vendor price table.
// Всё I/O живёт здесь; ядро (internal/craft) получает готовый снапшот
// и больше никуда не ходит.
package market

import (
	"time"

	"github.com/udisondev/gw2flip/internal/model"
)

// Snapshot — один неизменяемый срез рынка. Загружается целиком до запуска
// расчётов и после этого только читается.
type Snapshot struct {
	Items     []*model.Item
	Recipes   []*model.Recipe
	Books     []*model.OrderBook
	FetchedAt time.Time
}

// Counts reports snapshot sizes for logging.
func (s *Snapshot) Counts() (items, recipes, books int) {
	return len(s.Items), len(s.Recipes), len(s.Books)
}
