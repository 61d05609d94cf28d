package market

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/crypto/blake2b"
)

// Cache — кэш ответов API: горячий слой в памяти плюс файлы на диске,
// чтобы повторные запуски в пределах TTL не ходили в сеть.
// Disk entries are keyed by the blake2b digest of the request URL, so
// arbitrary URLs map to stable filenames.
type Cache struct {
	dir string
	ttl time.Duration
	hot *gocache.Cache
}

// NewCache creates the cache directory if needed. A zero ttl disables
// expiry checks (entries live until the directory is wiped).
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir %s: %w", dir, err)
	}
	return &Cache{
		dir: dir,
		ttl: ttl,
		hot: gocache.New(ttl, 2*ttl),
	}, nil
}

// Get returns the cached response body for the URL, if fresh.
func (c *Cache) Get(url string) ([]byte, bool) {
	if v, ok := c.hot.Get(url); ok {
		return v.([]byte), true
	}

	path := c.path(url)
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	c.hot.Set(url, data, gocache.DefaultExpiration)
	return data, true
}

// Put stores the response body in both layers. Disk write failures are
// returned so the caller can log them; the hot layer is updated regardless.
func (c *Cache) Put(url string, data []byte) error {
	c.hot.Set(url, data, gocache.DefaultExpiration)
	if err := os.WriteFile(c.path(url), data, 0o644); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

func (c *Cache) path(url string) string {
	sum := blake2b.Sum256([]byte(url))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:16])+".json")
}
