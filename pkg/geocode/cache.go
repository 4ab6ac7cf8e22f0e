package geocode

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Cache stores raw geocoding responses in SQLite keyed by normalized
// address, so repeated addresses inside one batch run (or across runs) do
// not re-query the service. Cached empty results are returned as-is: a known
// miss is as useful as a known hit when the service throttles repeats.
type Cache struct {
	db *sql.DB
}

const cacheMigration = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	address_hash TEXT PRIMARY KEY,
	response     TEXT NOT NULL,
	cached_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// OpenCache opens a SQLite cache at the given path, creating it if needed.
func OpenCache(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: open cache")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "geocode: exec %s", pragma)
		}
	}
	if _, err := db.Exec(cacheMigration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "geocode: migrate cache")
	}
	return &Cache{db: db}, nil
}

// cacheKey returns SHA-256 hex of the lowercased, trimmed address.
func cacheKey(address string) string {
	h := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(address))))
	return fmt.Sprintf("%x", h)
}

// Get looks up a cached response. The second return is false on a cache miss.
func (c *Cache) Get(ctx context.Context, address string) ([]Place, bool, error) {
	var raw string
	row := c.db.QueryRowContext(ctx,
		"SELECT response FROM geocode_cache WHERE address_hash = ?", cacheKey(address))
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, eris.Wrap(err, "geocode: cache get")
	}

	var places []Place
	if err := json.Unmarshal([]byte(raw), &places); err != nil {
		return nil, false, eris.Wrap(err, "geocode: cache decode")
	}
	if places == nil {
		places = []Place{}
	}
	return places, true, nil
}

// Put stores a response (match or empty) for an address.
func (c *Cache) Put(ctx context.Context, address string, places []Place) error {
	if places == nil {
		places = []Place{}
	}
	raw, err := json.Marshal(places)
	if err != nil {
		return eris.Wrap(err, "geocode: cache encode")
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO geocode_cache (address_hash, response, cached_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT (address_hash) DO UPDATE SET
			response = excluded.response,
			cached_at = datetime('now')`,
		cacheKey(address), string(raw),
	)
	if err != nil {
		return eris.Wrap(err, "geocode: cache put")
	}
	return nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
