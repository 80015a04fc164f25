package options

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
)

const lastKnownGoodKey = "options:last-known-good"

// SnapshotCache persists the last successfully loaded option tree on disk so
// a restart can serve the previous settings when the primary store is down.
type SnapshotCache struct {
	db *leveldb.DB
}

type cachedOptions struct {
	SavedAt time.Time `json:"saved_at"`
	Origin  string    `json:"origin"`
	Options Options   `json:"options"`
}

// OpenSnapshotCache opens (or creates) the LevelDB database in dir.
func OpenSnapshotCache(dir string) (*SnapshotCache, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("open snapshot cache %s: %w", dir, err)
	}
	return &SnapshotCache{db: db}, nil
}

// Name implements Store.
func (c *SnapshotCache) Name() string { return "snapshot" }

// Save records o as the last known good tree.
func (c *SnapshotCache) Save(o Options, origin string, at time.Time) error {
	b, err := json.Marshal(cachedOptions{SavedAt: at, Origin: origin, Options: o})
	if err != nil {
		return storeError(c.Name(), "save", err)
	}
	if err := c.db.Put([]byte(lastKnownGoodKey), b, nil); err != nil {
		return storeError(c.Name(), "save", err)
	}
	return nil
}

// LoadWithTime returns the last known good tree and when it was saved.
func (c *SnapshotCache) LoadWithTime() (Options, time.Time, error) {
	b, err := c.db.Get([]byte(lastKnownGoodKey), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return Options{}, time.Time{}, ErrNoOptions
		}
		return Options{}, time.Time{}, storeError(c.Name(), "load", err)
	}

	var cached cachedOptions
	if err := json.Unmarshal(b, &cached); err != nil {
		return Options{}, time.Time{}, storeError(c.Name(), "decode", err)
	}
	return cached.Options, cached.SavedAt, nil
}

// Load implements Store.
func (c *SnapshotCache) Load(ctx context.Context) (Options, error) {
	if err := ctx.Err(); err != nil {
		return Options{}, err
	}
	o, _, err := c.LoadWithTime()
	return o, err
}

// Close releases the database.
func (c *SnapshotCache) Close() error {
	return c.db.Close()
}
