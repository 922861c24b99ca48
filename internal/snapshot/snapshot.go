package snapshot

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"rollcall-backend/internal/components/assert"
	"rollcall-backend/internal/components/chrono"
	"rollcall-backend/internal/components/telemetry"
	"rollcall-backend/internal/votes"
)

const (
	report_cache_load = "cache.load"
)

// Loader reads every stored record.
type Loader interface {
	LoadVotes(ctx context.Context) ([]votes.Record, error)
}

// Cache is an in-memory copy of every stored record. It is filled once by
// Load and only re-read after Invalidate.
type Cache struct {
	loader Loader
	time   chrono.TimeAPI
	tel    telemetry.API

	mu        sync.RWMutex
	loaded    bool
	loadedAt  time.Time
	records   []votes.Record
	byId      map[int64]int
	members   []votes.MemberProfile
	memberIdx map[int64]int
	geoAreas  []votes.GeoArea
}

func NewCache(loader Loader, time chrono.TimeAPI, tel telemetry.API) *Cache {
	assert.NotNil(loader)
	assert.NotNil(time)
	assert.NotNil(tel)

	return &Cache{
		loader: loader,
		time:   time,
		tel:    telemetry.NewScopedAPI("snapshot", tel),
	}
}

// Load reads every record from the loader unless the cache is already
// loaded.
func (c *Cache) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return nil
	}

	records, err := c.loader.LoadVotes(ctx)
	if err != nil {
		c.tel.ReportBroken(report_cache_load, err)
		return err
	}

	sortRecords(records)
	c.records = records
	c.byId = make(map[int64]int, len(records))
	for i, rec := range records {
		c.byId[rec.ID] = i
	}
	c.members, c.memberIdx = buildMembers(records)
	c.geoAreas = buildGeoAreas(records)
	c.loaded = true
	c.loadedAt = c.time.Now()

	c.tel.ReportCount("cache.votes", int64(len(records)))
	c.tel.ReportCount("cache.members", int64(len(c.members)))
	return nil
}

// Invalidate drops the snapshot, the next Load reads everything again.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loaded = false
	c.records = nil
	c.byId = nil
	c.members = nil
	c.memberIdx = nil
	c.geoAreas = nil
}

// Reload is Invalidate followed by Load.
func (c *Cache) Reload(ctx context.Context) error {
	c.Invalidate()
	return c.Load(ctx)
}

func (c *Cache) Loaded() (bool, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded, c.loadedAt
}

// Votes returns every cached record, newest first.
func (c *Cache) Votes() []votes.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.records)
}

// Len is the number of cached records.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

func (c *Cache) Vote(id int64) (votes.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.byId[id]
	if !ok {
		return votes.Record{}, false
	}
	return c.records[i], true
}

// GeoAreas returns the distinct geographic areas sorted by label.
func (c *Cache) GeoAreas() []votes.GeoArea {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.geoAreas)
}

// sortRecords orders by timestamp descending, ties by id descending.
// Unparseable timestamps sort last.
func sortRecords(records []votes.Record) {
	slices.SortStableFunc(records, func(a, b votes.Record) int {
		if !a.Time.Equal(b.Time) {
			if a.Time.After(b.Time) {
				return -1
			}
			return 1
		}
		if a.ID > b.ID {
			return -1
		}
		if a.ID < b.ID {
			return 1
		}
		return 0
	})
}

func buildGeoAreas(records []votes.Record) []votes.GeoArea {
	seen := map[votes.GeoArea]struct{}{}
	var out []votes.GeoArea
	for _, rec := range records {
		for _, area := range rec.GeoAreas {
			if _, ok := seen[area]; ok {
				continue
			}
			seen[area] = struct{}{}
			out = append(out, area)
		}
	}
	slices.SortFunc(out, func(a, b votes.GeoArea) int {
		if cmp := strings.Compare(a.Label, b.Label); cmp != 0 {
			return cmp
		}
		return strings.Compare(a.Code, b.Code)
	})
	return out
}
