// Package resolvecache is an on-disk, TTL-bounded cache of resolved
// filter-name lookups, keyed by (kind, name, sources) for AS-sets and
// route-sets and by (kind, AS number) for autnums, so it survives
// across driver runs and saves a repeat IRRd round trip for sets that
// have not changed since the last run.
package resolvecache

import (
	"fmt"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	prefixAsSet    = "as:"
	prefixRouteSet = "rs:"
	prefixAutnum   = "an:"
)

// Cache wraps a goleveldb database holding msgpack-encoded cache entries.
type Cache struct {
	db     *leveldb.DB
	mu     sync.RWMutex
	closed bool
}

// Open opens (creating if absent) a cache database at dir.
func Open(dir string) (*Cache, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("open resolver cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.db.Close()
}

type asSetEntry struct {
	Members   []uint32 `msgpack:"members"`
	FetchedAt time.Time `msgpack:"fetched_at"`
}

type prefixSetEntry struct {
	Prefixes  []string  `msgpack:"prefixes"`
	FetchedAt time.Time `msgpack:"fetched_at"`
}

func sourcesKey(prefix, name string, sources []string) []byte {
	return []byte(prefix + name + "|" + strings.Join(sources, ","))
}

// GetAsSet returns the cached AS-set member list if present and younger
// than ttl.
func (c *Cache) GetAsSet(name string, sources []string, ttl time.Duration) ([]uint32, bool) {
	e, ok := getEntry[asSetEntry](c, sourcesKey(prefixAsSet, name, sources), ttl)
	if !ok {
		return nil, false
	}
	return e.Members, true
}

// PutAsSet stores an AS-set resolution result, stamped with the current
// time for later TTL comparison.
func (c *Cache) PutAsSet(name string, sources []string, members []uint32, now time.Time) error {
	return c.put(sourcesKey(prefixAsSet, name, sources), asSetEntry{Members: members, FetchedAt: now})
}

// GetRouteSet returns the cached route-set prefix list if present and
// younger than ttl.
func (c *Cache) GetRouteSet(name string, sources []string, ttl time.Duration) ([]netip.Prefix, bool) {
	e, ok := getEntry[prefixSetEntry](c, sourcesKey(prefixRouteSet, name, sources), ttl)
	if !ok {
		return nil, false
	}
	return parsePrefixes(e.Prefixes), true
}

// PutRouteSet stores a route-set resolution result.
func (c *Cache) PutRouteSet(name string, sources []string, prefixes []netip.Prefix, now time.Time) error {
	return c.put(sourcesKey(prefixRouteSet, name, sources), prefixSetEntry{
		Prefixes:  formatPrefixes(prefixes),
		FetchedAt: now,
	})
}

// GetAutnum returns the cached announced-prefix list for an AS number.
func (c *Cache) GetAutnum(asn uint32, ttl time.Duration) ([]netip.Prefix, bool) {
	key := []byte(fmt.Sprintf("%s%d", prefixAutnum, asn))
	e, ok := getEntry[prefixSetEntry](c, key, ttl)
	if !ok {
		return nil, false
	}
	return parsePrefixes(e.Prefixes), true
}

// PutAutnum stores an autnum resolution result.
func (c *Cache) PutAutnum(asn uint32, prefixes []netip.Prefix, now time.Time) error {
	key := []byte(fmt.Sprintf("%s%d", prefixAutnum, asn))
	return c.put(key, prefixSetEntry{Prefixes: formatPrefixes(prefixes), FetchedAt: now})
}

type cacheEntry interface {
	asSetEntry | prefixSetEntry
}

func entryFetchedAt(v interface{}) time.Time {
	switch e := v.(type) {
	case asSetEntry:
		return e.FetchedAt
	case prefixSetEntry:
		return e.FetchedAt
	default:
		return time.Time{}
	}
}

func getEntry[T cacheEntry](c *Cache, key []byte, ttl time.Duration) (T, bool) {
	var zero T
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return zero, false
	}
	data, err := c.db.Get(key, nil)
	if err != nil {
		return zero, false
	}
	var e T
	if err := msgpack.Unmarshal(data, &e); err != nil {
		return zero, false
	}
	if ttl > 0 && time.Since(entryFetchedAt(e)) > ttl {
		return zero, false
	}
	return e, true
}

func (c *Cache) put(key []byte, value interface{}) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return fmt.Errorf("resolver cache is closed")
	}
	data, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	return c.db.Put(key, data, nil)
}

func parsePrefixes(ss []string) []netip.Prefix {
	out := make([]netip.Prefix, 0, len(ss))
	for _, s := range ss {
		if p, err := netip.ParsePrefix(s); err == nil {
			out = append(out, p)
		}
	}
	return out
}

func formatPrefixes(ps []netip.Prefix) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.String()
	}
	return out
}
