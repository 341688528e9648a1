package main

import (
	"context"
	"fmt"
	"net/netip"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"fupd/pkg/aggregate"
	"fupd/pkg/config"
	"fupd/pkg/filterclass"
	"fupd/pkg/format"
	"fupd/pkg/geoannotate"
	"fupd/pkg/irrd"
	"fupd/pkg/model"
	"fupd/pkg/resolvecache"
	"fupd/pkg/workers"
)

// Run loads the classified filter set for every configured router,
// resolves it against the irrd server (consulting the resolver cache
// first), aggregates each router's prefix union, and writes the rendered
// output files. It returns the first fatal error encountered; soft
// warnings (an empty filter result) are logged and otherwise ignored.
func Run(cfg *config.Config, dryRun bool) error {
	ctx := context.Background()

	routers, err := cfg.RouterConfigs()
	if err != nil {
		return err
	}

	classified := make(map[string]model.FilterClass)
	for _, r := range routers {
		for _, name := range r.Filters {
			if _, ok := classified[name]; ok {
				continue
			}
			class, err := filterclass.Classify(name)
			if err != nil {
				return err
			}
			classified[name] = class
		}
	}

	var cache *resolvecache.Cache
	if cfg.Global.CacheDir != "" {
		cache, err = resolvecache.Open(cfg.Global.CacheDir)
		if err != nil {
			log.Warnf("resolver cache disabled: %v", err)
			cache = nil
		} else {
			defer cache.Close()
		}
	}
	cacheTTL, err := cfg.Global.CacheTTLDuration()
	if err != nil {
		return &model.InvalidConfigError{Reason: err.Error()}
	}

	var geo *geoannotate.Readers
	if cfg.Global.GeoipCountryDB != "" {
		geo, err = geoannotate.Open(cfg.Global.GeoipCountryDB, cfg.Global.GeoipASNDB)
		if err != nil {
			log.Warnf("geo-annotation disabled: %v", err)
			geo = nil
		} else {
			defer geo.Close()
		}
	}

	sources := strings.Join(cfg.Global.Sources, ",")
	client, err := irrd.Open(cfg.Global.Server, sources)
	if err != nil {
		return err
	}
	defer client.Close()

	resolved, err := resolveAll(ctx, client, cache, cacheTTL, classified, cfg.Global.Sources, cfg.Global.BatchSize)
	if err != nil {
		return err
	}

	jobs := make([]func() error, 0, len(routers))
	for _, r := range routers {
		r := r
		jobs = append(jobs, func() error {
			return renderRouter(r, resolved, cfg, geo, dryRun)
		})
	}
	return runConcurrently(ctx, jobs, cfg.Global.WriteConcurrency)
}

// resolveAll resolves every classified filter name to its union of
// prefixes. AS-sets resolve to member AS numbers first (consulting the
// cache), then those AS numbers plus any directly configured AS numbers
// are resolved to prefixes together in a single batched pass — mirroring
// spec.md's note that AS-set resolution must run before AS-number
// resolution, since AS-sets are what contribute AS numbers in the first
// place.
func resolveAll(
	ctx context.Context,
	client *irrd.Client,
	cache *resolvecache.Cache,
	cacheTTL time.Duration,
	classified map[string]model.FilterClass,
	sources []string,
	batchSize int,
) (map[string][]netip.Prefix, error) {
	var asSetNames, routeSetNames []string
	var directAutnums []uint32
	for name, class := range classified {
		switch class.Kind {
		case model.KindAsSet:
			asSetNames = append(asSetNames, name)
		case model.KindRouteSet:
			routeSetNames = append(routeSetNames, name)
		case model.KindAutNum:
			directAutnums = append(directAutnums, class.AutNum)
		}
	}

	asSetMembers := make(map[string][]uint32, len(asSetNames))
	var uncachedAsSets []string
	for _, name := range asSetNames {
		if cache != nil {
			if members, ok := cache.GetAsSet(name, sources, cacheTTL); ok {
				asSetMembers[name] = members
				continue
			}
		}
		uncachedAsSets = append(uncachedAsSets, name)
	}
	if len(uncachedAsSets) > 0 {
		fetched, err := resolveAsSetsBatched(ctx, client, uncachedAsSets, batchSize)
		if err != nil {
			return nil, err
		}
		now := time.Now()
		for name, members := range fetched {
			asSetMembers[name] = members
			if cache != nil {
				if err := cache.PutAsSet(name, sources, members, now); err != nil {
					log.Warnf("resolver cache write failed for %s: %v", name, err)
				}
			}
		}
	}

	routeSetPrefixes := make(map[string][]netip.Prefix, len(routeSetNames))
	var uncachedRouteSets []string
	for _, name := range routeSetNames {
		if cache != nil {
			if prefixes, ok := cache.GetRouteSet(name, sources, cacheTTL); ok {
				routeSetPrefixes[name] = prefixes
				continue
			}
		}
		uncachedRouteSets = append(uncachedRouteSets, name)
	}
	if len(uncachedRouteSets) > 0 {
		fetched, err := resolveRouteSetsBatched(ctx, client, uncachedRouteSets, batchSize)
		if err != nil {
			return nil, err
		}
		now := time.Now()
		for name, prefixes := range fetched {
			routeSetPrefixes[name] = prefixes
			if cache != nil {
				if err := cache.PutRouteSet(name, sources, prefixes, now); err != nil {
					log.Warnf("resolver cache write failed for %s: %v", name, err)
				}
			}
		}
	}

	asnSet := make(map[uint32]struct{})
	for _, n := range directAutnums {
		asnSet[n] = struct{}{}
	}
	for _, members := range asSetMembers {
		for _, n := range members {
			asnSet[n] = struct{}{}
		}
	}
	allAsns := make([]uint32, 0, len(asnSet))
	for n := range asnSet {
		allAsns = append(allAsns, n)
	}

	autnumPrefixes := make(map[uint32][]netip.Prefix, len(allAsns))
	var uncachedAutnums []uint32
	for _, n := range allAsns {
		if cache != nil {
			if prefixes, ok := cache.GetAutnum(n, cacheTTL); ok {
				autnumPrefixes[n] = prefixes
				continue
			}
		}
		uncachedAutnums = append(uncachedAutnums, n)
	}
	if len(uncachedAutnums) > 0 {
		fetched, err := resolveAutnumsBatched(ctx, client, uncachedAutnums, batchSize)
		if err != nil {
			return nil, err
		}
		now := time.Now()
		for n, prefixes := range fetched {
			autnumPrefixes[n] = prefixes
			if cache != nil {
				if err := cache.PutAutnum(n, prefixes, now); err != nil {
					log.Warnf("resolver cache write failed for AS%d: %v", n, err)
				}
			}
		}
	}

	resolved := make(map[string][]netip.Prefix, len(classified))
	for name, class := range classified {
		switch class.Kind {
		case model.KindAsSet:
			seen := make(map[netip.Prefix]struct{})
			var out []netip.Prefix
			for _, n := range asSetMembers[name] {
				for _, p := range autnumPrefixes[n] {
					if _, dup := seen[p]; !dup {
						seen[p] = struct{}{}
						out = append(out, p)
					}
				}
			}
			resolved[name] = out
		case model.KindRouteSet:
			resolved[name] = routeSetPrefixes[name]
		case model.KindAutNum:
			resolved[name] = autnumPrefixes[class.AutNum]
		}
	}
	return resolved, nil
}

// renderRouter builds one router's aggregated, formatted configuration
// text and writes it to <outputdir>/<hostname>.txt.
func renderRouter(r model.RouterConfig, resolved map[string][]netip.Prefix, cfg *config.Config, geo *geoannotate.Readers, dryRun bool) error {
	seen := make(map[netip.Prefix]struct{})
	var union []netip.Prefix
	for _, name := range r.Filters {
		prefixes, ok := resolved[name]
		if !ok || len(prefixes) == 0 {
			log.Warnf("router %s: filter %s resolved to no prefixes, skipping", r.Hostname, name)
			continue
		}
		for _, p := range prefixes {
			if _, dup := seen[p]; !dup {
				seen[p] = struct{}{}
				union = append(union, p)
			}
		}
	}

	if len(union) == 0 {
		log.Warnf("router %s: resolved prefix set is empty, skipping output file", r.Hostname)
		return nil
	}

	var entries []aggregate.Entry
	if cfg.Global.Aggregate {
		entries = aggregate.NewAggregator().Aggregate(union)
	} else {
		entries = make([]aggregate.Entry, len(union))
		for i, p := range union {
			entries[i] = aggregate.Entry{Prefix: p.Addr(), Mask: uint8(p.Bits()), Min: uint8(p.Bits()), Max: uint8(p.Bits())}
		}
	}
	// Aggregate returns entries grouped level-by-level (mask 128 down to
	// 0), not in address order; the caller sorts before display.
	aggregate.SortEntries(entries)

	comment := buildComment(cfg, entries, geo)
	if comment == "" {
		comment = strings.Join(r.Filters, ", ")
	}

	var content string
	switch r.Style {
	case model.StylePrefixList:
		content = format.PrefixList(r.Hostname, comment, entries) + "end\n"
	case model.StylePrefixSet:
		content = format.PrefixSet(r.Hostname, comment, entries)
	default:
		return &model.InvalidConfigError{Reason: fmt.Sprintf("unknown style for router %s", r.Hostname)}
	}

	if dryRun {
		log.Infof("dry-run: would write %d bytes to %s/%s.txt", len(content), cfg.Global.OutputDir, r.Hostname)
		return nil
	}
	return writeAtomic(cfg.Global.OutputDir, r.Hostname, content)
}

func buildComment(cfg *config.Config, entries []aggregate.Entry, geo *geoannotate.Readers) string {
	var parts []string
	if cfg.Global.Timestamps {
		parts = append(parts, "Generated at "+time.Now().Format(time.RFC3339))
	}
	if geo != nil {
		if summary := geo.Summarize(entries); summary != "" {
			parts = append(parts, summary)
		}
	}
	return strings.Join(parts, " | ")
}

// runConcurrently runs jobs through a bounded worker pool (one router's
// output write per job) and returns the first error encountered, if any.
func runConcurrently(ctx context.Context, jobs []func() error, concurrency int) error {
	if concurrency <= 0 {
		concurrency = 1
	}
	if concurrency > len(jobs) && len(jobs) > 0 {
		concurrency = len(jobs)
	}
	pool := workers.NewPool(ctx, workers.Config{Workers: concurrency})
	for _, job := range jobs {
		job := job
		pool.Submit(func(context.Context) error { return job() })
	}
	return pool.Wait()
}
