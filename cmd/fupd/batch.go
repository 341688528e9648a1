package main

import (
	"context"
	"net/netip"
	"time"

	"golang.org/x/time/rate"

	"fupd/pkg/irrd"
)

// batchPacing bounds how fast successive query chunks are issued on one
// connection. It exists purely so a large filter list (hundreds of
// AS-sets) does not turn into one multi-thousand-line pipelined batch in
// a single burst; it does not change the per-call write-then-flush-then-
// read contract irrd.Client itself enforces.
var batchPacing = rate.NewLimiter(rate.Every(250*time.Millisecond), 1)

// chunk splits items into groups of at most size, preserving order.
func chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = len(items)
	}
	var out [][]T
	for len(items) > 0 {
		n := size
		if n > len(items) {
			n = len(items)
		}
		out = append(out, items[:n])
		items = items[n:]
	}
	return out
}

// resolveAsSetsBatched resolves names in chunks of batchSize, pacing
// successive chunks through batchPacing.
func resolveAsSetsBatched(ctx context.Context, c *irrd.Client, names []string, batchSize int) (map[string][]uint32, error) {
	out := make(map[string][]uint32, len(names))
	for _, part := range chunk(names, batchSize) {
		if err := batchPacing.Wait(ctx); err != nil {
			return nil, err
		}
		res, err := c.ResolveAsSets(part)
		if err != nil {
			return nil, err
		}
		for k, v := range res {
			out[k] = v
		}
	}
	return out, nil
}

func resolveRouteSetsBatched(ctx context.Context, c *irrd.Client, names []string, batchSize int) (map[string][]netip.Prefix, error) {
	out := make(map[string][]netip.Prefix, len(names))
	for _, part := range chunk(names, batchSize) {
		if err := batchPacing.Wait(ctx); err != nil {
			return nil, err
		}
		res, err := c.ResolveRouteSets(part)
		if err != nil {
			return nil, err
		}
		for k, v := range res {
			out[k] = v
		}
	}
	return out, nil
}

func resolveAutnumsBatched(ctx context.Context, c *irrd.Client, asns []uint32, batchSize int) (map[uint32][]netip.Prefix, error) {
	out := make(map[uint32][]netip.Prefix, len(asns))
	for _, part := range chunk(asns, batchSize) {
		if err := batchPacing.Wait(ctx); err != nil {
			return nil, err
		}
		res, err := c.ResolveAutnums(part)
		if err != nil {
			return nil, err
		}
		for k, v := range res {
			out[k] = v
		}
	}
	return out, nil
}
