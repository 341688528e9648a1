// Package geoannotate enriches a formatter comment line with a country-mix
// (and, optionally, top-origin-ASN) summary of an aggregated prefix set,
// using MaxMind's GeoIP2 Country and ASN databases. It is optional: a
// driver with no configured database path never constructs a Readers
// value.
package geoannotate

import (
	"fmt"
	"net"
	"sort"

	"github.com/oschwald/geoip2-golang"

	"fupd/pkg/aggregate"
)

// Readers wraps the MaxMind readers used for comment enrichment. ASN is
// nil unless the driver configured an ASN database path; Summarize falls
// back to country-only output in that case.
type Readers struct {
	Country *geoip2.Reader
	ASN     *geoip2.Reader
}

// Open opens the MaxMind Country database at countryPath, and the ASN
// database at asnPath if asnPath is non-empty.
func Open(countryPath, asnPath string) (*Readers, error) {
	countryDB, err := geoip2.Open(countryPath)
	if err != nil {
		return nil, fmt.Errorf("open geoip country database: %w", err)
	}

	r := &Readers{Country: countryDB}
	if asnPath != "" {
		asnDB, err := geoip2.Open(asnPath)
		if err != nil {
			countryDB.Close()
			return nil, fmt.Errorf("open geoip ASN database: %w", err)
		}
		r.ASN = asnDB
	}
	return r, nil
}

// Close closes the underlying readers.
func (r *Readers) Close() error {
	var err error
	if r.Country != nil {
		if e := r.Country.Close(); e != nil {
			err = e
		}
	}
	if r.ASN != nil {
		if e := r.ASN.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

// Summarize samples the network address of each entry, looks up its
// country (and, if an ASN reader is open, its origin AS), and renders a
// "62% US, 21% DE, 17% other (top origin AS65001)" style breakdown for
// inclusion in a formatter comment. It performs at most one MaxMind
// lookup per output entry per database, never per pre-aggregation prefix.
func (r *Readers) Summarize(entries []aggregate.Entry) string {
	if len(entries) == 0 {
		return ""
	}

	countryCounts := make(map[string]int)
	asnCounts := make(map[uint32]int)
	for _, e := range entries {
		country := r.countryFor(e)
		if country == "" {
			country = "other"
		}
		countryCounts[country]++

		if r.ASN != nil {
			if asn, ok := r.asnFor(e); ok {
				asnCounts[asn]++
			}
		}
	}

	out := percentageBreakdown(countryCounts, len(entries))
	if top, ok := topASN(asnCounts); ok {
		out += fmt.Sprintf(" (top origin AS%d)", top)
	}
	return out
}

func percentageBreakdown(counts map[string]int, total int) string {
	type stat struct {
		key string
		n   int
	}
	stats := make([]stat, 0, len(counts))
	for k, n := range counts {
		stats = append(stats, stat{k, n})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].n != stats[j].n {
			return stats[i].n > stats[j].n
		}
		return stats[i].key < stats[j].key
	})

	parts := make([]string, len(stats))
	for i, s := range stats {
		pct := (s.n * 100) / total
		parts[i] = fmt.Sprintf("%d%% %s", pct, s.key)
	}

	out := parts[0]
	for _, p := range parts[1:] {
		out += ", " + p
	}
	return out
}

func topASN(counts map[uint32]int) (uint32, bool) {
	var best uint32
	bestN := 0
	for asn, n := range counts {
		if n > bestN || (n == bestN && asn < best) {
			best, bestN = asn, n
		}
	}
	return best, bestN > 0
}

func (r *Readers) countryFor(e aggregate.Entry) string {
	netIP := net.IP(e.Prefix.AsSlice())
	record, err := r.Country.Country(netIP)
	if err != nil || record.Country.IsoCode == "" {
		return ""
	}
	return record.Country.IsoCode
}

func (r *Readers) asnFor(e aggregate.Entry) (uint32, bool) {
	netIP := net.IP(e.Prefix.AsSlice())
	record, err := r.ASN.ASN(netIP)
	if err != nil || record.AutonomousSystemNumber == 0 {
		return 0, false
	}
	return uint32(record.AutonomousSystemNumber), true
}
