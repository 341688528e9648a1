package format

import (
	"net/netip"
	"strings"
	"testing"

	"fupd/pkg/aggregate"
)

func entry(cidr string) aggregate.Entry {
	p := netip.MustParsePrefix(cidr)
	agg := aggregate.NewAggregator()
	return agg.Aggregate([]netip.Prefix{p})[0]
}

func TestPrefixList(t *testing.T) {
	entries := []aggregate.Entry{entry("192.0.2.0/24")}
	got := PrefixList("CUSTOMERS", "example", entries)

	for _, want := range []string{
		"no ip prefix-list CUSTOMERS\n",
		"no ipv6 prefix-list CUSTOMERS\n",
		"ip prefix-list CUSTOMERS description example\n",
		"ipv6 prefix-list CUSTOMERS description example\n",
		"ip prefix-list CUSTOMERS permit 192.0.2.0/24\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q, got:\n%s", want, got)
		}
	}
	if strings.Contains(got, "ipv6 prefix-list CUSTOMERS permit") {
		t.Errorf("unexpected ipv6 permit line in v4-only output:\n%s", got)
	}
}

func TestPrefixList_MixedFamily(t *testing.T) {
	entries := []aggregate.Entry{entry("192.0.2.0/24"), entry("2001:db8::/32")}
	got := PrefixList("MIXED", "", entries)

	if !strings.Contains(got, "no ip prefix-list MIXED\n") {
		t.Errorf("missing v4 clear line:\n%s", got)
	}
	if !strings.Contains(got, "no ipv6 prefix-list MIXED\n") {
		t.Errorf("missing v6 clear line:\n%s", got)
	}
	if !strings.Contains(got, "ipv6 prefix-list MIXED permit 2001:db8::/32\n") {
		t.Errorf("missing v6 permit line:\n%s", got)
	}
}

func TestPrefixSet(t *testing.T) {
	entries := []aggregate.Entry{entry("192.0.2.0/24"), entry("198.51.100.0/24")}
	got := PrefixSet("EXPORT", "example", entries)

	wantLines := []string{
		"no prefix-set EXPORT",
		"prefix-set EXPORT",
		" # example",
		" 192.0.2.0/24,",
		" 198.51.100.0/24",
		"end-set",
	}
	for _, want := range wantLines {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q, got:\n%s", want, got)
		}
	}
	if !strings.HasSuffix(got, "end-set\n") {
		t.Errorf("expected output to end with end-set, got:\n%s", got)
	}
}
