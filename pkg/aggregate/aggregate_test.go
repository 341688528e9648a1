package aggregate

import (
	"net/netip"
	"testing"
)

func mustPrefixes(t *testing.T, cidrs ...string) []netip.Prefix {
	t.Helper()
	out := make([]netip.Prefix, len(cidrs))
	for i, c := range cidrs {
		p, err := netip.ParsePrefix(c)
		if err != nil {
			t.Fatalf("parse %q: %v", c, err)
		}
		out[i] = p
	}
	return out
}

func TestAggregator_Aggregate(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "two sibling /24s collapse to a /23 ge/le window",
			input: []string{"1.0.0.0/24", "1.0.1.0/24"},
			want:  []string{"1.0.0.0/23 ge 24 le 24"},
		},
		{
			name:  "four /24s collapse to a /22 ge/le window",
			input: []string{"1.0.0.0/24", "1.0.1.0/24", "1.0.2.0/24", "1.0.3.0/24"},
			want:  []string{"1.0.0.0/22 ge 24 le 24"},
		},
		{
			name:  "non-sibling prefixes stay separate",
			input: []string{"1.0.0.0/24", "1.0.2.0/24"},
			want:  []string{"1.0.0.0/24", "1.0.2.0/24"},
		},
		{
			name:  "single prefix unchanged",
			input: []string{"10.0.0.0/8"},
			want:  []string{"10.0.0.0/8"},
		},
		{
			name:  "a /24 and its two sibling /25s widen into one le-bounded entry",
			input: []string{"192.0.2.0/24", "192.0.2.0/25", "192.0.2.128/25"},
			want:  []string{"192.0.2.0/24 le 25"},
		},
		{
			name:  "ipv6 siblings collapse to a ge/le window",
			input: []string{"2001:db8::/33", "2001:db8:8000::/33"},
			want:  []string{"2001:db8::/32 ge 33 le 33"},
		},
	}

	agg := NewAggregator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := agg.Aggregate(mustPrefixes(t, tt.input...))
			if len(got) != len(tt.want) {
				t.Fatalf("got %d entries, want %d: %v", len(got), len(tt.want), got)
			}
			gotStrs := make(map[string]bool, len(got))
			for _, e := range got {
				gotStrs[e.String()] = true
			}
			for _, w := range tt.want {
				if !gotStrs[w] {
					t.Errorf("missing expected entry %q in result %v", w, got)
				}
			}
		})
	}
}

func TestAggregator_AggregateEmpty(t *testing.T) {
	agg := NewAggregator()
	got := agg.Aggregate(nil)
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestEntryString_WindowRendering(t *testing.T) {
	e := Entry{Prefix: netip.MustParseAddr("192.0.2.0"), Mask: 24, Min: 23, Max: 25, valid: true}
	want := "192.0.2.0/24 ge 23 le 25"
	if got := e.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEntryString_BareMask(t *testing.T) {
	e := Entry{Prefix: netip.MustParseAddr("192.0.2.0"), Mask: 24, Min: 24, Max: 24, valid: true}
	want := "192.0.2.0/24"
	if got := e.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
