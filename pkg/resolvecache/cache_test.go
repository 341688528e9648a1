package resolvecache

import (
	"net/netip"
	"testing"
	"time"
)

func TestCache_AsSetRoundTrip(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	now := time.Now()
	if err := c.PutAsSet("AS-EXAMPLE", []string{"ripe"}, []uint32{65001, 65002}, now); err != nil {
		t.Fatalf("PutAsSet: %v", err)
	}

	got, ok := c.GetAsSet("AS-EXAMPLE", []string{"ripe"}, time.Hour)
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if len(got) != 2 || got[0] != 65001 || got[1] != 65002 {
		t.Errorf("got %v", got)
	}
}

func TestCache_AsSetExpired(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	stale := time.Now().Add(-2 * time.Hour)
	if err := c.PutAsSet("AS-EXAMPLE", []string{"ripe"}, []uint32{65001}, stale); err != nil {
		t.Fatalf("PutAsSet: %v", err)
	}

	if _, ok := c.GetAsSet("AS-EXAMPLE", []string{"ripe"}, time.Hour); ok {
		t.Error("expected a cache miss for a stale entry")
	}
}

func TestCache_RouteSetAndAutnumKeysDontCollide(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	now := time.Now()
	prefixes := []netip.Prefix{netip.MustParsePrefix("192.0.2.0/24")}
	if err := c.PutRouteSet("RS-EXAMPLE", []string{"ripe"}, prefixes, now); err != nil {
		t.Fatalf("PutRouteSet: %v", err)
	}
	if err := c.PutAutnum(65001, prefixes, now); err != nil {
		t.Fatalf("PutAutnum: %v", err)
	}

	rsGot, ok := c.GetRouteSet("RS-EXAMPLE", []string{"ripe"}, time.Hour)
	if !ok || len(rsGot) != 1 {
		t.Fatalf("GetRouteSet: got %v, ok=%v", rsGot, ok)
	}
	anGot, ok := c.GetAutnum(65001, time.Hour)
	if !ok || len(anGot) != 1 {
		t.Fatalf("GetAutnum: got %v, ok=%v", anGot, ok)
	}
}

func TestCache_Miss(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	if _, ok := c.GetAsSet("AS-UNKNOWN", []string{"ripe"}, time.Hour); ok {
		t.Error("expected a miss for an unknown key")
	}
}
