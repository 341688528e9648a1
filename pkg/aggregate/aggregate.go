// Package aggregate compresses a set of IPv4/IPv6 prefixes into a minimal
// equivalent set of range-bearing entries ("P/mask ge min le max"), by
// repeatedly merging sibling prefixes that share a parent and prefixes
// whose (min,max) windows are adjacent.
package aggregate

import (
	"math/big"
	"net/netip"
	"sort"
	"strconv"
)

// Entry is one compressed filter line: prefix/mask, optionally widened by
// a ge/le window covering [min,max].
type Entry struct {
	Prefix netip.Addr
	Mask   uint8
	Min    uint8
	Max    uint8
	valid  bool
}

func entryFromPrefix(p netip.Prefix) Entry {
	bits := uint8(p.Bits())
	return Entry{Prefix: p.Addr(), Mask: bits, Min: bits, Max: bits, valid: true}
}

// String renders the entry in the "P/mask [ge min] [le max]" form used by
// the formatter; ge/le clauses are only emitted when they narrow the
// window beyond the bare mask.
func (e Entry) String() string {
	s := e.Prefix.String() + "/" + strconv.Itoa(int(e.Mask))
	if e.Mask != e.Min {
		s += " ge " + strconv.Itoa(int(e.Min))
	}
	if e.Mask != e.Max {
		s += " le " + strconv.Itoa(int(e.Max))
	}
	return s
}

// canLevelUpWith reports whether e and other are siblings under a common
// (mask-1) parent: their addresses differ in exactly the single bit that
// distinguishes the two halves of that parent, and they carry the same
// window.
func (e Entry) canLevelUpWith(other Entry) bool {
	if e.Mask == 0 || e.Prefix.Is4() != other.Prefix.Is4() {
		return false
	}
	width := bitWidth(e.Prefix)
	xor := new(big.Int).Xor(addrBigInt(e.Prefix), addrBigInt(other.Prefix))
	expect := new(big.Int).Lsh(big.NewInt(1), uint(width-int(e.Mask)))
	return xor.Cmp(expect) == 0 && e.Min == other.Min && e.Max == other.Max
}

// touching reports whether that's address falls within or immediately
// after this's own address block — the bound used to stop scanning a
// sorted run of entries for further merge candidates.
func touching(this, that Entry) bool {
	if this.Prefix.Is4() != that.Prefix.Is4() {
		return false
	}
	width := bitWidth(this.Prefix)
	wildcardBits := uint(width - int(this.Mask))
	next := new(big.Int).Add(addrBigInt(this.Prefix), new(big.Int).Lsh(big.NewInt(1), wildcardBits))
	return addrBigInt(that.Prefix).Cmp(next) <= 0
}

// SortEntries orders entries the way a caller should render them: by
// prefix address, then mask, then window (min, max). Aggregate's own
// internal passes rely on this order to find merge candidates; callers
// displaying the result must re-sort it themselves, since Aggregate
// returns entries grouped level-by-level (mask 128 down to 0), not in
// address order.
func SortEntries(es []Entry) {
	sort.Slice(es, func(i, j int) bool {
		a, b := es[i], es[j]
		if a.Prefix.Is4() != b.Prefix.Is4() {
			return a.Prefix.Is4()
		}
		if c := a.Prefix.Compare(b.Prefix); c != 0 {
			return c < 0
		}
		if a.Mask != b.Mask {
			return a.Mask < b.Mask
		}
		if a.Min != b.Min {
			return a.Min < b.Min
		}
		return a.Max < b.Max
	})
}

// levelUp repeatedly merges entries within this (sibling collapse and
// window extension) until a fixed point, pushing each sibling merge's
// coarser-mask result into next. Entries are tombstoned (valid=false)
// in place rather than removed, so indices stay stable across a pass.
func levelUp(this, next *[]Entry) {
	didChange := true
	for didChange {
		didChange = false
		SortEntries(*this)
		cur := *this
		for i := range cur {
			a := &cur[i]
			if !a.valid {
				continue
			}
			for j := i + 1; j < len(cur); j++ {
				b := &cur[j]
				if !b.valid {
					continue
				}
				if a.canLevelUpWith(*b) {
					merged := *a
					merged.Mask--
					a.valid = false
					b.valid = false
					*next = append(*next, merged)
					didChange = true
					continue
				}
				if a.Prefix == b.Prefix && a.Mask == b.Mask && a.Min+1 == b.Min {
					if b.Min < a.Min {
						a.Min = b.Min
					}
					if b.Max > a.Max {
						a.Max = b.Max
					}
					b.valid = false
					didChange = true
					continue
				}
				if !touching(*a, *b) {
					break
				}
			}
		}
	}
}

// Aggregator compresses prefix sets. It carries no state of its own; the
// type exists so callers configure and invoke it the same way as the rest
// of this codebase's stateless transform types.
type Aggregator struct{}

// NewAggregator returns a ready-to-use Aggregator.
func NewAggregator() *Aggregator { return &Aggregator{} }

// Aggregate compresses prefixes into the minimal equivalent set of range
// entries. Callers must deduplicate (prefix,mask) pairs first — aggregate
// does not detect or special-case duplicates, and a duplicate pair matches
// neither the sibling nor the window merge, so both copies stay in the
// output.
func (*Aggregator) Aggregate(prefixes []netip.Prefix) []Entry {
	var levels [129][]Entry
	for _, p := range prefixes {
		levels[p.Bits()] = append(levels[p.Bits()], entryFromPrefix(p))
	}

	for cur := 128; cur >= 1; cur-- {
		this := levels[cur]
		next := levels[cur-1]
		levelUp(&this, &next)
		levels[cur] = this
		levels[cur-1] = next
	}

	var out []Entry
	for level := 128; level >= 0; level-- {
		for _, e := range levels[level] {
			if e.valid {
				out = append(out, e)
			}
		}
	}
	return out
}
