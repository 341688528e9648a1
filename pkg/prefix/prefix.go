// Package prefix parses the two textual forms the irrd wire protocol
// speaks in reply bodies: "AS<decimal>" autnum tokens and "addr/masklen"
// prefix tokens.
package prefix

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// ParseAutnum parses an autnum token such as "AS65001" or "as65001".
func ParseAutnum(input string) (uint32, error) {
	if len(input) < 3 {
		return 0, fmt.Errorf("invalid autnum %q", input)
	}
	prefix := input[:2]
	if prefix != "AS" && prefix != "as" {
		return 0, fmt.Errorf("invalid autnum %q", input)
	}
	n, err := strconv.ParseUint(input[2:], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid autnum %q: %w", input, err)
	}
	return uint32(n), nil
}

// ParsePrefix parses an "addr/masklen" token. It does not require the
// address to already be in canonical (masked) form, matching what an irrd
// server actually hands back; host bits are kept as given.
func ParsePrefix(input string) (netip.Prefix, error) {
	idx := strings.IndexByte(input, '/')
	if idx < 0 {
		return netip.Prefix{}, fmt.Errorf("invalid prefix %q", input)
	}
	addrPart, maskPart := input[:idx], input[idx+1:]
	if strings.IndexByte(maskPart, '/') >= 0 {
		return netip.Prefix{}, fmt.Errorf("invalid prefix %q", input)
	}

	addr, err := netip.ParseAddr(addrPart)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("invalid prefix %q: %w", input, err)
	}
	masklen, err := strconv.Atoi(maskPart)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("invalid prefix %q: %w", input, err)
	}

	maxBits := 32
	if addr.Is6() && !addr.Is4In6() {
		maxBits = 128
	}
	if masklen < 0 || masklen > maxBits {
		return netip.Prefix{}, fmt.Errorf("invalid prefix %q: mask out of range", input)
	}

	return netip.PrefixFrom(addr, masklen), nil
}
