package aggregate

import (
	"math/big"
	"net/netip"
)

// bitWidth returns the address width in bits: 32 for IPv4, 128 for IPv6.
// Every sibling/window comparison below is expressed in terms of this one
// width so the same code handles both families rather than duplicating the
// arithmetic for uint32 and a 128-bit type.
func bitWidth(a netip.Addr) int {
	if a.Is4() {
		return 32
	}
	return 128
}

func addrBigInt(a netip.Addr) *big.Int {
	return new(big.Int).SetBytes(a.AsSlice())
}
