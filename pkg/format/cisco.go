// Package format renders aggregated prefix entries as Cisco IOS
// "ip/ipv6 prefix-list" text or IOS-XR "prefix-set" text.
package format

import (
	"fmt"
	"strings"

	"fupd/pkg/aggregate"
)

// PrefixList renders a classic IOS prefix-list: "no ... prefix-list"
// clear-lines and "... description" lines for both address families,
// unconditionally (IOS keeps "ip prefix-list" and "ipv6 prefix-list" as
// separate namespaces, and a stale same-named list in the family this
// filter doesn't use still needs clearing), followed by one permit line
// per entry.
func PrefixList(name, comment string, entries []aggregate.Entry) string {
	var b strings.Builder

	fmt.Fprintf(&b, "no ip prefix-list %s\n", name)
	fmt.Fprintf(&b, "no ipv6 prefix-list %s\n", name)
	if comment != "" {
		fmt.Fprintf(&b, "ip prefix-list %s description %s\n", name, comment)
		fmt.Fprintf(&b, "ipv6 prefix-list %s description %s\n", name, comment)
	}
	for _, e := range entries {
		kw := "ip"
		if !e.Prefix.Is4() {
			kw = "ipv6"
		}
		fmt.Fprintf(&b, "%s prefix-list %s permit %s\n", kw, name, e.String())
	}
	return b.String()
}

// PrefixSet renders an IOS-XR prefix-set block: a "no prefix-set" line to
// clear any prior definition, the comment as a leading "#" line inside the
// block, then the comma-and-newline separated entry list terminated by
// "end-set".
func PrefixSet(name, comment string, entries []aggregate.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "no prefix-set %s\n", name)
	fmt.Fprintf(&b, "prefix-set %s\n", name)
	if comment != "" {
		fmt.Fprintf(&b, " # %s\n", comment)
	}
	for i, e := range entries {
		sep := ",\n"
		if i == len(entries)-1 {
			sep = "\n"
		}
		fmt.Fprintf(&b, " %s%s", e.String(), sep)
	}
	b.WriteString("end-set\n")
	return b.String()
}
