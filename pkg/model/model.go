// Package model holds the shared types passed between the irrd client,
// the aggregator, and the config/formatting layers.
package model

import (
	"strconv"
)

// Style selects which Cisco dialect a router's output is rendered in.
type Style int

const (
	StylePrefixList Style = iota // IOS "ip prefix-list" / "ipv6 prefix-list"
	StylePrefixSet                // IOS-XR "prefix-set"
)

func (s Style) String() string {
	switch s {
	case StylePrefixList:
		return "prefix-list"
	case StylePrefixSet:
		return "prefix-set"
	default:
		return "unknown"
	}
}

// ParseStyle parses the "style" config field.
func ParseStyle(s string) (Style, error) {
	switch s {
	case "prefix-list":
		return StylePrefixList, nil
	case "prefix-set":
		return StylePrefixSet, nil
	default:
		return 0, &InvalidConfigError{Reason: "unknown style " + s}
	}
}

// FilterKind tags the variant held by a FilterClass.
type FilterKind int

const (
	KindAsSet FilterKind = iota
	KindRouteSet
	KindAutNum
)

// FilterClass is the classification of a filter name into one of the three
// object kinds an IRRd server understands: an AS-set, a route-set, or a
// bare autonomous system number.
type FilterClass struct {
	Kind   FilterKind
	Name   string // original name, for AsSet/RouteSet
	AutNum uint32 // populated only when Kind == KindAutNum
}

func AsSet(name string) FilterClass    { return FilterClass{Kind: KindAsSet, Name: name} }
func RouteSet(name string) FilterClass { return FilterClass{Kind: KindRouteSet, Name: name} }
func AutNum(n uint32) FilterClass      { return FilterClass{Kind: KindAutNum, AutNum: n} }

func (f FilterClass) String() string {
	switch f.Kind {
	case KindAsSet:
		return f.Name
	case KindRouteSet:
		return f.Name
	case KindAutNum:
		return "AS" + strconv.FormatUint(uint64(f.AutNum), 10)
	default:
		return "?"
	}
}

// IsReservedAutnum reports whether n is in the set an IRRd client drops
// from an as-set expansion: AS0, 23456 (AS_TRANS), the 16-bit
// documentation/private/reserved range 64496..65535, and the 32-bit
// private range 4200000000..4294967294.
func IsReservedAutnum(n uint32) bool {
	switch {
	case n == 0:
		return true
	case n == 23456:
		return true
	case n >= 64496 && n <= 65535:
		return true
	case n >= 4200000000 && n <= 4294967294:
		return true
	default:
		return false
	}
}

// RouterConfig is one [[routers]] entry from the config file.
type RouterConfig struct {
	Hostname string
	Style    Style
	Filters  []string
}
