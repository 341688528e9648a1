// Package filterclass classifies a configured filter name into an AS-set,
// a route-set, or a bare autonomous system number, following RFC 2622's
// hierarchical (colon-separated) set naming.
package filterclass

import (
	"strconv"
	"strings"

	"fupd/pkg/model"
)

// Classify maps a filter name to its FilterClass. Plain names are checked
// directly; hierarchical names (containing ':') are walked component by
// component until one component resolves to an as- or rs- prefixed set,
// in which case the whole (unsplit) name is returned under that kind — a
// hierarchical set name is itself a single irrd query object, never the
// individual component.
func Classify(name string) (model.FilterClass, error) {
	if !strings.Contains(name, ":") {
		return classifyComponent(name)
	}

	for _, component := range strings.Split(name, ":") {
		class, err := classifyComponent(component)
		if err != nil {
			continue // an unrecognized component: keep walking (AS numbers fall through the switch)
		}
		switch class.Kind {
		case model.KindAsSet:
			return model.AsSet(name), nil
		case model.KindRouteSet:
			return model.RouteSet(name), nil
		}
	}
	return model.FilterClass{}, &model.InvalidFilterError{Name: name}
}

// classifyComponent classifies a single (non-hierarchical) name component.
func classifyComponent(input string) (model.FilterClass, error) {
	if len(input) >= 3 {
		switch strings.ToLower(input[:3]) {
		case "as-":
			return model.AsSet(input), nil
		case "rs-":
			return model.RouteSet(input), nil
		}
	}
	if len(input) >= 2 && strings.EqualFold(input[:2], "as") {
		if n, err := strconv.ParseUint(input[2:], 10, 32); err == nil {
			return model.AutNum(uint32(n)), nil
		}
	}
	return model.FilterClass{}, &model.InvalidFilterError{Name: input}
}
