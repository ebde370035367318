package database

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// MatchMode selects how name filters compare against stored names.
type MatchMode string

const (
	// MatchContains is a case-insensitive substring match.
	MatchContains MatchMode = "contains"
	// MatchExact is a case-insensitive equality match.
	MatchExact MatchMode = "exact"
)

// ParseMatchMode accepts "contains", "exact" or an empty string for the default.
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", MatchContains:
		return MatchContains, nil
	case MatchExact:
		return MatchExact, nil
	}
	return "", fmt.Errorf("unknown filter match mode %q", s)
}

// FilterError reports a malformed query filter.
type FilterError struct {
	Param  string
	Value  string
	Reason string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("invalid %s filter %q: %s", e.Param, e.Value, e.Reason)
}

// Pair is a source/destination couple taken from a filter value.
type Pair[T any] struct {
	Source      T
	Destination T
}

// RouteFilter narrows routes, and flights through their route.
type RouteFilter struct {
	Countries *Pair[string]
	Cities    *Pair[string]
	Airports  *Pair[int64]
}

func (f RouteFilter) IsZero() bool {
	return f.Countries == nil && f.Cities == nil && f.Airports == nil
}

// ListQuery carries the options of a list call.
type ListQuery struct {
	Route RouteFilter
}

// ParseRouteFilter reads countries, cities and airports filters from q.
// Each value must split on "-" into exactly two non-empty tokens.
func ParseRouteFilter(q url.Values) (RouteFilter, error) {
	var f RouteFilter

	if v := q.Get("countries"); v != "" {
		p, err := splitPair("countries", v)
		if err != nil {
			return f, err
		}
		f.Countries = p
	}

	if v := q.Get("cities"); v != "" {
		p, err := splitPair("cities", v)
		if err != nil {
			return f, err
		}
		f.Cities = p
	}

	if v := q.Get("airports"); v != "" {
		p, err := splitPair("airports", v)
		if err != nil {
			return f, err
		}
		src, err := strconv.ParseInt(p.Source, 10, 64)
		if err != nil {
			return f, &FilterError{Param: "airports", Value: v, Reason: "source must be an airport id"}
		}
		dst, err := strconv.ParseInt(p.Destination, 10, 64)
		if err != nil {
			return f, &FilterError{Param: "airports", Value: v, Reason: "destination must be an airport id"}
		}
		f.Airports = &Pair[int64]{Source: src, Destination: dst}
	}

	return f, nil
}

func splitPair(param, value string) (*Pair[string], error) {
	parts := strings.Split(value, "-")
	if len(parts) != 2 {
		return nil, &FilterError{Param: param, Value: value, Reason: "expected <source>-<destination>"}
	}
	src, dst := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if src == "" || dst == "" {
		return nil, &FilterError{Param: param, Value: value, Reason: "source and destination must not be empty"}
	}
	return &Pair[string]{Source: src, Destination: dst}, nil
}

// where renders the filter against the route aliases of routeJoins.
// Placeholders are numbered after the args already present.
func (f RouteFilter) where(mode MatchMode, args []any) (string, []any) {
	var conds []string

	match := func(column, value string) {
		if mode == MatchExact {
			args = append(args, value)
			conds = append(conds, fmt.Sprintf("lower(%s) = lower($%d)", column, len(args)))
			return
		}
		args = append(args, "%"+escapeLike(value)+"%")
		conds = append(conds, fmt.Sprintf("%s ILIKE $%d", column, len(args)))
	}

	if f.Countries != nil {
		match("sco.name", f.Countries.Source)
		match("dco.name", f.Countries.Destination)
	}
	if f.Cities != nil {
		match("sc.name", f.Cities.Source)
		match("dc.name", f.Cities.Destination)
	}
	if f.Airports != nil {
		args = append(args, f.Airports.Source, f.Airports.Destination)
		conds = append(conds, fmt.Sprintf("r.source_id = $%d AND r.destination_id = $%d", len(args)-1, len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
