package sales

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidFilter is returned for a region outside the allowed set.
var ErrInvalidFilter = errors.New("sales: invalid region filter")

// Region selects which records participate in aggregation.
type Region string

const (
	RegionAll   Region = "all"
	RegionNorth Region = "north"
	RegionEast  Region = "east"
	RegionSouth Region = "south"
	RegionWest  Region = "west"
)

// Regions lists the selectable filters in picker order.
var Regions = []Region{RegionNorth, RegionEast, RegionSouth, RegionWest, RegionAll}

// ParseRegion matches a user supplied region case-insensitively. Empty input means all regions.
func ParseRegion(v string) (Region, error) {
	cleaned := strings.ToLower(v)
	if cleaned == "" {
		return RegionAll, nil
	}
	for _, r := range Regions {
		if string(r) == cleaned {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFilter, v)
}

// IsAll reports whether the region disables filtering.
func (r Region) IsAll() bool {
	return r == "" || r == RegionAll
}

// Matches reports whether a record region passes the filter.
func (r Region) Matches(recordRegion string) bool {
	if r.IsAll() {
		return true
	}
	return strings.EqualFold(recordRegion, string(r))
}

// Label is the capitalised display name.
func (r Region) Label() string {
	if r.IsAll() {
		return "All"
	}
	s := string(r)
	return strings.ToUpper(s[:1]) + s[1:]
}
