package pagination

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultLimit is the page size when a limit is not provided.
	DefaultLimit = 100
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 500
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Limit  int
	Offset int
}

// Normalize applies the default and maximum limit and clamps negative offsets.
func (p Params) Normalize() Params {
	return Params{Limit: NormalizeLimit(p.Limit), Offset: max(p.Offset, 0)}
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Parse reads limit/offset query values. Empty values fall back to defaults.
func Parse(limitRaw, offsetRaw string) (Params, error) {
	var params Params
	if v := strings.TrimSpace(limitRaw); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			return Params{}, fmt.Errorf("limit must be a positive integer")
		}
		params.Limit = limit
	}
	if v := strings.TrimSpace(offsetRaw); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return Params{}, fmt.Errorf("offset must be a non-negative integer")
		}
		params.Offset = offset
	}
	return params.Normalize(), nil
}
