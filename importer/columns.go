package importer

import (
	"fmt"
	"strings"

	"github.com/warp/upgrade-advisor/generic"
)

// =============================================================================
// COLUMN RESOLVER - Maps logical columns to positions in a header row
// =============================================================================

// ColumnSpec describes how to find one logical column.
type ColumnSpec struct {
	Key      string   `toml:"key"`
	Names    []string `toml:"names"`
	Letter   string   `toml:"letter"`
	Context  string   `toml:"context"`
	Exclude  []string `toml:"exclude"`
	Required bool     `toml:"required"`
}

// ColumnLetterToIndex converts "A" to 0, "Z" to 25, "AA" to 26.
func ColumnLetterToIndex(letter string) (int, error) {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if letter == "" {
		return 0, fmt.Errorf("%w: empty column letter", generic.ErrInvalidInput)
	}
	n := 0
	for _, r := range letter {
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("%w: column letter %q", generic.ErrInvalidInput, letter)
		}
		n = n*26 + int(r-'A'+1)
	}
	return n - 1, nil
}

// Mapping is the resolved position of each logical column.
type Mapping map[string]int

func (m Mapping) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// Resolve locates every spec in headers.
//
// With preferPosition the column letter wins whenever it is inside the
// header row. Otherwise names are tried first, in this order: exact,
// case-insensitive, substring together with the spec's context, substring.
// A column claimed by one spec is not offered to the next. Required
// columns whose names are not found fall back to their letter; a required
// column that still cannot be placed is a MissingColumnError.
func Resolve(headers []string, specs []ColumnSpec, preferPosition bool) (Mapping, error) {
	mapping := make(Mapping, len(specs))
	claimed := make(map[int]bool, len(specs))

	byLetter := func(spec ColumnSpec) (int, bool) {
		if spec.Letter == "" {
			return 0, false
		}
		idx, err := ColumnLetterToIndex(spec.Letter)
		if err != nil || idx >= len(headers) || claimed[idx] {
			return 0, false
		}
		return idx, true
	}

	for _, spec := range specs {
		var (
			idx int
			ok  bool
		)
		if preferPosition {
			idx, ok = byLetter(spec)
		}
		if !ok {
			idx, ok = byName(headers, spec, claimed)
		}
		if !ok && spec.Required && !preferPosition {
			idx, ok = byLetter(spec)
		}
		if !ok {
			if spec.Required {
				return nil, &generic.MissingColumnError{Column: spec.Key}
			}
			continue
		}
		mapping[spec.Key] = idx
		claimed[idx] = true
	}
	return mapping, nil
}

func byName(headers []string, spec ColumnSpec, claimed map[int]bool) (int, bool) {
	lower := make([]string, len(headers))
	for i, h := range headers {
		lower[i] = strings.ToLower(strings.TrimSpace(h))
	}

	usable := func(i int) bool {
		if claimed[i] || lower[i] == "" {
			return false
		}
		for _, ex := range spec.Exclude {
			if strings.Contains(lower[i], strings.ToLower(ex)) {
				return false
			}
		}
		return true
	}

	for _, name := range spec.Names {
		for i, h := range headers {
			if usable(i) && strings.TrimSpace(h) == name {
				return i, true
			}
		}
	}
	for _, name := range spec.Names {
		for i := range headers {
			if usable(i) && lower[i] == strings.ToLower(name) {
				return i, true
			}
		}
	}
	if spec.Context != "" {
		ctx := strings.ToLower(spec.Context)
		for i := range headers {
			if !usable(i) || !strings.Contains(lower[i], ctx) {
				continue
			}
			for _, name := range spec.Names {
				if strings.Contains(lower[i], strings.ToLower(name)) {
					return i, true
				}
			}
		}
	}
	for i := range headers {
		if !usable(i) {
			continue
		}
		for _, name := range spec.Names {
			if strings.Contains(lower[i], strings.ToLower(name)) {
				return i, true
			}
		}
	}
	return 0, false
}
