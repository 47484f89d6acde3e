package catalog

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Size is an enumerated garment size
type Size string

const (
	SizeXXS  Size = "XXS"
	SizeXS   Size = "XS"
	SizeS    Size = "S"
	SizeM    Size = "M"
	SizeL    Size = "L"
	SizeXL   Size = "XL"
	SizeXXL  Size = "XXL"
	SizeXXXL Size = "XXXL"
)

// sizeOrder ranks sizes from smallest to largest
var sizeOrder = map[Size]int{
	SizeXXS:  0,
	SizeXS:   1,
	SizeS:    2,
	SizeM:    3,
	SizeL:    4,
	SizeXL:   5,
	SizeXXL:  6,
	SizeXXXL: 7,
}

var sizeAliases = map[string]Size{
	"2XS":         SizeXXS,
	"EXTRA SMALL": SizeXS,
	"SMALL":       SizeS,
	"MEDIUM":      SizeM,
	"LARGE":       SizeL,
	"EXTRA LARGE": SizeXL,
	"2XL":         SizeXXL,
	"3XL":         SizeXXXL,
}

// ParseSize parses a size label, accepting common aliases
func ParseSize(s string) (Size, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	if _, ok := sizeOrder[Size(key)]; ok {
		return Size(key), nil
	}
	if size, ok := sizeAliases[key]; ok {
		return size, nil
	}
	return "", fmt.Errorf("unknown size %q", s)
}

// IsValid returns true if the size is one of the enumerated sizes
func (s Size) IsValid() bool {
	_, ok := sizeOrder[s]
	return ok
}

// IsPlus returns true for sizes usually stocked in plus-size ranges
func (s Size) IsPlus() bool {
	return sizeOrder[s] >= sizeOrder[SizeXXL]
}

// SizeSet is a sorted, de-duplicated set of sizes.
// It is stored as a JSON array.
type SizeSet []Size

// NewSizeSet builds a size set from raw labels
func NewSizeSet(labels ...string) (SizeSet, error) {
	sizes := make([]Size, 0, len(labels))
	for _, label := range labels {
		if strings.TrimSpace(label) == "" {
			continue
		}
		size, err := ParseSize(label)
		if err != nil {
			return nil, err
		}
		sizes = append(sizes, size)
	}
	return SizeSetOf(sizes...), nil
}

// SizeSetOf builds a size set from sizes, dropping invalid and duplicate entries
func SizeSetOf(sizes ...Size) SizeSet {
	seen := make(map[Size]struct{}, len(sizes))
	set := make(SizeSet, 0, len(sizes))
	for _, s := range sizes {
		if !s.IsValid() {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		set = append(set, s)
	}
	sort.Slice(set, func(i, j int) bool {
		return sizeOrder[set[i]] < sizeOrder[set[j]]
	})
	return set
}

// Contains returns true if the set holds the size
func (s SizeSet) Contains(size Size) bool {
	for _, v := range s {
		if v == size {
			return true
		}
	}
	return false
}

// IsEmpty returns true if no sizes are recorded
func (s SizeSet) IsEmpty() bool {
	return len(s) == 0
}

// Strings returns the sizes as plain strings
func (s SizeSet) Strings() []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = string(v)
	}
	return out
}

// Value implements driver.Valuer
func (s SizeSet) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (s *SizeSet) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*s = SizeSet{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into SizeSet", value)
	}
	if len(raw) == 0 {
		*s = SizeSet{}
		return nil
	}
	var sizes []Size
	if err := json.Unmarshal(raw, &sizes); err != nil {
		return fmt.Errorf("failed to decode size set: %w", err)
	}
	*s = SizeSetOf(sizes...)
	return nil
}
