package catalog

import "strings"

// UnknownAttribute is the value recorded for attributes the vision pass
// could not determine. It never satisfies a preference match.
const UnknownAttribute = "unknown"

// VisionAttributes holds the vision-derived descriptors of an item.
// Every string field is lower-case and never empty after Normalize.
type VisionAttributes struct {
	Category Category `gorm:"type:varchar(20);not null;default:'unknown';index" json:"category"`
	Color    string   `gorm:"type:varchar(50);not null;default:'unknown'" json:"color"`
	Material string   `gorm:"type:varchar(50);not null;default:'unknown'" json:"material"`
	Pattern  string   `gorm:"type:varchar(50);not null;default:'unknown'" json:"pattern"`
	Occasion string   `gorm:"type:varchar(50);not null;default:'unknown'" json:"occasion"`
	Fit      string   `gorm:"type:varchar(50);not null;default:'unknown'" json:"fit"`
	PlusSize bool     `gorm:"not null;default:false" json:"plus_size"`
}

// UnknownAttributes returns attributes with every descriptor unknown
func UnknownAttributes() VisionAttributes {
	return VisionAttributes{
		Category: CategoryUnknown,
		Color:    UnknownAttribute,
		Material: UnknownAttribute,
		Pattern:  UnknownAttribute,
		Occasion: UnknownAttribute,
		Fit:      UnknownAttribute,
	}
}

// Normalize returns a copy with trimmed, lower-cased descriptors and
// missing values replaced by UnknownAttribute
func (a VisionAttributes) Normalize() VisionAttributes {
	out := VisionAttributes{
		Category: ParseCategory(string(a.Category)),
		Color:    normalizeAttribute(a.Color),
		Material: normalizeAttribute(a.Material),
		Pattern:  normalizeAttribute(a.Pattern),
		Occasion: normalizeAttribute(a.Occasion),
		Fit:      normalizeAttribute(a.Fit),
		PlusSize: a.PlusSize,
	}
	return out
}

// Known returns true if the value is present and not unknown
func Known(value string) bool {
	return value != "" && value != UnknownAttribute
}

// Descriptors returns the known descriptive attributes in display order
func (a VisionAttributes) Descriptors() []string {
	out := make([]string, 0, 4)
	for _, v := range []string{a.Color, a.Material, a.Pattern, a.Fit} {
		if Known(v) {
			out = append(out, v)
		}
	}
	return out
}

func normalizeAttribute(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" || v == "n/a" || v == "none" || v == "null" {
		return UnknownAttribute
	}
	return v
}
