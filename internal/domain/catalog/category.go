package catalog

import "strings"

// Category is the apparel slot an item fills in an outfit.
// It is the primary grouping key for outfit composition.
type Category string

const (
	CategoryTop       Category = "top"
	CategoryBottom    Category = "bottom"
	CategoryDress     Category = "dress"
	CategoryOuterwear Category = "outerwear"
	CategoryShoes     Category = "shoes"
	CategoryAccessory Category = "accessory"
	CategoryUnknown   Category = "unknown"
)

// categorySynonyms maps vocabulary found in vision annotations and shop
// feeds onto the canonical categories.
var categorySynonyms = map[string]Category{
	"top":         CategoryTop,
	"tops":        CategoryTop,
	"shirt":       CategoryTop,
	"t-shirt":     CategoryTop,
	"tshirt":      CategoryTop,
	"tee":         CategoryTop,
	"blouse":      CategoryTop,
	"sweater":     CategoryTop,
	"hoodie":      CategoryTop,
	"tank":        CategoryTop,
	"polo":        CategoryTop,
	"bottom":      CategoryBottom,
	"bottoms":     CategoryBottom,
	"pants":       CategoryBottom,
	"trousers":    CategoryBottom,
	"jeans":       CategoryBottom,
	"shorts":      CategoryBottom,
	"skirt":       CategoryBottom,
	"leggings":    CategoryBottom,
	"chinos":      CategoryBottom,
	"dress":       CategoryDress,
	"dresses":     CategoryDress,
	"gown":        CategoryDress,
	"jumpsuit":    CategoryDress,
	"outerwear":   CategoryOuterwear,
	"jacket":      CategoryOuterwear,
	"coat":        CategoryOuterwear,
	"blazer":      CategoryOuterwear,
	"cardigan":    CategoryOuterwear,
	"parka":       CategoryOuterwear,
	"shoes":       CategoryShoes,
	"shoe":        CategoryShoes,
	"sneakers":    CategoryShoes,
	"boots":       CategoryShoes,
	"sandals":     CategoryShoes,
	"heels":       CategoryShoes,
	"loafers":     CategoryShoes,
	"accessory":   CategoryAccessory,
	"accessories": CategoryAccessory,
	"bag":         CategoryAccessory,
	"belt":        CategoryAccessory,
	"hat":         CategoryAccessory,
	"scarf":       CategoryAccessory,
	"jewelry":     CategoryAccessory,
	"sunglasses":  CategoryAccessory,
}

// ParseCategory normalizes a free-form category string.
// Unrecognized values map to CategoryUnknown.
func ParseCategory(s string) Category {
	key := strings.ToLower(strings.TrimSpace(s))
	if c, ok := categorySynonyms[key]; ok {
		return c
	}
	return CategoryUnknown
}

// String returns the string form of the category
func (c Category) String() string {
	return string(c)
}

// IsValid returns true for the canonical categories, including unknown
func (c Category) IsValid() bool {
	switch c {
	case CategoryTop, CategoryBottom, CategoryDress, CategoryOuterwear,
		CategoryShoes, CategoryAccessory, CategoryUnknown:
		return true
	default:
		return false
	}
}

// Bucket returns the outfit bucket the category groups into.
// Anything that is not one of the five garment slots falls into accessory.
func (c Category) Bucket() Category {
	switch c {
	case CategoryTop, CategoryBottom, CategoryDress, CategoryOuterwear, CategoryShoes:
		return c
	default:
		return CategoryAccessory
	}
}

// AllBuckets returns the outfit buckets in composition order
func AllBuckets() []Category {
	return []Category{
		CategoryTop,
		CategoryBottom,
		CategoryDress,
		CategoryOuterwear,
		CategoryShoes,
		CategoryAccessory,
	}
}
