package csvimport

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Kind is the value type a column must parse as
type Kind int

const (
	Text Kind = iota
	Decimal
	Bool
)

// Column describes the checks applied to one CSV column. Empty cells only
// fail when Required is set; every other check skips them.
type Column struct {
	Name     string
	Kind     Kind
	Required bool
	MaxLen   int              // in runes
	Min      *decimal.Decimal // Decimal columns only
	Unique   bool             // case-insensitive, within the file
	Check    func(value string) error
}

// RowValidator checks rows against a set of columns and logs failures
type RowValidator struct {
	columns   []Column
	log       *ErrorLog
	firstSeen map[string]map[string]int
}

// NewRowValidator logs up to maxErrors failures in detail
func NewRowValidator(columns []Column, maxErrors int) *RowValidator {
	v := &RowValidator{
		columns:   columns,
		log:       NewErrorLog(maxErrors),
		firstSeen: make(map[string]map[string]int),
	}
	for _, c := range columns {
		if c.Unique {
			v.firstSeen[c.Name] = make(map[string]int)
		}
	}
	return v
}

// Log returns the failures seen so far
func (v *RowValidator) Log() *ErrorLog { return v.log }

// Validate checks every column of row, logging one error per bad cell,
// and reports whether the row passed.
func (v *RowValidator) Validate(row *Row) bool {
	ok := true
	for _, col := range v.columns {
		value := row.Get(col.Name)
		code, msg := v.check(col, value, row.LineNumber)
		if code == "" {
			continue
		}
		ok = false
		v.log.Add(RowError{Row: row.LineNumber, Column: col.Name, Code: code, Message: msg, Value: value})
	}
	return ok
}

func (v *RowValidator) check(col Column, value string, line int) (code, msg string) {
	if value == "" {
		if col.Required {
			return ErrCodeImportRequiredField, "value is required"
		}
		return "", ""
	}
	if col.MaxLen > 0 && utf8.RuneCountInString(value) > col.MaxLen {
		return ErrCodeImportInvalidLength, fmt.Sprintf("must be at most %d characters", col.MaxLen)
	}

	switch col.Kind {
	case Decimal:
		d, err := decimal.NewFromString(value)
		if err != nil {
			return ErrCodeImportInvalidType, "expected decimal"
		}
		if col.Min != nil && d.LessThan(*col.Min) {
			return ErrCodeImportInvalidRange, "must be at least " + col.Min.String()
		}
	case Bool:
		if _, err := ParseBool(value); err != nil {
			return ErrCodeImportInvalidType, "expected boolean"
		}
	}

	if col.Check != nil {
		if err := col.Check(value); err != nil {
			return ErrCodeImportInvalidValue, err.Error()
		}
	}

	if seen := v.firstSeen[col.Name]; seen != nil {
		key := strings.ToLower(value)
		if first, dup := seen[key]; dup {
			return ErrCodeImportDuplicate, fmt.Sprintf("duplicates row %d", first)
		}
		seen[key] = line
	}
	return "", ""
}

// ParseBool accepts strconv spellings plus the stock wording shop exports
// use ("yes", "in stock", "sold out").
func ParseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "y", "yes", "in stock", "available":
		return true, nil
	case "n", "no", "out of stock", "sold out":
		return false, nil
	}
	return strconv.ParseBool(value)
}
