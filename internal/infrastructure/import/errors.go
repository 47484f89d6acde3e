package csvimport

import (
	"errors"
	"fmt"
	"strings"
)

// Row level error codes, returned to the merchant per rejected cell
const (
	ErrCodeImportInvalidFile   = "ERR_IMPORT_INVALID_FILE"
	ErrCodeImportMissingHeader = "ERR_IMPORT_MISSING_HEADER"
	ErrCodeImportRequiredField = "ERR_IMPORT_REQUIRED_FIELD"
	ErrCodeImportInvalidType   = "ERR_IMPORT_INVALID_TYPE"
	ErrCodeImportInvalidLength = "ERR_IMPORT_INVALID_LENGTH"
	ErrCodeImportInvalidRange  = "ERR_IMPORT_INVALID_RANGE"
	ErrCodeImportInvalidValue  = "ERR_IMPORT_INVALID_VALUE"
	ErrCodeImportDuplicate     = "ERR_IMPORT_DUPLICATE_IN_FILE"
)

// File level failures; no row is imported when one of these occurs
var (
	ErrEmptyFile       = errors.New("CSV file is empty")
	ErrInvalidEncoding = errors.New("CSV file is not UTF-8")
	ErrMissingHeader   = errors.New("CSV file has no header row")
	ErrTooManyRows     = errors.New("CSV file exceeds the row limit")
)

// RowError is one rejected cell, or a whole row when Column is empty
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (e RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("row %d: %s", e.Row, e.Message)
	}
	return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
}

// ErrorLog keeps the first limit row errors and counts the rest, so a
// broken feed of thousands of rows still yields a readable report.
type ErrorLog struct {
	kept  []RowError
	limit int
	total int
}

// NewErrorLog keeps up to limit errors, 100 when limit is not positive
func NewErrorLog(limit int) *ErrorLog {
	if limit <= 0 {
		limit = 100
	}
	return &ErrorLog{limit: limit}
}

// Add records e
func (l *ErrorLog) Add(e RowError) {
	l.total++
	if len(l.kept) < l.limit {
		l.kept = append(l.kept, e)
	}
}

// Rows returns the kept errors in the order they were added
func (l *ErrorLog) Rows() []RowError { return l.kept }

// Total counts every error added, kept or not
func (l *ErrorLog) Total() int { return l.total }

// Truncated reports whether errors were dropped at the limit
func (l *ErrorLog) Truncated() bool { return l.total > len(l.kept) }

func (l *ErrorLog) String() string {
	var b strings.Builder
	for i, e := range l.kept {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Error())
	}
	if dropped := l.total - len(l.kept); dropped > 0 {
		fmt.Fprintf(&b, "\n... and %d more", dropped)
	}
	return b.String()
}
