// Package csvimport reads merchant catalog feeds and validates their rows.
package csvimport

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const (
	utf8BOM    = "\xEF\xBB\xBF"
	sniffBytes = 4096
)

// Feed is an open CSV feed positioned after its header row. Column
// names are lower-cased and trimmed; blank header cells are ignored.
type Feed struct {
	csv     *csv.Reader
	columns []string
	index   map[string]int
	maxRows int
}

// Option tunes how a feed is read
type Option func(*feedOptions)

type feedOptions struct {
	comma   rune
	maxRows int
}

// WithDelimiter sets the field separator, comma by default
func WithDelimiter(d rune) Option {
	return func(o *feedOptions) { o.comma = d }
}

// WithMaxRows caps the number of data rows Rows accepts; 0 means no cap
func WithMaxRows(n int) Option {
	return func(o *feedOptions) { o.maxRows = n }
}

// Open checks the feed encoding and reads its header row. A UTF-8 byte
// order mark is skipped; any other non UTF-8 input is refused.
func Open(r io.Reader, opts ...Option) (*Feed, error) {
	o := feedOptions{comma: ','}
	for _, opt := range opts {
		opt(&o)
	}

	in := bufio.NewReader(r)
	if mark, _ := in.Peek(len(utf8BOM)); string(mark) == utf8BOM {
		_, _ = in.Discard(len(utf8BOM))
	}
	sniff, err := in.Peek(sniffBytes)
	switch {
	case err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull):
		return nil, fmt.Errorf("read feed: %w", err)
	case len(sniff) == 0:
		return nil, ErrEmptyFile
	case !looksUTF8(sniff, len(sniff) == sniffBytes):
		return nil, ErrInvalidEncoding
	}

	cr := csv.NewReader(in)
	cr.Comma = o.comma
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	f := &Feed{csv: cr, index: make(map[string]int), maxRows: o.maxRows}
	if err := f.readHeader(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Feed) readHeader() error {
	header, err := f.csv.Read()
	if errors.Is(err, io.EOF) {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		f.columns = append(f.columns, name)
		if name != "" {
			f.index[name] = i
		}
	}
	if len(f.index) == 0 {
		return ErrMissingHeader
	}
	return nil
}

// Columns returns the header names in file order
func (f *Feed) Columns() []string { return f.columns }

// Missing returns the names in want that the header lacks
func (f *Feed) Missing(want ...string) []string {
	var out []string
	for _, name := range want {
		if _, ok := f.index[strings.ToLower(name)]; !ok {
			out = append(out, name)
		}
	}
	return out
}

// Row holds the trimmed cells of one data row keyed by column name.
// LineNumber is the 1-based line the row starts on.
type Row struct {
	LineNumber int
	Data       map[string]string
}

// Get returns the cell for column, empty when absent
func (r *Row) Get(column string) string { return r.Data[column] }

func (r *Row) blank() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// Rows reads the remaining rows, skipping blank ones. When the row cap
// is exceeded the rows read so far are returned with ErrTooManyRows.
func (f *Feed) Rows() ([]*Row, error) {
	var rows []*Row
	for {
		record, err := f.csv.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, fmt.Errorf("read rows: %w", err)
		}
		line, _ := f.csv.FieldPos(0)

		row := &Row{LineNumber: line, Data: make(map[string]string, len(f.index))}
		for name, i := range f.index {
			if i < len(record) {
				row.Data[name] = strings.TrimSpace(record[i])
			} else {
				row.Data[name] = ""
			}
		}
		if row.blank() {
			continue
		}
		if f.maxRows > 0 && len(rows) == f.maxRows {
			return rows, ErrTooManyRows
		}
		rows = append(rows, row)
	}
}

// looksUTF8 tolerates one rune split at the end of a full sniff window
func looksUTF8(b []byte, truncated bool) bool {
	if utf8.Valid(b) {
		return true
	}
	if !truncated {
		return false
	}
	for cut := 1; cut < utf8.UTFMax && cut < len(b); cut++ {
		if utf8.Valid(b[:len(b)-cut]) {
			return true
		}
	}
	return false
}
