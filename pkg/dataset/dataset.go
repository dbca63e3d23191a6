// Package dataset provides a small, immutable, column-oriented table for
// question/answer dumps exported as CSV.
//
// A Frame never changes after construction. Deriving a column returns a new
// Frame that shares the untouched columns with its parent, so the caller's
// original data is never mutated in place.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrDataSource is returned when a dataset cannot be read or parsed.
	ErrDataSource = errors.New("data source error")

	// ErrColumnNotFound is returned when a named column does not exist.
	ErrColumnNotFound = errors.New("column not found")

	// ErrColumnExists is returned when adding a column whose name is taken.
	ErrColumnExists = errors.New("column already exists")

	// ErrLengthMismatch is returned when a new column has the wrong row count.
	ErrLengthMismatch = errors.New("column length does not match frame")
)

// Frame is an immutable table of nullable string cells.
// A nil cell is a missing value.
type Frame struct {
	names []string
	index map[string]int
	cols  [][]*string
	rows  int
}

// New builds a frame from column names and column-major values.
// Every column must have the same length.
func New(names []string, cols [][]*string) (*Frame, error) {
	if len(names) != len(cols) {
		return nil, fmt.Errorf("%d names for %d columns: %w", len(names), len(cols), ErrLengthMismatch)
	}

	f := &Frame{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
		cols:  make([][]*string, len(cols)),
	}
	copy(f.names, names)
	copy(f.cols, cols)

	for i, name := range f.names {
		if _, dup := f.index[name]; dup {
			return nil, fmt.Errorf("%q: %w", name, ErrColumnExists)
		}
		f.index[name] = i
		if i == 0 {
			f.rows = len(cols[i])
		} else if len(cols[i]) != f.rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d: %w", name, len(cols[i]), f.rows, ErrLengthMismatch)
		}
	}
	return f, nil
}

// FromStrings builds a single-column frame. Empty strings become nulls.
func FromStrings(name string, values []string) *Frame {
	col := make([]*string, len(values))
	for i, v := range values {
		if v != "" {
			col[i] = Str(v)
		}
	}
	f, _ := New([]string{name}, [][]*string{col})
	return f
}

// Str returns a pointer to s, for building non-null cells.
func Str(s string) *string {
	return &s
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return f.rows
}

// Columns returns a copy of the column names in order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// HasColumn reports whether the frame has a column with the given name.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

// FirstColumn returns the values of the first column, or nil for an
// empty frame.
func (f *Frame) FirstColumn() []*string {
	if len(f.cols) == 0 {
		return nil
	}
	return copyCol(f.cols[0])
}

// Column returns a copy of the named column's cells.
func (f *Frame) Column(name string) ([]*string, error) {
	i, ok := f.index[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrColumnNotFound)
	}
	return copyCol(f.cols[i]), nil
}

// Value returns the cell at row/column, or nil when missing.
func (f *Frame) Value(row int, name string) *string {
	i, ok := f.index[name]
	if !ok || row < 0 || row >= f.rows {
		return nil
	}
	return f.cols[i][row]
}

// Floats parses the named column as numbers. ok[i] is false for nulls,
// cells that are not valid numbers and non-finite values such as "inf".
func (f *Frame) Floats(name string) (values []float64, ok []bool, err error) {
	col, err := f.Column(name)
	if err != nil {
		return nil, nil, err
	}

	values = make([]float64, len(col))
	ok = make([]bool, len(col))
	for i, cell := range col {
		if cell == nil {
			continue
		}
		v, perr := strconv.ParseFloat(strings.TrimSpace(*cell), 64)
		if perr != nil || math.IsInf(v, 0) || math.IsNaN(v) {
			continue
		}
		values[i] = v
		ok[i] = true
	}
	return values, ok, nil
}

// WithColumn returns a new frame with values appended as column name.
// The receiver is left untouched.
func (f *Frame) WithColumn(name string, values []*string) (*Frame, error) {
	if f.HasColumn(name) {
		return nil, fmt.Errorf("%q: %w", name, ErrColumnExists)
	}
	if len(f.names) > 0 && len(values) != f.rows {
		return nil, fmt.Errorf("column %q has %d rows, want %d: %w", name, len(values), f.rows, ErrLengthMismatch)
	}

	names := append(f.Columns(), name)
	cols := make([][]*string, 0, len(f.cols)+1)
	cols = append(cols, f.cols...)
	cols = append(cols, copyCol(values))
	return New(names, cols)
}

// Select returns a new frame holding only the named columns, in the given
// order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	cols := make([][]*string, len(names))
	for i, name := range names {
		j, ok := f.index[name]
		if !ok {
			return nil, fmt.Errorf("%q: %w", name, ErrColumnNotFound)
		}
		cols[i] = f.cols[j]
	}
	return New(names, cols)
}

func copyCol(col []*string) []*string {
	out := make([]*string, len(col))
	copy(out, col)
	return out
}
