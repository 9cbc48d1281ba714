package entity

import (
	"math"
	"strconv"
	"strings"
)

// Table is a grid of raw cell strings as found in a page or a downloaded file.
// The first row is conventionally the header.
type Table struct {
	Rows [][]string
}

// Column is one column of a normalized table. Values is populated only when
// every data cell of the column parses as a number.
type Column struct {
	Name    string
	Numeric bool
	Values  []float64
}

// Frame is a Table after normalization: rows share one width, the header is
// split off and every column has its inferred type.
type Frame struct {
	Header  []string
	Rows    [][]string
	Columns []Column
}

// ParseNumber tries to read s as a number. It never fails loudly; ok is false
// for anything that is not a plain numeric literal.
func ParseNumber(s string) (value float64, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	// ParseFloat also takes hex floats, "NaN" and "Inf"; none of them is a table number.
	unsigned := strings.TrimLeft(s, "+-")
	if len(unsigned) > 1 && unsigned[0] == '0' && (unsigned[1] == 'x' || unsigned[1] == 'X') {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Width returns the number of cells in the widest row.
func (t Table) Width() int {
	width := 0
	for _, row := range t.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// Normalize pads every row to the table width, takes the first row as the
// header and coerces columns whose cells are all numeric.
func (t Table) Normalize() Frame {
	if len(t.Rows) == 0 {
		return Frame{}
	}

	width := t.Width()
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		padded := make([]string, width)
		copy(padded, row)
		rows[i] = padded
	}

	frame := Frame{
		Header:  rows[0],
		Rows:    rows[1:],
		Columns: make([]Column, width),
	}
	for c := 0; c < width; c++ {
		frame.Columns[c] = frame.inferColumn(c)
	}
	return frame
}

func (f Frame) inferColumn(index int) Column {
	col := Column{Name: f.Header[index]}
	if len(f.Rows) == 0 {
		return col
	}

	values := make([]float64, 0, len(f.Rows))
	for _, row := range f.Rows {
		v, ok := ParseNumber(row[index])
		if !ok {
			return col
		}
		values = append(values, v)
	}
	col.Numeric = true
	col.Values = values
	return col
}

// RowCount returns the number of data rows, header excluded.
func (f Frame) RowCount() int {
	return len(f.Rows)
}

// FirstNumericColumn returns the leftmost numeric column.
func (f Frame) FirstNumericColumn() (Column, bool) {
	for _, col := range f.Columns {
		if col.Numeric {
			return col, true
		}
	}
	return Column{}, false
}

func (c Column) Sum() float64 {
	var total float64
	for _, v := range c.Values {
		total += v
	}
	return total
}

func (c Column) Mean() float64 {
	if len(c.Values) == 0 {
		return 0
	}
	return c.Sum() / float64(len(c.Values))
}

func (c Column) Max() float64 {
	if len(c.Values) == 0 {
		return 0
	}
	m := c.Values[0]
	for _, v := range c.Values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func (c Column) Min() float64 {
	if len(c.Values) == 0 {
		return 0
	}
	m := c.Values[0]
	for _, v := range c.Values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
