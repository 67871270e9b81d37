// core/table.go
package core

// Table is a dense rectangular table of scalars stored column-major: rows
// index the quantity (age group, fertile age group, ...) and columns index
// the time step. Column-major order makes each per-step column a contiguous
// slice, which is what the stepper works on.
type Table[T any] struct {
	rows, cols int
	data       []T
}

// NewTable allocates a rows×cols table of zero values.
func NewTable[T any](rows, cols int) Table[T] {
	return Table[T]{rows: rows, cols: cols, data: make([]T, rows*cols)}
}

// TableFromRows builds a table from row-major input (rows[i][j] = row i,
// step j), the layout scenario files and tests naturally use. All rows must
// have equal length; rows must be non-empty.
func TableFromRows[T any](rows [][]T) Table[T] {
	nRows := len(rows)
	nCols := len(rows[0])
	t := NewTable[T](nRows, nCols)
	for i, row := range rows {
		for j, v := range row {
			t.Set(i, j, v)
		}
	}
	return t
}

// Rows returns the number of rows.
func (t Table[T]) Rows() int { return t.rows }

// Cols returns the number of columns.
func (t Table[T]) Cols() int { return t.cols }

// At returns the value at row i, column j.
func (t Table[T]) At(i, j int) T { return t.data[j*t.rows+i] }

// Set stores v at row i, column j.
func (t Table[T]) Set(i, j int, v T) { t.data[j*t.rows+i] = v }

// Col returns column j as a slice aliasing the table's storage. Writes
// through the slice are visible in the table.
func (t Table[T]) Col(j int) []T {
	return t.data[j*t.rows : (j+1)*t.rows : (j+1)*t.rows]
}

// Clone returns a deep copy of the table.
func (t Table[T]) Clone() Table[T] {
	c := Table[T]{rows: t.rows, cols: t.cols, data: make([]T, len(t.data))}
	copy(c.data, t.data)
	return c
}
