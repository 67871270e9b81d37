// core/sparse.go
package core

import "github.com/signalsfoundry/cohort-simulator/scalar"

// SparseMatrix is a minimal coordinate-list sparse matrix with a non-zero
// pattern fixed at construction. It exists to back the matrix-form
// verification path (ProjectLeslie); the production stepper never
// materializes a matrix.
type SparseMatrix[T scalar.Num[T]] struct {
	rows, cols int
	entries    []sparseEntry[T]
}

type sparseEntry[T any] struct {
	row, col int
	val      T
}

// NewSparseMatrix returns an empty rows×cols matrix.
func NewSparseMatrix[T scalar.Num[T]](rows, cols int) *SparseMatrix[T] {
	return &SparseMatrix[T]{rows: rows, cols: cols}
}

// Insert records a non-zero entry at (i, j). Each position may be inserted
// at most once; the builder in MakeLeslieMatrix guarantees that.
func (m *SparseMatrix[T]) Insert(i, j int, v T) {
	m.entries = append(m.entries, sparseEntry[T]{row: i, col: j, val: v})
}

// Dims returns the matrix dimensions.
func (m *SparseMatrix[T]) Dims() (rows, cols int) { return m.rows, m.cols }

// NonZeros returns the number of stored entries.
func (m *SparseMatrix[T]) NonZeros() int { return len(m.entries) }

// At returns the entry at (i, j), or the zero value if the position is not
// part of the pattern. Linear in the number of entries; intended for tests
// and inspection, not inner loops.
func (m *SparseMatrix[T]) At(i, j int) T {
	for _, e := range m.entries {
		if e.row == i && e.col == j {
			return e.val
		}
	}
	var zero T
	return zero
}

// MulVec returns m·x. Entries are accumulated in insertion order, so the
// result is bit-for-bit reproducible for identical inputs.
func (m *SparseMatrix[T]) MulVec(x []T) []T {
	y := make([]T, m.rows)
	for _, e := range m.entries {
		y[e.row] = y[e.row].Add(e.val.Mul(x[e.col]))
	}
	return y
}
