// Package scalar provides the numeric types the projection kernel is generic
// over. The kernel never names a concrete float type; it is written against
// the Num contract so the same code runs on plain float64 values (F64) or on
// forward-mode dual numbers (Dual) when derivatives of the projection with
// respect to an input are needed, e.g. inside gradient-based estimation.
package scalar

// Num is the arithmetic contract required by the projection kernel: the four
// operations, ordering, readout of the primal value, and construction from a
// float constant. FromFloat ignores its receiver; it exists because Go
// generics have no other way to conjure a typed constant inside generic code.
//
// The zero value of an implementing type must be its additive identity.
type Num[T any] interface {
	Add(T) T
	Sub(T) T
	Mul(T) T
	Div(T) T
	Less(T) bool
	Float() float64
	FromFloat(float64) T
}

// F64 is plain float64 arithmetic satisfying Num.
type F64 float64

func (a F64) Add(b F64) F64 { return a + b }
func (a F64) Sub(b F64) F64 { return a - b }
func (a F64) Mul(b F64) F64 { return a * b }
func (a F64) Div(b F64) F64 { return a / b }
func (a F64) Less(b F64) bool { return a < b }
func (a F64) Float() float64 { return float64(a) }

// FromFloat implements Num. The receiver is ignored.
func (F64) FromFloat(v float64) F64 { return F64(v) }

// Floats converts a float64 slice into F64 values.
func Floats(vs []float64) []F64 {
	out := make([]F64, len(vs))
	for i, v := range vs {
		out[i] = F64(v)
	}
	return out
}
