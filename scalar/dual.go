package scalar

// Dual is a forward-mode dual number: Val carries the primal value and Deriv
// the derivative of that value with respect to a single chosen input. Seed
// exactly one input with Var (Deriv = 1) and every output of the kernel
// carries d(output)/d(input) in its Deriv field.
type Dual struct {
	Val   float64
	Deriv float64
}

// Const returns a dual constant (zero derivative).
func Const(v float64) Dual { return Dual{Val: v} }

// Var returns a dual number seeded as the differentiation variable.
func Var(v float64) Dual { return Dual{Val: v, Deriv: 1} }

func (a Dual) Add(b Dual) Dual { return Dual{Val: a.Val + b.Val, Deriv: a.Deriv + b.Deriv} }
func (a Dual) Sub(b Dual) Dual { return Dual{Val: a.Val - b.Val, Deriv: a.Deriv - b.Deriv} }

// Mul applies the product rule.
func (a Dual) Mul(b Dual) Dual {
	return Dual{Val: a.Val * b.Val, Deriv: a.Val*b.Deriv + a.Deriv*b.Val}
}

// Div applies the quotient rule.
func (a Dual) Div(b Dual) Dual {
	q := a.Val / b.Val
	return Dual{Val: q, Deriv: (a.Deriv - q*b.Deriv) / b.Val}
}

// Less orders duals by primal value only.
func (a Dual) Less(b Dual) bool { return a.Val < b.Val }

func (a Dual) Float() float64 { return a.Val }

// FromFloat implements Num; the result is a constant. The receiver is ignored.
func (Dual) FromFloat(v float64) Dual { return Dual{Val: v} }

// Consts converts a float64 slice into dual constants.
func Consts(vs []float64) []Dual {
	out := make([]Dual, len(vs))
	for i, v := range vs {
		out[i] = Const(v)
	}
	return out
}
