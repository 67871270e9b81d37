package core

import (
	"math"
	"testing"

	"github.com/signalsfoundry/cohort-simulator/scalar"
)

func almostEqual(a, b, tol float64) bool {
	if a == b {
		return true
	}
	scale := math.Max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= tol*scale
}

func TestMakeLeslieMatrixValues(t *testing.T) {
	sx := []scalar.F64{0.95, 0.9, 0.85, 0.8}
	fx := []scalar.F64{0.5}
	srb := scalar.F64(0.05)
	ageSpan := scalar.F64(5)
	fxIdx := 1

	m := MakeLeslieMatrix(sx, fx, srb, ageSpan, fxIdx)

	if rows, cols := m.Dims(); rows != 3 || cols != 3 {
		t.Fatalf("Dims = %dx%d, want 3x3", rows, cols)
	}
	// 2 fertility entries + 2 sub-diagonal + merged open-age corner.
	if m.NonZeros() != 5 {
		t.Fatalf("NonZeros = %d, want 5", m.NonZeros())
	}

	fertK := 0.95 * 0.5 * 5.0 / 1.05
	cases := []struct {
		i, j int
		want float64
	}{
		{0, 0, 0.5 * 0.9 * fertK}, // fx[0]*sx[fxIdx] at the leading offset
		{0, 1, 0.5 * fertK},       // fx[0] at the trailing offset
		{1, 0, 0.9},
		{2, 1, 0.85},
		{2, 2, 0.8}, // open age group keeps its own survivors
		{1, 1, 0},
		{2, 0, 0},
		{0, 2, 0},
	}
	for _, c := range cases {
		got := m.At(c.i, c.j).Float()
		if !almostEqual(got, c.want, 1e-12) {
			t.Errorf("leslie[%d,%d] = %v, want %v", c.i, c.j, got, c.want)
		}
	}
}

func TestMakeLeslieMatrixIdempotent(t *testing.T) {
	sx := []scalar.F64{0.95, 0.9, 0.85, 0.8}
	fx := []scalar.F64{0.5}

	a := MakeLeslieMatrix(sx, fx, scalar.F64(0.05), scalar.F64(5), 1)
	b := MakeLeslieMatrix(sx, fx, scalar.F64(0.05), scalar.F64(5), 1)

	if a.NonZeros() != b.NonZeros() {
		t.Fatalf("non-zero counts differ: %d vs %d", a.NonZeros(), b.NonZeros())
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if a.At(i, j) != b.At(i, j) {
				t.Errorf("entry (%d,%d) differs: %v vs %v", i, j, a.At(i, j), b.At(i, j))
			}
		}
	}
}

func TestMakeLeslieMatrixWithDuals(t *testing.T) {
	// Seed srb as the differentiation variable; the fertility entries must
	// carry d/d(srb) of fert_k while survival entries stay constant.
	sx := []scalar.Dual{scalar.Const(0.95), scalar.Const(0.9), scalar.Const(0.85), scalar.Const(0.8)}
	fx := []scalar.Dual{scalar.Const(0.5)}
	srb := scalar.Var(0.05)

	m := MakeLeslieMatrix(sx, fx, srb, scalar.Const(5), 1)

	// fert_k = c/(1+srb) with c = 0.95*0.5*5, so d(fert_k)/d(srb) = -c/(1+srb)^2.
	c := 0.95 * 0.5 * 5.0
	wantDeriv := 0.5 * 0.9 * -c / (1.05 * 1.05)
	if got := m.At(0, 0).Deriv; !almostEqual(got, wantDeriv, 1e-12) {
		t.Errorf("d(leslie[0,0])/d(srb) = %v, want %v", got, wantDeriv)
	}
	if got := m.At(1, 0).Deriv; got != 0 {
		t.Errorf("d(leslie[1,0])/d(srb) = %v, want 0", got)
	}
}
