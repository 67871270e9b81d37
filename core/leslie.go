// core/leslie.go
package core

import "github.com/signalsfoundry/cohort-simulator/scalar"

// MakeLeslieMatrix builds the one-step age-transition matrix for a single
// projection step.
//
// sx holds n_ages+1 survivorship ratios: sx[0] is infant survival, sx[i] for
// i = 1..n_ages-1 the survival of age group i-1 into i, and sx[n_ages] the
// survival of the open (oldest) age group into itself. fx holds fertility
// rates for the len(fx) age groups starting at fxIdx.
//
// The matrix carries the aging survival on the sub-diagonal, the open age
// group's own survival merged into the bottom-right corner, and a top-row
// fertility block over columns fxIdx-1 .. fxIdx+len(fx)-1. The block blends
// the fertility-times-survivorship product at both ends of the step so that
// births are exposed at mid-period, scaled by
// fert_k = sx[0] * 0.5 * age_span / (1 + srb).
//
// Shapes are the caller's responsibility (see the scenario layer); build
// with -tags debug to panic on violations instead.
func MakeLeslieMatrix[T scalar.Num[T]](sx, fx []T, srb, ageSpan T, fxIdx int) *SparseMatrix[T] {
	assertLeslieShapes(len(sx), len(fx), fxIdx, srb.Float())

	var zero T
	one := zero.FromFloat(1)
	half := zero.FromFloat(0.5)

	fertK := sx[0].Mul(half).Mul(ageSpan).Div(one.Add(srb))

	nFx := len(fx)
	fertLeslie := make([]T, nFx+1)
	for i := 0; i < nFx; i++ {
		fertLeslie[i] = fertLeslie[i].Add(fx[i].Mul(sx[fxIdx+i]))
	}
	for i := 0; i < nFx; i++ {
		fertLeslie[i+1] = fertLeslie[i+1].Add(fx[i])
	}
	for i := range fertLeslie {
		fertLeslie[i] = fertLeslie[i].Mul(fertK)
	}

	dim := len(sx) - 1
	leslie := NewSparseMatrix[T](dim, dim)
	for i := 0; i < nFx+1; i++ {
		leslie.Insert(0, fxIdx+i-1, fertLeslie[i])
	}
	for i := 1; i < dim; i++ {
		leslie.Insert(i, i-1, sx[i])
	}
	leslie.Insert(dim-1, dim-1, sx[dim])
	return leslie
}

// ProjectLeslie advances basepop across the whole horizon by building an
// explicit Leslie matrix per step:
//
//	migrants = population ⊙ gx
//	next     = leslie · (population + 0.5·migrants) + 0.5·migrants
//
// It returns only the population table (n_ages × n_steps+1, column 0 the
// base population). Project is the production path exposing deaths, births,
// infants, and migrations; this one is its algebraic verification oracle.
func ProjectLeslie[T scalar.Num[T]](basepop []T, sx, fx, gx Table[T], srb []T, ageSpan T, fxIdx int) Table[T] {
	assertProjectionShapes(len(basepop), sx, fx, gx, len(srb), fxIdx)

	var zero T
	half := zero.FromFloat(0.5)

	nAges := len(basepop)
	nSteps := sx.Cols()

	population := NewTable[T](nAges, nSteps+1)
	copy(population.Col(0), basepop)

	migrants := make([]T, nAges)
	shifted := make([]T, nAges)
	for step := 0; step < nSteps; step++ {
		cur := population.Col(step)
		gxStep := gx.Col(step)
		for i := range cur {
			migrants[i] = cur[i].Mul(gxStep[i])
			shifted[i] = cur[i].Add(half.Mul(migrants[i]))
		}

		leslie := MakeLeslieMatrix(sx.Col(step), fx.Col(step), srb[step], ageSpan, fxIdx)
		next := leslie.MulVec(shifted)

		out := population.Col(step + 1)
		for i := range next {
			out[i] = next[i].Add(half.Mul(migrants[i]))
		}
	}
	return population
}
