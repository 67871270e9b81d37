// core/projection.go
package core

import "github.com/signalsfoundry/cohort-simulator/scalar"

// PopulationProjection owns every per-step output of a projection run. All
// storage is preallocated for the full horizon; advancing step k writes only
// population column k+1 and column k of the other tables, so completed steps
// are never revised.
//
// Layout:
//
//	Population  n_ages   × n_steps+1  (column 0 is the base population)
//	Deaths      n_ages+1 × n_steps    (row 0 is infant deaths)
//	Births      n_fx     × n_steps    (by fertile age group)
//	Infants     n_steps               (total infants of the tracked sex)
//	Migrations  n_ages   × n_steps
type PopulationProjection[T scalar.Num[T]] struct {
	NAges   int
	NSteps  int
	NFx     int
	FxIdx   int
	AgeSpan T

	Sx  Table[T]
	Fx  Table[T]
	Gx  Table[T]
	Srb []T

	Population Table[T]
	Deaths     Table[T]
	Births     Table[T]
	Infants    []T
	Migrations Table[T]

	stepListeners []func(step int)
}

// NewPopulationProjection builds a projection container over copies of the
// inputs, with the base population installed as column 0. Input shapes are
// the caller's responsibility (see the scenario layer); build with
// -tags debug to panic on violations instead.
func NewPopulationProjection[T scalar.Num[T]](basepop []T, sx, fx, gx Table[T], srb []T, ageSpan T, fxIdx int) *PopulationProjection[T] {
	assertProjectionShapes(len(basepop), sx, fx, gx, len(srb), fxIdx)

	nAges := len(basepop)
	nSteps := sx.Cols()
	nFx := fx.Rows()

	p := &PopulationProjection[T]{
		NAges:   nAges,
		NSteps:  nSteps,
		NFx:     nFx,
		FxIdx:   fxIdx,
		AgeSpan: ageSpan,

		Sx:  sx.Clone(),
		Fx:  fx.Clone(),
		Gx:  gx.Clone(),
		Srb: append([]T(nil), srb...),

		Population: NewTable[T](nAges, nSteps+1),
		Deaths:     NewTable[T](nAges+1, nSteps),
		Births:     NewTable[T](nFx, nSteps),
		Infants:    make([]T, nSteps),
		Migrations: NewTable[T](nAges, nSteps),
	}
	copy(p.Population.Col(0), basepop)
	return p
}

// RegisterStepListener registers a callback invoked after each completed
// step during Run.
func (p *PopulationProjection[T]) RegisterStepListener(fn func(step int)) {
	p.stepListeners = append(p.stepListeners, fn)
}

// StepProjection advances the projection by exactly one step. Steps must be
// taken strictly in increasing order starting at 0: step k reads population
// column k, which only step k-1 writes. Out-of-order or repeated calls
// silently produce wrong results; ordering is the caller's contract, and Run
// is the safe way to honor it.
func (p *PopulationProjection[T]) StepProjection(step int) {
	assertStepIndex(step, p.NSteps)

	var zero T
	one := zero.FromFloat(1)
	half := zero.FromFloat(0.5)

	sx := p.Sx.Col(step)
	fx := p.Fx.Col(step)
	gx := p.Gx.Col(step)

	pop := p.Population.Col(step + 1)
	migrations := p.Migrations.Col(step)
	deaths := p.Deaths.Col(step)
	births := p.Births.Col(step)

	copy(pop, p.Population.Col(step))

	// First migration half-step: expose half the net migrants to this
	// step's mortality and fertility.
	for i := range pop {
		migrations[i] = pop[i].Mul(gx[i])
		pop[i] = pop[i].Add(half.Mul(migrations[i]))
	}

	// Deaths among ages 1..n_ages. Infant deaths depend on births and land
	// in deaths[0] below.
	for age := 1; age <= p.NAges; age++ {
		deaths[age] = pop[age-1].Mul(one.Sub(sx[age]))
	}

	// First half of the two-point birth exposure, on the pre-aging
	// population.
	halfSpan := half.Mul(p.AgeSpan)
	for i := 0; i < p.NFx; i++ {
		births[i] = halfSpan.Mul(fx[i]).Mul(pop[p.FxIdx+i])
	}

	// Age everyone one group up, removing deaths. The oldest group is
	// open-ended: its own survivors stay put, so capture them before the
	// shift overwrites the slot and add them back after.
	openAgeSurvivors := pop[p.NAges-1].Sub(deaths[p.NAges])
	for age := p.NAges - 1; age > 0; age-- {
		pop[age] = pop[age-1].Sub(deaths[age])
	}
	pop[p.NAges-1] = pop[p.NAges-1].Add(openAgeSurvivors)

	// Second half of the birth exposure, on the aged population. The sum of
	// both halves approximates mid-period fertility exposure.
	var totalBirths T
	for i := 0; i < p.NFx; i++ {
		births[i] = births[i].Add(halfSpan.Mul(fx[i]).Mul(pop[p.FxIdx+i]))
		totalBirths = totalBirths.Add(births[i])
	}

	// Split births by sex ratio at birth; only one sex is tracked.
	infants := totalBirths.Div(one.Add(p.Srb[step]))
	p.Infants[step] = infants
	deaths[0] = infants.Mul(one.Sub(sx[0]))
	pop[0] = infants.Sub(deaths[0])

	// Second migration half-step.
	for i := range pop {
		pop[i] = pop[i].Add(half.Mul(migrations[i]))
	}
}

// Run advances every remaining step in order, notifying step listeners after
// each one.
func (p *PopulationProjection[T]) Run() {
	for step := 0; step < p.NSteps; step++ {
		p.StepProjection(step)
		for _, fn := range p.stepListeners {
			fn(step)
		}
	}
}

// Project builds a projection container and runs the full horizon. This is
// the primary entry point for callers who want the completed projection.
func Project[T scalar.Num[T]](basepop []T, sx, fx, gx Table[T], srb []T, ageSpan T, fxIdx int) *PopulationProjection[T] {
	p := NewPopulationProjection(basepop, sx, fx, gx, srb, ageSpan, fxIdx)
	p.Run()
	return p
}
