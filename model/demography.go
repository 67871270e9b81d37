package model

// Scenario fully describes one projection run in plain float64 terms, as
// loaded from an external source. Series are row-major: series[i][j] is
// quantity index i at time step j. The kernel consumes a converted,
// column-major form of this; see internal/scenario.
type Scenario struct {
	// Name identifies the run in logs, result documents, and the store.
	Name string

	// AgeSpan is the width of one age group in years (1 or 5, typically).
	AgeSpan float64

	// FxIdx is the index of the first fertile age group in BasePop.
	FxIdx int

	// BasePop is the initial population by age group; index 0 is the
	// youngest group, the last index the open-ended oldest group.
	BasePop []float64

	// Sx holds survivorship ratios, n_ages+1 rows: row 0 infant survival,
	// rows 1..n_ages-1 aging survival, row n_ages open-age-group survival.
	Sx [][]float64

	// Fx holds fertility rates for the fertile age groups only.
	Fx [][]float64

	// Gx holds net migration rates by age group.
	Gx [][]float64

	// Srb holds the sex ratio at birth, one entry per step.
	Srb []float64
}

// NAges returns the number of age groups.
func (s *Scenario) NAges() int { return len(s.BasePop) }

// NSteps returns the number of projection steps.
func (s *Scenario) NSteps() int { return len(s.Srb) }

// NFx returns the number of fertile age groups.
func (s *Scenario) NFx() int { return len(s.Fx) }
