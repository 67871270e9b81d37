// Package scenario loads projection scenarios from JSON and performs the
// shape and domain validation the kernel deliberately skips. The kernel
// assumes validated inputs; everything that reaches core.Project has been
// through Validate here.
package scenario

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/signalsfoundry/cohort-simulator/core"
	"github.com/signalsfoundry/cohort-simulator/model"
	"github.com/signalsfoundry/cohort-simulator/scalar"
)

// internal JSON shape – kept unexported so we're free to evolve it.
type scenarioJSON struct {
	Name                string      `json:"name"`
	AgeSpan             float64     `json:"age_span"`
	FertilityFirstIndex int         `json:"fertility_first_index"`
	BasePopulation      []float64   `json:"base_population"`
	Survivorship        [][]float64 `json:"survivorship"`
	Fertility           [][]float64 `json:"fertility"`
	Migration           [][]float64 `json:"migration"`
	SexRatioAtBirth     []float64   `json:"sex_ratio_at_birth"`
}

// Load reads a JSON scenario from r and validates it.
func Load(r io.Reader) (*model.Scenario, error) {
	var payload scenarioJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("scenario: decode failed: %w", err)
	}

	sc := &model.Scenario{
		Name:    payload.Name,
		AgeSpan: payload.AgeSpan,
		FxIdx:   payload.FertilityFirstIndex,
		BasePop: payload.BasePopulation,
		Sx:      payload.Survivorship,
		Fx:      payload.Fertility,
		Gx:      payload.Migration,
		Srb:     payload.SexRatioAtBirth,
	}
	if err := Validate(sc); err != nil {
		return nil, err
	}
	return sc, nil
}

// Validate checks every shape and domain constraint the kernel relies on:
// rectangular series with the right row counts, a fertile window inside the
// age range, and 1+srb bounded away from zero.
func Validate(sc *model.Scenario) error {
	nAges := sc.NAges()
	nSteps := sc.NSteps()
	nFx := sc.NFx()

	if nAges < 2 {
		return fmt.Errorf("scenario: need at least 2 age groups, got %d", nAges)
	}
	if nSteps < 1 {
		return fmt.Errorf("scenario: need at least 1 projection step, got %d", nSteps)
	}
	if sc.AgeSpan <= 0 {
		return fmt.Errorf("scenario: age_span must be positive, got %v", sc.AgeSpan)
	}
	if sc.FxIdx < 1 {
		return fmt.Errorf("scenario: fertility_first_index must be >= 1, got %d", sc.FxIdx)
	}
	if nFx < 1 {
		return fmt.Errorf("scenario: need at least 1 fertile age group")
	}
	if last := sc.FxIdx + nFx - 1; last > nAges-1 {
		return fmt.Errorf("scenario: fertile window ends at age index %d, beyond oldest index %d", last, nAges-1)
	}

	if err := checkSeries("survivorship", sc.Sx, nAges+1, nSteps); err != nil {
		return err
	}
	if err := checkSeries("fertility", sc.Fx, nFx, nSteps); err != nil {
		return err
	}
	if err := checkSeries("migration", sc.Gx, nAges, nSteps); err != nil {
		return err
	}

	for i, pop := range sc.BasePop {
		if pop < 0 {
			return fmt.Errorf("scenario: base population for age group %d is negative: %v", i, pop)
		}
	}
	for i, row := range sc.Sx {
		for j, v := range row {
			if v < 0 || v > 1 {
				return fmt.Errorf("scenario: survivorship[%d][%d] = %v outside [0, 1]", i, j, v)
			}
		}
	}
	for j, v := range sc.Srb {
		if v <= -1 {
			return fmt.Errorf("scenario: sex_ratio_at_birth[%d] = %v must be > -1", j, v)
		}
	}
	return nil
}

func checkSeries(name string, rows [][]float64, wantRows, wantCols int) error {
	if len(rows) != wantRows {
		return fmt.Errorf("scenario: %s has %d rows, want %d", name, len(rows), wantRows)
	}
	for i, row := range rows {
		if len(row) != wantCols {
			return fmt.Errorf("scenario: %s row %d has %d steps, want %d", name, i, len(row), wantCols)
		}
	}
	return nil
}

// Tables converts a validated scenario into the column-major inputs the
// kernel consumes, as plain float64 scalars.
func Tables(sc *model.Scenario) (basepop []scalar.F64, sx, fx, gx core.Table[scalar.F64], srb []scalar.F64) {
	basepop = scalar.Floats(sc.BasePop)
	sx = tableFromFloats(sc.Sx)
	fx = tableFromFloats(sc.Fx)
	gx = tableFromFloats(sc.Gx)
	srb = scalar.Floats(sc.Srb)
	return basepop, sx, fx, gx, srb
}

func tableFromFloats(rows [][]float64) core.Table[scalar.F64] {
	converted := make([][]scalar.F64, len(rows))
	for i, row := range rows {
		converted[i] = scalar.Floats(row)
	}
	return core.TableFromRows(converted)
}

// Project runs the validated scenario through the recurrence stepper.
func Project(sc *model.Scenario) *core.PopulationProjection[scalar.F64] {
	basepop, sx, fx, gx, srb := Tables(sc)
	return core.Project(basepop, sx, fx, gx, srb, scalar.F64(sc.AgeSpan), sc.FxIdx)
}
