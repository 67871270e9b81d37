package scenario

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/signalsfoundry/cohort-simulator/core"
	"github.com/signalsfoundry/cohort-simulator/scalar"
)

// Result is the serializable form of a completed projection. Series are
// row-major like Scenario: series[i][j] is quantity index i at step j.
// Population has n_steps+1 columns (column 0 the base population); the
// other series have one column per step.
type Result struct {
	Name       string      `json:"name"`
	AgeSpan    float64     `json:"age_span"`
	Population [][]float64 `json:"population"`
	Deaths     [][]float64 `json:"deaths"`
	Births     [][]float64 `json:"births"`
	Infants    []float64   `json:"infants"`
	Migrations [][]float64 `json:"migrations"`
}

// ResultFrom extracts a plain-float64 result document from a completed
// projection.
func ResultFrom(name string, ageSpan float64, p *core.PopulationProjection[scalar.F64]) *Result {
	infants := make([]float64, len(p.Infants))
	for i, v := range p.Infants {
		infants[i] = v.Float()
	}
	return &Result{
		Name:       name,
		AgeSpan:    ageSpan,
		Population: rowsFromTable(p.Population),
		Deaths:     rowsFromTable(p.Deaths),
		Births:     rowsFromTable(p.Births),
		Infants:    infants,
		Migrations: rowsFromTable(p.Migrations),
	}
}

// WriteJSON writes the result as indented JSON.
func (r *Result) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("scenario: encode result: %w", err)
	}
	return nil
}

func rowsFromTable(t core.Table[scalar.F64]) [][]float64 {
	rows := make([][]float64, t.Rows())
	for i := range rows {
		row := make([]float64, t.Cols())
		for j := range row {
			row[j] = t.At(i, j).Float()
		}
		rows[i] = row
	}
	return rows
}
