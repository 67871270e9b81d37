package scenario

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/cohort-simulator/model"
)

const validScenario = `{
	"name": "tiny",
	"age_span": 5,
	"fertility_first_index": 1,
	"base_population": [100, 90, 50],
	"survivorship": [[0.95, 0.96], [0.99, 0.99], [0.97, 0.97], [0.6, 0.62]],
	"fertility": [[0.1, 0.09]],
	"migration": [[0, 0], [0.01, 0.01], [0, 0]],
	"sex_ratio_at_birth": [1.05, 1.05]
}`

func TestLoadValidScenario(t *testing.T) {
	sc, err := Load(strings.NewReader(validScenario))
	require.NoError(t, err)

	assert.Equal(t, "tiny", sc.Name)
	assert.Equal(t, 3, sc.NAges())
	assert.Equal(t, 2, sc.NSteps())
	assert.Equal(t, 1, sc.NFx())
	assert.Equal(t, 5.0, sc.AgeSpan)
	assert.Equal(t, 1, sc.FxIdx)
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	_, err := Load(strings.NewReader(`{"name": `))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode failed")
}

func validModel() *model.Scenario {
	sc, err := Load(strings.NewReader(validScenario))
	if err != nil {
		panic(err)
	}
	return sc
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*model.Scenario)
		wantErr string
	}{
		{
			name:    "too few age groups",
			mutate:  func(sc *model.Scenario) { sc.BasePop = []float64{100} },
			wantErr: "at least 2 age groups",
		},
		{
			name:    "no steps",
			mutate:  func(sc *model.Scenario) { sc.Srb = nil },
			wantErr: "at least 1 projection step",
		},
		{
			name:    "non-positive age span",
			mutate:  func(sc *model.Scenario) { sc.AgeSpan = 0 },
			wantErr: "age_span must be positive",
		},
		{
			name:    "fertility window starts at age 0",
			mutate:  func(sc *model.Scenario) { sc.FxIdx = 0 },
			wantErr: "fertility_first_index must be >= 1",
		},
		{
			name: "fertility window past oldest group",
			mutate: func(sc *model.Scenario) {
				sc.Fx = [][]float64{{0.1, 0.1}, {0.1, 0.1}, {0.1, 0.1}}
			},
			wantErr: "beyond oldest index",
		},
		{
			name:    "survivorship row count",
			mutate:  func(sc *model.Scenario) { sc.Sx = sc.Sx[:3] },
			wantErr: "survivorship has 3 rows",
		},
		{
			name: "ragged migration rows",
			mutate: func(sc *model.Scenario) {
				sc.Gx[1] = []float64{0.01}
			},
			wantErr: "migration row 1 has 1 steps",
		},
		{
			name:    "negative base population",
			mutate:  func(sc *model.Scenario) { sc.BasePop[2] = -1 },
			wantErr: "negative",
		},
		{
			name: "survivorship above one",
			mutate: func(sc *model.Scenario) {
				sc.Sx[1][0] = 1.2
			},
			wantErr: "outside [0, 1]",
		},
		{
			name:    "srb at -1",
			mutate:  func(sc *model.Scenario) { sc.Srb[1] = -1 },
			wantErr: "must be > -1",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sc := validModel()
			tc.mutate(sc)
			err := Validate(sc)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestTablesShapes(t *testing.T) {
	sc := validModel()
	basepop, sx, fx, gx, srb := Tables(sc)

	assert.Len(t, basepop, 3)
	assert.Equal(t, 4, sx.Rows())
	assert.Equal(t, 2, sx.Cols())
	assert.Equal(t, 1, fx.Rows())
	assert.Equal(t, 3, gx.Rows())
	assert.Len(t, srb, 2)
	assert.InDelta(t, 0.95, sx.At(0, 0).Float(), 0)
	assert.InDelta(t, 0.01, gx.At(1, 1).Float(), 0)
}

func TestProjectRunsScenario(t *testing.T) {
	sc := validModel()
	p := Project(sc)

	require.Equal(t, sc.NSteps(), p.NSteps)
	// Base population installed untouched in column 0.
	assert.Equal(t, 100.0, p.Population.At(0, 0).Float())
	// Something was projected in the final column.
	var total float64
	for _, v := range p.Population.Col(p.NSteps) {
		total += v.Float()
	}
	assert.Greater(t, total, 0.0)
}
