//go:build debug

package core

import "fmt"

// Debug-only contract checks on kernel preconditions. Shape mismatches are
// programming errors on the caller's side, so they panic rather than return.

func assertLeslieShapes(nSx, nFx, fxIdx int, srb float64) {
	nAges := nSx - 1
	if nAges < 2 {
		panic(fmt.Sprintf("core: leslie matrix needs at least 2 age groups, got %d", nAges))
	}
	if fxIdx < 1 {
		panic(fmt.Sprintf("core: fertility window must start at age index >= 1, got %d", fxIdx))
	}
	if fxIdx+nFx-1 > nAges-1 {
		panic(fmt.Sprintf("core: fertility window [%d, %d] exceeds oldest age index %d", fxIdx, fxIdx+nFx-1, nAges-1))
	}
	if srb <= -1 {
		panic(fmt.Sprintf("core: sex ratio at birth %v makes 1+srb non-positive", srb))
	}
}

func assertProjectionShapes[T any](nAges int, sx, fx, gx Table[T], nSrb, fxIdx int) {
	if nAges < 2 {
		panic(fmt.Sprintf("core: projection needs at least 2 age groups, got %d", nAges))
	}
	nSteps := sx.Cols()
	if sx.Rows() != nAges+1 {
		panic(fmt.Sprintf("core: sx has %d rows, want n_ages+1 = %d", sx.Rows(), nAges+1))
	}
	if gx.Rows() != nAges {
		panic(fmt.Sprintf("core: gx has %d rows, want n_ages = %d", gx.Rows(), nAges))
	}
	if fx.Cols() != nSteps || gx.Cols() != nSteps {
		panic(fmt.Sprintf("core: table column counts disagree: sx=%d fx=%d gx=%d", nSteps, fx.Cols(), gx.Cols()))
	}
	if nSrb != nSteps {
		panic(fmt.Sprintf("core: srb has %d entries, want n_steps = %d", nSrb, nSteps))
	}
	if fxIdx < 1 || fxIdx+fx.Rows()-1 > nAges-1 {
		panic(fmt.Sprintf("core: fertility window [%d, %d] out of range for %d age groups", fxIdx, fxIdx+fx.Rows()-1, nAges))
	}
}

func assertStepIndex(step, nSteps int) {
	if step < 0 || step >= nSteps {
		panic(fmt.Sprintf("core: step %d out of range [0, %d)", step, nSteps))
	}
}
