//go:build !debug

package core

// Release builds are branch-free: the kernel validates nothing and relies on
// the scenario layer having checked shapes. Build with -tags debug to turn
// these into panicking contract checks.

func assertLeslieShapes(nSx, nFx, fxIdx int, srb float64) {}

func assertProjectionShapes[T any](nAges int, sx, fx, gx Table[T], nSrb, fxIdx int) {}

func assertStepIndex(step, nSteps int) {}
