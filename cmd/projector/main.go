// Command projector runs a cohort-component population projection over a
// JSON scenario file and writes the full result document as JSON.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/signalsfoundry/cohort-simulator/core"
	"github.com/signalsfoundry/cohort-simulator/internal/config"
	"github.com/signalsfoundry/cohort-simulator/internal/logging"
	"github.com/signalsfoundry/cohort-simulator/internal/observability"
	"github.com/signalsfoundry/cohort-simulator/internal/scenario"
	"github.com/signalsfoundry/cohort-simulator/internal/store"
	"github.com/signalsfoundry/cohort-simulator/model"
	"github.com/signalsfoundry/cohort-simulator/scalar"
)

// verifyTolerance bounds the relative disagreement allowed between the
// recurrence stepper and the matrix-form oracle under -verify.
const verifyTolerance = 1e-9

func main() {
	scenarioPath := flag.String("scenario", "configs/scenario_example.json", "path to the JSON scenario file")
	outputPath := flag.String("output", "", "path for the JSON result document (default: stdout)")
	verify := flag.Bool("verify", false, "cross-check the stepper against the matrix-form projector")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "projector: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.TracingEnabled,
		Exporter:    cfg.TracingExporter,
		Endpoint:    cfg.TracingEndpoint,
		SampleRatio: cfg.TracingSampleRatio,
	}, log)
	if err != nil {
		log.Error(ctx, "tracing init failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdown, log)

	var collector *observability.ProjectionCollector
	if cfg.MetricsListen != "" {
		collector, err = observability.NewProjectionCollector(nil)
		if err != nil {
			log.Error(ctx, "metrics init failed", logging.String("error", err.Error()))
			os.Exit(1)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.MetricsListen, mux); err != nil {
				log.Warn(ctx, "metrics listener stopped", logging.String("error", err.Error()))
			}
		}()
		log.Info(ctx, "serving metrics", logging.String("addr", cfg.MetricsListen))
	}

	f, err := os.Open(*scenarioPath)
	if err != nil {
		log.Error(ctx, "open scenario failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	sc, err := scenario.Load(f)
	f.Close()
	if err != nil {
		log.Error(ctx, "load scenario failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info(ctx, "scenario loaded",
		logging.String("name", sc.Name),
		logging.Int("age_groups", sc.NAges()),
		logging.Int("steps", sc.NSteps()),
		logging.Float("age_span", sc.AgeSpan),
	)

	tracer := otel.Tracer("projector")
	runCtx, span := tracer.Start(ctx, "project")
	proj := runProjection(sc, collector)
	span.End()

	if *verify {
		if err := crossCheck(sc, proj, verifyTolerance); err != nil {
			log.Error(runCtx, "matrix-form cross-check failed", logging.String("error", err.Error()))
			os.Exit(1)
		}
		log.Info(runCtx, "matrix-form cross-check passed")
	}

	result := scenario.ResultFrom(sc.Name, sc.AgeSpan, proj)
	if err := writeResult(result, *outputPath); err != nil {
		log.Error(ctx, "write result failed", logging.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.StorePath != "" {
		st, err := store.Open(cfg.StorePath)
		if err != nil {
			log.Error(ctx, "open store failed", logging.String("error", err.Error()))
			os.Exit(1)
		}
		defer st.Close()
		runID, err := st.SaveRun(ctx, sc.Name, proj)
		if err != nil {
			log.Error(ctx, "persist run failed", logging.String("error", err.Error()))
			os.Exit(1)
		}
		log.Info(ctx, "run persisted", logging.Any("run_id", runID), logging.String("path", cfg.StorePath))
	}
}

// runProjection advances the scenario through the recurrence stepper,
// reporting per-step metrics when a collector is present.
func runProjection(sc *model.Scenario, collector *observability.ProjectionCollector) *core.PopulationProjection[scalar.F64] {
	basepop, sx, fx, gx, srb := scenario.Tables(sc)
	proj := core.NewPopulationProjection(basepop, sx, fx, gx, srb, scalar.F64(sc.AgeSpan), sc.FxIdx)

	collector.SetScenarioShape(sc.NAges(), sc.NSteps())
	last := time.Now()
	proj.RegisterStepListener(func(step int) {
		now := time.Now()
		collector.ObserveStep(now.Sub(last))
		last = now
		collector.SetPopulationTotal(totalOf(proj.Population.Col(step + 1)))
	})

	proj.Run()
	return proj
}

// crossCheck reruns the scenario through the matrix-form projector and
// compares per-step total population against the stepper's.
func crossCheck(sc *model.Scenario, proj *core.PopulationProjection[scalar.F64], tol float64) error {
	basepop, sx, fx, gx, srb := scenario.Tables(sc)
	matrix := core.ProjectLeslie(basepop, sx, fx, gx, srb, scalar.F64(sc.AgeSpan), sc.FxIdx)

	for step := 0; step <= sc.NSteps(); step++ {
		direct := totalOf(proj.Population.Col(step))
		oracle := totalOf(matrix.Col(step))
		scale := math.Max(math.Abs(direct), math.Abs(oracle))
		if scale == 0 {
			continue
		}
		if math.Abs(direct-oracle)/scale > tol {
			return fmt.Errorf("step %d: stepper total %v vs matrix total %v", step, direct, oracle)
		}
	}
	return nil
}

func totalOf(col []scalar.F64) float64 {
	var total float64
	for _, v := range col {
		total += v.Float()
	}
	return total
}

func writeResult(result *scenario.Result, path string) error {
	if path == "" {
		return result.WriteJSON(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return result.WriteJSON(f)
}
