// Command brain is a headless driver for the strategy core: it loads
// configuration, seeds a synthetic cold-start population for both sides,
// and steps the brain across a scripted tick sequence, optionally emitting
// telemetry CSVs and a human-readable per-tick trace.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"

	"github.com/pthm-cable/strategybrain/brainio"
	"github.com/pthm-cable/strategybrain/config"
	"github.com/pthm-cable/strategybrain/formation"
	"github.com/pthm-cable/strategybrain/telemetry"
)

var (
	configPath   = flag.String("config", "", "Path to a YAML config file overriding embedded defaults")
	outputDir    = flag.String("output", "", "Directory to write decisions.csv/perf.csv/config.yaml (disabled if empty)")
	maxTicks     = flag.Int("max-ticks", 600, "Number of ticks to run")
	logInterval  = flag.Int("log", 0, "Log a narrative trace every N ticks (0 = disabled)")
	logFile      = flag.String("logfile", "", "Write the narrative trace to a file instead of stdout")
	perfLog      = flag.Bool("perf", false, "Log aggregated perf stats every window")
	perfWindow   = flag.Int("perf-window", 120, "Perf aggregation window, in ticks")
	unitsPerKind = flag.Int("units-per-kind", 10, "Units per kind in the synthetic cold-start population, per side")
)

// logWriter is the destination for the narrative trace, matching the
// teacher's package-level SetLogWriter/Logf idiom.
var logWriter io.Writer = os.Stdout

func logf(format string, args ...any) {
	fmt.Fprintf(logWriter, format+"\n", args...)
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	if *logFile != "" {
		f, err := os.Create(*logFile)
		if err != nil {
			slog.Error("opening logfile", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		logWriter = f
	}

	outMgr, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("creating output directory", "error", err)
		os.Exit(1)
	}
	defer outMgr.Close()
	if err := outMgr.WriteConfig(cfg); err != nil {
		slog.Error("writing config snapshot", "error", err)
	}

	perf := telemetry.NewPerfCollector(*perfWindow)
	brain := brainio.New(cfg)

	seed := coldStartUnits(cfg, *unitsPerKind)

	for tick := 0; tick < *maxTicks; tick++ {
		perf.StartTick()
		perf.StartPhase(telemetry.PhaseIngest)

		in := brainio.Input{Tick: tick}
		if tick == 0 {
			in.Units = seed
		}

		perf.StartPhase(telemetry.PhasePlan)
		action := brain.Act(in)
		perf.StartPhase(telemetry.PhaseDispatch)
		perf.EndTick()

		if err := outMgr.WriteDecision(decisionRecord(tick, action)); err != nil {
			slog.Error("writing decision record", "error", err)
		}

		if *logInterval > 0 && tick%*logInterval == 0 {
			logf("=== Tick %d === action=%v", tick, action.Kind)
		}

		if *perfLog && (tick+1)%*perfWindow == 0 {
			stats := perf.Stats()
			stats.LogStats()
			if err := outMgr.WritePerf(stats, tick); err != nil {
				slog.Error("writing perf record", "error", err)
			}
		}
	}

	slog.Info("run complete", "ticks", *maxTicks)
}

// coldStartUnits builds the tick-0 population used by spec scenario 1:
// unitsPerKind units of each of the five kinds, for both sides, placed at
// opposite corners of the world.
func coldStartUnits(cfg *config.Config, unitsPerKind int) []brainio.UnitUpdate {
	rng := rand.New(rand.NewSource(1))
	kinds := []formation.Kind{formation.KindArrv, formation.KindFighter, formation.KindHelicopter, formation.KindIfv, formation.KindTank}

	var units []brainio.UnitUpdate
	var nextID int64 = 1

	place := func(mine bool, cx, cy float64) {
		for _, kind := range kinds {
			for i := 0; i < unitsPerKind; i++ {
				units = append(units, brainio.UnitUpdate{
					ID:         nextID,
					Mine:       mine,
					Kind:       kind,
					X:          cx + rng.Float64()*40,
					Y:          cy + rng.Float64()*40,
					Radius:     2,
					Durability: 100,
					IsNew:      true,
				})
				nextID++
			}
		}
	}

	place(true, 50, 50)
	place(false, cfg.World.Width-50, cfg.World.Height-50)
	return units
}

func decisionRecord(tick int, out brainio.Output) telemetry.DecisionRecord {
	rec := telemetry.DecisionRecord{Tick: tick}
	switch out.Kind {
	case brainio.ActionClearAndSelect:
		rec.Action = "ClearAndSelect"
	case brainio.ActionMove:
		rec.Action = "Move"
	default:
		rec.Action = "None"
	}
	return rec
}
