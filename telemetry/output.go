package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/strategybrain/config"
)

// DecisionRecord is one tick's planner/dispatcher outcome, flattened for
// CSV export so a match can be reviewed offline.
type DecisionRecord struct {
	Tick        int     `csv:"tick"`
	Action      string  `csv:"action"`
	FormationID int32   `csv:"formation_id"`
	IdeaKind    string  `csv:"idea_kind"`
	DamageDiff  float64 `csv:"damage_diff"`
	SqDist      float64 `csv:"sq_dist"`
}

// OutputManager handles structured per-match output: decision and
// performance CSVs plus a copy of the configuration the match ran with.
type OutputManager struct {
	dir          string
	decisionFile *os.File
	perfFile     *os.File

	decisionHeaderWritten bool
	perfHeaderWritten     bool
}

// NewOutputManager creates a new output manager and initializes the output
// directory. Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	decisionPath := filepath.Join(dir, "decisions.csv")
	f, err := os.Create(decisionPath)
	if err != nil {
		return nil, fmt.Errorf("creating decisions.csv: %w", err)
	}
	om.decisionFile = f

	perfPath := filepath.Join(dir, "perf.csv")
	f, err = os.Create(perfPath)
	if err != nil {
		om.decisionFile.Close()
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	om.perfFile = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML alongside the CSVs.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteDecision writes one tick's decision record to decisions.csv.
func (om *OutputManager) WriteDecision(rec DecisionRecord) error {
	if om == nil {
		return nil
	}

	records := []DecisionRecord{rec}
	if !om.decisionHeaderWritten {
		if err := gocsv.Marshal(records, om.decisionFile); err != nil {
			return fmt.Errorf("writing decision: %w", err)
		}
		om.decisionHeaderWritten = true
	} else if err := gocsv.MarshalWithoutHeaders(records, om.decisionFile); err != nil {
		return fmt.Errorf("writing decision: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int) error {
	if om == nil {
		return nil
	}

	records := []PerfStatsCSV{stats.ToCSV(windowEnd)}
	if !om.perfHeaderWritten {
		if err := gocsv.Marshal(records, om.perfFile); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
		om.perfHeaderWritten = true
	} else if err := gocsv.MarshalWithoutHeaders(records, om.perfFile); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	if om.decisionFile != nil {
		if err := om.decisionFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if om.perfFile != nil {
		if err := om.perfFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
