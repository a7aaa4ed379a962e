package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/flappy/config"
)

// OutputManager handles structured training output with CSV logging.
// CSV files are created on their first write.
type OutputManager struct {
	dir         string
	generations csvLog
	perf        csvLog
}

// csvLog is one append-only CSV file.
type csvLog struct {
	name          string
	file          *os.File
	headerWritten bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &OutputManager{
		dir:         dir,
		generations: csvLog{name: "generations.csv"},
		perf:        csvLog{name: "perf.csv"},
	}, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteGeneration appends a generation record to generations.csv.
func (om *OutputManager) WriteGeneration(stats GenerationStats) error {
	if om == nil {
		return nil
	}
	if err := om.generations.append(om.dir, []GenerationStats{stats}); err != nil {
		return fmt.Errorf("writing generation: %w", err)
	}
	return nil
}

// WritePerf appends a tick timing record to perf.csv.
func (om *OutputManager) WritePerf(row PerfStatsCSV) error {
	if om == nil {
		return nil
	}
	if err := om.perf.append(om.dir, []PerfStatsCSV{row}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// append writes records, creating the file and its header on the first call.
func (l *csvLog) append(dir string, records any) error {
	if l.file == nil {
		f, err := os.Create(filepath.Join(dir, l.name))
		if err != nil {
			return fmt.Errorf("creating %s: %w", l.name, err)
		}
		l.file = f
	}

	if l.headerWritten {
		return gocsv.MarshalWithoutHeaders(records, l.file)
	}
	if err := gocsv.Marshal(records, l.file); err != nil {
		return err
	}
	l.headerWritten = true
	return nil
}

func (l *csvLog) close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
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
	return errors.Join(om.generations.close(), om.perf.close())
}
