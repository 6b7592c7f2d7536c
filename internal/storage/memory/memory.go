package memory

import (
	"fmt"
	"sync"

	"github.com/Katakuri004/HT-Project-Scripts/internal/config"
	"github.com/Katakuri004/HT-Project-Scripts/internal/model"
)

// RunRecord groups a run with its accumulated samples.
type RunRecord struct {
	Run     model.Run
	Samples []model.CycleSample
}

// Backend stores runs in memory and exports each finished run to JSON.
type Backend struct {
	cfg config.MemoryConfig

	runs      map[uint]*RunRecord
	idCounter uint
	mu        sync.RWMutex

	lastExportPath string
}

// New creates a new memory backend.
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:  cfg,
		runs: make(map[uint]*RunRecord),
	}
}

// Init initializes the backend.
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources.
func (b *Backend) Close() error {
	return nil
}

// StartRun registers a new run and assigns its ID.
func (b *Backend) StartRun(run *model.Run) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	run.ID = b.idCounter

	record := &RunRecord{Run: *run}
	// samples handed in on the run itself count as recorded
	record.Samples = append(record.Samples, run.Samples...)
	b.runs[run.ID] = record
	return nil
}

// RecordSamples appends samples to a run.
func (b *Backend) RecordSamples(runID uint, samples []model.CycleSample) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	record, ok := b.runs[runID]
	if !ok {
		return fmt.Errorf("unknown run %d", runID)
	}
	record.Samples = append(record.Samples, samples...)
	return nil
}

// EndRun finalizes a run and exports it to a JSON file.
func (b *Backend) EndRun(runID uint) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	record, ok := b.runs[runID]
	if !ok {
		return fmt.Errorf("unknown run %d", runID)
	}
	return b.exportJSON(record)
}

// GetRun returns a copy of a stored run with its samples attached.
func (b *Backend) GetRun(runID uint) (*model.Run, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	record, ok := b.runs[runID]
	if !ok {
		return nil, fmt.Errorf("unknown run %d", runID)
	}
	run := record.Run
	run.Samples = append([]model.CycleSample(nil), record.Samples...)
	return &run, nil
}

// ListRuns returns all stored runs without their samples.
func (b *Backend) ListRuns() ([]model.Run, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	runs := make([]model.Run, 0, len(b.runs))
	for _, record := range b.runs {
		run := record.Run
		run.Samples = nil
		runs = append(runs, run)
	}
	return runs, nil
}

// GetExportedFilePath returns the path of the most recent export.
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
