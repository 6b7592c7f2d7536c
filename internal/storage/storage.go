package storage

import "github.com/Katakuri004/HT-Project-Scripts/internal/model"

// Backend is the interface all result stores must satisfy.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Run management. StartRun assigns an ID to the passed pointer.
	StartRun(run *model.Run) error
	RecordSamples(runID uint, samples []model.CycleSample) error
	EndRun(runID uint) error

	// Retrieval
	GetRun(runID uint) (*model.Run, error)
	ListRuns() ([]model.Run, error)
}

// Exportable is an optional interface for backends that finish a run by
// writing a result file suitable for plotting or upload.
type Exportable interface {
	GetExportedFilePath() string
}
