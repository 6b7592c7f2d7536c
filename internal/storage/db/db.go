// Package db implements the storage.Backend interface on gorm with internal
// queues and a background writer goroutine. Postgres and SQLite share the
// same backend; the only SQLite-specific concerns are the in-memory database
// and its periodic VACUUM INTO disk dump.
package db

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Katakuri004/HT-Project-Scripts/internal/config"
	"github.com/Katakuri004/HT-Project-Scripts/internal/database"
	"github.com/Katakuri004/HT-Project-Scripts/internal/model"
	"github.com/Katakuri004/HT-Project-Scripts/internal/queue"
)

const flushInterval = 1 * time.Second

// sampleBatch is one RecordSamples call waiting for the writer goroutine.
type sampleBatch struct {
	RunID   uint
	Samples []model.CycleSample
}

// Backend implements storage.Backend using gorm with queue-based batch writes.
type Backend struct {
	cfg      config.StorageConfig
	log      zerolog.Logger
	manager  *database.Manager
	pending  *queue.Queue[sampleBatch]
	stopChan chan struct{}
	doneChan chan struct{}
}

// New creates a database-backed result store. Init must be called before use.
func New(cfg config.StorageConfig, log zerolog.Logger) *Backend {
	return &Backend{
		cfg: cfg,
		log: log,
	}
}

// Init opens the database, migrates the schema, and starts the writer goroutine.
func (b *Backend) Init() error {
	b.manager = database.NewManager(b.log)
	b.pending = queue.New[sampleBatch]()
	b.stopChan = make(chan struct{})
	b.doneChan = make(chan struct{})

	switch b.cfg.Type {
	case "sqlite":
		db, err := b.manager.GetSqliteDB("")
		if err != nil {
			return fmt.Errorf("failed to open SQLite DB: %w", err)
		}
		b.manager.DB = db
		b.manager.IsValid = true
		b.manager.ShouldSaveLocal = true
		b.manager.SqliteFilePath = b.cfg.SQLite.Path
	default:
		if err := b.manager.Connect(); err != nil {
			return fmt.Errorf("failed to connect to DB: %w", err)
		}
		if b.manager.ShouldSaveLocal {
			b.manager.SqliteFilePath = b.cfg.SQLite.Path
		}
	}

	if b.manager.SqlDB == nil {
		sqlDB, err := b.manager.DB.DB()
		if err != nil {
			return fmt.Errorf("failed to access sql interface: %w", err)
		}
		b.manager.SqlDB = sqlDB
	}

	if err := b.manager.Setup(); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	go b.writerLoop()

	if b.manager.ShouldSaveLocal && b.cfg.SQLite.DumpInterval > 0 {
		go b.dumpLoop()
	}

	return nil
}

// Close stops the writer goroutine, flushes remaining samples, and dumps the
// in-memory database to disk if local saving is active.
func (b *Backend) Close() error {
	close(b.stopChan)
	<-b.doneChan

	if err := b.flush(); err != nil {
		b.log.Error().Err(err).Msg("Failed to flush pending samples on close")
	}

	if b.manager.ShouldSaveLocal && b.manager.SqliteFilePath != "" {
		if err := b.manager.DumpMemoryToDisk(); err != nil {
			b.log.Error().Err(err).Msg("Failed to dump DB to disk on close")
		}
	}

	if b.manager.SqlDB != nil {
		return b.manager.SqlDB.Close()
	}
	return nil
}

// StartRun inserts the run row. Any samples already attached to the run are
// enqueued for the writer goroutine rather than written inline.
func (b *Backend) StartRun(run *model.Run) error {
	samples := run.Samples
	run.Samples = nil
	if err := b.manager.DB.Create(run).Error; err != nil {
		run.Samples = samples
		return fmt.Errorf("failed to create run: %w", err)
	}
	run.Samples = samples

	if len(samples) > 0 {
		b.pending.Push(sampleBatch{RunID: run.ID, Samples: samples})
	}
	return nil
}

// RecordSamples enqueues samples for batch insertion.
func (b *Backend) RecordSamples(runID uint, samples []model.CycleSample) error {
	if len(samples) == 0 {
		return nil
	}
	b.pending.Push(sampleBatch{RunID: runID, Samples: samples})
	return nil
}

// EndRun flushes the run's samples and, for local storage, dumps to disk so a
// finished run survives a crash of the process.
func (b *Backend) EndRun(runID uint) error {
	if err := b.flush(); err != nil {
		return err
	}

	if b.manager.ShouldSaveLocal && b.manager.SqliteFilePath != "" {
		if err := b.manager.DumpMemoryToDisk(); err != nil {
			return fmt.Errorf("failed to dump DB after run %d: %w", runID, err)
		}
	}
	return nil
}

// GetRun returns a run with its samples.
func (b *Backend) GetRun(runID uint) (*model.Run, error) {
	if err := b.flush(); err != nil {
		return nil, err
	}

	var run model.Run
	if err := b.manager.DB.Preload("Samples").First(&run, runID).Error; err != nil {
		return nil, fmt.Errorf("failed to load run %d: %w", runID, err)
	}
	return &run, nil
}

// ListRuns returns all runs without their samples.
func (b *Backend) ListRuns() ([]model.Run, error) {
	var runs []model.Run
	if err := b.manager.DB.Order("id").Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// writerLoop flushes pending sample batches on a fixed interval.
func (b *Backend) writerLoop() {
	defer close(b.doneChan)

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.flush(); err != nil {
				b.log.Error().Err(err).Msg("Failed to flush sample batches")
			}
		}
	}
}

// flush drains the queue and writes every batch with CreateInBatches.
func (b *Backend) flush() error {
	batches := b.pending.Drain()
	for _, batch := range batches {
		for i := range batch.Samples {
			batch.Samples[i].RunID = batch.RunID
		}
		if err := b.manager.DB.CreateInBatches(batch.Samples, 2000).Error; err != nil {
			return fmt.Errorf("failed to insert %d samples for run %d: %w",
				len(batch.Samples), batch.RunID, err)
		}
	}
	return nil
}

// dumpLoop periodically dumps the in-memory SQLite database to disk.
// VACUUM INTO takes a point-in-time snapshot, so writes are never paused.
func (b *Backend) dumpLoop() {
	ticker := time.NewTicker(b.cfg.SQLite.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.manager.DumpMemoryToDisk(); err != nil {
				b.log.Error().Err(err).Msg("Failed to dump DB to disk")
			}
		}
	}
}
