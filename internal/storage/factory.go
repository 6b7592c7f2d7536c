package storage

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Katakuri004/HT-Project-Scripts/internal/config"
	"github.com/Katakuri004/HT-Project-Scripts/internal/storage/db"
	"github.com/Katakuri004/HT-Project-Scripts/internal/storage/memory"
)

// NewBackend creates a storage backend based on configuration.
func NewBackend(cfg config.StorageConfig, log zerolog.Logger) (Backend, error) {
	switch cfg.Type {
	case "postgres", "sqlite":
		return db.New(cfg, log), nil
	case "memory":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
