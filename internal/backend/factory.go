package backend

import (
	"fmt"
	"log/slog"

	"smartsaku/internal/store"
	"smartsaku/internal/store/memory"
	"smartsaku/internal/store/sqlite"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result contains the ledger store and optional cleanup function.
type Result struct {
	Store   store.LedgerStore
	Cleanup CleanupFunc
}

// Factory creates ledger stores based on configuration.
type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// CreateBackend builds the store named by config.Type.
func (f *Factory) CreateBackend(cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(cfg)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}

func (f *Factory) createSQLiteBackend(cfg Config) (*Result, error) {
	repo, err := sqlite.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)

	return &Result{
		Store:   repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *Factory) createMemoryBackend() (*Result, error) {
	f.logger.Info("Initialized memory backend")

	return &Result{
		Store:   memory.New(),
		Cleanup: nil, // nothing to release
	}, nil
}
