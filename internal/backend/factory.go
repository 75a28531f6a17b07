// Package backend selects and wires the document store the app runs on:
// in-memory for demos, SQLite for a local single-user setup, Firestore for
// synced multi-device use.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"financas/internal/amqp"
	"financas/internal/docs"
	"financas/internal/docs/firestore"
	"financas/internal/docs/memory"
	"financas/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		return f.createMemoryBackend()
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case FirestoreBackend:
		return f.createFirestoreBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	f.logger.Info("Initialized memory backend")
	return &BackendResult{
		Store:   memory.New(),
		Cleanup: func() error { return nil },
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	var store docs.DocumentStore = repo
	cleanup := repo.Close

	// AMQP is optional; without it writes simply skip archive notifications
	if config.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without archive notifications", "error", err)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			store = amqp.NewNotifyingStore(repo, amqpClient, f.logger)
			cleanup = func() error {
				amqpClient.Close()
				return repo.Close()
			}
		}
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Store:   store,
		Cleanup: cleanup,
	}, nil
}

func (f *DefaultFactory) createFirestoreBackend(config Config) (*BackendResult, error) {
	client := firestore.New(firestore.Config{
		ProjectID:    config.FirebaseProjectID,
		APIKey:       config.FirebaseAPIKey,
		PollInterval: config.WatchInterval,
	}, f.logger)

	var store docs.DocumentStore = client
	cleanup := func() error { return nil }

	if config.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without archive notifications", "error", err)
		} else {
			store = amqp.NewNotifyingStore(client, amqpClient, f.logger)
			cleanup = func() error {
				amqpClient.Close()
				return nil
			}
		}
	}

	f.logger.Info("Initialized Firestore backend", "project_id", config.FirebaseProjectID)

	return &BackendResult{
		Store:   store,
		Watcher: client,
		Auth:    client,
		Remote:  true,
		Cleanup: cleanup,
	}, nil
}
