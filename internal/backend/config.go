package backend

import (
	"fmt"
	"time"

	"financas/internal/config"
)

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// AMQP (optional, enables archive notifications)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Firestore specific
	FirebaseProjectID string
	FirebaseAPIKey    string
	WatchInterval     time.Duration
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: backendType,

		SQLiteDBPath: appConfig.SQLiteDBPath,

		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		FirebaseProjectID: appConfig.FirebaseProjectID,
		FirebaseAPIKey:    appConfig.FirebaseAPIKey,
		WatchInterval:     appConfig.WatchInterval,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
		// AMQP is optional, so we don't validate it

	case FirestoreBackend:
		if c.FirebaseProjectID == "" {
			return fmt.Errorf("Firebase project id is required for firestore backend")
		}
		if c.FirebaseAPIKey == "" {
			return fmt.Errorf("Firebase API key is required for firestore backend")
		}

	case MemoryBackend:
		// No additional configuration required
	}

	return nil
}
