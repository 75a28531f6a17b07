package backend

import (
	"context"

	"financas/internal/docs"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the wired document store and its optional
// collaborators. Watcher and Auth are nil for backends without live updates
// or sign-in.
type BackendResult struct {
	Store   docs.DocumentStore
	Watcher docs.Watcher
	Auth    docs.Authenticator
	// Remote marks backends whose writes cross the network; it drives the
	// sync status shown to the user.
	Remote  bool
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend    BackendType = "memory"
	SQLiteBackend    BackendType = "sqlite"
	FirestoreBackend BackendType = "firestore"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, FirestoreBackend:
		return true
	default:
		return false
	}
}
