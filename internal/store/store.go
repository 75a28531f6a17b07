// Package store holds the in-memory month state and keeps it in sync with the
// configured document backend. Mutations apply locally first and persist in
// the background, so callers never wait on the network.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"financas/internal/core"
	"financas/internal/docs"
	"financas/internal/services"

	"github.com/google/uuid"
)

// SyncStatus describes the relationship between local state and the backend.
type SyncStatus string

const (
	// StatusDisconnected means there is no remote session; data lives in a
	// local backend only.
	StatusDisconnected SyncStatus = "disconnected"
	// StatusSyncing means a local mutation has been applied and its remote
	// write is still in flight.
	StatusSyncing SyncStatus = "syncing"
	// StatusSynced means the last write reached the remote backend.
	StatusSynced SyncStatus = "synced"
	// StatusError means the last remote operation failed; local state is
	// kept and retried on the next mutation.
	StatusError SyncStatus = "error"
)

var (
	// ErrNoMonth is returned by mutations before a month has been opened.
	ErrNoMonth = errors.New("store: no month loaded")
	// ErrNotFound is returned when a mutation targets an id that is not in
	// the current month.
	ErrNotFound = errors.New("store: item not found")
)

const persistTimeout = 15 * time.Second

// Options configures optional store collaborators.
type Options struct {
	// Watcher delivers remote document changes. Optional.
	Watcher docs.Watcher
	// Remote marks the backend as a remote service. It drives the sync
	// status; local backends stay disconnected.
	Remote bool
	Logger *slog.Logger
}

// Store is the single source of truth for the month being viewed.
type Store struct {
	backend  docs.DocumentStore
	watcher  docs.Watcher
	rollover *services.Rollover
	remote   bool
	logger   *slog.Logger

	mu        sync.Mutex
	uid       string
	monthKey  core.MonthKey
	record    *core.MonthRecord
	status    SyncStatus
	loading   bool
	watchStop func()
	watchGen  uint64

	// persistMu serializes background writes so they reach the backend in
	// mutation order. Last write wins.
	persistMu sync.Mutex
	wg        sync.WaitGroup

	newID func() string
	clock func() core.Date
}

func New(backend docs.DocumentStore, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "store")
	return &Store{
		backend:  backend,
		watcher:  opts.Watcher,
		rollover: services.NewRollover(backend, logger),
		remote:   opts.Remote,
		logger:   logger,
		uid:      docs.LocalUser,
		status:   StatusDisconnected,
		newID:    uuid.NewString,
		clock:    func() core.Date { return core.Today(time.Now()) },
	}
}

// SetIdentity switches the active user. A nil identity falls back to the
// local user. When a month is already open it is reloaded under the new user.
func (s *Store) SetIdentity(ctx context.Context, id *docs.Identity) error {
	uid := docs.LocalUser
	if id != nil {
		uid = id.UID
	}

	s.mu.Lock()
	changed := uid != s.uid
	s.uid = uid
	key := s.monthKey
	s.mu.Unlock()

	if !changed || key == "" {
		return nil
	}
	s.logger.Info("identity changed", "uid", uid)
	return s.SetMonth(ctx, key)
}

// SetMonth opens a month, creating it through rollover when absent, and
// starts watching it for remote changes. A SetMonth that is overtaken by a
// newer one becomes a no-op.
func (s *Store) SetMonth(ctx context.Context, key core.MonthKey) error {
	s.mu.Lock()
	if s.watchStop != nil {
		s.watchStop()
		s.watchStop = nil
	}
	s.watchGen++
	gen := s.watchGen
	uid := s.uid
	s.monthKey = key
	s.loading = true
	s.mu.Unlock()

	rec, err := s.rollover.Ensure(ctx, uid, key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.watchGen {
		return nil
	}
	s.loading = false
	if err != nil {
		s.record = nil
		s.status = StatusError
		return fmt.Errorf("open month %s: %w", key, err)
	}
	s.record = rec
	if s.remote && uid != docs.LocalUser {
		s.status = StatusSynced
	} else {
		s.status = StatusDisconnected
	}

	if s.watcher != nil {
		stop, werr := s.watcher.Watch(uid, key, s.remoteChangeFunc(gen))
		if werr != nil {
			s.logger.Warn("watch failed, continuing without live updates",
				"month", key.String(), "error", werr)
		} else {
			s.watchStop = stop
		}
	}
	return nil
}

// remoteChangeFunc binds a watch callback to the generation that created it,
// so a callback from a torn-down watch can never overwrite newer state.
func (s *Store) remoteChangeFunc(gen uint64) func(*core.MonthRecord) {
	return func(rec *core.MonthRecord) {
		if rec == nil {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.watchGen {
			return
		}
		s.record = rec
		if s.remote && s.uid != docs.LocalUser {
			s.status = StatusSynced
		}
	}
}

// Close stops the active watch and waits for in-flight writes to finish.
func (s *Store) Close() {
	s.mu.Lock()
	if s.watchStop != nil {
		s.watchStop()
		s.watchStop = nil
	}
	s.watchGen++
	s.mu.Unlock()
	s.wg.Wait()
}

// Record returns a deep copy of the current month, or nil before SetMonth.
func (s *Store) Record() *core.MonthRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil {
		return nil
	}
	return s.record.Clone()
}

func (s *Store) Status() SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Store) MonthKey() core.MonthKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.monthKey
}

func (s *Store) UID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uid
}

// AddItem validates the item, assigns it a fresh id and appends it to the
// current month. The assigned id is returned.
func (s *Store) AddItem(kind core.ItemKind, it core.Item) (string, error) {
	if err := it.Validate(); err != nil {
		return "", err
	}
	id := s.newID()
	err := s.mutate(func(rec *core.MonthRecord) error {
		return rec.Append(kind, it.WithID(id))
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// UpdateItem validates the item and replaces the stored entry with the same
// id. An id that is no longer present is a no-op, not an error; the item may
// have been deleted from another tab while the edit form was open.
func (s *Store) UpdateItem(kind core.ItemKind, it core.Item) error {
	if err := it.Validate(); err != nil {
		return err
	}
	return s.mutate(func(rec *core.MonthRecord) error {
		ok, err := rec.Replace(kind, it)
		if err != nil {
			return err
		}
		if !ok {
			s.logger.Warn("update target missing, skipping",
				"kind", string(kind), "id", it.ItemID())
		}
		return nil
	})
}

// DeleteItem removes the item with the given id. Deleting an absent id
// returns ErrNotFound.
func (s *Store) DeleteItem(kind core.ItemKind, id string) error {
	return s.mutate(func(rec *core.MonthRecord) error {
		ok, err := rec.Remove(kind, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
		}
		return nil
	})
}

// TogglePaid flips the paid flag of a payable item, stamping or clearing its
// paid date with today's date.
func (s *Store) TogglePaid(kind core.ItemKind, id string) error {
	return s.mutate(func(rec *core.MonthRecord) error {
		it, ok := rec.Find(kind, id)
		if !ok {
			return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
		}
		toggled, err := core.TogglePaid(it, s.clock())
		if err != nil {
			return err
		}
		if _, err := rec.Replace(kind, toggled); err != nil {
			return err
		}
		return nil
	})
}

// mutate applies a change to the in-memory record, then persists a snapshot
// in the background. The caller observes the new state immediately; only the
// sync status reflects the outcome of the remote write.
func (s *Store) mutate(apply func(*core.MonthRecord) error) error {
	s.mu.Lock()
	if s.record == nil {
		s.mu.Unlock()
		return ErrNoMonth
	}
	if err := apply(s.record); err != nil {
		s.mu.Unlock()
		return err
	}
	snapshot := s.record.Clone()
	uid := s.uid
	key := s.monthKey
	if s.remote && uid != docs.LocalUser {
		s.status = StatusSyncing
	}
	s.mu.Unlock()

	s.wg.Add(1)
	go s.persist(uid, key, snapshot)
	return nil
}

func (s *Store) persist(uid string, key core.MonthKey, rec *core.MonthRecord) {
	defer s.wg.Done()
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	err := s.backend.Set(ctx, uid, key, rec)
	if err != nil {
		s.logger.Error("persist failed", "uid", uid, "month", key.String(), "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if uid != s.uid || key != s.monthKey {
		return
	}
	if !s.remote || uid == docs.LocalUser {
		return
	}
	if err != nil {
		s.status = StatusError
	} else if s.status == StatusSyncing {
		s.status = StatusSynced
	}
}
