// Package docs defines the outbound ports for month-document persistence.
package docs

import (
	"context"

	"financas/internal/core"
)

// Identity is the authenticated user of a remote backend.
type Identity struct {
	UID string
}

// LocalUser is the user id under which local-only backends file documents.
const LocalUser = "local"

type (
	// DocumentStore reads and writes full month documents. Get returns
	// (nil, nil) when no document exists for the key; that absence is what
	// triggers month rollover, it is not an error. Set uses merge
	// semantics at the remote: fields absent from the record are left
	// untouched in the stored document.
	DocumentStore interface {
		Get(ctx context.Context, uid string, key core.MonthKey) (*core.MonthRecord, error)
		Set(ctx context.Context, uid string, key core.MonthKey, rec *core.MonthRecord) error
	}

	// Watcher delivers remote updates for one month document. Backends
	// without change feeds simply do not implement it. The callback may
	// receive nil when the document disappears remotely. The returned stop
	// function cancels the watch; callbacks may still race a slow stop,
	// so callers must guard against deliveries from a cancelled watch.
	Watcher interface {
		Watch(uid string, key core.MonthKey, onChange func(*core.MonthRecord)) (stop func(), err error)
	}

	// Authenticator establishes a remote identity, creating an anonymous
	// one automatically when none exists. onChange receives nil when no
	// identity could be established.
	Authenticator interface {
		Authenticate(ctx context.Context, onChange func(*Identity)) (stop func(), err error)
	}
)
