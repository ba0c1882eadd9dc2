package core

import "context"

// Remote defines the contract for the owner-scoped remote note table.
// Implementations are thin, fail-fast transports: no retries or backoff
// live here. Resilience is the sync layer's responsibility.
type Remote interface {
	// FetchAll returns every note owned by ownerID, ordered by
	// creation time ascending.
	FetchAll(ctx context.Context, ownerID string) ([]Note, error)

	// Upsert inserts or replaces a note by id.
	Upsert(ctx context.Context, n Note, ownerID string) error

	// Delete removes a note by id.
	Delete(ctx context.Context, noteID string) error

	// BatchUpsert chunks notes into fixed-size batches to respect
	// payload-size limits. The first failing chunk aborts the rest;
	// partial application is safe because upsert is idempotent per id.
	BatchUpsert(ctx context.Context, notes []Note, ownerID string) error

	// DeleteAllForOwner bulk-removes every note owned by ownerID.
	// Used on account deletion only.
	DeleteAllForOwner(ctx context.Context, ownerID string) error
}

// SessionEventType marks a sign-in or sign-out transition.
type SessionEventType string

const (
	SessionSignIn  SessionEventType = "sign-in"
	SessionSignOut SessionEventType = "sign-out"
)

// SessionEvent is emitted by the identity collaborator when the
// authenticated owner changes.
type SessionEvent struct {
	Type    SessionEventType
	OwnerID string
}

// Identity supplies the current authenticated owner id. The sync layer
// receives it as an explicit dependency rather than reading a mutable
// package-level variable.
type Identity interface {
	// OwnerID returns the authenticated owner id, or false when the
	// session is anonymous.
	OwnerID() (string, bool)
}

// SessionSource extends Identity with sign-in/sign-out notifications.
type SessionSource interface {
	Identity

	// Sessions returns the channel of session transitions.
	Sessions() <-chan SessionEvent
}

// Connectivity reports whether the remote store is reachable and emits
// online/offline transitions.
type Connectivity interface {
	Online() bool

	// Changes returns a channel receiving the new online state on
	// each transition.
	Changes() <-chan bool
}
