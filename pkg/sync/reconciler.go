package sync

import (
	"context"
	"log/slog"
	stdsync "sync"

	"github.com/stikie/stikie/pkg/core"
)

// State is where the session currently stands.
type State string

const (
	StateAnonymous   State = "anonymous"
	StateReconciling State = "reconciling"
	StateSynced      State = "synced"
)

// BoardStore is the slice of the local store the reconciler needs:
// snapshot, silent replace, and wipe.
type BoardStore interface {
	Notes() []core.Note
	SetNotesDirectly(notes []core.Note) error
	ClearAllNotes() error
}

// Reconciler runs the one-time sign-in merge between local notes and
// the newly authenticated owner's remote set, drains the retry queue on
// connectivity transitions, and clears everything on sign-out.
//
// The merge is a plain union by id. Local notes with legacy non-UUID
// ids get a freshly minted UUID before comparison; local notes whose id
// already exists remotely are discarded in favor of the remote copy.
type Reconciler struct {
	mu       stdsync.Mutex
	state    State
	synced   bool // one-shot guard, re-armed only by sign-out
	degraded bool

	store        BoardStore
	remote       core.Remote
	queue        *Queue
	identity     core.Identity
	connectivity core.Connectivity
	logger       *slog.Logger
	newID        func() string
}

// ReconcilerConfig wires a Reconciler.
type ReconcilerConfig struct {
	Store        BoardStore
	Remote       core.Remote
	Queue        *Queue
	Identity     core.Identity
	Connectivity core.Connectivity
	Logger       *slog.Logger
	// NewID defaults to core.NewID.
	NewID func() string
}

// NewReconciler returns a reconciler in the anonymous state.
func NewReconciler(cfg ReconcilerConfig) *Reconciler {
	newID := cfg.NewID
	if newID == nil {
		newID = core.NewID
	}
	return &Reconciler{
		state:        StateAnonymous,
		store:        cfg.Store,
		remote:       cfg.Remote,
		queue:        cfg.Queue,
		identity:     cfg.Identity,
		connectivity: cfg.Connectivity,
		logger:       cfg.Logger,
		newID:        newID,
	}
}

// State returns the current session state.
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Degraded reports whether sync is degraded (authenticated but
// offline). Purely observational; local mutations are never blocked.
func (r *Reconciler) Degraded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.degraded
}

// OnSignIn runs the one-time merge for the newly authenticated owner.
// Repeated auth notifications within the same session do not re-trigger
// it. On any failure the merge is abandoned and local notes stay the
// source of truth; they remain eligible for upload on a future sign-in.
// Regardless of outcome, a connectivity check triggers a queue drain.
func (r *Reconciler) OnSignIn(ctx context.Context, ownerID string) {
	r.mu.Lock()
	if r.synced {
		r.mu.Unlock()
		return
	}
	r.synced = true
	r.state = StateReconciling
	r.mu.Unlock()

	if err := r.merge(ctx, ownerID); err != nil {
		if r.logger != nil {
			r.logger.Warn("sign-in reconciliation abandoned, keeping local notes",
				"owner", ownerID, "error", err)
		}
	}

	r.mu.Lock()
	r.state = StateSynced
	r.mu.Unlock()

	if r.connectivity == nil || r.connectivity.Online() {
		r.queue.Drain(ctx, ownerID)
	}
}

func (r *Reconciler) merge(ctx context.Context, ownerID string) error {
	localNotes := r.store.Notes()

	remoteNotes, err := r.remote.FetchAll(ctx, ownerID)
	if err != nil {
		return err
	}
	remoteIDs := make(map[string]struct{}, len(remoteNotes))
	for _, n := range remoteNotes {
		remoteIDs[n.ID] = struct{}{}
	}

	// Mint stable UUIDs for legacy ids, then keep only notes the
	// remote does not already have.
	var localOnly []core.Note
	for _, n := range localNotes {
		if !core.IsCanonicalID(n.ID) {
			n.ID = r.newID()
		}
		if _, exists := remoteIDs[n.ID]; !exists {
			localOnly = append(localOnly, n)
		}
	}

	if len(localOnly) > 0 {
		if err := r.remote.BatchUpsert(ctx, localOnly, ownerID); err != nil {
			return err
		}
	}

	merged := make([]core.Note, 0, len(remoteNotes)+len(localOnly))
	merged = append(merged, remoteNotes...)
	merged = append(merged, localOnly...)

	if err := r.store.SetNotesDirectly(merged); err != nil {
		return err
	}
	if r.logger != nil {
		r.logger.Info("sign-in reconciliation complete",
			"owner", ownerID, "remote", len(remoteNotes), "uploaded", len(localOnly))
	}
	return nil
}

// OnSignOut clears all local notes and the retry queue, and re-arms the
// one-shot guard so the next sign-in reconciles again.
func (r *Reconciler) OnSignOut() {
	if err := r.store.ClearAllNotes(); err != nil && r.logger != nil {
		r.logger.Warn("failed to clear notes on sign-out", "error", err)
	}
	if err := r.queue.Clear(); err != nil && r.logger != nil {
		r.logger.Warn("failed to clear sync queue on sign-out", "error", err)
	}
	r.mu.Lock()
	r.synced = false
	r.degraded = false
	r.state = StateAnonymous
	r.mu.Unlock()
}

// OnConnectivityChange reacts to online/offline transitions. Going
// online while authenticated drains the queue; going offline marks sync
// as degraded.
func (r *Reconciler) OnConnectivityChange(ctx context.Context, online bool) {
	owner, authenticated := r.identity.OwnerID()

	r.mu.Lock()
	r.degraded = authenticated && !online
	r.mu.Unlock()

	if online && authenticated {
		r.queue.Drain(ctx, owner)
	}
}

// Run subscribes to session and connectivity transitions until ctx is
// cancelled. Intended for long-lived embedders; short-lived callers use
// the On* methods directly.
func (r *Reconciler) Run(ctx context.Context, sessions <-chan core.SessionEvent) {
	var changes <-chan bool
	if r.connectivity != nil {
		changes = r.connectivity.Changes()
	}
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-sessions:
			if !ok {
				return
			}
			switch ev.Type {
			case core.SessionSignIn:
				r.OnSignIn(ctx, ev.OwnerID)
			case core.SessionSignOut:
				r.OnSignOut()
			}

		case online, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			r.OnConnectivityChange(ctx, online)
		}
	}
}
