package sync

import (
	"context"

	"github.com/stikie/stikie/pkg/core"
)

// OfflineRemote is a core.Remote whose every operation fails with the
// wrapped connection error. Wiring it in when the real remote cannot be
// reached keeps the dispatcher's enqueue-on-failure path working, so
// mutations made while unreachable still land in the durable queue.
type OfflineRemote struct {
	Err error
}

var _ core.Remote = OfflineRemote{}

func (o OfflineRemote) FetchAll(ctx context.Context, ownerID string) ([]core.Note, error) {
	return nil, o.Err
}

func (o OfflineRemote) Upsert(ctx context.Context, n core.Note, ownerID string) error {
	return o.Err
}

func (o OfflineRemote) Delete(ctx context.Context, noteID string) error {
	return o.Err
}

func (o OfflineRemote) BatchUpsert(ctx context.Context, notes []core.Note, ownerID string) error {
	return o.Err
}

func (o OfflineRemote) DeleteAllForOwner(ctx context.Context, ownerID string) error {
	return o.Err
}
