package store

import (
	"context"

	"github.com/kbukum/apihelper/client"
)

// DefaultSnapshotPrefix namespaces snapshot keys.
const DefaultSnapshotPrefix = "apihelper:snapshot"

// Snapshotter is implemented by *client.Client and *client.OAuth2Client.
type Snapshotter interface {
	Snapshot() client.Snapshot
}

// SnapshotStore persists client snapshots under caller-chosen names.
type SnapshotStore struct {
	typed *TypedStore[client.Snapshot]
}

// NewSnapshotStore creates a SnapshotStore on backend. Keys are prefixed
// with DefaultSnapshotPrefix unless WithPrefix overrides it.
func NewSnapshotStore(backend Backend, opts ...Option) *SnapshotStore {
	all := append([]Option{WithPrefix(DefaultSnapshotPrefix)}, opts...)
	return &SnapshotStore{typed: NewTypedStore[client.Snapshot](backend, all...)}
}

// Save stores the current snapshot of c under name.
func (s *SnapshotStore) Save(ctx context.Context, name string, c Snapshotter) error {
	snap := c.Snapshot()
	return s.typed.Save(ctx, name, &snap)
}

// Load returns the snapshot stored under name, or (nil, nil) if absent.
func (s *SnapshotStore) Load(ctx context.Context, name string) (*client.Snapshot, error) {
	return s.typed.Load(ctx, name)
}

// Delete removes the snapshot stored under name.
func (s *SnapshotStore) Delete(ctx context.Context, name string) error {
	return s.typed.Delete(ctx, name)
}
