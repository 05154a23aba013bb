// Package store persists client snapshots between processes.
//
// A Backend is a byte-oriented key/value store; Memory, File and Redis are
// provided. TypedStore layers JSON encoding and optional sealing on top of a
// Backend, and SnapshotStore specializes it for client.Snapshot values so a
// CLI or service can resume an authorized OAuth2 session without asking the
// user to log in again.
//
//	backend, _ := store.Open(cfg.Store, log)
//	snaps := store.NewSnapshotStore(backend, store.WithSealer(sealer))
//	_ = snaps.Save(ctx, "vk", oc.Snapshot())
package store
