// Package memory provides an in-memory implementation of the gallery
// repositories. It backs tests and local development without a
// database, and mirrors the production adapter's semantics: checksum
// uniqueness, sibling-name uniqueness, foreign-key checks and atomic
// transactions.
package memory

import (
	"context"
	"sync"

	models "galeria/internal/domain/models/gallery"
	"galeria/internal/domain/repositories"
)

// Store holds all gallery state behind one mutex. Repositories created
// from it share the data, the way production repositories share a
// database.
type Store struct {
	mu      sync.Mutex
	events  map[string]*models.Event
	folders map[string]*models.Folder
	assets  map[string]*models.Asset
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		events:  make(map[string]*models.Event),
		folders: make(map[string]*models.Folder),
		assets:  make(map[string]*models.Asset),
	}
}

type txKey struct{}

// ExecTx runs fn while holding the store lock, with rollback on error.
// Mutations made by fn are applied to a consistent snapshot: if fn
// fails, the store is restored, so partially applied hierarchy
// mutations can never leak out.
func (s *Store) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

// lock acquires the store mutex unless ctx already runs inside ExecTx,
// which holds it for the whole transaction. Callers defer the returned
// func.
func (s *Store) lock(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type storeSnapshot struct {
	events  map[string]*models.Event
	folders map[string]*models.Folder
	assets  map[string]*models.Asset
}

func (s *Store) snapshot() storeSnapshot {
	snap := storeSnapshot{
		events:  make(map[string]*models.Event, len(s.events)),
		folders: make(map[string]*models.Folder, len(s.folders)),
		assets:  make(map[string]*models.Asset, len(s.assets)),
	}
	for id, e := range s.events {
		snap.events[id] = cloneEvent(e)
	}
	for id, f := range s.folders {
		snap.folders[id] = cloneFolder(f)
	}
	for id, a := range s.assets {
		snap.assets[id] = cloneAsset(a)
	}
	return snap
}

func (s *Store) restore(snap storeSnapshot) {
	s.events = snap.events
	s.folders = snap.folders
	s.assets = snap.assets
}

// The store owns its structs: everything entering or leaving is cloned
// so callers can never mutate shared state through a returned pointer.

func cloneEvent(e *models.Event) *models.Event {
	c := *e
	return &c
}

func cloneFolder(f *models.Folder) *models.Folder {
	c := *f
	c.ParentID = clonePtr(f.ParentID)
	c.ShareToken = clonePtr(f.ShareToken)
	c.PublishedAt = clonePtr(f.PublishedAt)
	return &c
}

func cloneAsset(a *models.Asset) *models.Asset {
	c := *a
	c.PreviewPath = clonePtr(a.PreviewPath)
	c.Width = clonePtr(a.Width)
	c.Height = clonePtr(a.Height)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
