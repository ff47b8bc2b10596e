package ui

import "github.com/Yeicor/canvas-ui/internal"

// Feed provides the placed canvases of the current world, as replicated from the simulation server.
type Feed interface {
	// Entities returns a snapshot of the placed canvases. The caller owns the returned blobs.
	Entities() []Entity
	// Session identifies the current world: a different value means the previous world was unloaded.
	Session() uint64
}

// MemoryFeed is an in-process Feed, mutated directly by the simulation (or by tests).
type MemoryFeed struct {
	store *internal.Store
}

// NewMemoryFeed creates an empty feed.
func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{store: internal.NewStore()}
}

// Put places or replaces the entity with the same ID (the blob is copied).
func (f *MemoryFeed) Put(e Entity) {
	f.store.Put(e)
}

// Remove deletes the entity with the given ID.
func (f *MemoryFeed) Remove(id int) bool {
	return f.store.Remove(id)
}

// EndSession unloads the world: every entity is removed and renderers must drop their cached canvases.
func (f *MemoryFeed) EndSession() {
	f.store.EndSession()
}

func (f *MemoryFeed) Entities() []Entity {
	return f.store.Entities()
}

func (f *MemoryFeed) Session() uint64 {
	return f.store.Session()
}
