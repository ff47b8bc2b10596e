package internal

import (
	"sort"
	"sync"

	"github.com/barkimedes/go-deepcopy"
)

// Store is the authoritative set of placed canvases for one session.
// Every mutation bumps a generation counter so that readers can ask for the changes since a known generation.
type Store struct {
	mu         sync.RWMutex
	session    uint64
	generation uint64
	entities   map[int]storedEntity
	removed    map[int]uint64 // ID -> generation of removal (tombstones, reset on session end)
}

type storedEntity struct {
	entity     Entity
	generation uint64
}

// Snapshot is an internal struct that has to be exported for RPC.
// It holds the changes of a Store since some generation (or everything if Full).
type Snapshot struct {
	Session, Generation uint64
	Full                bool
	Changed             []Entity
	Removed             []int
}

// SnapshotArgs is an internal struct that has to be exported for RPC.
type SnapshotArgs struct {
	Session, Since uint64
}

// NewStore creates an empty store at session 1.
func NewStore() *Store {
	return &Store{
		session:  1,
		entities: map[int]storedEntity{},
		removed:  map[int]uint64{},
	}
}

// Put inserts or replaces the entity with the same ID. The blob is copied, the caller keeps ownership of e.
func (s *Store) Put(e Entity) {
	e = cloneEntity(e)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.entities[e.ID] = storedEntity{entity: e, generation: s.generation}
	delete(s.removed, e.ID)
}

// Remove deletes the entity with the given ID, reporting whether it existed.
func (s *Store) Remove(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entities[id]; !ok {
		return false
	}
	s.generation++
	delete(s.entities, id)
	s.removed[id] = s.generation
	return true
}

// EndSession drops every entity and starts a new session (e.g. the world was unloaded).
func (s *Store) EndSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session++
	s.generation++
	s.entities = map[int]storedEntity{}
	s.removed = map[int]uint64{}
}

// Session returns the current session identifier.
func (s *Store) Session() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Entities returns a copy of all entities, sorted by ID.
func (s *Store) Entities() []Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]Entity, 0, len(s.entities))
	for _, se := range s.entities {
		res = append(res, cloneEntity(se.entity))
	}
	sortEntities(res)
	return res
}

// Snapshot returns the changes after generation args.Since, or the full state if the session differs.
func (s *Store) Snapshot(args SnapshotArgs) *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	full := args.Session != s.session || args.Since == 0
	res := &Snapshot{Session: s.session, Generation: s.generation, Full: full}
	for _, se := range s.entities {
		if full || se.generation > args.Since {
			res.Changed = append(res.Changed, cloneEntity(se.entity))
		}
	}
	if !full {
		for id, gen := range s.removed {
			if gen > args.Since {
				res.Removed = append(res.Removed, id)
			}
		}
		sort.Ints(res.Removed)
	}
	sortEntities(res.Changed)
	return res
}

// Apply merges the snapshot into a map of entities by ID (as kept by a remote reader).
func (snap *Snapshot) Apply(into map[int]Entity) map[int]Entity {
	if snap.Full || into == nil {
		into = make(map[int]Entity, len(snap.Changed))
	}
	for _, id := range snap.Removed {
		delete(into, id)
	}
	for _, e := range snap.Changed {
		into[e.ID] = e
	}
	return into
}

func cloneEntity(e Entity) Entity {
	if e.Blob != nil {
		e.Blob = deepcopy.MustAnything(e.Blob).(*Blob)
	}
	return e
}

func sortEntities(es []Entity) {
	sort.Slice(es, func(i, j int) bool { return es[i].ID < es[j].ID })
}
