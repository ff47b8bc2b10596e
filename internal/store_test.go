package internal

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/fogleman/fauxgl"
)

func testEntity(id int, name string, version int) Entity {
	return Entity{
		ID:     id,
		Blob:   &Blob{Name: name, Version: version, Width: 1, Height: 1, Pixels: []int32{int32(version)}},
		Width:  1,
		Height: 1,
		Facing: North,
		Yaw:    North.Yaw(),
		Anchor: fauxgl.Vector{X: float64(id)},
	}
}

func TestStoreSnapshotDeltas(t *testing.T) {
	s := NewStore()
	s.Put(testEntity(1, "a", 1))
	s.Put(testEntity(2, "b", 1))

	full := s.Snapshot(SnapshotArgs{})
	if !full.Full || len(full.Changed) != 2 {
		t.Fatalf("first snapshot: full=%v changed=%d", full.Full, len(full.Changed))
	}
	mirror := full.Apply(nil)

	s.Put(testEntity(2, "b", 2))
	s.Remove(1)
	delta := s.Snapshot(SnapshotArgs{Session: full.Session, Since: full.Generation})
	if delta.Full {
		t.Fatal("expected a delta")
	}
	if len(delta.Changed) != 1 || delta.Changed[0].Blob.Version != 2 {
		t.Fatalf("changed = %+v", delta.Changed)
	}
	if len(delta.Removed) != 1 || delta.Removed[0] != 1 {
		t.Fatalf("removed = %v", delta.Removed)
	}
	mirror = delta.Apply(mirror)
	if len(mirror) != 1 || mirror[2].Blob.Version != 2 {
		t.Fatalf("mirror = %+v", mirror)
	}

	empty := s.Snapshot(SnapshotArgs{Session: delta.Session, Since: delta.Generation})
	if empty.Full || len(empty.Changed) != 0 || len(empty.Removed) != 0 {
		t.Errorf("expected no changes, got %+v", empty)
	}
}

func TestStoreEndSession(t *testing.T) {
	s := NewStore()
	s.Put(testEntity(1, "a", 1))
	before := s.Snapshot(SnapshotArgs{})
	s.EndSession()
	if s.Session() == before.Session {
		t.Fatal("session did not change")
	}
	if len(s.Entities()) != 0 {
		t.Fatal("entities survived the session")
	}
	s.Put(testEntity(3, "c", 1))
	snap := s.Snapshot(SnapshotArgs{Session: before.Session, Since: before.Generation})
	if !snap.Full {
		t.Fatal("a reader of an old session must get a full snapshot")
	}
	mirror := snap.Apply(before.Apply(nil))
	if _, ok := mirror[1]; ok || len(mirror) != 1 {
		t.Errorf("mirror = %+v", mirror)
	}
}

func TestStoreCopiesBlobs(t *testing.T) {
	s := NewStore()
	e := testEntity(1, "a", 1)
	s.Put(e)
	e.Blob.Pixels[0] = 42
	got := s.Entities()[0]
	if got.Blob.Pixels[0] != 1 {
		t.Fatal("store aliases the caller's blob")
	}
	got.Blob.Pixels[0] = 43
	if s.Entities()[0].Blob.Pixels[0] != 1 {
		t.Fatal("store aliases the returned blob")
	}
}

func TestSnapshotGob(t *testing.T) {
	s := NewStore()
	s.Put(testEntity(7, "g", 3))
	buf := &bytes.Buffer{}
	if err := gob.NewEncoder(buf).Encode(s.Snapshot(SnapshotArgs{})); err != nil {
		t.Fatal(err)
	}
	var snap Snapshot
	if err := gob.NewDecoder(buf).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if len(snap.Changed) != 1 || snap.Changed[0].Blob.Name != "g" || snap.Changed[0].Anchor.X != 7 {
		t.Errorf("decoded %+v", snap)
	}
}

func TestFacing(t *testing.T) {
	for f := South; f <= East; f++ {
		parsed, err := ParseFacing(f.String())
		if err != nil || parsed != f {
			t.Errorf("ParseFacing(%q) = %v, %v", f.String(), parsed, err)
		}
		x, z := f.Offsets()
		if x*x+z*z != 1 {
			t.Errorf("%v offsets (%v, %v) are not a unit vector", f, x, z)
		}
	}
	if _, err := ParseFacing("up"); err == nil {
		t.Error("expected an error for an unknown facing")
	}
}
