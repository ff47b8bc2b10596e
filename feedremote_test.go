package ui

import (
	"context"
	"net"
	"os"
	"testing"
	"time"
)

func serveTestFeed(t *testing.T) (*MemoryFeed, string, chan os.Signal) {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = l.Close() })
	feed := NewMemoryFeed()
	done := make(chan os.Signal, 1)
	go ServeFeed(l, feed, done)
	return feed, l.Addr().String(), done
}

func dialTestFeed(t *testing.T, addr string) *RemoteFeed {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	remote, err := DialFeed(ctx, "tcp", addr, RemoteFeedOptions{PollInterval: 5 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = remote.Close() })
	return remote
}

// eventually polls cond until it holds or a few seconds pass
func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRemoteFeedMirror(t *testing.T) {
	feed, addr, _ := serveTestFeed(t)
	feed.Put(placed(1, solidBlob("alice", 1, 16, 16, 1), South))
	remote := dialTestFeed(t, addr)

	entities := remote.Entities() // The first snapshot is fetched by DialFeed
	if len(entities) != 1 || entities[0].Blob.Name != "alice" || len(entities[0].Blob.Pixels) != 256 {
		t.Fatalf("entities = %+v", entities)
	}
	session := remote.Session()

	feed.Put(placed(1, solidBlob("alice", 2, 16, 16, 2), South))
	feed.Put(placed(2, solidBlob("bob", 1, 32, 16, 3), West))
	eventually(t, "the edit", func() bool {
		entities := remote.Entities()
		return len(entities) == 2 && entities[0].Blob.Version == 2 && entities[1].Facing == West
	})
	feed.Remove(2)
	eventually(t, "the removal", func() bool { return len(remote.Entities()) == 1 })
	if remote.Session() != session {
		t.Error("session changed without the remote world being unloaded")
	}

	feed.EndSession()
	eventually(t, "the new session", func() bool { return remote.Session() != session })
	if n := len(remote.Entities()); n != 0 {
		t.Errorf("%d entities left after the session ended", n)
	}
	if err := remote.Err(); err != nil {
		t.Error(err)
	}
}

func TestRemoteFeedOwnsEntities(t *testing.T) {
	feed, addr, _ := serveTestFeed(t)
	feed.Put(placed(1, solidBlob("alice", 1, 2, 2, 1), South))
	remote := dialTestFeed(t, addr)
	remote.Entities()[0].Blob.Pixels[0] = 99
	if got := remote.Entities()[0].Blob.Pixels[0]; got != 1 {
		t.Errorf("mirror was modified through a returned entity: %d", got)
	}
}

func TestRemoteFeedPipeline(t *testing.T) {
	feed, addr, _ := serveTestFeed(t)
	feed.Put(placed(1, solidBlob("alice", 1, 16, 16, 1), South))
	remote := dialTestFeed(t, addr)
	p := NewPipeline(NewCache(ImageAllocator))
	res := p.Build(remote).Geometries[0].Canvas

	feed.EndSession()
	eventually(t, "the new session", func() bool { return p.Build(remote).Cleared })
	if !res.Released() {
		t.Error("canvas of the previous session was not released")
	}
}

func TestRemoteFeedShutdown(t *testing.T) {
	_, addr, done := serveTestFeed(t)
	remote := dialTestFeed(t, addr)
	if err := remote.Shutdown(time.Second); err != nil {
		t.Fatal(err)
	}
	select {
	case <-done:
	default:
		t.Fatal("no signal was sent")
	}
}

func TestRemoteFeedCloseAfterLostConnection(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go ServeFeed(l, NewMemoryFeed(), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	remote, err := DialFeed(ctx, "tcp", l.Addr().String(), RemoteFeedOptions{PollInterval: 5 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	_ = l.Close()
	remote.mu.RLock()
	_ = remote.cl.Close() // The loop loses the connection and keeps redialing
	remote.mu.RUnlock()
	time.Sleep(50 * time.Millisecond)
	if err = remote.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err = remote.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestDialFeedGivesUp(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	_ = l.Close() // Nothing listens there anymore
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if _, err = DialFeed(ctx, "tcp", addr, RemoteFeedOptions{MaxElapsedTime: 100 * time.Millisecond}); err == nil {
		t.Fatal("connected to nothing")
	}
}
