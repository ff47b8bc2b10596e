package internal

import (
	"errors"
	"net/rpc"
	"os"
	"time"
)

// FeedService is an internal struct that has to be exported for RPC.
// It is the server counterpart to the remote feed client, providing remote access to a Store.
type FeedService struct {
	store *Store
	done  chan os.Signal
}

// NewFeedService see FeedService
func NewFeedService(store *Store, done chan os.Signal) *rpc.Server {
	server := rpc.NewServer()
	srv := &FeedService{
		store: store,
		done:  done,
	}
	err := server.Register(srv)
	if err != nil {
		panic(err) // Shouldn't happen (only on bad implementation)
	}
	return server
}

// Session is an internal method that has to be exported for RPC.
func (d *FeedService) Session(_ int, out *uint64) error {
	*out = d.store.Session()
	return nil
}

// Snapshot is an internal method that has to be exported for RPC.
// Snapshot returns every entity changed or removed after args.Since (everything if the session is not args.Session).
func (d *FeedService) Snapshot(args SnapshotArgs, out *Snapshot) error {
	*out = *d.store.Snapshot(args)
	return nil
}

// Shutdown is an internal method that has to be exported for RPC.
// Shutdown sends a signal on the configured channel (with a timeout)
func (d *FeedService) Shutdown(t time.Duration, _ *int) error {
	if d.done == nil {
		return errors.New("shutdown not supported")
	}
	select {
	case d.done <- os.Kill:
		return nil
	case <-time.After(t):
		return errors.New("shutdown timeout")
	}
}
