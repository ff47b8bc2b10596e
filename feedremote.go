package ui

import (
	"context"
	"errors"
	"log"
	"net"
	"net/rpc"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/Yeicor/canvas-ui/internal"
	"github.com/barkimedes/go-deepcopy"
	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
)

// ServeFeed serves the canvases of feed to remote viewers (see DialFeed) until the listener is closed.
// A value sent on done (if not nil) is forwarded by the remote Shutdown call.
func ServeFeed(l net.Listener, feed *MemoryFeed, done chan os.Signal) {
	internal.NewFeedService(feed.store, done).Accept(l)
}

// RemoteFeedOptions configure DialFeed.
type RemoteFeedOptions struct {
	PollInterval   time.Duration // Time between snapshot requests (default 50ms)
	MaxElapsedTime time.Duration // How long to keep retrying a (re)connection before giving up (default 1m)
}

// RemoteFeed is a Feed that mirrors the canvases served by ServeFeed on another process.
type RemoteFeed struct {
	network, addr string
	opts          RemoteFeedOptions
	limiter       *rate.Limiter

	mu               sync.RWMutex
	cl               *rpc.Client
	remoteSession    uint64
	remoteGeneration uint64
	session          uint64 // Local session: bumped on remote session changes and reconnections
	entities         map[int]Entity
	err              error

	cancel context.CancelFunc
	done   chan struct{}
}

// DialFeed connects to a feed server (retrying with exponential backoff) and starts mirroring it in the background.
func DialFeed(ctx context.Context, network, addr string, opts RemoteFeedOptions) (*RemoteFeed, error) {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 50 * time.Millisecond
	}
	if opts.MaxElapsedTime <= 0 {
		opts.MaxElapsedTime = time.Minute
	}
	f := &RemoteFeed{
		network:  network,
		addr:     addr,
		opts:     opts,
		limiter:  rate.NewLimiter(rate.Every(opts.PollInterval), 1),
		session:  1,
		entities: map[int]Entity{},
		done:     make(chan struct{}),
	}
	cl, err := f.dial(ctx)
	if err != nil {
		return nil, err
	}
	f.cl = cl
	if err = f.poll(); err != nil {
		_ = cl.Close()
		return nil, err
	}
	var loopCtx context.Context
	loopCtx, f.cancel = context.WithCancel(context.Background())
	go f.loop(loopCtx)
	return f, nil
}

func (f *RemoteFeed) dial(ctx context.Context) (*rpc.Client, error) {
	return backoff.Retry(ctx, func() (*rpc.Client, error) {
		return rpc.Dial(f.network, f.addr)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(f.opts.MaxElapsedTime),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Println("[CanvasFeed] Can't connect to", f.addr+":", err, "(retrying in", next.String()+")")
		}))
}

func (f *RemoteFeed) loop(ctx context.Context) {
	defer close(f.done)
	for {
		if err := f.limiter.Wait(ctx); err != nil {
			return // Closed
		}
		err := f.poll()
		if err == nil {
			continue
		}
		var serverErr rpc.ServerError
		if errors.As(err, &serverErr) {
			log.Println("[CanvasFeed] Error on remote call (FeedService.Snapshot):", err)
			continue
		}
		// Anything else means the connection is gone
		log.Println("[CanvasFeed] Connection lost:", err)
		_ = f.cl.Close()
		cl, dialErr := f.dial(ctx)
		f.mu.Lock()
		// Whatever the server has now belongs to a new session for us
		f.session++
		f.entities = map[int]Entity{}
		f.remoteSession, f.remoteGeneration = 0, 0
		if dialErr != nil {
			f.err = dialErr
			f.mu.Unlock()
			log.Println("[CanvasFeed] Giving up:", dialErr)
			return
		}
		f.cl = cl
		f.mu.Unlock()
	}
}

// poll requests the changes since the last known generation and merges them.
func (f *RemoteFeed) poll() error {
	f.mu.RLock()
	args := internal.SnapshotArgs{Session: f.remoteSession, Since: f.remoteGeneration}
	cl := f.cl
	f.mu.RUnlock()
	var snap internal.Snapshot
	if err := cl.Call("FeedService.Snapshot", args, &snap); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.remoteSession != 0 && snap.Session != f.remoteSession {
		f.session++
		log.Println("[CanvasFeed] Remote session changed to", snap.Session)
	}
	f.remoteSession = snap.Session
	f.remoteGeneration = snap.Generation
	f.entities = snap.Apply(f.entities)
	return nil
}

func (f *RemoteFeed) Entities() []Entity {
	f.mu.RLock()
	defer f.mu.RUnlock()
	res := make([]Entity, 0, len(f.entities))
	for _, e := range f.entities {
		if e.Blob != nil { // Readers never alias the mirror
			e.Blob = deepcopy.MustAnything(e.Blob).(*Blob)
		}
		res = append(res, e)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func (f *RemoteFeed) Session() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.session
}

// Err returns the error that stopped the mirroring, if any.
func (f *RemoteFeed) Err() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.err
}

// Shutdown asks the server to stop (see ServeFeed).
func (f *RemoteFeed) Shutdown(timeout time.Duration) error {
	f.mu.RLock()
	cl := f.cl
	f.mu.RUnlock()
	var out int
	return cl.Call("FeedService.Shutdown", timeout, &out)
}

// Close stops mirroring and closes the connection.
func (f *RemoteFeed) Close() error {
	f.cancel()
	<-f.done
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.cl.Close(); !errors.Is(err, rpc.ErrShutdown) { // Already closed by a failed redial
		return err
	}
	return nil
}
