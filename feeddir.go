package ui

import (
	"encoding/gob"
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/barkimedes/go-deepcopy"
	"github.com/cenkalti/backoff/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/remeh/sizedwaitgroup"
)

const (
	// EntityFileExt is the extension of the gob encoded entity files read by DirFeed
	EntityFileExt = ".canvas"
	// SessionEndFile is the name of the marker file that ends the session of a DirFeed when created or written
	SessionEndFile = "session.end"
)

// DirFeed is a Feed that reads one Entity per file from a directory, reloading files as they change.
type DirFeed struct {
	dir     string
	watcher *fsnotify.Watcher

	mu       sync.RWMutex
	session  uint64
	entities map[string]Entity // By file path

	done chan struct{}
}

// WatchDir loads every entity file in dir and keeps watching it for changes until Close.
func WatchDir(dir string) (*DirFeed, error) {
	watcher, err := newFsWatcher()
	if err != nil {
		return nil, err
	}
	if err = watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	f := &DirFeed{
		dir:     dir,
		watcher: watcher,
		session: 1,
		done:    make(chan struct{}),
	}
	f.entities = f.loadAll()
	go f.loop()
	return f, nil
}

// loadAll decodes every entity file of the directory in parallel.
func (f *DirFeed) loadAll() map[string]Entity {
	res := map[string]Entity{}
	paths, err := filepath.Glob(filepath.Join(f.dir, "*"+EntityFileExt))
	if err != nil {
		log.Println("[CanvasFeed] Can't list", f.dir+":", err)
		return res
	}
	var resMu sync.Mutex
	wg := sizedwaitgroup.New(runtime.NumCPU())
	for _, path := range paths {
		wg.Add()
		go func(path string) {
			defer wg.Done()
			e, err := readEntityFileRetry(path)
			if err != nil {
				log.Println("[CanvasFeed] Skipping", path+":", err)
				return
			}
			resMu.Lock()
			res[path] = e
			resMu.Unlock()
		}(path)
	}
	wg.Wait()
	return res
}

func (f *DirFeed) loop() {
	defer close(f.done)
	for {
		select {
		case ev, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			f.onEvent(ev)
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			log.Println("[CanvasFeed] Watcher error:", err)
		}
	}
}

func (f *DirFeed) onEvent(ev fsnotify.Event) {
	if filepath.Base(ev.Name) == SessionEndFile {
		if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) {
			log.Println("[CanvasFeed] Session ended by", ev.Name)
			entities := f.loadAll() // What is left belongs to the new session
			f.mu.Lock()
			f.session++
			f.entities = entities
			f.mu.Unlock()
		}
		return
	}
	if !strings.HasSuffix(ev.Name, EntityFileExt) {
		return
	}
	switch {
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		f.mu.Lock()
		delete(f.entities, ev.Name)
		f.mu.Unlock()
	case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
		e, err := readEntityFileRetry(ev.Name)
		if err != nil {
			log.Println("[CanvasFeed] Can't read", ev.Name+":", err)
			return
		}
		f.mu.Lock()
		f.entities[ev.Name] = e
		f.mu.Unlock()
	}
}

func (f *DirFeed) Entities() []Entity {
	f.mu.RLock()
	defer f.mu.RUnlock()
	res := make([]Entity, 0, len(f.entities))
	for _, e := range f.entities {
		if e.Blob != nil {
			e.Blob = deepcopy.MustAnything(e.Blob).(*Blob)
		}
		res = append(res, e)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func (f *DirFeed) Session() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.session
}

// Close stops watching the directory.
func (f *DirFeed) Close() error {
	err := f.watcher.Close()
	<-f.done
	return err
}

// readEntityFileRetry retries for a short while, as a file may be read while it is still being written.
func readEntityFileRetry(path string) (Entity, error) {
	var e Entity
	err := backoff.Retry(func() error {
		var err error
		e, err = ReadEntityFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithMaxRetries(backoff.NewConstantBackOff(20*time.Millisecond), 5))
	return e, err
}

// ReadEntityFile decodes an entity written by WriteEntityFile.
func ReadEntityFile(path string) (Entity, error) {
	var e Entity
	file, err := os.Open(path)
	if err != nil {
		return e, err
	}
	defer file.Close()
	err = gob.NewDecoder(file).Decode(&e)
	return e, err
}

// WriteEntityFile atomically writes an entity to path (use the EntityFileExt extension for DirFeed to see it).
func WriteEntityFile(path string, e Entity) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if err = gob.NewEncoder(tmp).Encode(&e); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
