package ui

import (
	"log"
	"time"
)

// Frame is the geometry to draw for one frame.
type Frame struct {
	Geometries []*Geometry
	Skipped    int  // Entities that could not be drawn (no name, malformed, allocation failures...)
	Cleared    bool // Whether the cache was cleared because the session changed
}

// Pipeline turns the entities of a Feed into drawable geometry, keeping the canvas cache in sync.
// It is meant to run once per frame on the render goroutine.
type Pipeline struct {
	Cache   *Cache
	Emitter *Emitter

	session      uint64
	sessionStart time.Time
}

// NewPipeline creates a pipeline over the given cache.
func NewPipeline(cache *Cache) *Pipeline {
	return &Pipeline{Cache: cache, Emitter: &Emitter{}, sessionStart: time.Now()}
}

// Build looks up every entity in the cache (creating or updating its resource) and emits its geometry.
// If the feed started a new session, every cached canvas is released first.
func (p *Pipeline) Build(feed Feed) *Frame {
	frame := &Frame{}
	if session := feed.Session(); session != p.session {
		if p.session != 0 {
			log.Println("[CanvasViewer] Session", p.session, "ended, releasing", p.Cache.Len(), "canvases")
			p.Cache.ClearAll()
			frame.Cleared = true
		}
		p.session = session
		p.sessionStart = time.Now()
	}
	for _, e := range feed.Entities() {
		if e.Blob == nil || e.Blob.Name == "" {
			frame.Skipped++
			continue
		}
		res, err := p.Cache.GetOrUpdate(e.Blob.Name, e.Width, e.Height, e.Blob)
		if err != nil { // Already logged
			frame.Skipped++
			continue
		}
		frame.Geometries = append(frame.Geometries, p.Emitter.Emit(res, e.Facing, e.Yaw, e.Anchor))
	}
	return frame
}

// EndSession releases every cached canvas (world unloaded or renderer closing).
func (p *Pipeline) EndSession() {
	p.Cache.ClearAll()
	p.sessionStart = time.Now()
}

// SessionAge is the time since the current session was first seen.
func (p *Pipeline) SessionAge() time.Duration {
	return time.Since(p.sessionStart)
}
