package ui

import (
	"errors"
	"image"
	"log"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Yeicor/canvas-ui/internal"
	"github.com/hajimehoshi/ebiten/v2"
)

// Viewer is an ebiten game that renders the canvases of a Feed in 3D, with an orbit camera.
type Viewer struct {
	feed     Feed
	pipeline *Pipeline
	frame    *Frame // Built on Update, drawn on Draw

	frameImg   *image.RGBA   // Back/sides texture
	frameTex   *ebiten.Image // GPU copy of frameImg (lazy)
	rasterizer *Rasterizer   // Snapshots [P]

	implState     *internal.ViewState
	implStateLock *sync.RWMutex
	camDefault    *internal.ViewState // nil: fit to the scene
	camFOV        float64
	camFitted     bool
	zoomFactor    float64
	dragFrom      image.Point
	dragging      bool
	screenSize    image.Point

	dumpDir     string
	status      string
	statusUntil time.Time

	done     chan os.Signal
	stopping atomic.Bool
	closed   sync.Once
}

// NewViewer creates a viewer for the given feed. Call Run to open the window.
func NewViewer(feed Feed, opts ...Option) *Viewer {
	v := &Viewer{
		feed:          feed,
		pipeline:      NewPipeline(NewCache(EbitenAllocator)),
		frame:         &Frame{},
		frameImg:      defaultFrameTexture(),
		implState:     newViewState(),
		implStateLock: &sync.RWMutex{},
		camFOV:        70,
		zoomFactor:    1.5,
		dumpDir:       ".",
		done:          make(chan os.Signal, 1),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.camFitted = v.camDefault != nil
	v.rasterizer = &Rasterizer{Frame: v.frameImg}
	return v
}

// Run opens the window and blocks until it is closed or the process is interrupted.
// Every cached canvas is released before returning.
func (v *Viewer) Run() error {
	signal.Notify(v.done, signals()...)
	go func() {
		if _, ok := <-v.done; ok {
			log.Println("[CanvasViewer] Interrupted, closing...")
			v.stopping.Store(true) // The game loop releases everything on its next Update
		}
	}()
	err := ebiten.RunGame(viewerGame{v})
	signal.Stop(v.done) // Before closing the channel
	v.Close()
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// Close releases every cached canvas and the frame texture. It is safe to call more than once.
func (v *Viewer) Close() {
	v.closed.Do(func() {
		v.pipeline.EndSession()
		if v.frameTex != nil {
			v.frameTex.Deallocate()
			v.frameTex = nil
		}
		close(v.done)
	})
}

// Cache gives access to the canvas cache (diagnostics).
func (v *Viewer) Cache() *Cache {
	return v.pipeline.Cache
}

func (v *Viewer) frameTexture() *ebiten.Image {
	if v.frameTex == nil {
		v.frameTex = ebiten.NewImageFromImage(v.frameImg)
	}
	return v.frameTex
}

func (v *Viewer) setStatus(msg string) {
	log.Println("[CanvasViewer]", msg)
	v.status = msg
	v.statusUntil = time.Now().Add(3 * time.Second)
}
