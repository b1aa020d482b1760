package display

import (
	"context"

	"github.com/signalsfoundry/gridwalk-simulator/core"
	"github.com/signalsfoundry/gridwalk-simulator/internal/logging"
)

// Renderer draws the live entities of a scene every time it is notified.
type Renderer struct {
	scene core.SceneView
	sink  Sink
	log   logging.Logger

	frames uint64
}

// NewRenderer builds a renderer for scene onto sink. Call Attach to start
// receiving updates.
func NewRenderer(scene core.SceneView, sink Sink, log logging.Logger) *Renderer {
	if log == nil {
		log = logging.Noop()
	}
	return &Renderer{scene: scene, sink: sink, log: log}
}

// Attach subscribes the renderer to the scene.
func (r *Renderer) Attach() {
	r.scene.Subscribe(r.Render)
}

// Render draws one frame from the scene's current live entities.
func (r *Renderer) Render() {
	frame, framed := r.sink.(FrameSink)
	if framed {
		frame.BeginFrame()
	}

	alive := r.scene.AliveEntities()
	for _, e := range alive {
		r.sink.Draw(e.Position.X, e.Position.Y, e.Name)
	}

	if framed {
		frame.EndFrame()
	}
	r.frames++
	if r.frames == 1 {
		r.log.Debug(context.Background(), "first frame rendered", logging.Int("entities", len(alive)))
	}
}

// Frames reports how many frames have been rendered.
func (r *Renderer) Frames() uint64 { return r.frames }
