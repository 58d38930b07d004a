package editor

import "umlboard/diagram"

// PanController scrolls the camera while the pointer is dragged over
// empty space.
type PanController struct {
	bus    *Bus
	frames *FrameScheduler
	camera *Camera
	drag   *Drag
}

// NewPanController creates a pan controller for camera.
func NewPanController(bus *Bus, frames *FrameScheduler, camera *Camera) *PanController {
	return &PanController{bus: bus, frames: frames, camera: camera}
}

// Active reports whether a pan is in progress.
func (p *PanController) Active() bool { return p.drag != nil && p.drag.Active() }

// Start begins panning from a screen position. Escape returns the view
// to where it was.
func (p *PanController) Start(screen diagram.Point) {
	orig := p.camera.Pan
	p.drag = StartDrag(p.bus, p.frames, "pan", DragCallbacks{
		Move: func(ev Event) {
			p.camera.Pan = orig.Add(ev.Screen.Sub(screen))
		},
		End:    func(Event) { p.drag = nil },
		Cancel: func() { p.camera.Pan = orig; p.drag = nil },
	})
}
