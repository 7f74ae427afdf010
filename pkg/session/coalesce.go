package session

import (
	"context"
	"image"
)

// Frame is one coalesced render result.
type Frame struct {
	Image *image.RGBA
	Err   error
}

// Coalescer collapses bursts of render requests (slider drags, rapid undo)
// into as few renders as possible. Requests made while a render is running
// are merged into a single follow-up render, so intermediate states may be
// skipped but the latest committed state is always rendered.
type Coalescer struct {
	render func() (*image.RGBA, error)
	dirty  chan struct{}
	frames chan Frame
}

func NewCoalescer(render func() (*image.RGBA, error)) *Coalescer {
	return &Coalescer{
		render: render,
		dirty:  make(chan struct{}, 1),
		frames: make(chan Frame, 1),
	}
}

// Request marks the output stale. It never blocks.
func (c *Coalescer) Request() {
	select {
	case c.dirty <- struct{}{}:
	default:
	}
}

// Frames delivers the newest render. An unread frame is replaced by a newer one.
func (c *Coalescer) Frames() <-chan Frame {
	return c.frames
}

// Run renders on demand until ctx is done.
func (c *Coalescer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.dirty:
			img, err := c.render()
			c.publish(Frame{Image: img, Err: err})
		}
	}
}

// publish replaces any unread frame. Run is the only sender, so the send
// after draining cannot block.
func (c *Coalescer) publish(f Frame) {
	select {
	case <-c.frames:
	default:
	}
	c.frames <- f
}

// Renders starts a coalescing render loop fed by the session's transitions
// and returns its output. The loop stops when ctx is done.
func (s *Session) Renders(ctx context.Context) <-chan Frame {
	c := NewCoalescer(s.Render)
	unsubscribe := s.Subscribe(func(ev Event) {
		if ev.Phase == PhaseComposed {
			c.Request()
		}
	})
	if s.Phase() == PhaseComposed {
		c.Request()
	}
	go func() {
		defer unsubscribe()
		c.Run(ctx)
	}()
	return c.Frames()
}
