package viewer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Tutortoise/rowscope/web/models"
)

const (
	KeyNone = -1
	KeyEsc  = 27

	DefaultWaitDelay = 10 * time.Millisecond
)

// Frontend is a display surface with three sliders and a keyboard. All
// methods are called from the render loop goroutine only.
type Frontend interface {
	// Sliders returns the current slider positions.
	Sliders() models.Sliders
	Show(f *Frame) error
	// WaitKey blocks for at most delay and returns the pressed key code, or
	// KeyNone.
	WaitKey(delay time.Duration) int
	Close() error
}

type Status int

const (
	Running Status = iota
	Stopped
)

func (s Status) String() string {
	if s == Stopped {
		return "stopped"
	}
	return "running"
}

type Config struct {
	OutputPath string
	WaitDelay  time.Duration
	// OnFrame, when set, is called after every shown frame.
	OnFrame func(*Frame)
}

// Controller runs the sample, draw and show loop over a single image.
type Controller struct {
	renderer *Renderer
	cfg      Config
	state    models.DisplayState
	status   Status
	current  *Frame
}

func NewController(r *Renderer, initial models.DisplayState, cfg Config) *Controller {
	if cfg.WaitDelay <= 0 {
		cfg.WaitDelay = DefaultWaitDelay
	}
	return &Controller{
		renderer: r,
		cfg:      cfg,
		state:    initial,
		status:   Running,
	}
}

func (c *Controller) State() models.DisplayState { return c.state }

func (c *Controller) Status() Status { return c.status }

// HandleKey applies one key press. Unknown keys are ignored.
func (c *Controller) HandleKey(key int) {
	if key < 0 {
		return
	}
	switch key & 0xFF {
	case 'q', KeyEsc:
		c.status = Stopped
	case 's':
		c.save()
	case 'r':
		c.state.Toggle(models.Red)
	case 'g':
		c.state.Toggle(models.Green)
	case 'b':
		c.state.Toggle(models.Blue)
	case 'k':
		c.state.Toggle(models.Gray)
	}
}

// save writes the live annotated canvas, not the clean source image.
func (c *Controller) save() {
	if c.current == nil {
		return
	}
	if err := Save(c.current.Canvas, c.cfg.OutputPath); err != nil {
		log.Printf("Failed to save snapshot: %v", err)
		return
	}
	log.Printf("Saved snapshot to %s", c.cfg.OutputPath)
}

// Step renders and shows one frame, then waits for a key and applies it.
func (c *Controller) Step(ctx context.Context, fe Frontend) error {
	c.state.Sliders = fe.Sliders().Clamp()

	frame, err := c.renderer.Render(ctx, c.state)
	if err != nil {
		return err
	}

	showStart := time.Now()
	if err := fe.Show(frame); err != nil {
		c.renderer.Release(frame)
		return fmt.Errorf("show frame: %w", err)
	}
	frame.Timings.Show = time.Since(showStart)
	frame.Timings.Total += frame.Timings.Show

	if c.current != nil {
		c.renderer.Release(c.current)
	}
	c.current = frame
	if c.cfg.OnFrame != nil {
		c.cfg.OnFrame(frame)
	}

	c.HandleKey(fe.WaitKey(c.cfg.WaitDelay))
	return nil
}

// Run loops until a quit key is pressed or ctx is cancelled, then closes fe.
func (c *Controller) Run(ctx context.Context, fe Frontend) error {
	defer func() {
		if c.current != nil {
			c.renderer.Release(c.current)
			c.current = nil
		}
		if err := fe.Close(); err != nil {
			log.Printf("Failed to close frontend: %v", err)
		}
	}()

	for c.status == Running {
		if err := ctx.Err(); err != nil {
			c.status = Stopped
			return nil
		}
		if err := c.Step(ctx, fe); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
	return nil
}
