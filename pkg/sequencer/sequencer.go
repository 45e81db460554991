package sequencer

import (
	"context"
	"fmt"

	"github.com/tauraamui/framewright/pkg/framebuffer"
	"github.com/tauraamui/framewright/pkg/log"
	"github.com/tauraamui/framewright/pkg/surface"
	"github.com/tauraamui/framewright/pkg/timeline"
)

const DefaultDensity = 1.0

// ProgressFunc is invoked once per successfully captured frame.
type ProgressFunc func(frameIndex, totalFrames int)

// CaptureError reports a failed forced paint capture along with the frame
// index it failed on. The driver never retries; retry or skip policy
// belongs to the orchestrator's caller.
type CaptureError struct {
	Frame int
	Err   error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture failed at frame %d: %v", e.Frame, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// Sequencer drives the discrete frame index across the whole timeline,
// forcing one synchronous capture per index and feeding the results to the
// frame buffer in strictly ascending, gapless order.
type Sequencer struct {
	tl       timeline.Timeline
	clock    *timeline.Clock
	surf     surface.Surface
	buf      *framebuffer.Buffer
	density  float64
	progress ProgressFunc
}

func New(tl timeline.Timeline, clock *timeline.Clock, surf surface.Surface, buf *framebuffer.Buffer) *Sequencer {
	return &Sequencer{
		tl:      tl,
		clock:   clock,
		surf:    surf,
		buf:     buf,
		density: DefaultDensity,
	}
}

func (s *Sequencer) WithDensity(density float64) *Sequencer {
	if density > 0 {
		s.density = density
	}
	return s
}

func (s *Sequencer) WithProgress(progress ProgressFunc) *Sequencer {
	s.progress = progress
	return s
}

// Run captures every frame of the timeline. Index i+1 is never started
// before index i has been captured and buffered; a full buffer suspends
// the loop until the consumer catches up.
func (s *Sequencer) Run(ctx context.Context) error {
	total := s.tl.TotalFrames
	for i := 0; i < total; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		s.clock.Set(i)

		data, err := s.surf.Capture(ctx, s.density)
		if err != nil {
			return &CaptureError{Frame: i, Err: err}
		}

		if err := s.buf.Put(ctx, framebuffer.Frame{Index: i, Data: data}); err != nil {
			return &CaptureError{Frame: i, Err: err}
		}

		log.Debug("captured frame %d of %d", i, total)
		if s.progress != nil {
			s.progress(i, total)
		}
	}
	return nil
}
