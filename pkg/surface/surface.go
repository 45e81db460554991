package surface

import (
	"context"
	"sync"

	"github.com/tauraamui/xerror"
)

var ErrSurfaceClosed = xerror.New("paint surface is closed")

// Surface is the capture contract the frame driver renders against: given a
// pixel density it synchronously returns encoded image bytes for the current
// paint, or fails with a capture error. The real surface lives in the host
// application; this package supplies the rendezvous plumbing and a software
// reference implementation.
type Surface interface {
	Capture(ctx context.Context, density float64) ([]byte, error)
	Close()
}

// PaintFunc produces encoded image bytes for the current paint state at the
// requested pixel density. It only ever runs on the loop's own goroutine.
type PaintFunc func(density float64) ([]byte, error)

type captureResult struct {
	data []byte
	err  error
}

type captureRequest struct {
	density float64
	reply   chan captureResult
}

// Loop serializes forced paint captures onto the goroutine that owns
// painting. Each capture is a single slot request/response rendezvous, so
// the driver coordinates with the paint loop through message passing and
// never against shared mutable state.
type Loop struct {
	requests  chan captureRequest
	done      chan struct{}
	closeOnce sync.Once
}

func NewLoop(paint PaintFunc) *Loop {
	l := &Loop{
		requests: make(chan captureRequest),
		done:     make(chan struct{}),
	}
	go l.run(paint)
	return l
}

func (l *Loop) run(paint PaintFunc) {
	for {
		select {
		case req := <-l.requests:
			data, err := paint(req.density)
			req.reply <- captureResult{data: data, err: err}
		case <-l.done:
			return
		}
	}
}

func (l *Loop) Capture(ctx context.Context, density float64) ([]byte, error) {
	reply := make(chan captureResult, 1)

	select {
	case l.requests <- captureRequest{density: density, reply: reply}:
	case <-l.done:
		return nil, ErrSurfaceClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-reply:
		return res.data, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *Loop) Close() {
	l.closeOnce.Do(func() { close(l.done) })
}
