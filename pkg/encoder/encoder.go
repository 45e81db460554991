// Package encoder models the external multimedia encoder as a capability:
// an invocation carries the fully materialized input list and filter graph,
// a variant turns it into a running process. Variants are selected once at
// startup, never branched on inside the orchestrator.
package encoder

import (
	"context"
	"time"

	"github.com/tauraamui/framewright/pkg/filtergraph"
)

// Invocation is one complete encoder launch: ordered inputs, the compiled
// complex filter expression, the two terminal map labels and the output
// artifact path. The graph is fully materialized before launch; nothing
// mutates it afterwards.
type Invocation struct {
	Inputs        []filtergraph.Input
	FilterComplex string
	MapVideo      filtergraph.Label
	MapAudio      filtergraph.Label
	FPS           int
	OutputPath    string
	ExtraArgs     []string
}

// Result reports how an encoder process ended.
type Result struct {
	ExitCode int
	Stderr   string
	Elapsed  time.Duration
}

type Handle interface {
	// Wait suspends until the process exits. A non zero exit code arrives
	// through Result, not through the error; classifying it is the
	// orchestrator's job.
	Wait(ctx context.Context) (Result, error)
	Terminate() error
}

type Encoder interface {
	Start(ctx context.Context, inv Invocation) (Handle, error)
}

func Default() Encoder {
	return FFmpeg()
}

func Resolve(t string) Encoder {
	switch t {
	case "mock":
		return Mock()
	default:
		return Default()
	}
}
