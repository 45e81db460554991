package render

import (
	"errors"
	"fmt"

	"github.com/tauraamui/framewright/pkg/filtergraph"
	"github.com/tauraamui/framewright/pkg/sequencer"
)

type FailureKind string

const (
	// FailureCapture covers surface unavailability, encode-to-bytes
	// failures and staging writes during the Capturing stage.
	FailureCapture = FailureKind("capture_failure")
	// FailureCompile covers invalid frame ranges, label collisions and
	// missing referenced assets; always raised before a process spawns.
	FailureCompile = FailureKind("compile_failure")
	// FailureEncoder covers non zero encoder exits and missing or empty
	// output artifacts, surfaced with captured stderr.
	FailureEncoder = FailureKind("encoder_failure")
	// FailureConfiguration covers invalid timeline bounds and empty
	// compositions, rejected at job construction.
	FailureConfiguration = FailureKind("configuration_failure")
)

// Failure is the single terminal error shape the orchestrator re-raises
// after classifying and cleaning up a lower layer failure. The cause keeps
// its precise context (frame index, stream label, process diagnostics).
type Failure struct {
	Kind FailureKind
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

func failure(kind FailureKind, err error) *Failure {
	var existing *Failure
	if errors.As(err, &existing) {
		return existing
	}
	return &Failure{Kind: kind, Err: err}
}

// classify maps a lower layer error onto the failure taxonomy. Capture and
// compile errors carry their own types; anything already classified passes
// through untouched.
func classify(err error) *Failure {
	var existing *Failure
	if errors.As(err, &existing) {
		return existing
	}

	var captureErr *sequencer.CaptureError
	if errors.As(err, &captureErr) {
		return &Failure{Kind: FailureCapture, Err: err}
	}

	var compileErr *filtergraph.CompileError
	if errors.As(err, &compileErr) {
		return &Failure{Kind: FailureCompile, Err: err}
	}

	return &Failure{Kind: FailureCapture, Err: err}
}
