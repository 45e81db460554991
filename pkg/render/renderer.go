package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/afero"
	"github.com/tauraamui/framewright/pkg/composition"
	"github.com/tauraamui/framewright/pkg/encoder"
	"github.com/tauraamui/framewright/pkg/filtergraph"
	"github.com/tauraamui/framewright/pkg/framebuffer"
	"github.com/tauraamui/framewright/pkg/log"
	"github.com/tauraamui/framewright/pkg/sequencer"
	"github.com/tauraamui/framewright/pkg/surface"
	"github.com/tauraamui/framewright/pkg/timeline"
	"github.com/tauraamui/xerror"
)

var fs afero.Fs = afero.NewOsFs()

const maxRecordedErrorLen = 2000

// SurfaceFactory builds the capture surface for one job. The host
// application supplies its real UI surface here; surface.NewSoftware
// satisfies it for headless use.
type SurfaceFactory func(tl timeline.Timeline, clock *timeline.Clock, nodes []composition.Node) (surface.Surface, error)

type Settings struct {
	// StagingRoot holds each job's transient frame directory. Defaults to
	// a framewright directory under the system temp location.
	StagingRoot string
	// BufferDepth bounds the frame buffer between capture and drain.
	BufferDepth int
	// Density is the pixel density captures are requested at.
	Density float64
	// RetainStaging leaves the staging area in place after the job ends.
	RetainStaging bool
	Progress      sequencer.ProgressFunc
	Store         JobStore
	// EncodeArgs are appended to every encoder invocation ahead of the
	// output path.
	EncodeArgs []string
}

// Renderer sequences a render job through capture, drain, compile and
// encode. It is the sole layer that catches lower level failures,
// classifies them, performs best effort cleanup and re-raises a terminal
// failure. It never retries; retry policy belongs to the caller.
type Renderer struct {
	surfaceFor SurfaceFactory
	enc        encoder.Encoder
	sett       Settings
}

func New(surfaceFor SurfaceFactory, enc encoder.Encoder, sett Settings) *Renderer {
	if sett.StagingRoot == "" {
		sett.StagingRoot = filepath.Join(os.TempDir(), "framewright")
	}
	if sett.BufferDepth < 1 {
		sett.BufferDepth = framebuffer.DefaultCapacity
	}
	if sett.Density <= 0 {
		sett.Density = sequencer.DefaultDensity
	}
	if sett.EncodeArgs == nil {
		sett.EncodeArgs = []string{"-pix_fmt", "yuv420p"}
	}
	return &Renderer{surfaceFor: surfaceFor, enc: enc, sett: sett}
}

// Render drives the job to a terminal state and returns the path of the
// completed media file. A failed job never leaves a partial output file
// and always attempts staging cleanup before the failure surfaces.
func (r *Renderer) Render(ctx context.Context, job *Job, outputPath string) (string, error) {
	started := time.Now()

	if err := r.render(ctx, job, outputPath); err != nil {
		job.fail()

		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			r.record(job, "", started, err)
			return "", err
		}

		terminal := classify(err)
		log.Error("render job %s failed: %v", job.UUID(), terminal)
		r.record(job, "", started, terminal)
		return "", terminal
	}

	log.Info("render job %s complete: %s", job.UUID(), outputPath)
	r.record(job, outputPath, started, nil)
	return outputPath, nil
}

func (r *Renderer) render(ctx context.Context, job *Job, outputPath string) error {
	if err := job.transition(StatusCapturing); err != nil {
		return failure(FailureConfiguration, err)
	}

	staging, err := newStagingArea(fs, r.sett.StagingRoot, job.UUID())
	if err != nil {
		return failure(FailureCapture, err)
	}
	if !r.sett.RetainStaging {
		defer staging.release()
	}

	buf, err := framebuffer.New(r.sett.BufferDepth)
	if err != nil {
		return failure(FailureConfiguration, err)
	}

	clock := timeline.NewClock()
	surf, err := r.surfaceFor(job.Timeline(), clock, job.Nodes())
	if err != nil {
		return failure(FailureCapture, err)
	}
	defer surf.Close()

	// capture and drain run concurrently, coupled only through the
	// buffer's backpressure
	drained := make(chan error, 1)
	go func() {
		err := drain(ctx, buf, staging)
		if err != nil {
			// a dead consumer must not leave the producer suspended in
			// Put; closing fails the next Put immediately
			buf.Close()
		}
		drained <- err
	}()

	seq := sequencer.New(job.Timeline(), clock, surf, buf).
		WithDensity(r.sett.Density).
		WithProgress(r.sett.Progress)
	captureErr := seq.Run(ctx)

	// closing always: on the happy path it signals end of stream, on the
	// failure path it lets the drain side discard in-flight frames
	buf.Close()
	drainErr := <-drained

	// the drain error is the root cause when both sides failed: a dying
	// drain closes the buffer, which the sequencer then reports too
	if drainErr != nil {
		return failure(FailureCapture, drainErr)
	}
	if captureErr != nil {
		return classify(captureErr)
	}

	if err := job.transition(StatusEncoding); err != nil {
		return failure(FailureConfiguration, err)
	}

	canvas := filtergraph.Input{
		Path:    staging.framePattern(),
		Options: []string{"-framerate", strconv.Itoa(job.Timeline().FPS)},
	}
	graph, err := filtergraph.Compile(job.Timeline(), canvas, job.Nodes())
	if err != nil {
		return classify(err)
	}

	if err := r.encode(ctx, graph, job.Timeline(), outputPath); err != nil {
		discardOutput(outputPath)
		return err
	}

	if err := verifyOutput(outputPath); err != nil {
		discardOutput(outputPath)
		return failure(FailureEncoder, err)
	}

	if err := job.transition(StatusComplete); err != nil {
		return failure(FailureConfiguration, err)
	}
	return nil
}

func (r *Renderer) encode(ctx context.Context, graph *filtergraph.Graph, tl timeline.Timeline, outputPath string) error {
	inv := encoder.Invocation{
		Inputs:        graph.Inputs(),
		FilterComplex: graph.String(),
		MapVideo:      graph.VideoOut(),
		FPS:           tl.FPS,
		OutputPath:    outputPath,
		ExtraArgs:     r.sett.EncodeArgs,
	}
	if audio, ok := graph.AudioOut(); ok {
		inv.MapAudio = audio
	}

	handle, err := r.enc.Start(ctx, inv)
	if err != nil {
		return failure(FailureEncoder, err)
	}

	result, err := handle.Wait(ctx)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return err
		}
		return failure(FailureEncoder, err)
	}

	if result.ExitCode != 0 {
		return failure(FailureEncoder, xerror.Errorf(
			"encoder exited with code %d after %s", result.ExitCode, result.Elapsed,
		).WithParam("stderr", result.Stderr))
	}
	return nil
}

func drain(ctx context.Context, buf *framebuffer.Buffer, staging *stagingArea) error {
	for {
		f, err := buf.Take(ctx)
		if err != nil {
			if errors.Is(err, framebuffer.ErrDrained) {
				return nil
			}
			return err
		}
		if err := staging.writeFrame(f); err != nil {
			return err
		}
	}
}

func verifyOutput(outputPath string) error {
	info, err := fs.Stat(outputPath)
	if err != nil {
		return xerror.Errorf("declared output artifact %s does not exist: %w", outputPath, err)
	}
	if info.Size() == 0 {
		return xerror.Errorf("declared output artifact %s is empty", outputPath)
	}
	return nil
}

func discardOutput(outputPath string) {
	err := fs.Remove(outputPath)
	if err == nil || os.IsNotExist(err) {
		return
	}
	log.Error("unable to discard partial output %s: %v", outputPath, err)
}

func (r *Renderer) record(job *Job, outputPath string, started time.Time, cause error) {
	if r.sett.Store == nil {
		return
	}

	rec := JobRecord{
		UUID:       job.UUID(),
		Status:     job.Status(),
		OutputPath: outputPath,
		FrameCount: job.Timeline().TotalFrames,
		Elapsed:    time.Since(started),
	}
	if cause != nil {
		msg := cause.Error()
		if len(msg) > maxRecordedErrorLen {
			msg = msg[:maxRecordedErrorLen]
		}
		rec.ErrorText = msg
	}

	if err := r.sett.Store.Record(rec); err != nil {
		log.Error("unable to record job %s outcome: %v", job.UUID(), err)
	}
}
