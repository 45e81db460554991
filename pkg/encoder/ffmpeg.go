package encoder

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"time"

	"github.com/tauraamui/framewright/pkg/log"
	"github.com/tauraamui/xerror"
)

const defaultBinary = "ffmpeg"

// FFmpeg returns the native process variant, launching the ffmpeg binary
// found on PATH.
func FFmpeg() Encoder {
	return &ffmpegEncoder{binary: defaultBinary}
}

// FFmpegWithBinary launches a specific ffmpeg binary, for hosts which ship
// their own build.
func FFmpegWithBinary(path string) Encoder {
	return &ffmpegEncoder{binary: path}
}

type ffmpegEncoder struct {
	binary string
}

func (e *ffmpegEncoder) Start(ctx context.Context, inv Invocation) (Handle, error) {
	args := buildArgs(inv)
	log.Debug("launching %s with args %v", e.binary, args)

	cmd := exec.CommandContext(ctx, e.binary, args...)
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, xerror.Errorf("unable to launch encoder process %s: %w", e.binary, err)
	}

	return &ffmpegHandle{
		cmd:     cmd,
		stderr:  stderr,
		started: time.Now(),
	}, nil
}

func buildArgs(inv Invocation) []string {
	args := []string{"-y", "-hide_banner"}
	for _, in := range inv.Inputs {
		args = append(args, in.Options...)
		args = append(args, "-i", in.Path)
	}

	args = append(args, "-filter_complex", inv.FilterComplex)
	args = append(args, "-map", "["+string(inv.MapVideo)+"]")
	if inv.MapAudio != "" {
		args = append(args, "-map", "["+string(inv.MapAudio)+"]")
	}
	if inv.FPS > 0 {
		args = append(args, "-r", strconv.Itoa(inv.FPS))
	}
	args = append(args, inv.ExtraArgs...)
	return append(args, inv.OutputPath)
}

type ffmpegHandle struct {
	cmd     *exec.Cmd
	stderr  *bytes.Buffer
	started time.Time
}

func (h *ffmpegHandle) Wait(ctx context.Context) (Result, error) {
	waitErr := make(chan error, 1)
	go func() { waitErr <- h.cmd.Wait() }()

	select {
	case err := <-waitErr:
		result := Result{
			Stderr:  h.stderr.String(),
			Elapsed: time.Since(h.started),
		}
		if err != nil {
			exitErr, isExit := err.(*exec.ExitError)
			if !isExit {
				return result, xerror.Errorf("waiting on encoder process failed: %w", err)
			}
			result.ExitCode = exitErr.ExitCode()
		}
		return result, nil
	case <-ctx.Done():
		_ = h.Terminate()
		<-waitErr
		return Result{Stderr: h.stderr.String(), Elapsed: time.Since(h.started)}, ctx.Err()
	}
}

func (h *ffmpegHandle) Terminate() error {
	if h.cmd.Process == nil {
		return nil
	}
	return h.cmd.Process.Kill()
}
