package render

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/tauraamui/framewright/pkg/framebuffer"
	"github.com/tauraamui/framewright/pkg/log"
	"github.com/tauraamui/framewright/pkg/timeline"
	"github.com/tauraamui/xerror"
)

// stagingArea is the transient on disk home of one job's captured frames,
// exclusively owned by that job for its whole lifetime. Frame files are
// named by zero padded index so directory order is frame order.
type stagingArea struct {
	fs       afero.Fs
	jobRoot  string
	frameDir string
}

func newStagingArea(fs afero.Fs, root, jobID string) (*stagingArea, error) {
	jobRoot := filepath.Join(root, jobID)
	frameDir := filepath.Join(jobRoot, "frames")
	if err := fs.MkdirAll(frameDir, os.ModeDir|os.ModePerm); err != nil {
		return nil, xerror.Errorf("unable to create staging area %s: %w", frameDir, err)
	}
	return &stagingArea{fs: fs, jobRoot: jobRoot, frameDir: frameDir}, nil
}

func (s *stagingArea) writeFrame(f framebuffer.Frame) error {
	path := filepath.Join(s.frameDir, timeline.FrameFileName(f.Index))
	if err := afero.WriteFile(s.fs, path, f.Data, os.ModePerm); err != nil {
		return xerror.Errorf("unable to stage frame %d: %w", f.Index, err)
	}
	return nil
}

// framePattern is the printf style sequence path the encoder consumes the
// staged frames through.
func (s *stagingArea) framePattern() string {
	return filepath.Join(s.frameDir, "%06d.png")
}

// release removes the whole staging area. Best effort: a failed removal is
// logged, never surfaced over the job's own outcome.
func (s *stagingArea) release() {
	if err := s.fs.RemoveAll(s.jobRoot); err != nil {
		log.Error("unable to release staging area %s: %v", s.jobRoot, err)
	}
}
