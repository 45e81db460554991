package render

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tauraamui/framewright/pkg/composition"
	"github.com/tauraamui/framewright/pkg/log"
	"github.com/tauraamui/framewright/pkg/timeline"
	"github.com/tauraamui/xerror"
)

// Job binds one composition document to a lifecycle status. Construction
// validates the document, so a job which exists at all has already passed
// configuration checks.
type Job struct {
	uuid    string
	tl      timeline.Timeline
	nodes   []composition.Node
	created time.Time

	mu     sync.Mutex
	status Status
}

func NewJob(doc composition.Document) (*Job, error) {
	if err := doc.RunValidate(); err != nil {
		return nil, failure(FailureConfiguration, err)
	}
	return &Job{
		uuid:    uuid.NewString(),
		tl:      doc.Timeline,
		nodes:   doc.Nodes,
		created: time.Now(),
		status:  StatusIdle,
	}, nil
}

func (j *Job) UUID() string { return j.uuid }

func (j *Job) CreatedAt() time.Time { return j.created }

func (j *Job) Timeline() timeline.Timeline { return j.tl }

func (j *Job) Nodes() []composition.Node { return j.nodes }

func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

func (j *Job) transition(to Status) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.status.CanTransition(to) {
		return xerror.Errorf("job %s cannot transition %s -> %s", j.uuid, j.status, to)
	}
	log.Debug("job %s transitioning %s -> %s", j.uuid, j.status, to)
	j.status = to
	return nil
}

func (j *Job) fail() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.status.Terminal() {
		j.status = StatusFailed
	}
}
