package render

import "time"

// JobRecord is the terminal outcome of one render job, as persisted to a
// job history store.
type JobRecord struct {
	UUID       string
	Status     Status
	OutputPath string
	FrameCount int
	Elapsed    time.Duration
	ErrorText  string
}

// JobStore receives terminal job records. Storage failures are logged and
// never override the job's own outcome.
type JobStore interface {
	Record(JobRecord) error
}
