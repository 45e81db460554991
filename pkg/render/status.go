package render

// Status is a render job's lifecycle state. Jobs only ever move forward;
// Failed is reachable from any non terminal state and is itself terminal.
type Status int

const (
	StatusIdle Status = iota
	StatusCapturing
	StatusEncoding
	StatusComplete
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "IDLE"
	case StatusCapturing:
		return "CAPTURING"
	case StatusEncoding:
		return "ENCODING"
	case StatusComplete:
		return "COMPLETE"
	case StatusFailed:
		return "FAILED"
	}
	return "UNKNOWN"
}

func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusFailed
}

func (s Status) CanTransition(to Status) bool {
	if s.Terminal() {
		return false
	}
	if to == StatusFailed {
		return true
	}

	switch s {
	case StatusIdle:
		return to == StatusCapturing
	case StatusCapturing:
		return to == StatusEncoding
	case StatusEncoding:
		return to == StatusComplete
	}
	return false
}
