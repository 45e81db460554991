package render

import (
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
)

func TestStatusStringNames(t *testing.T) {
	is := is.New(t)

	is.Equal(StatusIdle.String(), "IDLE")
	is.Equal(StatusCapturing.String(), "CAPTURING")
	is.Equal(StatusEncoding.String(), "ENCODING")
	is.Equal(StatusComplete.String(), "COMPLETE")
	is.Equal(StatusFailed.String(), "FAILED")
	is.Equal(Status(99).String(), "UNKNOWN")
}

func TestOnlyCompleteAndFailedAreTerminal(t *testing.T) {
	is := is.New(t)

	is.True(!StatusIdle.Terminal())
	is.True(!StatusCapturing.Terminal())
	is.True(!StatusEncoding.Terminal())
	is.True(StatusComplete.Terminal())
	is.True(StatusFailed.Terminal())
}

func TestStatusTransitionsOnlyMoveForward(t *testing.T) {
	tests := []struct {
		title   string
		from    Status
		to      Status
		allowed bool
	}{
		{title: "idle to capturing", from: StatusIdle, to: StatusCapturing, allowed: true},
		{title: "capturing to encoding", from: StatusCapturing, to: StatusEncoding, allowed: true},
		{title: "encoding to complete", from: StatusEncoding, to: StatusComplete, allowed: true},
		{title: "idle to encoding skips capture", from: StatusIdle, to: StatusEncoding, allowed: false},
		{title: "capturing back to idle", from: StatusCapturing, to: StatusIdle, allowed: false},
		{title: "encoding back to capturing", from: StatusEncoding, to: StatusCapturing, allowed: false},
		{title: "idle can fail", from: StatusIdle, to: StatusFailed, allowed: true},
		{title: "capturing can fail", from: StatusCapturing, to: StatusFailed, allowed: true},
		{title: "encoding can fail", from: StatusEncoding, to: StatusFailed, allowed: true},
		{title: "complete is final", from: StatusComplete, to: StatusFailed, allowed: false},
		{title: "failed is final", from: StatusFailed, to: StatusCapturing, allowed: false},
		{title: "failed cannot refail", from: StatusFailed, to: StatusFailed, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to))
		})
	}
}
