package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func init() {
	registerForAutomigration(&RenderJob{})
}

// RenderJob is one terminal render outcome as kept in the job history
// store: which composition ran, how it ended and where the artifact went.
type RenderJob struct {
	gorm.Model
	UUID       string
	Status     string
	OutputPath string
	FrameCount int
	ElapsedMS  int64
	ErrorText  string
}

func (j *RenderJob) BeforeCreate(tx *gorm.DB) error {
	if j.UUID == "" {
		j.UUID = uuid.NewString()
	}
	return nil
}
