package repos

import (
	"github.com/tauraamui/framewright/pkg/database/dbconn"
	"github.com/tauraamui/framewright/pkg/database/models"
	"github.com/tauraamui/framewright/pkg/render"
	"github.com/tauraamui/xerror"
)

// RenderJobRepo persists terminal render job outcomes. It satisfies
// render.JobStore so a renderer can be pointed straight at it.
type RenderJobRepo struct {
	DB dbconn.GormWrapper
}

func (r *RenderJobRepo) Save(job *models.RenderJob) error {
	return r.DB.Create(job).Error()
}

func (r *RenderJobRepo) FindByUUID(uuid string) (models.RenderJob, error) {
	job := models.RenderJob{}
	if err := r.DB.Where("uuid = ?", uuid).First(&job).Error(); err != nil {
		return job, xerror.Errorf("render job of uuid %s not found", uuid)
	}

	return job, nil
}

func (r *RenderJobRepo) Record(rec render.JobRecord) error {
	return r.Save(&models.RenderJob{
		UUID:       rec.UUID,
		Status:     rec.Status.String(),
		OutputPath: rec.OutputPath,
		FrameCount: rec.FrameCount,
		ElapsedMS:  rec.Elapsed.Milliseconds(),
		ErrorText:  rec.ErrorText,
	})
}
