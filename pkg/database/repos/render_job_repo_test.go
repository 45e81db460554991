package repos_test

import (
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tauraamui/framewright/pkg/database/dbconn"
	"github.com/tauraamui/framewright/pkg/database/models"
	"github.com/tauraamui/framewright/pkg/database/repos"
	"github.com/tauraamui/framewright/pkg/render"
	"github.com/tauraamui/xerror"
)

func TestSaveCreatesRenderJobEntry(t *testing.T) {
	is := is.New(t)

	mock := dbconn.Mock()
	repo := repos.RenderJobRepo{DB: mock}

	is.NoErr(repo.Save(&models.RenderJob{UUID: "b895384a-cb21-4d65-817e-bfbbac5bd471", Status: "COMPLETE"}))

	created := mock.Created()
	is.Equal(len(created), 1)

	job, ok := created[0].(*models.RenderJob)
	is.True(ok)
	is.Equal(job.UUID, "b895384a-cb21-4d65-817e-bfbbac5bd471")
	is.Equal(job.Status, "COMPLETE")
}

func TestSaveSurfacesConnectionError(t *testing.T) {
	is := is.New(t)

	mock := dbconn.Mock().SetError(xerror.New("database gone"))
	repo := repos.RenderJobRepo{DB: mock}

	is.True(repo.Save(&models.RenderJob{UUID: "x"}) != nil)
	is.Equal(len(mock.Created()), 0)
}

func TestFindByUUIDQueriesOnUUIDColumn(t *testing.T) {
	require := require.New(t)

	mock := dbconn.Mock().SetResult(models.RenderJob{UUID: "b895384a", Status: "FAILED", ErrorText: "capture_failure: panel went away"})
	repo := repos.RenderJobRepo{DB: mock}

	job, err := repo.FindByUUID("b895384a")
	require.NoError(err)
	require.Equal("FAILED", job.Status)
	require.Equal("capture_failure: panel went away", job.ErrorText)

	query, args := mock.LastQuery()
	require.Equal("uuid = ?", query)
	require.Equal([]interface{}{"b895384a"}, args)
}

func TestFindByUUIDReportsMissingJob(t *testing.T) {
	mock := dbconn.Mock().SetError(xerror.New("record not found"))
	repo := repos.RenderJobRepo{DB: mock}

	_, err := repo.FindByUUID("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render job of uuid missing not found")
}

func TestRecordMapsTerminalJobOutcome(t *testing.T) {
	require := require.New(t)

	mock := dbconn.Mock()
	repo := repos.RenderJobRepo{DB: mock}

	// the repo satisfies the renderer's job store contract
	var store render.JobStore = &repo

	require.NoError(store.Record(render.JobRecord{
		UUID:       "b895384a",
		Status:     render.StatusComplete,
		OutputPath: "/out/final.mp4",
		FrameCount: 90,
		Elapsed:    2500 * time.Millisecond,
	}))

	created := mock.Created()
	require.Len(created, 1)

	job, ok := created[0].(*models.RenderJob)
	require.True(ok)
	assert.Equal(t, "b895384a", job.UUID)
	assert.Equal(t, "COMPLETE", job.Status)
	assert.Equal(t, "/out/final.mp4", job.OutputPath)
	assert.Equal(t, 90, job.FrameCount)
	assert.Equal(t, int64(2500), job.ElapsedMS)
	assert.Empty(t, job.ErrorText)
}
