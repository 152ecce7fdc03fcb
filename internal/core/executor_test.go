package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/voidshard/era5d/internal/mocks/pkg/archive_mock"
	"github.com/voidshard/era5d/internal/mocks/pkg/registry_mock"
	ee "github.com/voidshard/era5d/pkg/errors"
	"github.com/voidshard/era5d/pkg/registry"
	"github.com/voidshard/era5d/pkg/structs"
)

func init() {
	timeNow = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
}

func testRequest() *structs.RetrievalRequest {
	return &structs.RetrievalRequest{
		Dataset:     "reanalysis-era5-single-levels",
		Variables:   []string{"2m_temperature", "total_precipitation"},
		DateStart:   "2020-01-01",
		DateEnd:     "2020-01-31",
		Area:        &structs.Area{North: 50, South: 40, East: 10, West: -5.5},
		Format:      structs.FormatNetCDF,
		ProductType: "reanalysis",
	}
}

func TestBuildArchiveRequest(t *testing.T) {
	in := testRequest()

	out := BuildArchiveRequest(in)

	assert.Equal(t, []string{"reanalysis"}, out.ProductType)
	assert.Equal(t, []string{"2m_temperature", "total_precipitation"}, out.Variable)
	assert.Equal(t, "2020-01-01/2020-01-31", out.Date)
	assert.Equal(t, []string{"00:00"}, out.Time)
	assert.Equal(t, []float64{50, -5.5, 40, 10}, out.Area)
	assert.Equal(t, "netcdf", out.Format)
	assert.Equal(t, "unarchived", out.DownloadFormat)
}

func TestBuildArchiveRequestTimes(t *testing.T) {
	in := testRequest()
	in.TimeRange = []string{"06:00", "18:00"}

	out := BuildArchiveRequest(in)

	assert.Equal(t, []string{"06:00", "18:00"}, out.Time)
}

func TestExecutorRun(t *testing.T) {
	dir := t.TempDir()
	reg := registry.NewMemory()
	cds := archive_mock.NewMockClient(gomock.NewController(t))
	ex := NewExecutor(reg, cds, dir)

	job, err := reg.Create(context.Background(), testRequest())
	require.Nil(t, err)
	target := filepath.Join(dir, fmt.Sprintf("era5_%s.netcdf", job.ID))

	cds.EXPECT().Retrieve(gomock.Any(), "reanalysis-era5-single-levels", BuildArchiveRequest(testRequest()), target).DoAndReturn(
		func(ctx context.Context, dataset string, req *structs.ArchiveRequest, target string) error {
			// the job is running & dispatched while we retrieve
			during, err := reg.Get(ctx, job.ID)
			require.Nil(t, err)
			assert.Equal(t, structs.RUNNING, during.Status)
			assert.Equal(t, 10, during.Progress)
			return os.WriteFile(target, make([]byte, 2*1024*1024+60*1024), 0644)
		},
	)

	err = ex.Run(context.Background(), job.ID)
	require.Nil(t, err)

	result, err := reg.Get(context.Background(), job.ID)
	require.Nil(t, err)
	assert.Equal(t, structs.COMPLETED, result.Status)
	assert.Equal(t, 100, result.Progress)
	assert.Equal(t, "", result.Error)
	assert.Equal(t, timeNow(), *result.CompletedAt)
	assert.Equal(t, &structs.JobResult{
		FilePath:    target,
		FileSize:    "2.1 MB",
		DownloadURL: "/api/download/" + job.ID,
	}, result.Result)
}

func TestExecutorRunRetrieveFails(t *testing.T) {
	reg := registry.NewMemory()
	cds := archive_mock.NewMockClient(gomock.NewController(t))
	ex := NewExecutor(reg, cds, t.TempDir())

	job, err := reg.Create(context.Background(), testRequest())
	require.Nil(t, err)

	cds.EXPECT().Retrieve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(fmt.Errorf("quota exceeded"))

	err = ex.Run(context.Background(), job.ID)
	assert.EqualError(t, err, "quota exceeded")

	result, err := reg.Get(context.Background(), job.ID)
	require.Nil(t, err)
	assert.Equal(t, structs.FAILED, result.Status)
	assert.Equal(t, "quota exceeded", result.Error)
	assert.Nil(t, result.Result)
	assert.NotNil(t, result.CompletedAt)
}

func TestExecutorRunMissingFile(t *testing.T) {
	reg := registry.NewMemory()
	cds := archive_mock.NewMockClient(gomock.NewController(t))
	ex := NewExecutor(reg, cds, t.TempDir())

	job, err := reg.Create(context.Background(), testRequest())
	require.Nil(t, err)

	// archive claims success but nothing was written
	cds.EXPECT().Retrieve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	err = ex.Run(context.Background(), job.ID)
	assert.NotNil(t, err)

	result, err := reg.Get(context.Background(), job.ID)
	require.Nil(t, err)
	assert.Equal(t, structs.FAILED, result.Status)
	assert.Equal(t, 90, result.Progress)
}

func TestExecutorRunUnknownJob(t *testing.T) {
	cds := archive_mock.NewMockClient(gomock.NewController(t))
	ex := NewExecutor(registry.NewMemory(), cds, t.TempDir())

	err := ex.Run(context.Background(), "b3f0c7f2-58a8-4d57-9c7a-3c9f2e2a4c11")

	assert.True(t, errors.Is(err, ee.ErrNotFound))
}

func TestExecutorRunFinishedJob(t *testing.T) {
	reg := registry.NewMemory()
	cds := archive_mock.NewMockClient(gomock.NewController(t))
	ex := NewExecutor(reg, cds, t.TempDir())

	job, err := reg.Create(context.Background(), testRequest())
	require.Nil(t, err)
	_, err = reg.Update(context.Background(), job.ID, structs.PatchFail(timeNow(), "enqueue failed"))
	require.Nil(t, err)

	err = ex.Run(context.Background(), job.ID)

	assert.True(t, errors.Is(err, ee.ErrInvalidState))
}

func TestExecutorRunFailureNotRecorded(t *testing.T) {
	reg := registry_mock.NewMockRegistry(gomock.NewController(t))
	cds := archive_mock.NewMockClient(gomock.NewController(t))
	ex := NewExecutor(reg, cds, t.TempDir())

	job := &structs.Job{ID: "job-1", Status: structs.RUNNING, Request: testRequest()}
	gone := fmt.Errorf("%w: database went away", ee.ErrExternalService)

	reg.EXPECT().Update(gomock.Any(), "job-1", structs.PatchStart()).Return(job, nil)
	reg.EXPECT().Update(gomock.Any(), "job-1", structs.PatchProgress(10)).Return(job, nil)
	cds.EXPECT().Retrieve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(fmt.Errorf("timed out"))
	reg.EXPECT().Update(gomock.Any(), "job-1", structs.PatchFail(timeNow(), "timed out")).Return(nil, gone)

	err := ex.Run(context.Background(), "job-1")

	assert.ErrorContains(t, err, "timed out")
	assert.True(t, errors.Is(err, ee.ErrExternalService))
}
