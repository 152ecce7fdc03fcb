package api

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/voidshard/era5d/internal/mocks/pkg/queue_mock"
	"github.com/voidshard/era5d/pkg/registry"
	"github.com/voidshard/era5d/pkg/structs"
)

func TestNewDefaults(t *testing.T) {
	svc, err := New(nil, nil, nil)
	require.Nil(t, err)
	defer svc.Close()

	assert.Equal(t, 6, len(svc.Variables()))

	jobs, err := svc.Jobs(context.Background(), nil)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(jobs))
}

func TestNewAPISubmit(t *testing.T) {
	qu := queue_mock.NewMockQueue(gomock.NewController(t))
	reg := registry.NewMemory()
	svc := NewAPI(reg, qu, &Options{DownloadDir: filepath.Join(t.TempDir(), "downloads")})

	qu.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return("", nil)

	job, err := svc.SubmitRequest(context.Background(), &structs.RetrievalRequest{
		Dataset:     "reanalysis-era5-single-levels",
		Variables:   []string{"2m_temperature"},
		DateStart:   "2021-06-01",
		DateEnd:     "2021-06-01",
		Area:        &structs.Area{North: 60, South: 50, East: 2, West: -10},
		Format:      structs.FormatNetCDF,
		ProductType: "reanalysis",
	})
	require.Nil(t, err)

	found, err := svc.Job(context.Background(), job.ID)
	assert.Nil(t, err)
	assert.Equal(t, structs.QUEUED, found.Status)
}
