package client

import (
	"bytes"
	"fmt"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/voidshard/era5d/internal/mocks/pkg/api_mock"
	"github.com/voidshard/era5d/pkg/api/http/server"
	ee "github.com/voidshard/era5d/pkg/errors"
	"github.com/voidshard/era5d/pkg/structs"
)

const testJobID = "8a1c7d3e-2b4f-4c6d-8e9f-0a1b2c3d4e5f"

func newTestClient(t *testing.T) (*Client, *api_mock.MockAPI) {
	svc := api_mock.NewMockAPI(gomock.NewController(t))
	ts := httptest.NewServer(server.NewServer("", nil).Handler(svc))
	t.Cleanup(ts.Close)

	c, err := New(ts.URL)
	require.Nil(t, err)
	return c, svc
}

func TestSetQueryString(t *testing.T) {
	u := &url.URL{Path: "/api/jobs"}

	setQueryString(u, &structs.Query{Limit: 20, Offset: 40, Statuses: []structs.Status{structs.QUEUED, structs.RUNNING}})

	assert.Equal(t, "limit=20&offset=40&statuses=queued&statuses=running", u.RawQuery)
}

func TestSubmitRequest(t *testing.T) {
	c, svc := newTestClient(t)
	req := &structs.RetrievalRequest{Dataset: "reanalysis-era5-single-levels", Variables: []string{"2m_temperature"}}

	svc.EXPECT().SubmitRequest(gomock.Any(), req).Return(&structs.Job{ID: testJobID, Status: structs.QUEUED, Request: req}, nil)

	job, err := c.SubmitRequest(req)

	require.Nil(t, err)
	assert.Equal(t, testJobID, job.ID)
	assert.Equal(t, structs.QUEUED, job.Status)
}

func TestSubmitRequestError(t *testing.T) {
	c, svc := newTestClient(t)

	svc.EXPECT().SubmitRequest(gomock.Any(), gomock.Any()).Return(nil, ee.Missing("area"))

	_, err := c.SubmitRequest(&structs.RetrievalRequest{})

	assert.EqualError(t, err, "bad status code 400, returned Missing required field: area")
}

func TestJobs(t *testing.T) {
	c, svc := newTestClient(t)

	svc.EXPECT().Jobs(gomock.Any(), &structs.Query{Statuses: []structs.Status{structs.COMPLETED}}).Return(
		[]*structs.Job{{ID: testJobID, Status: structs.COMPLETED}}, nil,
	)

	jobs, err := c.Jobs(&structs.Query{Statuses: []structs.Status{structs.COMPLETED}})

	require.Nil(t, err)
	assert.Equal(t, 1, len(jobs))
	assert.Equal(t, testJobID, jobs[0].ID)
}

func TestJob(t *testing.T) {
	c, svc := newTestClient(t)

	svc.EXPECT().Job(gomock.Any(), testJobID).Return(nil, fmt.Errorf("%w: job %s", ee.ErrNotFound, testJobID))

	_, err := c.Job(testJobID)

	assert.ErrorContains(t, err, "bad status code 404")
}

func TestCredentialStatus(t *testing.T) {
	c, svc := newTestClient(t)

	svc.EXPECT().CredentialStatus(gomock.Any()).Return(&structs.CredentialStatus{Connected: false, APIKeyStatus: "invalid", Message: "nope"})

	st, err := c.CredentialStatus()

	require.Nil(t, err)
	assert.False(t, st.Connected)
	assert.Equal(t, "nope", st.Message)
}

func TestGenerateCode(t *testing.T) {
	c, svc := newTestClient(t)

	svc.EXPECT().GenerateCode(gomock.Any()).Return("import cdsapi\n", nil)

	code, err := c.GenerateCode(&structs.RetrievalRequest{Dataset: "x"})

	require.Nil(t, err)
	assert.Equal(t, "import cdsapi\n", code)
}

func TestDownload(t *testing.T) {
	c, svc := newTestClient(t)
	path := filepath.Join(t.TempDir(), "era5_"+testJobID+".grib")
	require.Nil(t, os.WriteFile(path, []byte("GRIB0000"), 0644))

	svc.EXPECT().Download(gomock.Any(), testJobID).DoAndReturn(func(_ interface{}, _ string) (*os.File, error) {
		return os.Open(path)
	})

	buf := &bytes.Buffer{}
	err := c.Download(testJobID, buf)

	require.Nil(t, err)
	assert.Equal(t, "GRIB0000", buf.String())
}

func TestParseGrid(t *testing.T) {
	c, svc := newTestClient(t)
	path := filepath.Join(t.TempDir(), "sample.nc")
	require.Nil(t, os.WriteFile(path, []byte("CDF\x01"), 0644))

	svc.EXPECT().ParseGrid(gomock.Any()).Return(&structs.GridMetadata{Filename: "sample.nc", FileSize: "0.0 MB"}, nil)

	meta, err := c.ParseGrid(path)

	require.Nil(t, err)
	assert.Equal(t, "sample.nc", meta.Filename)
}

func TestVariables(t *testing.T) {
	c, svc := newTestClient(t)

	svc.EXPECT().Variables().Return(structs.Variables())

	vars, err := c.Variables()

	require.Nil(t, err)
	assert.Equal(t, structs.Variables(), vars)
}
