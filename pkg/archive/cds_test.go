package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ee "github.com/voidshard/era5d/pkg/errors"
	"github.com/voidshard/era5d/pkg/structs"
)

// fakeArchive mimics the retrieve API; the job reports running for the first
// `pending` polls.
type fakeArchive struct {
	pending  int32
	final    string
	polls    int32
	received map[string]interface{}
}

func (f *fakeArchive) server(t *testing.T) *httptest.Server {
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/retrieve/v1/processes/reanalysis-era5-single-levels/execution", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.Header.Get(headerToken))
		f.received = map[string]interface{}{}
		json.NewDecoder(r.Body).Decode(&f.received)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"jobID": "remote-1", "status": stateAccepted})
	})
	mux.HandleFunc("/retrieve/v1/jobs/remote-1", func(w http.ResponseWriter, r *http.Request) {
		status := stateRunning
		if atomic.AddInt32(&f.polls, 1) > f.pending {
			status = f.final
		}
		json.NewEncoder(w).Encode(map[string]string{"jobID": "remote-1", "status": status})
	})
	mux.HandleFunc("/retrieve/v1/jobs/remote-1/results", func(w http.ResponseWriter, r *http.Request) {
		if f.final != stateSuccessful {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"title": "The job has failed", "detail": "no data for 1850"})
			return
		}
		fmt.Fprintf(w, `{"asset": {"value": {"href": "%s/files/out.nc", "file:size": 5}}}`, srv.URL)
	})
	mux.HandleFunc("/files/out.nc", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("CDF\x01x"))
	})
	mux.HandleFunc("/profiles/v1/account/verification/pat", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(headerToken) != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"title": "Unauthorized", "detail": "invalid token"})
			return
		}
		w.Write([]byte(`{"id": 1}`))
	})
	srv = httptest.NewServer(mux)
	return srv
}

func testClient(url, key string) *CDS {
	return NewCDS(&Options{
		Credentials:  &Credentials{URL: url, Key: key},
		PollInterval: 5 * time.Millisecond,
	})
}

func testArchiveRequest() *structs.ArchiveRequest {
	return &structs.ArchiveRequest{
		ProductType:    []string{"reanalysis"},
		Variable:       []string{"2m_temperature"},
		Date:           "2020-01-01/2020-01-02",
		Time:           []string{"00:00"},
		Area:           []float64{50, 0, 40, 10},
		Format:         "netcdf",
		DownloadFormat: "unarchived",
	}
}

func TestRetrieve(t *testing.T) {
	fake := &fakeArchive{pending: 2, final: stateSuccessful}
	srv := fake.server(t)
	defer srv.Close()
	target := filepath.Join(t.TempDir(), "era5_x.netcdf")

	err := testClient(srv.URL, "secret").Retrieve(context.Background(), "reanalysis-era5-single-levels", testArchiveRequest(), target)

	require.Nil(t, err)
	data, err := os.ReadFile(target)
	assert.Nil(t, err)
	assert.Equal(t, "CDF\x01x", string(data))
	assert.Equal(t, int32(3), atomic.LoadInt32(&fake.polls))

	inputs := fake.received["inputs"].(map[string]interface{})
	assert.Equal(t, "2020-01-01/2020-01-02", inputs["date"])
	assert.Equal(t, []interface{}{50.0, 0.0, 40.0, 10.0}, inputs["area"])
	assert.Equal(t, "unarchived", inputs["download_format"])
}

func TestRetrieveRemoteFailure(t *testing.T) {
	fake := &fakeArchive{pending: 0, final: stateFailed}
	srv := fake.server(t)
	defer srv.Close()
	target := filepath.Join(t.TempDir(), "era5_x.netcdf")

	err := testClient(srv.URL, "secret").Retrieve(context.Background(), "reanalysis-era5-single-levels", testArchiveRequest(), target)

	assert.True(t, errors.Is(err, ee.ErrExternalService))
	assert.Contains(t, err.Error(), "no data for 1850")
	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRetrieveCancelled(t *testing.T) {
	fake := &fakeArchive{pending: 1 << 30, final: stateSuccessful}
	srv := fake.server(t)
	defer srv.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := testClient(srv.URL, "secret").Retrieve(ctx, "reanalysis-era5-single-levels", testArchiveRequest(), filepath.Join(t.TempDir(), "x"))

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRetrieveUnknownDataset(t *testing.T) {
	srv := (&fakeArchive{}).server(t)
	defer srv.Close()

	err := testClient(srv.URL, "secret").Retrieve(context.Background(), "nope", testArchiveRequest(), filepath.Join(t.TempDir(), "x"))

	assert.True(t, errors.Is(err, ee.ErrExternalService))
}

func TestCheck(t *testing.T) {
	srv := (&fakeArchive{}).server(t)
	defer srv.Close()

	good := testClient(srv.URL, "secret").Check(context.Background())
	bad := testClient(srv.URL, "wrong").Check(context.Background())

	assert.Nil(t, good)
	assert.True(t, errors.Is(bad, ee.ErrExternalService))
	assert.Contains(t, bad.Error(), "invalid token")
}
