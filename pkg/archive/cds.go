package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lthibault/jitterbug/v2"
	"go.uber.org/zap"

	"github.com/voidshard/era5d/pkg/errors"
	"github.com/voidshard/era5d/pkg/structs"
)

const (
	defPollInterval = 5 * time.Second
	headerToken     = "PRIVATE-TOKEN"

	pathExecute = "/retrieve/v1/processes/%s/execution"
	pathJob     = "/retrieve/v1/jobs/%s"
	pathResults = "/retrieve/v1/jobs/%s/results"
	pathVerify  = "/profiles/v1/account/verification/pat"
)

// remote job states
const (
	stateAccepted   = "accepted"
	stateRunning    = "running"
	stateSuccessful = "successful"
	stateFailed     = "failed"
	stateRejected   = "rejected"
	stateDismissed  = "dismissed"
)

type Options struct {
	// Credentials to use. If nil they're loaded (see LoadCredentials) on first use.
	Credentials *Credentials

	// PollInterval is the mean time between job status checks.
	PollInterval time.Duration

	// HTTPClient defaults to a client with no overall timeout, since
	// the archive may queue a request for hours.
	HTTPClient *http.Client
}

// CDS is a Client for the Copernicus Climate Data Store retrieve API.
type CDS struct {
	opts *Options
	http *http.Client

	lock  sync.Mutex
	creds *Credentials
}

func NewCDS(opts *Options) *CDS {
	if opts == nil {
		opts = &Options{}
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defPollInterval
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &CDS{opts: opts, http: hc, creds: opts.Credentials}
}

type remoteJob struct {
	JobID  string `json:"jobID"`
	Status string `json:"status"`
}

type remoteResults struct {
	Asset struct {
		Value struct {
			Href string `json:"href"`
			Size int64  `json:"file:size"`
		} `json:"value"`
	} `json:"asset"`
}

// remoteError is the archive's problem document
type remoteError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func (c *CDS) credentials() (*Credentials, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.creds != nil {
		return c.creds, nil
	}
	creds, err := LoadCredentials()
	if err != nil {
		return nil, err
	}
	c.creds = creds
	return creds, nil
}

func (c *CDS) Check(ctx context.Context) error {
	creds, err := c.credentials()
	if err != nil {
		return err
	}
	return c.do(ctx, creds, http.MethodGet, creds.URL+pathVerify, nil, nil)
}

func (c *CDS) Retrieve(ctx context.Context, dataset string, req *structs.ArchiveRequest, target string) error {
	log := zap.S().Named("archive")
	creds, err := c.credentials()
	if err != nil {
		return err
	}

	job := &remoteJob{}
	body := map[string]interface{}{"inputs": req}
	err = c.do(ctx, creds, http.MethodPost, creds.URL+fmt.Sprintf(pathExecute, url.PathEscape(dataset)), body, job)
	if err != nil {
		return err
	}
	if job.JobID == "" {
		return fmt.Errorf("%w: archive accepted request but returned no job id", errors.ErrExternalService)
	}
	log.Infow("request submitted", "remoteJob", job.JobID, "dataset", dataset)

	err = c.wait(ctx, creds, job)
	if err != nil {
		return err
	}

	results := &remoteResults{}
	err = c.do(ctx, creds, http.MethodGet, creds.URL+fmt.Sprintf(pathResults, job.JobID), nil, results)
	if err != nil {
		return err
	}
	href := results.Asset.Value.Href
	if href == "" {
		return fmt.Errorf("%w: archive job %s has no result asset", errors.ErrExternalService, job.JobID)
	}

	log.Infow("downloading result", "remoteJob", job.JobID, "size", results.Asset.Value.Size, "target", target)
	return c.download(ctx, creds, href, target)
}

// wait polls the remote job on a jittered ticker until it reaches an end state.
func (c *CDS) wait(ctx context.Context, creds *Credentials, job *remoteJob) error {
	tick := jitterbug.New(c.opts.PollInterval, &jitterbug.Norm{Stdev: c.opts.PollInterval / 10, Mean: 0})
	defer tick.Stop()

	for {
		switch job.Status {
		case stateAccepted, stateRunning:
			// still going
		case stateSuccessful:
			return nil
		case stateFailed, stateRejected, stateDismissed:
			msg := job.Status
			// the results endpoint carries the reason for a failure
			err := c.do(ctx, creds, http.MethodGet, creds.URL+fmt.Sprintf(pathResults, job.JobID), nil, nil)
			if err != nil {
				return err
			}
			return fmt.Errorf("%w: archive job %s %s", errors.ErrExternalService, job.JobID, msg)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}

		err := c.do(ctx, creds, http.MethodGet, creds.URL+fmt.Sprintf(pathJob, job.JobID), nil, job)
		if err != nil {
			return err
		}
	}
}

// download streams href into a temp file next to target then renames it, so
// target only ever exists complete.
func (c *CDS) download(ctx context.Context, creds *Credentials, href, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, href, nil)
	if err != nil {
		return err
	}
	req.Header.Set(headerToken, creds.Key)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrExternalService, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return remoteFailure(resp)
	}

	f, err := os.CreateTemp(filepath.Dir(target), ".download-*")
	if err != nil {
		return err
	}
	_, err = io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return err
	}
	err = os.Rename(f.Name(), target)
	if err != nil {
		os.Remove(f.Name())
	}
	return err
}

// do sends a JSON request & decodes a JSON response into out (if given).
func (c *CDS) do(ctx context.Context, creds *Credentials, method, addr string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, addr, body)
	if err != nil {
		return err
	}
	req.Header.Set(headerToken, creds.Key)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", errors.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return remoteFailure(resp)
	}
	if out == nil {
		return nil
	}
	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return fmt.Errorf("%w: bad response from %s: %v", errors.ErrExternalService, addr, err)
	}
	return nil
}

func remoteFailure(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	rerr := &remoteError{}
	if json.Unmarshal(data, rerr) == nil && (rerr.Title != "" || rerr.Detail != "") {
		if rerr.Detail != "" {
			return fmt.Errorf("%w: %s: %s", errors.ErrExternalService, rerr.Title, rerr.Detail)
		}
		return fmt.Errorf("%w: %s", errors.ErrExternalService, rerr.Title)
	}
	return fmt.Errorf("%w: bad status code %d, returned %s", errors.ErrExternalService, resp.StatusCode, string(data))
}
