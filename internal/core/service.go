package core

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/voidshard/era5d/pkg/archive"
	"github.com/voidshard/era5d/pkg/errors"
	"github.com/voidshard/era5d/pkg/metrics"
	"github.com/voidshard/era5d/pkg/queue"
	"github.com/voidshard/era5d/pkg/registry"
	"github.com/voidshard/era5d/pkg/structs"
)

//go:generate mockgen -source=service.go -destination=../mocks/core_mock/inspector_mock.go -package=core_mock Inspector

// Inspector reads grid files from disk.
type Inspector interface {
	ParseFile(path string) (*structs.GridMetadata, error)
	ExtractFile(path, variable string, timeIndex int, level *float64, full bool) (*structs.SliceResult, error)
}

// Service is the gateway between callers & the registry, queue & archive.
type Service struct {
	reg  registry.Registry
	qu   queue.Queue
	cds  archive.Client
	insp Inspector
	exec *Executor
}

func NewService(reg registry.Registry, qu queue.Queue, cds archive.Client, insp Inspector, downloadDir string) *Service {
	return &Service{
		reg:  reg,
		qu:   qu,
		cds:  cds,
		insp: insp,
		exec: NewExecutor(reg, cds, downloadDir),
	}
}

// Register the executor as the queue's handler, so this process does retrievals.
func (c *Service) Register() error {
	return c.qu.Register(c.exec.Run)
}

// Run processes queued jobs until Close is called.
func (c *Service) Run() error {
	return c.qu.Run()
}

func (c *Service) Close() error {
	qerr := c.qu.Close()
	rerr := c.reg.Close()
	if qerr != nil {
		return qerr
	}
	return rerr
}

// SubmitRequest validates the request, records a queued job & hands it to the
// queue. It doesn't wait for the retrieval.
func (c *Service) SubmitRequest(ctx context.Context, req *structs.RetrievalRequest) (*structs.Job, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: no request", errors.ErrValidation)
	}
	err := req.Validate()
	if err != nil {
		return nil, err
	}

	job, err := c.reg.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	metrics.IncreaseJobsSubmitted(req.Dataset)

	taskID, err := c.qu.Enqueue(ctx, job.ID)
	if err != nil {
		zap.S().Named("service").Errorw("enqueue failed", "job", job.ID, "err", err)
		_, perr := c.reg.Update(context.WithoutCancel(ctx), job.ID, structs.PatchFail(time.Now(), err.Error()))
		if perr != nil {
			return nil, fmt.Errorf("%w: enqueue job %s: %v (and recording failure: %v)", errors.ErrExternalService, job.ID, err, perr)
		}
		return nil, fmt.Errorf("%w: enqueue job %s: %v", errors.ErrExternalService, job.ID, err)
	}
	if taskID == "" {
		return job, nil
	}

	// A worker may pick the job up before this returns, so the caller gets the
	// snapshot taken at creation rather than whatever the registry holds now.
	job.QueueTaskID = taskID
	_, err = c.reg.Update(ctx, job.ID, &structs.JobPatch{QueueTaskID: &taskID})
	if err != nil {
		// the job is queued regardless; a fast worker may have finished it already
		zap.S().Named("service").Debugw("unable to record queue task id", "job", job.ID, "err", err)
	}
	return job, nil
}

func (c *Service) Job(ctx context.Context, id string) (*structs.Job, error) {
	return c.reg.Get(ctx, id)
}

func (c *Service) Jobs(ctx context.Context, q *structs.Query) ([]*structs.Job, error) {
	if q == nil {
		q = &structs.Query{}
	}
	q.Sanitize()
	return c.reg.List(ctx, q)
}

// Download opens the result file of a completed job. The caller closes it.
func (c *Service) Download(ctx context.Context, id string) (*os.File, error) {
	job, err := c.reg.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status != structs.COMPLETED || job.Result == nil {
		return nil, fmt.Errorf("%w: job %s is %s, not %s", errors.ErrInvalidState, id, job.Status, structs.COMPLETED)
	}
	f, err := os.Open(job.Result.FilePath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: file for job %s", errors.ErrNotFound, id)
	}
	return f, err
}

func (c *Service) Variables() structs.Catalog {
	return structs.Variables()
}

// CredentialStatus checks the archive credentials. It never errors; a failed check
// is reported with Connected false.
func (c *Service) CredentialStatus(ctx context.Context) *structs.CredentialStatus {
	err := c.cds.Check(ctx)
	if err != nil {
		return &structs.CredentialStatus{
			Connected:    false,
			APIKeyStatus: "invalid",
			Message:      fmt.Sprintf("CDS API connection failed: %s", errors.Message(err)),
		}
	}
	return &structs.CredentialStatus{
		Connected:    true,
		APIKeyStatus: "valid",
		Message:      "CDS API connection successful",
	}
}

// GenerateCode returns example python client code for the request.
func (c *Service) GenerateCode(req *structs.RetrievalRequest) (string, error) {
	if req == nil {
		return "", fmt.Errorf("%w: no request", errors.ErrValidation)
	}
	err := req.Validate()
	if err != nil {
		return "", err
	}
	return renderCode(req)
}

// ParseGrid reads metadata from a grid file.
func (c *Service) ParseGrid(path string) (*structs.GridMetadata, error) {
	meta, err := c.insp.ParseFile(path)
	metrics.IncreaseGridParsed(err == nil)
	return meta, err
}

// ExtractSlice reads a slice from the file of a completed job.
func (c *Service) ExtractSlice(ctx context.Context, req *structs.ExtractRequest) (*structs.SliceResult, error) {
	if req == nil || req.JobID == "" {
		return nil, errors.Missing("jobId")
	}
	if req.Variable == "" {
		return nil, errors.Missing("variable")
	}
	job, err := c.reg.Get(ctx, req.JobID)
	if err != nil {
		return nil, err
	}
	if job.Status != structs.COMPLETED || job.Result == nil {
		return nil, fmt.Errorf("%w: job %s is %s, not %s", errors.ErrInvalidState, job.ID, job.Status, structs.COMPLETED)
	}
	return c.ExtractFile(job.Result.FilePath, req)
}

// ExtractFile reads a slice from a grid file on disk.
func (c *Service) ExtractFile(path string, req *structs.ExtractRequest) (*structs.SliceResult, error) {
	if req == nil || req.Variable == "" {
		return nil, errors.Missing("variable")
	}
	return c.insp.ExtractFile(path, req.Variable, req.TimeStep, req.Level, req.Full)
}
