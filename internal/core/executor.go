package core

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/voidshard/era5d/pkg/archive"
	"github.com/voidshard/era5d/pkg/errors"
	"github.com/voidshard/era5d/pkg/metrics"
	"github.com/voidshard/era5d/pkg/registry"
	"github.com/voidshard/era5d/pkg/structs"
)

const (
	progressDispatched = 10
	progressDownloaded = 90

	downloadFormatUnarchived = "unarchived"
	downloadURLPrefix        = "/api/download/"
)

var timeNow = time.Now

// Executor performs the retrieval for a single job & records its progress.
// Run is a queue.Handler.
type Executor struct {
	reg registry.Registry
	cds archive.Client
	dir string
}

func NewExecutor(reg registry.Registry, cds archive.Client, downloadDir string) *Executor {
	return &Executor{reg: reg, cds: cds, dir: downloadDir}
}

// TargetPath is where the file for the job is written.
func (e *Executor) TargetPath(job *structs.Job) string {
	return filepath.Join(e.dir, fmt.Sprintf("era5_%s.%s", job.ID, job.Request.Format))
}

// Run processes one job. Failures are written to the job *and* returned, so the
// queue can record the task as failed too.
func (e *Executor) Run(ctx context.Context, jobID string) error {
	log := zap.S().Named("executor").With("job", jobID)

	job, err := e.reg.Update(ctx, jobID, structs.PatchStart())
	if err != nil {
		// we can't mark a job we can't load or that's already finished
		log.Warnw("unable to start job", "err", err)
		return err
	}
	log.Debugw("job running")

	start := timeNow()
	result, err := e.retrieve(ctx, log, job)
	elapsed := timeNow().Sub(start).Seconds()
	if err != nil {
		metrics.ObserveRetrieval(string(structs.FAILED), elapsed)
		metrics.IncreaseJobsFinished(string(structs.FAILED))
		log.Errorw("job failed", "err", err)

		// a cancelled ctx must not stop us recording the failure
		_, perr := e.reg.Update(context.WithoutCancel(ctx), jobID, structs.PatchFail(timeNow(), err.Error()))
		if perr != nil {
			log.Errorw("unable to record job failure", "err", perr)
			return stderrors.Join(err, perr)
		}
		return err
	}

	_, err = e.reg.Update(ctx, jobID, structs.PatchComplete(timeNow(), result))
	if err != nil {
		log.Errorw("unable to record job completion", "err", err)
		return err
	}

	metrics.ObserveRetrieval(string(structs.COMPLETED), elapsed)
	metrics.IncreaseJobsFinished(string(structs.COMPLETED))
	log.Infow("job completed", "file", result.FilePath, "size", result.FileSize)
	return nil
}

func (e *Executor) retrieve(ctx context.Context, log *zap.SugaredLogger, job *structs.Job) (*structs.JobResult, error) {
	if job.Request == nil {
		return nil, fmt.Errorf("%w: job %s has no request", errors.ErrValidation, job.ID)
	}
	query := BuildArchiveRequest(job.Request)

	_, err := e.reg.Update(ctx, job.ID, structs.PatchProgress(progressDispatched))
	if err != nil {
		return nil, err
	}

	target := e.TargetPath(job)
	err = os.MkdirAll(e.dir, 0755)
	if err != nil {
		return nil, err
	}

	log.Debugw("retrieving", "dataset", job.Request.Dataset, "target", target)
	err = e.cds.Retrieve(ctx, job.Request.Dataset, query, target)
	if err != nil {
		return nil, err
	}

	_, err = e.reg.Update(ctx, job.ID, structs.PatchProgress(progressDownloaded))
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}

	return &structs.JobResult{
		FilePath:    target,
		FileSize:    fmt.Sprintf("%.1f MB", float64(info.Size())/(1024*1024)),
		DownloadURL: downloadURLPrefix + job.ID,
	}, nil
}

// BuildArchiveRequest maps a user request to the archive's query, 1:1.
func BuildArchiveRequest(req *structs.RetrievalRequest) *structs.ArchiveRequest {
	out := &structs.ArchiveRequest{
		ProductType:    []string{req.ProductType},
		Variable:       append([]string{}, req.Variables...),
		Date:           fmt.Sprintf("%s/%s", req.DateStart, req.DateEnd),
		Time:           req.Times(),
		Format:         req.Format,
		DownloadFormat: downloadFormatUnarchived,
	}
	if req.Area != nil {
		out.Area = []float64{req.Area.North, req.Area.West, req.Area.South, req.Area.East}
	}
	return out
}
