package structs

import (
	"fmt"
	"time"

	"github.com/voidshard/era5d/pkg/errors"
)

// Job is one tracked retrieval attempt.
type Job struct {
	ID       string            `json:"id"`
	Status   Status            `json:"status"`
	Progress int               `json:"progress"`
	Request  *RetrievalRequest `json:"request"`

	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	// Result is set iff Status is COMPLETED
	Result *JobResult `json:"result,omitempty"`

	// Error is set iff Status is FAILED
	Error string `json:"error,omitempty"`

	// QueueTaskID is the id handed back by the queue on Enqueue (if any)
	QueueTaskID string `json:"queueTaskId,omitempty"`
}

// JobResult describes the file a completed job produced.
type JobResult struct {
	FilePath    string `json:"filePath"`
	FileSize    string `json:"fileSize"`
	DownloadURL string `json:"downloadUrl"`
}

// Copy returns a deep copy, so callers can't reach into registry owned memory.
func (j *Job) Copy() *Job {
	if j == nil {
		return nil
	}
	c := *j
	c.Request = j.Request.Copy()
	if j.CompletedAt != nil {
		at := *j.CompletedAt
		c.CompletedAt = &at
	}
	if j.Result != nil {
		r := *j.Result
		c.Result = &r
	}
	return &c
}

// JobPatch is a partial update to a Job. Nil fields are left alone.
type JobPatch struct {
	Status      *Status
	Progress    *int
	CompletedAt *time.Time
	Result      *JobResult
	Error       *string
	QueueTaskID *string
}

// Apply validates the patch against j and, if it's a legal transition, writes it.
// On error j is untouched.
func (p *JobPatch) Apply(j *Job) error {
	if IsFinalStatus(j.Status) {
		return fmt.Errorf("%w: job %s is %s", errors.ErrInvalidState, j.ID, j.Status)
	}

	next := *j
	if p.Status != nil {
		if !CanTransition(j.Status, *p.Status) {
			return fmt.Errorf("%w: job %s cannot move from %s to %s", errors.ErrInvalidState, j.ID, j.Status, *p.Status)
		}
		next.Status = *p.Status
	}
	if p.Progress != nil {
		pr := *p.Progress
		if pr < 0 || pr > 100 {
			return fmt.Errorf("%w: progress %d out of range", errors.ErrInvalidState, pr)
		}
		if j.Status == RUNNING && next.Status == RUNNING && pr < j.Progress {
			return fmt.Errorf("%w: progress of job %s cannot go from %d to %d", errors.ErrInvalidState, j.ID, j.Progress, pr)
		}
		next.Progress = pr
	}
	if p.CompletedAt != nil {
		at := *p.CompletedAt
		next.CompletedAt = &at
	}
	if p.Result != nil {
		r := *p.Result
		next.Result = &r
	}
	if p.Error != nil {
		next.Error = *p.Error
	}
	if p.QueueTaskID != nil {
		next.QueueTaskID = *p.QueueTaskID
	}

	switch next.Status {
	case COMPLETED:
		if next.Progress != 100 || next.Result == nil || next.Error != "" {
			return fmt.Errorf("%w: completed job %s requires progress 100, a result and no error", errors.ErrInvalidState, j.ID)
		}
	case FAILED:
		if next.Error == "" || next.Result != nil {
			return fmt.Errorf("%w: failed job %s requires an error and no result", errors.ErrInvalidState, j.ID)
		}
	default:
		if next.Result != nil || next.Error != "" {
			return fmt.Errorf("%w: job %s is %s but has a result or error", errors.ErrInvalidState, j.ID, next.Status)
		}
	}

	*j = next
	return nil
}

// PatchStart moves a job to running with zero progress.
func PatchStart() *JobPatch {
	s := RUNNING
	p := 0
	return &JobPatch{Status: &s, Progress: &p}
}

// PatchProgress updates progress only.
func PatchProgress(progress int) *JobPatch {
	return &JobPatch{Progress: &progress}
}

// PatchComplete finishes a job successfully.
func PatchComplete(at time.Time, result *JobResult) *JobPatch {
	s := COMPLETED
	p := 100
	at = at.UTC()
	return &JobPatch{Status: &s, Progress: &p, CompletedAt: &at, Result: result}
}

// PatchFail finishes a job with an error message.
func PatchFail(at time.Time, msg string) *JobPatch {
	s := FAILED
	at = at.UTC()
	if msg == "" {
		msg = "unknown error"
	}
	return &JobPatch{Status: &s, CompletedAt: &at, Error: &msg}
}
