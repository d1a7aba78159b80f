package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tubefetch/internal/core/domain"
)

// JobKind tells probe jobs from download jobs.
type JobKind string

const (
	JobProbe    JobKind = "probe"
	JobDownload JobKind = "download"
)

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	StatusRunning   JobStatus = "running"
	StatusDone      JobStatus = "done"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// Job is a snapshot of one background probe or download.
type Job struct {
	ID        string                 `json:"id"`
	Kind      JobKind                `json:"kind"`
	Status    JobStatus              `json:"status"`
	URL       string                 `json:"url"`
	Progress  domain.Progress        `json:"progress"`
	Error     string                 `json:"error,omitempty"`
	Probe     *ProbeSummary          `json:"probe,omitempty"`
	Download  *domain.DownloadResult `json:"download,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

type jobEntry struct {
	job    Job
	ctx    context.Context
	cancel context.CancelFunc
}

// Jobs runs probes and downloads on their own goroutines and keeps their
// state for polling.
type Jobs struct {
	orch   *Orchestrator
	logger zerolog.Logger
	base   context.Context

	mu   sync.RWMutex
	jobs map[string]*jobEntry
	wg   sync.WaitGroup
	now  func() time.Time
}

// NewJobs creates a job runner. Cancelling ctx cancels every running job.
func NewJobs(ctx context.Context, orch *Orchestrator, logger zerolog.Logger) *Jobs {
	return &Jobs{
		orch:   orch,
		logger: logger,
		base:   ctx,
		jobs:   make(map[string]*jobEntry),
		now:    time.Now,
	}
}

// StartProbe begins probing url and returns the job id.
func (j *Jobs) StartProbe(url string) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", fmt.Errorf("%w: empty url", ErrInvalidInput)
	}

	id, ctx := j.add(JobProbe, url)
	j.run(id, func() error {
		sum, err := j.orch.Probe(ctx, url)
		if err != nil {
			return err
		}
		j.update(id, func(job *Job) {
			job.Probe = withoutRaw(sum)
			job.Progress = domain.Progress{Percent: 100, Status: "finished", Message: "Ready: " + sum.Result.Strategy}
		})
		return nil
	})
	return id, nil
}

// StartDownload begins downloading the item resolved by the probe job probeID.
// req.URL is taken from the probe job.
func (j *Jobs) StartDownload(probeID string, req domain.DownloadRequest) (string, error) {
	kind, err := ParseKind(req.Kind)
	if err != nil {
		return "", err
	}
	req.Kind = kind

	probe, err := j.Get(probeID)
	if err != nil {
		return "", err
	}
	if probe.Kind != JobProbe {
		return "", fmt.Errorf("%w: job %s is not a probe", ErrInvalidInput, probeID)
	}
	if probe.Status != StatusDone || probe.Probe == nil {
		return "", ErrJobNotReady
	}
	req.URL = probe.URL

	id, ctx := j.add(JobDownload, probe.URL)
	j.run(id, func() error {
		res, err := j.orch.Download(ctx, probe.Probe.Result, req, func(p domain.Progress) {
			j.update(id, func(job *Job) { job.Progress = p })
		})
		if err != nil {
			return err
		}
		j.update(id, func(job *Job) { job.Download = res })
		return nil
	})
	return id, nil
}

// Get returns a snapshot of job id.
func (j *Jobs) Get(id string) (Job, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	e, ok := j.jobs[id]
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return e.job, nil
}

// Cancel stops a running job. Finished jobs are left as they are.
func (j *Jobs) Cancel(id string) error {
	j.mu.RLock()
	e, ok := j.jobs[id]
	j.mu.RUnlock()
	if !ok {
		return ErrJobNotFound
	}
	e.cancel()
	return nil
}

// Prune forgets finished jobs last updated more than olderThan ago and
// reports how many were removed. Running jobs are kept.
func (j *Jobs) Prune(olderThan time.Duration) int {
	cutoff := j.now().Add(-olderThan)

	j.mu.Lock()
	defer j.mu.Unlock()
	removed := 0
	for id, e := range j.jobs {
		if e.job.Status == StatusRunning || e.job.UpdatedAt.After(cutoff) {
			continue
		}
		delete(j.jobs, id)
		removed++
	}
	return removed
}

// Wait blocks until every started job has finished.
func (j *Jobs) Wait() {
	j.wg.Wait()
}

func (j *Jobs) add(kind JobKind, url string) (string, context.Context) {
	ctx, cancel := context.WithCancel(j.base)
	now := j.now()
	id := uuid.New().String()

	j.mu.Lock()
	j.jobs[id] = &jobEntry{
		job: Job{
			ID:        id,
			Kind:      kind,
			Status:    StatusRunning,
			URL:       url,
			CreatedAt: now,
			UpdatedAt: now,
		},
		ctx:    ctx,
		cancel: cancel,
	}
	j.mu.Unlock()
	return id, ctx
}

func (j *Jobs) run(id string, fn func() error) {
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		err := fn()

		j.mu.Lock()
		e := j.jobs[id]
		defer e.cancel()
		switch {
		case err == nil:
			e.job.Status = StatusDone
		case e.ctx.Err() != nil:
			e.job.Status = StatusCancelled
			e.job.Error = err.Error()
		default:
			e.job.Status = StatusFailed
			e.job.Error = err.Error()
		}
		e.job.UpdatedAt = j.now()
		snapshot := e.job
		j.mu.Unlock()

		log := j.logger.With().Str("job", id).Str("kind", string(snapshot.Kind)).Logger()
		if err != nil {
			log.Warn().Err(err).Str("status", string(snapshot.Status)).Msg("job ended")
			return
		}
		log.Info().Msg("job done")
	}()
}

func (j *Jobs) update(id string, fn func(*Job)) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if e, ok := j.jobs[id]; ok {
		fn(&e.job)
		e.job.UpdatedAt = j.now()
	}
}

// withoutRaw copies sum without the backend's raw metadata document, which
// nothing reads after the probe and which is large.
func withoutRaw(sum *ProbeSummary) *ProbeSummary {
	md := *sum.Result.Metadata
	md.Raw = nil
	res := *sum.Result
	res.Metadata = &md
	out := *sum
	out.Result = &res
	return &out
}
