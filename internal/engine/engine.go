// Copyright 2025 Video Insight Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package engine implements the bounded-concurrency task engine that runs
// analysis jobs. A cooperative supervisor polls a FIFO queue on a fixed
// interval and holds at most N jobs running at once; each accepted job gets
// its own goroutine for the blocking pipeline work, so progress and status
// queries are never serviced from an execution context that also decodes
// frames.
//
// Progress flows through a typed event channel: pipeline commands report
// checkpoints into the chain context, the per-job reporter turns them into
// Events, and a single drain loop applies them to the status store. The
// drain enforces monotonicity (a stale lower percentage never overwrites a
// higher one) and rate-limits store writes so a chatty stage cannot hammer
// the backend.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/videolearn/video-insight/internal/cloud"
	"github.com/videolearn/video-insight/internal/core/commands"
	"github.com/videolearn/video-insight/internal/core/cor"
	"github.com/videolearn/video-insight/internal/core/model"
	"github.com/videolearn/video-insight/internal/storage"
)

// Status write throttling. Progress events are advisory; at most one store
// write per interval is plenty, and the burst lets a freshly started job
// publish its first few checkpoints immediately.
const (
	statusWriteInterval = 100 * time.Millisecond
	statusWriteBurst    = 5
	eventBufferSize     = 128
)

// Event is one progress checkpoint emitted by a running job.
type Event struct {
	JobID    string
	Progress int
	Message  string
}

// Engine is the job supervisor. Create with NewEngine, then Start; Submit is
// safe from any goroutine.
type Engine struct {
	pipeline  cor.Command
	status    storage.StatusStore
	capacity  int
	pollEvery time.Duration

	mu       sync.Mutex
	queue    []*model.Job
	running  map[string]struct{}
	progress map[string]int // Highest progress written per running job.

	events  chan Event
	limiter *rate.Limiter

	baseCtx    context.Context
	cancel     context.CancelFunc
	workers    sync.WaitGroup
	supervised chan struct{}
	drained    chan struct{}
	started    bool
}

// NewEngine builds an engine around the given pipeline command. The pipeline
// is executed once per job over a fresh chain context.
func NewEngine(config *cloud.Config, pipeline cor.Command, status storage.StatusStore) *Engine {
	capacity := config.Engine.MaxConcurrentJobs
	if capacity < 1 {
		capacity = cloud.DefaultMaxConcurrentJobs
	}
	poll := time.Duration(config.Engine.PollIntervalMillis) * time.Millisecond
	if poll <= 0 {
		poll = time.Duration(cloud.DefaultPollIntervalMillis) * time.Millisecond
	}
	return &Engine{
		pipeline:   pipeline,
		status:     status,
		capacity:   capacity,
		pollEvery:  poll,
		running:    make(map[string]struct{}),
		progress:   make(map[string]int),
		events:     make(chan Event, eventBufferSize),
		limiter:    rate.NewLimiter(rate.Every(statusWriteInterval), statusWriteBurst),
		supervised: make(chan struct{}),
		drained:    make(chan struct{}),
	}
}

// Start launches the supervisor and the event drain. It is not re-entrant.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	e.baseCtx, e.cancel = context.WithCancel(ctx)
	go e.supervise()
	go e.drain()
}

// Stop ends the supervisor loop, waits for running jobs to finish, and
// closes the event stream. Queued jobs that never started stay pending in
// the status store.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return
	}
	cancel := e.cancel
	e.mu.Unlock()

	cancel()
	<-e.supervised
	e.workers.Wait()
	close(e.events)
	<-e.drained
}

// Submit registers a job as pending and appends it to the FIFO queue.
func (e *Engine) Submit(ctx context.Context, job *model.Job) error {
	if job.ID == "" {
		return fmt.Errorf("job id is required")
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	if err := e.status.CreateJob(ctx, *job); err != nil {
		return fmt.Errorf("failed to register job %s: %w", job.ID, err)
	}

	e.mu.Lock()
	e.queue = append(e.queue, job)
	queued := len(e.queue)
	e.mu.Unlock()

	slog.Info("job submitted", "job", job.ID, "queued", queued)
	return nil
}

// Stats returns the point-in-time queue occupancy.
func (e *Engine) Stats() model.QueueStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]string, 0, len(e.running))
	for id := range e.running {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return model.QueueStats{
		Running:       len(e.running),
		Queued:        len(e.queue),
		Capacity:      e.capacity,
		RunningJobIDs: ids,
	}
}

// supervise is the cooperative poll loop: on every tick it starts queued
// jobs while free slots remain. It never preempts anything.
func (e *Engine) supervise() {
	defer close(e.supervised)
	ticker := time.NewTicker(e.pollEvery)
	defer ticker.Stop()
	for {
		select {
		case <-e.baseCtx.Done():
			return
		case <-ticker.C:
			e.dispatch()
		}
	}
}

// dispatch moves jobs from the queue head into free slots.
func (e *Engine) dispatch() {
	for {
		e.mu.Lock()
		if len(e.queue) == 0 || len(e.running) >= e.capacity {
			e.mu.Unlock()
			return
		}
		job := e.queue[0]
		e.queue = e.queue[1:]
		e.running[job.ID] = struct{}{}
		e.progress[job.ID] = 0
		e.mu.Unlock()

		e.workers.Add(1)
		go e.run(job)
	}
}

// run executes one job's pipeline on its own goroutine. The slot release and
// the terminal status transition live in deferred cleanup, so neither a
// pipeline error nor a panic can leak the slot or leave the job running
// forever.
func (e *Engine) run(job *model.Job) {
	defer e.workers.Done()
	defer func() {
		e.mu.Lock()
		delete(e.running, job.ID)
		delete(e.progress, job.ID)
		e.mu.Unlock()
	}()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("pipeline panicked", "job", job.ID, "panic", r)
			e.finish(job.ID, model.StatusUpdate{
				Status:       model.JobStatusFailed,
				ErrorMessage: fmt.Sprintf("%v", r),
			})
		}
	}()

	started := time.Now()
	e.writeStatus(job.ID, model.StatusUpdate{
		Status:    model.JobStatusRunning,
		Message:   "analysis started",
		UpdatedAt: started,
		StartedAt: &started,
	})

	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.SetContext(e.baseCtx)
	chainCtx.SetReporter(&reporter{jobID: job.ID, events: e.events})
	chainCtx.Add(cor.CtxIn, job)

	e.pipeline.Execute(chainCtx)

	if chainCtx.HasErrors() {
		e.finish(job.ID, model.StatusUpdate{
			Status:       model.JobStatusFailed,
			ErrorMessage: joinErrors(chainCtx.GetErrors()),
		})
		return
	}

	refs := commands.GetArtifactRefs(chainCtx)
	e.finish(job.ID, model.StatusUpdate{
		Status:      model.JobStatusCompleted,
		Progress:    100,
		Message:     "analysis complete",
		ResultsURL:  refs.Results,
		SubtitleURL: refs.Subtitle,
		ScriptURL:   refs.Script,
		ReportURL:   refs.Report,
	})
}

// finish publishes a terminal transition. Terminal writes bypass the rate
// limiter; they happen once per job and must never be dropped.
func (e *Engine) finish(jobID string, update model.StatusUpdate) {
	now := time.Now()
	update.UpdatedAt = now
	update.CompletedAt = &now
	e.mu.Lock()
	if update.Status == model.JobStatusFailed {
		update.Progress = e.progress[jobID]
	}
	// Deactivate the progress entry first so buffered events for this job
	// are dropped instead of racing the terminal write.
	delete(e.progress, jobID)
	e.mu.Unlock()
	e.writeStatus(jobID, update)
	slog.Info("job finished", "job", jobID, "status", update.Status, "error", update.ErrorMessage)
}

// drain applies progress events to the status store until the event channel
// closes. Monotonicity is enforced here, not in the pipeline: a slow stage
// whose checkpoint arrives late simply loses.
func (e *Engine) drain() {
	defer close(e.drained)
	for event := range e.events {
		e.applyEvent(event)
	}
}

// applyEvent writes one progress event, subject to the monotonic guard and
// the store write throttle.
func (e *Engine) applyEvent(event Event) {
	e.mu.Lock()
	last, active := e.progress[event.JobID]
	if !active || event.Progress < last {
		e.mu.Unlock()
		return
	}
	e.progress[event.JobID] = event.Progress
	e.mu.Unlock()

	if !e.limiter.Allow() {
		return
	}
	e.writeStatus(event.JobID, model.StatusUpdate{
		Status:    model.JobStatusRunning,
		Progress:  event.Progress,
		Message:   event.Message,
		UpdatedAt: time.Now(),
	})
}

func (e *Engine) writeStatus(jobID string, update model.StatusUpdate) {
	if update.UpdatedAt.IsZero() {
		update.UpdatedAt = time.Now()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.status.UpdateStatus(ctx, jobID, update); err != nil {
		slog.Warn("status write failed", "job", jobID, "error", err)
	}
}

// joinErrors flattens the chain's error map into one human-readable message,
// keyed lines sorted for stable output.
func joinErrors(errs map[string]error) string {
	lines := make([]string, 0, len(errs))
	for name, err := range errs {
		lines = append(lines, fmt.Sprintf("%s: %v", name, err))
	}
	sort.Strings(lines)
	return strings.Join(lines, "; ")
}

// reporter adapts the chain's progress callback onto the engine's event
// channel. The send never blocks: when the buffer is full the checkpoint is
// dropped, which is safe because progress is advisory and monotonic.
type reporter struct {
	jobID  string
	events chan<- Event
}

func (r *reporter) Report(progress int, message string) {
	select {
	case r.events <- Event{JobID: r.jobID, Progress: progress, Message: message}:
	default:
	}
}
