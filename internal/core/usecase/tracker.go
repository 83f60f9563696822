package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/kirillkom/paperless-concierge/internal/core/domain"
	"github.com/kirillkom/paperless-concierge/internal/core/ports"
	"github.com/kirillkom/paperless-concierge/internal/observability/metrics"
)

type TrackerConfig struct {
	PollInterval time.Duration
	Deadline     time.Duration
}

func (c TrackerConfig) normalize() TrackerConfig {
	out := c
	if out.PollInterval <= 0 {
		out.PollInterval = 3 * time.Second
	}
	if out.Deadline < out.PollInterval {
		out.Deadline = 2 * time.Minute
	}
	return out
}

// Tracker runs the status poll loop for submitted upload jobs. Each job
// gets its own goroutine; loops never share state and a failure in one
// cannot reach another.
type Tracker struct {
	cfg     TrackerConfig
	service string
	log     *slog.Logger
	metrics *metrics.BotMetrics
}

func NewTracker(cfg TrackerConfig, service string, log *slog.Logger, botMetrics *metrics.BotMetrics) *Tracker {
	return &Tracker{
		cfg:     cfg.normalize(),
		service: service,
		log:     log,
		metrics: botMetrics,
	}
}

// Start launches the poll loop for job and returns its event channel.
// The channel is closed after the single terminal event, or without one
// if ctx is cancelled first.
func (t *Tracker) Start(ctx context.Context, store ports.DocumentStore, job *domain.UploadJob) <-chan domain.ProgressEvent {
	events := make(chan domain.ProgressEvent, 8)
	if t.metrics != nil {
		t.metrics.StartTracking()
	}
	go t.run(ctx, store, job, events)
	return events
}

func (t *Tracker) run(ctx context.Context, store ports.DocumentStore, job *domain.UploadJob, events chan<- domain.ProgressEvent) {
	start := time.Now()
	defer close(events)
	defer func() {
		// A panic inside one poll loop must not take down the process or
		// any sibling loop. Report the job as failed and move on.
		if r := recover(); r != nil {
			t.log.Error("tracker_panic", "task_id", job.ID, "panic", r)
			if !job.Status.Terminal() {
				job.Status = domain.StatusFailed
				t.emit(ctx, events, job, true)
			}
		}
		if t.metrics != nil {
			t.metrics.FinishTracking(t.service, string(job.Status), time.Since(start), job.Attempts)
		}
	}()

	ticker := time.NewTicker(t.cfg.PollInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(t.cfg.Deadline)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			// Host is shutting down; abandon the loop without a terminal
			// report. Jobs are not persisted across restarts.
			t.log.Info("tracker_abandoned", "task_id", job.ID, "attempts", job.Attempts)
			return

		case <-deadline.C:
			job.Status = domain.StatusTimedOut
			t.log.Warn("tracker_deadline", "task_id", job.ID, "attempts", job.Attempts)
			t.emit(ctx, events, job, true)
			return

		case <-ticker.C:
			if t.poll(ctx, store, job, events) {
				return
			}
		}
	}
}

// poll performs one status lookup and reports whether the loop is done.
func (t *Tracker) poll(ctx context.Context, store ports.DocumentStore, job *domain.UploadJob, events chan<- domain.ProgressEvent) bool {
	job.Attempts++
	job.LastPolledAt = time.Now().UTC()

	status, err := store.TaskStatus(ctx, job.ID)
	if err != nil {
		// Transient poll failures are absorbed: they count against the
		// deadline but are never surfaced to the user individually.
		t.log.Warn("tracker_poll_failed", "task_id", job.ID, "attempt", job.Attempts, "error", err)
		return false
	}

	if status == domain.StatusUnknown || status == job.Status {
		return false
	}
	if !job.Status.CanTransition(status) {
		t.log.Warn("tracker_ignored_transition",
			"task_id", job.ID,
			"from", string(job.Status),
			"to", string(status),
		)
		return false
	}

	job.Status = status
	t.log.Info("tracker_event", "task_id", job.ID, "status", string(status), "attempt", job.Attempts)
	t.emit(ctx, events, job, status.Terminal())
	return status.Terminal()
}

func (t *Tracker) emit(ctx context.Context, events chan<- domain.ProgressEvent, job *domain.UploadJob, terminal bool) {
	event := domain.ProgressEvent{
		JobID:    job.ID,
		Filename: job.Filename,
		Status:   job.Status,
		Attempts: job.Attempts,
		Terminal: terminal,
	}
	select {
	case events <- event:
	case <-ctx.Done():
	}
}
