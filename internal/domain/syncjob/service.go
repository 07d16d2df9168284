// Package syncjob tracks knowledge base ingestion jobs. Jobs are rows in
// the local sqlite database; only one job may be in progress at a time.
// Lifecycle changes are published on the event bus as sync.started and
// sync.completed.
package syncjob

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/codevakure/bedrock-api-code/internal/infra/eventbus"
	"github.com/codevakure/bedrock-api-code/pkg/uuid"
)

// Job statuses, matching the upstream ingestion job vocabulary.
const (
	StatusInProgress = "IN_PROGRESS"
	StatusComplete   = "COMPLETE"
	StatusFailed     = "FAILED"
)

// Event bus topics.
const (
	TopicSyncStarted   = "sync.started"
	TopicSyncCompleted = "sync.completed"
)

// ErrSyncInProgress is returned by StartSync when a job is already
// running. The returned Job identifies the running job.
var ErrSyncInProgress = errors.New("sync already in progress")

// Runner performs the actual ingestion work for one job. It is invoked
// on a background goroutine; a nil error marks the job COMPLETE.
type Runner func(ctx context.Context) error

// Job is one tracked ingestion job.
type Job struct {
	ID           string     `json:"job_id"`
	Status       string     `json:"status"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// StatusReport is the client-facing view of the current sync state.
type StatusReport struct {
	IsSyncing        bool    `json:"is_syncing"`
	Status           string  `json:"status"`
	LastSyncStart    *string `json:"last_sync_start"`
	LastSyncComplete *string `json:"last_sync_complete"`
	ErrorMessage     *string `json:"error_message"`
}

// Service is the sync job tracker.
type Service struct {
	db     *sql.DB
	bus    eventbus.EventBus
	runner Runner
}

func NewService(db *sql.DB, bus eventbus.EventBus, runner Runner) *Service {
	return &Service{db: db, bus: bus, runner: runner}
}

// StartSync begins a new ingestion job unless one is already running, in
// which case the running job is returned with ErrSyncInProgress. The
// runner executes on a background goroutine; StartSync returns as soon
// as the job row is recorded.
func (s *Service) StartSync(ctx context.Context) (Job, error) {
	if running, ok, err := s.inProgress(ctx); err != nil {
		return Job{}, fmt.Errorf("syncjob: check in-progress: %w", err)
	} else if ok {
		return running, ErrSyncInProgress
	}

	job := Job{
		ID:        uuid.NewV7().String(),
		Status:    StatusInProgress,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sync_jobs (id, status, started_at) VALUES (?, ?, ?)",
		job.ID, job.Status, job.StartedAt.Format(time.RFC3339),
	)
	if err != nil {
		// A unique index on IN_PROGRESS rows rejects the insert when a
		// concurrent starter won the race between our check and now.
		// Re-read to tell that apart from a genuine storage failure.
		if running, ok, checkErr := s.inProgress(ctx); checkErr == nil && ok {
			return running, ErrSyncInProgress
		}
		return Job{}, fmt.Errorf("syncjob: insert job: %w", err)
	}

	s.bus.Publish(TopicSyncStarted, job)
	go s.execute(job)
	return job, nil
}

// execute runs the ingestion work and records the outcome. Detached from
// the request context: an aborted HTTP request must not cancel the sync.
func (s *Service) execute(job Job) {
	ctx := context.Background()

	status := StatusComplete
	errMsg := ""
	if s.runner != nil {
		if err := s.runner(ctx); err != nil {
			status = StatusFailed
			errMsg = err.Error()
		}
	}

	completed := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx,
		"UPDATE sync_jobs SET status = ?, completed_at = ?, error_message = ? WHERE id = ?",
		status, completed.Format(time.RFC3339), nullable(errMsg), job.ID,
	); err != nil {
		log.Printf("syncjob: record outcome for %s: %v", job.ID, err)
	}

	job.Status = status
	job.CompletedAt = &completed
	job.ErrorMessage = errMsg
	s.bus.Publish(TopicSyncCompleted, job)
}

// Status reports the current sync state: the running job when one
// exists, otherwise the most recently started job.
func (s *Service) Status(ctx context.Context) (StatusReport, error) {
	if running, ok, err := s.inProgress(ctx); err != nil {
		return StatusReport{}, fmt.Errorf("syncjob: check in-progress: %w", err)
	} else if ok {
		start := running.StartedAt.Format(time.RFC3339)
		return StatusReport{
			IsSyncing:     true,
			Status:        "In Progress",
			LastSyncStart: &start,
		}, nil
	}

	jobs, err := s.ListJobs(ctx, 1)
	if err != nil {
		return StatusReport{}, err
	}
	if len(jobs) == 0 {
		return StatusReport{Status: "No sync jobs found"}, nil
	}

	latest := jobs[0]
	report := StatusReport{Status: latest.Status}
	if latest.Status == StatusComplete {
		report.Status = "Completed"
	} else {
		msg := fmt.Sprintf("Sync failed with status: %s", latest.Status)
		report.ErrorMessage = &msg
	}
	start := latest.StartedAt.Format(time.RFC3339)
	report.LastSyncStart = &start
	if latest.CompletedAt != nil {
		complete := latest.CompletedAt.Format(time.RFC3339)
		report.LastSyncComplete = &complete
	}
	return report, nil
}

// ListJobs returns up to limit jobs, most recently started first.
func (s *Service) ListJobs(ctx context.Context, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, status, started_at, completed_at, error_message
		FROM sync_jobs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("syncjob: list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		job, scanErr := scanJob(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("syncjob: scan job: %w", scanErr)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// inProgress returns the currently running job, if any.
func (s *Service) inProgress(ctx context.Context) (Job, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, status, started_at, completed_at, error_message
		FROM sync_jobs WHERE status = ? ORDER BY started_at DESC LIMIT 1`,
		StatusInProgress)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, false, nil
	}
	if err != nil {
		return Job{}, false, err
	}
	return job, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (Job, error) {
	var (
		job       Job
		startedAt string
		completed sql.NullString
		errMsg    sql.NullString
	)
	if err := row.Scan(&job.ID, &job.Status, &startedAt, &completed, &errMsg); err != nil {
		return Job{}, err
	}

	started, err := time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return Job{}, fmt.Errorf("parse started_at %q: %w", startedAt, err)
	}
	job.StartedAt = started

	if completed.Valid {
		t, parseErr := time.Parse(time.RFC3339, completed.String)
		if parseErr != nil {
			return Job{}, fmt.Errorf("parse completed_at %q: %w", completed.String, parseErr)
		}
		job.CompletedAt = &t
	}
	job.ErrorMessage = errMsg.String
	return job, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
