package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/go-pkgz/pool"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"nutri_server/core/service/recommendation"
	"nutri_server/pkg/logger"
)

// JobType identifies a background job kind.
type JobType string

const (
	// JobGenerateForProfile regenerates recommendations after a profile save.
	JobGenerateForProfile JobType = "generate_for_profile"
	// JobGenerateForSession generates recommendations for a new session.
	JobGenerateForSession JobType = "generate_for_session"
	// JobRegenerateEmbeddings re-embeds the whole product catalog.
	JobRegenerateEmbeddings JobType = "regenerate_embeddings"
)

// jobTimeout bounds one background generation pass, LLM call included.
const jobTimeout = 2 * time.Minute

// Job is one queued unit of background work.
type Job struct {
	ID        string
	Type      JobType
	UserID    int64
	SessionID *int64
}

// Generator is the subset of the recommendation service the queue drives.
type Generator interface {
	Generate(ctx context.Context, userID int64, sessionID *int64) (*recommendation.GenerationResult, error)
	RegenerateEmbeddings(ctx context.Context) (updated, failed int, err error)
}

// Queue runs detached generation jobs on a bounded worker group. Job
// failures are logged and dropped; callers that enqueued them have already
// been answered.
type Queue struct {
	generator Generator
	workers   int
	chanSize  int
	log       zerolog.Logger

	group  *pool.WorkerGroup[*Job]
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	started bool
}

func NewQueue(generator Generator, workers, chanSize int) *Queue {
	if workers <= 0 {
		workers = 4
	}
	if chanSize <= 0 {
		chanSize = 256
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		generator: generator,
		workers:   workers,
		chanSize:  chanSize,
		log:       logger.Component("job_queue"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

type jobWorker struct {
	q *Queue
}

// Do implements pool.Worker.
func (w *jobWorker) Do(ctx context.Context, job *Job) error {
	return w.q.process(ctx, job)
}

// Start launches the worker group. Safe to call once.
func (q *Queue) Start() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return nil
	}

	q.group = pool.New[*Job](q.workers, &jobWorker{q: q}).
		WithWorkerChanSize(q.chanSize).
		WithContinueOnError()
	if err := q.group.Go(q.ctx); err != nil {
		return err
	}
	q.started = true

	q.log.Info().Int("workers", q.workers).Int("chan_size", q.chanSize).Msg("job queue started")
	return nil
}

// Stop drains in-flight jobs and shuts the group down.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.started = false
	group := q.group
	q.mu.Unlock()

	closeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := group.Close(closeCtx); err != nil {
		q.log.Warn().Err(err).Msg("error closing job queue")
	}
	q.cancel()
	q.log.Info().Msg("job queue stopped")
}

// EnqueueProfileGeneration schedules a generation pass after a profile save.
func (q *Queue) EnqueueProfileGeneration(userID int64) {
	q.submit(&Job{ID: uuid.NewString(), Type: JobGenerateForProfile, UserID: userID})
}

// EnqueueSessionGeneration schedules a generation pass for a new session.
func (q *Queue) EnqueueSessionGeneration(userID, sessionID int64) {
	sid := sessionID
	q.submit(&Job{ID: uuid.NewString(), Type: JobGenerateForSession, UserID: userID, SessionID: &sid})
}

// EnqueueEmbeddingRegeneration schedules a full catalog re-embedding pass.
func (q *Queue) EnqueueEmbeddingRegeneration() {
	q.submit(&Job{ID: uuid.NewString(), Type: JobRegenerateEmbeddings})
}

func (q *Queue) submit(job *Job) {
	q.mu.Lock()
	started := q.started
	group := q.group
	q.mu.Unlock()

	if !started || group == nil {
		q.log.Warn().Str("job_type", string(job.Type)).Msg("job queue not running, job dropped")
		return
	}
	group.Submit(job)
}

func (q *Queue) process(ctx context.Context, job *Job) error {
	start := time.Now()
	jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	var err error
	switch job.Type {
	case JobGenerateForProfile, JobGenerateForSession:
		_, err = q.generator.Generate(jobCtx, job.UserID, job.SessionID)
	case JobRegenerateEmbeddings:
		_, _, err = q.generator.RegenerateEmbeddings(jobCtx)
	default:
		q.log.Error().Str("job_id", job.ID).Str("job_type", string(job.Type)).Msg("unknown job type")
		return nil
	}

	evt := q.log.Info()
	if err != nil {
		evt = q.log.Error().Err(err)
	}
	evt.Str("job_id", job.ID).
		Str("job_type", string(job.Type)).
		Int64("user_id", job.UserID).
		Dur("elapsed", time.Since(start)).
		Msg("background job finished")
	return err
}
