package auditlog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/AtirathTechnologies/warehouse-hub/internal"
	"github.com/google/uuid"
)

type appendJob struct {
	entry Entry
}

type Worker struct {
	ID         int
	WorkerPool chan chan appendJob
	JobChannel chan appendJob
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan appendJob, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan appendJob),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(appendJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.WorkerPool <- w.JobChannel

			select {
			case job := <-w.JobChannel:
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("audit worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

type WriterConfig struct {
	MaxWorkers   int
	QueueSize    int
	WriteTimeout time.Duration
}

// Writer is the asynchronous Sink used by request handlers. Entries are
// queued and written by a small worker pool; a full queue rejects the entry
// instead of blocking the caller.
type Writer struct {
	repo   RepositoryAPI
	logger *slog.Logger

	writeTimeout time.Duration
	maxWorkers   int
	jobQueue     chan appendJob
	workerPool   chan chan appendJob

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once

	mu     sync.RWMutex
	closed bool

	now func() time.Time
}

func NewWriter(repo RepositoryAPI, config WriterConfig, logger *slog.Logger) *Writer {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	queueSize := config.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}

	w := &Writer{
		repo:         repo,
		logger:       logger,
		writeTimeout: config.WriteTimeout,
		maxWorkers:   maxWorkers,
		jobQueue:     make(chan appendJob, queueSize),
		workerPool:   make(chan chan appendJob, maxWorkers),
		ctx:          ctx,
		cancel:       cancel,
		now:          time.Now,
	}
	w.start()
	return w
}

func (w *Writer) start() {
	w.once.Do(func() {
		for i := 0; i < w.maxWorkers; i++ {
			worker := NewWorker(i, w.workerPool, w.logger)
			worker.Start(w.ctx, &w.wg, w.process)
		}

		w.wg.Add(1)
		go w.dispatch()

		w.logger.Info("audit writer started",
			"max_workers", w.maxWorkers,
			"queue_size", cap(w.jobQueue))
	})
}

func (w *Writer) dispatch() {
	defer w.wg.Done()

	for {
		select {
		case job := <-w.jobQueue:
			select {
			case jobChannel := <-w.workerPool:
				select {
				case jobChannel <- job:
				case <-w.ctx.Done():
					w.process(job)
					return
				}
			case <-w.ctx.Done():
				w.process(job)
				return
			}
		case <-w.ctx.Done():
			return
		}
	}
}

// Append stamps the entry and queues it. It never waits on the database.
func (w *Writer) Append(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = w.now().UTC()
	}
	if entry.User == "" {
		entry.User = "Unknown"
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return internal.NewWriteError("audit writer is shut down", nil)
	}

	select {
	case w.jobQueue <- appendJob{entry: entry}:
		return nil
	default:
		w.logger.Warn("audit queue full, dropping entry",
			"module", entry.Module,
			"action", entry.Action,
			"queue_capacity", cap(w.jobQueue))
		return internal.NewWriteError("audit queue is full", nil)
	}
}

func (w *Writer) process(job appendJob) {
	ctx, cancel := internal.WithTimeout(context.Background(), w.writeTimeout)
	defer cancel()

	if err := w.repo.Create(ctx, ToDataModel(job.entry)); err != nil {
		w.logger.Error("failed to write audit entry",
			"error", err,
			"module", job.entry.Module,
			"action", job.entry.Action,
			"user", job.entry.User)
		return
	}
	w.logger.Debug("audit entry written", "id", job.entry.ID, "module", job.entry.Module)
}

// Shutdown stops the workers and writes whatever is still queued.
func (w *Writer) Shutdown() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()

	w.logger.Info("shutting down audit writer")
	w.cancel()
	w.wg.Wait()

	drained := 0
	for {
		select {
		case job := <-w.jobQueue:
			w.process(job)
			drained++
		default:
			w.logger.Info("audit writer shutdown complete", "drained", drained)
			return
		}
	}
}
