package services

import (
	"context"
	"sync"
	"time"

	"github.com/consultorio-web/consultorio-backend/config"
	"github.com/consultorio-web/consultorio-backend/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const jobTimeout = 30 * time.Second

// Job is a unit of background work, such as one notification email.
type Job struct {
	Name    string
	Execute func(ctx context.Context) error
}

type poolState int

const (
	poolIdle poolState = iota
	poolRunning
	poolStopped
)

// WorkerPool runs jobs off the request path. Submit never blocks: when the
// queue is full the job is dropped and counted.
type WorkerPool struct {
	jobs    chan Job
	workers int
	wg      sync.WaitGroup

	// base is cancelled once the pool has stopped, which aborts running jobs
	// when a shutdown deadline passes.
	base   context.Context
	cancel context.CancelFunc

	mu    sync.RWMutex
	state poolState

	log     *zap.SugaredLogger
	metrics *jobMetrics
}

type jobMetrics struct {
	queued   prometheus.Gauge
	outcomes *prometheus.CounterVec
	duration prometheus.Histogram
}

var (
	jobMetricsInstance *jobMetrics
	jobMetricsOnce     sync.Once
	jobMetricsRegistry = prometheus.DefaultRegisterer
)

func newJobMetrics() *jobMetrics {
	jobMetricsOnce.Do(func() {
		factory := promauto.With(jobMetricsRegistry)
		jobMetricsInstance = &jobMetrics{
			queued: factory.NewGauge(prometheus.GaugeOpts{
				Name: "background_jobs_queued",
				Help: "Jobs waiting for a worker",
			}),
			outcomes: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "background_jobs_total",
				Help: "Background jobs by outcome",
			}, []string{"outcome"}),
			duration: factory.NewHistogram(prometheus.HistogramOpts{
				Name:    "background_job_duration_seconds",
				Help:    "Time spent running one background job",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			}),
		}
	})
	return jobMetricsInstance
}

func resetWorkerPoolMetricsForTesting() {
	jobMetricsRegistry = prometheus.NewRegistry()
	jobMetricsInstance = nil
	jobMetricsOnce = sync.Once{}
}

func NewWorkerPool(cfg config.WorkerPoolConfig) *WorkerPool {
	base, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		jobs:    make(chan Job, cfg.QueueSize),
		workers: cfg.MaxWorkers,
		base:    base,
		cancel:  cancel,
		log:     logger.GetLogger().Named("jobs"),
		metrics: newJobMetrics(),
	}
}

// Start launches the workers once; later calls do nothing.
func (wp *WorkerPool) Start() {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if wp.state != poolIdle {
		return
	}
	wp.state = poolRunning

	wp.wg.Add(wp.workers)
	for i := 0; i < wp.workers; i++ {
		go func() {
			defer wp.wg.Done()
			for job := range wp.jobs {
				wp.metrics.queued.Dec()
				wp.run(job)
			}
		}()
	}
	wp.log.Infow("Background jobs started", "workers", wp.workers, "queueSize", cap(wp.jobs))
}

func (wp *WorkerPool) run(job Job) {
	ctx, cancel := context.WithTimeout(wp.base, jobTimeout)
	defer cancel()

	start := time.Now()
	err := job.Execute(ctx)
	elapsed := time.Since(start)
	wp.metrics.duration.Observe(elapsed.Seconds())

	if err != nil {
		wp.metrics.outcomes.WithLabelValues("failed").Inc()
		wp.log.Errorw("Background job failed", "job", job.Name, "duration", elapsed, "error", err)
		return
	}
	wp.metrics.outcomes.WithLabelValues("done").Inc()
}

// Submit reports whether job was queued.
func (wp *WorkerPool) Submit(job Job) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.state == poolStopped {
		wp.drop(job, "pool stopped")
		return false
	}
	select {
	case wp.jobs <- job:
		wp.metrics.queued.Inc()
		return true
	default:
		wp.drop(job, "queue full")
		return false
	}
}

func (wp *WorkerPool) drop(job Job, reason string) {
	wp.metrics.outcomes.WithLabelValues("dropped").Inc()
	wp.log.Warnw("Background job dropped", "job", job.Name, "reason", reason)
}

// Shutdown closes the queue and waits for queued jobs to finish. If ctx ends
// first, running jobs are cancelled and ctx.Err() is returned.
func (wp *WorkerPool) Shutdown(ctx context.Context) error {
	wp.mu.Lock()
	if wp.state == poolStopped {
		wp.mu.Unlock()
		return nil
	}
	wp.state = poolStopped
	close(wp.jobs)
	wp.mu.Unlock()
	defer wp.cancel()

	drained := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		wp.log.Info("Background jobs drained")
		return nil
	case <-ctx.Done():
		wp.log.Warnw("Background jobs still running at shutdown deadline", "pending", len(wp.jobs))
		return ctx.Err()
	}
}

func (wp *WorkerPool) IsRunning() bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	return wp.state == poolRunning
}
