package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"jobbuddy/career-assistant/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(analysisID uuid.UUID) bool
}

type worker struct {
	analysisRepo    repositories.AnalysisRepository
	analyzerService AnalyzerService
	jobQueue        chan uuid.UUID
	concurrency     int
	pollInterval    time.Duration
	wg              sync.WaitGroup
	stopChan        chan struct{}
	stopOnce        sync.Once
	inFlight        sync.Map
}

func NewWorker(
	analysisRepo repositories.AnalysisRepository,
	analyzerService AnalyzerService,
	concurrency int,
	pollInterval time.Duration,
) Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	return &worker{
		analysisRepo:    analysisRepo,
		analyzerService: analyzerService,
		jobQueue:        make(chan uuid.UUID, 100),
		concurrency:     concurrency,
		pollInterval:    pollInterval,
		stopChan:        make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting worker with %d concurrent workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingJobs(ctx)

	log.Println("✅ Worker started successfully")
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		log.Println("🛑 Stopping worker...")
		close(w.stopChan)
		w.wg.Wait()
		log.Println("✅ Worker stopped")
	})
}

// EnqueueJob implements Worker. It reports false when the job is already
// queued or the worker is stopped.
func (w *worker) EnqueueJob(analysisID uuid.UUID) bool {
	select {
	case <-w.stopChan:
		log.Printf("⚠️  Worker stopped, cannot enqueue job %s\n", analysisID)
		return false
	default:
	}

	if _, loaded := w.inFlight.LoadOrStore(analysisID, struct{}{}); loaded {
		return false
	}

	select {
	case w.jobQueue <- analysisID:
		log.Printf("📥 Job %s enqueued\n", analysisID)
		return true
	case <-w.stopChan:
		w.inFlight.Delete(analysisID)
		log.Printf("⚠️  Worker stopped, cannot enqueue job %s\n", analysisID)
		return false
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Worker #%d stopped\n", workerID)
			return
		case <-ctx.Done():
			return
		case analysisID := <-w.jobQueue:
			log.Printf("👷 Worker #%d processing job %s\n", workerID, analysisID)
			if err := w.analyzerService.AnalyzeResume(ctx, analysisID); err != nil {
				log.Printf("❌ Worker #%d failed to process job %s: %v\n", workerID, analysisID, err)
			} else {
				log.Printf("✅ Worker #%d completed job %s\n", workerID, analysisID)
			}
			w.inFlight.Delete(analysisID)
		}
	}
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			log.Println("🔄 Pending jobs poller stopped")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pendingJobs, err := w.analysisRepo.FindPendingJobs(ctx, 10)
			if err != nil {
				log.Printf("⚠️  Failed to fetch pending jobs: %v\n", err)
				continue
			}

			if len(pendingJobs) > 0 {
				log.Printf("📋 Found %d pending jobs\n", len(pendingJobs))
			}

			for _, job := range pendingJobs {
				w.EnqueueJob(job.ID)
			}
		}
	}
}
