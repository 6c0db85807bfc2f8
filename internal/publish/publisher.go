package publish

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avergnaud/atelier/internal/config"
	"github.com/avergnaud/atelier/internal/content"
)

// Publisher manages the tutorial publication pipeline.
type Publisher struct {
	jobs  *JobStore
	queue chan *Job
	svc   *content.Service
	log   *slog.Logger
	cfg   config.Config
	stats *RenderStats

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPublisher creates the pipeline; call Start to launch workers.
func NewPublisher(cfg config.Config, svc *content.Service, log *slog.Logger) *Publisher {
	return &Publisher{
		jobs:  NewJobStore(cfg.JobTTL),
		queue: make(chan *Job, cfg.MaxQueueSize),
		svc:   svc,
		log:   log,
		cfg:   cfg,
		stats: NewRenderStats(time.Hour),
	}
}

// Start launches worker goroutines.
func (p *Publisher) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.cfg.WorkerCount; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-p.queue:
					if !ok {
						return
					}
					p.process(workerCtx, job)
				}
			}
		}()
	}

	// Job store cleanup.
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				p.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (p *Publisher) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	close(p.queue)
	p.wg.Wait()
}

// Submit queues a publication for a tutorial and returns the job.
func (p *Publisher) Submit(ctx context.Context, actor string, tutorialID int64) (*Job, error) {
	tut, err := p.svc.GetTutorial(ctx, tutorialID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	job := &Job{
		ID:         uuid.NewString(),
		TutorialID: tut.ID,
		Slug:       tut.Slug,
		Actor:      actor,
		Status:     StatusQueued,
		Phase:      "queued",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	p.jobs.Put(job)

	select {
	case p.queue <- job:
		return job, nil
	default:
		job.Fail("queue", "queue full")
		return nil, fmt.Errorf("publication queue is full (%d)", p.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (p *Publisher) GetJob(id string) *Job {
	return p.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (p *Publisher) QueueDepth() int {
	return len(p.queue)
}

// Stats returns the rolling render latency aggregate.
func (p *Publisher) Stats() StatsSnapshot {
	return p.stats.Snapshot()
}

// process runs the full publication for a job.
func (p *Publisher) process(ctx context.Context, job *Job) {
	log := p.log.With("job_id", job.ID, "tutorial_id", job.TutorialID, "actor", job.Actor)

	// Phase 1: export markdown.
	job.SetStatus(StatusExporting, "exporting markdown")
	md, err := p.svc.Markdown(ctx, job.TutorialID)
	if err != nil {
		log.Error("markdown export failed", "error", err)
		job.Fail("exporting", err.Error())
		return
	}

	dir := filepath.Join(p.cfg.ContentDir, fmt.Sprintf("%d_%s", job.TutorialID, job.Slug))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Error("create publication dir", "error", err)
		job.Fail("exporting", err.Error())
		return
	}
	mdPath := filepath.Join(dir, job.Slug+".md")
	if err := os.WriteFile(mdPath, []byte(md), 0o644); err != nil {
		log.Error("write markdown", "error", err)
		job.Fail("exporting", err.Error())
		return
	}

	// Phase 2: render PDF. Without a configured command the markdown
	// artifact alone completes the job.
	if p.cfg.PDFCommand == "" {
		job.SetArtifacts(mdPath, "")
		job.SetStatus(StatusCompleted, "done")
		log.Info("published tutorial", "markdown", mdPath)
		return
	}

	job.SetStatus(StatusRendering, "rendering pdf")
	pdfPath := filepath.Join(dir, job.Slug+".pdf")

	var lastErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		start := time.Now()
		lastErr = p.renderPDF(ctx, mdPath, pdfPath)
		p.stats.Record(time.Since(start).Milliseconds())
		if lastErr == nil {
			break
		}
		log.Warn("pdf render failed", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			job.Fail("rendering", ctx.Err().Error())
			return
		}
	}
	if lastErr != nil {
		job.SetArtifacts(mdPath, "")
		job.Fail("rendering", lastErr.Error())
		return
	}

	job.SetArtifacts(mdPath, pdfPath)
	job.SetStatus(StatusCompleted, "done")
	log.Info("published tutorial", "markdown", mdPath, "pdf", pdfPath)
}

// renderPDF runs the configured command, substituting {md} and {pdf}.
func (p *Publisher) renderPDF(ctx context.Context, mdPath, pdfPath string) error {
	parts := strings.Fields(p.cfg.PDFCommand)
	if len(parts) == 0 {
		return fmt.Errorf("empty pdf command")
	}
	args := make([]string, 0, len(parts)-1)
	for _, part := range parts[1:] {
		part = strings.ReplaceAll(part, "{md}", mdPath)
		part = strings.ReplaceAll(part, "{pdf}", pdfPath)
		args = append(args, part)
	}
	cmd := exec.CommandContext(ctx, parts[0], args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", parts[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}
