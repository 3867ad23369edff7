// Package upload runs the simulated file upload: compress, check the quota,
// pretend to transfer, then register the file.
package upload

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nhle/siteledger/internal/files"
	"github.com/nhle/siteledger/internal/logger"
	"github.com/nhle/siteledger/internal/model"
	"github.com/nhle/siteledger/internal/quota"
)

// Request describes one file to upload.
type Request struct {
	Name string
	// Type is the declared media type. Empty means sniff it from Data.
	Type     string
	Data     []byte
	LinkedTo *model.FileLink
}

// Pipeline uploads files into a registry within a storage quota.
type Pipeline struct {
	files      *files.Registry
	ledger     quota.Ledger
	compressor Compressor
	delay      time.Duration
	steps      int
	log        *logger.Logger

	// mu makes the final quota check and AddFile one step, so concurrent
	// uploads cannot overshoot the capacity together.
	mu sync.Mutex
}

// New builds a Pipeline.
func New(reg *files.Registry, ledger quota.Ledger, cfg model.UploadConfig, log *logger.Logger) *Pipeline {
	steps := cfg.ProgressSteps
	if steps <= 0 {
		steps = 1
	}
	return &Pipeline{
		files:      reg,
		ledger:     ledger,
		compressor: NewCompressor(cfg),
		delay:      cfg.SimulatedDelay,
		steps:      steps,
		log:        logger.OrNop(log),
	}
}

// Usage returns the current quota usage.
func (p *Pipeline) Usage() quota.Usage {
	return p.ledger.Compute(p.files.Files())
}

// Task is an upload in flight.
type Task struct {
	progress chan int
	done     chan struct{}
	cancel   context.CancelFunc

	file model.StoredFile
	err  error
}

// Progress delivers percentages from 0 to 100. It is closed when the task
// ends. Slow readers miss intermediate values.
func (t *Task) Progress() <-chan int { return t.progress }

// Done is closed when the task ends.
func (t *Task) Done() <-chan struct{} { return t.done }

// Cancel aborts the upload. It has no effect once the file is stored.
func (t *Task) Cancel() { t.cancel() }

// Wait blocks until the task ends and returns the stored file, or one of
// model.ErrQuotaExceeded, model.ErrUploadAborted, model.ErrCompressionFailed.
func (t *Task) Wait() (model.StoredFile, error) {
	<-t.done
	return t.file, t.err
}

// Start begins an upload in the background. Cancelling ctx aborts it.
func (p *Pipeline) Start(ctx context.Context, req Request) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		progress: make(chan int, p.steps+1),
		done:     make(chan struct{}),
		cancel:   cancel,
	}

	go func() {
		defer close(t.done)
		defer close(t.progress)
		defer cancel()
		t.file, t.err = p.run(ctx, req, t.progress)
		if t.err != nil {
			p.log.Warn("upload failed", "name", req.Name, "error", t.err)
		}
	}()

	return t
}

// Upload runs an upload to completion.
func (p *Pipeline) Upload(ctx context.Context, req Request) (model.StoredFile, error) {
	return p.Start(ctx, req).Wait()
}

func (p *Pipeline) run(ctx context.Context, req Request, progress chan<- int) (model.StoredFile, error) {
	report := func(pct int) {
		select {
		case progress <- pct:
		default:
		}
	}
	report(0)

	data, mediaType, err := p.compressor.Compress(req.Data, req.Type)
	if err != nil {
		return model.StoredFile{}, err
	}
	size := int64(len(data))

	if usage := p.Usage(); !usage.Fits(size) {
		return model.StoredFile{}, quotaError(req.Name, size, usage)
	}

	step := p.delay / time.Duration(p.steps)
	for i := 1; i <= p.steps; i++ {
		if err := sleep(ctx, step); err != nil {
			return model.StoredFile{}, fmt.Errorf("uploading %s: %w", req.Name, model.ErrUploadAborted)
		}
		if i < p.steps {
			report(i * 100 / p.steps)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if ctx.Err() != nil {
		return model.StoredFile{}, fmt.Errorf("uploading %s: %w", req.Name, model.ErrUploadAborted)
	}
	if usage := p.Usage(); !usage.Fits(size) {
		return model.StoredFile{}, quotaError(req.Name, size, usage)
	}

	stored, err := p.files.AddFile(ctx, model.StoredFile{
		Name:     req.Name,
		URL:      dataURI(mediaType, data),
		Size:     size,
		Type:     mediaType,
		LinkedTo: req.LinkedTo,
	})
	if err != nil {
		return model.StoredFile{}, fmt.Errorf("uploading %s: %w", req.Name, err)
	}
	report(100)
	return stored, nil
}

func quotaError(name string, size int64, usage quota.Usage) error {
	return fmt.Errorf("uploading %s (%s, %s free): %w",
		name, quota.FormatBytes(size), quota.FormatBytes(usage.Remaining), model.ErrQuotaExceeded)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func dataURI(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// IsUploadFailure reports whether err is one of the typed upload outcomes.
func IsUploadFailure(err error) bool {
	return errors.Is(err, model.ErrQuotaExceeded) ||
		errors.Is(err, model.ErrUploadAborted) ||
		errors.Is(err, model.ErrCompressionFailed)
}
