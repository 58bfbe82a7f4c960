package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coursegrid/solver-api/pkg/jobs"
)

// exportJobPayload carries the work item and a channel back to the waiting
// HTTP handler. The channel is buffered so a retried job never blocks a
// worker goroutine on a caller that already gave up.
type exportJobPayload struct {
	solveRunID string
	format     ReportFormat
	resultCh   chan exportJobOutcome
}

type exportJobOutcome struct {
	result *ExportResult
	err    error
}

// ExportDispatcher renders CSV/PDF exports on a dedicated worker pool instead
// of the request goroutine, mirroring the teacher's report-generation queue.
type ExportDispatcher struct {
	svc   *ExportService
	queue *jobs.Queue
}

// NewExportDispatcher wires an ExportService behind a jobs.Queue.
func NewExportDispatcher(svc *ExportService, cfg jobs.QueueConfig) *ExportDispatcher {
	d := &ExportDispatcher{svc: svc}
	d.queue = jobs.NewQueue("export-render", d.handle, cfg)
	return d
}

// Start begins worker consumption.
func (d *ExportDispatcher) Start(ctx context.Context) { d.queue.Start(ctx) }

// Stop drains and stops the worker pool.
func (d *ExportDispatcher) Stop() { d.queue.Stop() }

// Dispatch enqueues a render job and blocks until it completes or ctx is done.
func (d *ExportDispatcher) Dispatch(ctx context.Context, solveRunID string, format ReportFormat) (*ExportResult, error) {
	resultCh := make(chan exportJobOutcome, 4)
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    "export_render",
		Payload: exportJobPayload{solveRunID: solveRunID, format: format, resultCh: resultCh},
	}
	if err := d.queue.Enqueue(job); err != nil {
		return nil, fmt.Errorf("enqueue export render: %w", err)
	}
	select {
	case out := <-resultCh:
		return out.result, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (d *ExportDispatcher) handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(exportJobPayload)
	if !ok {
		return fmt.Errorf("export render: unexpected payload type")
	}
	renderCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	result, err := d.svc.Generate(renderCtx, payload.solveRunID, payload.format)
	select {
	case payload.resultCh <- exportJobOutcome{result: result, err: err}:
	default:
		d.svc.logger.Warn("export render result dropped, caller no longer waiting",
			zap.String("solve_run_id", payload.solveRunID), zap.String("format", string(payload.format)))
	}
	return err
}
