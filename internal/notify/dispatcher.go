package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/internship-docs-api/pkg/config"
	"github.com/noah-isme/internship-docs-api/pkg/jobs"
)

type sender interface {
	SendDocumentIssued(ctx context.Context, msg DocumentIssued) error
}

// Dispatcher queues issuance notifications onto background workers.
type Dispatcher struct {
	queue *jobs.Queue
}

// NewDispatcher wires a worker queue in front of the sender.
func NewDispatcher(s sender, cfg config.NotificationsConfig, logger *zap.Logger) *Dispatcher {
	handler := func(ctx context.Context, job jobs.Job) error {
		msg, ok := job.Payload.(DocumentIssued)
		if !ok {
			return fmt.Errorf("unexpected payload type %T", job.Payload)
		}
		return s.SendDocumentIssued(ctx, msg)
	}
	queue := jobs.NewQueue("notifications", handler, jobs.QueueConfig{
		Workers:    cfg.WorkerConcurrency,
		MaxRetries: cfg.WorkerRetries,
		Logger:     logger,
	})
	return &Dispatcher{queue: queue}
}

// Start launches the workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop drains the workers.
func (d *Dispatcher) Stop() {
	d.queue.Stop()
}

// DocumentIssued enqueues one notification. Failures are logged by the
// queue's retry machinery; issuance never depends on the outcome.
func (d *Dispatcher) DocumentIssued(documentID string, msg DocumentIssued) error {
	return d.queue.Enqueue(jobs.Job{
		ID:      documentID,
		Type:    "document_issued",
		Payload: msg,
	})
}
