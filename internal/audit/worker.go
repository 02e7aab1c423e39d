// Package audit provides the append-only audit trail shared by every
// backend service: entity tags declared per route and an asynchronous
// writer that persists records after the response has been sent.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"hrms-platform/internal/events"
	"hrms-platform/internal/models"
)

// Store persists audit records
type Store interface {
	Create(ctx context.Context, record *models.AuditLog) error
}

const writeTimeout = 5 * time.Second

// Worker writes audit records from a bounded queue, fully decoupled from the
// request path. Enqueue never blocks: when the queue is full the record is
// dropped and logged. Write failures are logged and dropped, never retried
// and never surfaced to the caller - the HTTP response has already been sent
// by the time a record reaches the worker.
type Worker struct {
	store     Store
	publisher *events.Publisher
	queue     chan *models.AuditLog
	logger    *logrus.Entry
	wg        sync.WaitGroup
}

// NewWorker creates an audit worker with the given queue capacity.
// The publisher is optional; pass nil to disable event emission.
func NewWorker(store Store, publisher *events.Publisher, queueSize int, logger *logrus.Logger) *Worker {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Worker{
		store:     store,
		publisher: publisher,
		queue:     make(chan *models.AuditLog, queueSize),
		logger:    logger.WithField("component", "audit_worker"),
	}
}

// Start launches the background writer goroutine
func (w *Worker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for record := range w.queue {
			w.write(record)
		}
	}()
}

// Enqueue hands a record to the worker. Returns false when the queue is
// full and the record was dropped.
func (w *Worker) Enqueue(record *models.AuditLog) bool {
	select {
	case w.queue <- record:
		return true
	default:
		w.logger.WithFields(logrus.Fields{
			"action":      record.Action,
			"entity_type": record.EntityType,
			"entity_id":   record.EntityID,
		}).Warn("audit queue full, dropping record")
		return false
	}
}

// Stop drains the queue and waits for in-flight writes to finish
func (w *Worker) Stop() {
	close(w.queue)
	w.wg.Wait()
}

func (w *Worker) write(record *models.AuditLog) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := w.store.Create(ctx, record); err != nil {
		w.logger.WithFields(logrus.Fields{
			"action":      record.Action,
			"entity_type": record.EntityType,
			"entity_id":   record.EntityID,
			"actor_id":    record.ActorID,
		}).WithError(err).Error("audit write failed")
		return
	}

	if w.publisher != nil {
		if err := w.publisher.PublishAuditRecorded(record); err != nil {
			w.logger.WithError(err).Warn("failed to publish audit event")
		}
	}
}
