package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"hrms-platform/internal/audit"
	"hrms-platform/internal/models"
)

// SnapshotLoader loads the current full state of an entity by its path id.
// Returning (nil, nil) or repository.ErrNotFound leaves the old-values
// snapshot empty without aborting the request.
type SnapshotLoader func(ctx context.Context, id string) (interface{}, error)

// AuditRecorder builds audit records around mutating requests and hands them
// to the asynchronous worker once the response status is known.
type AuditRecorder struct {
	worker *audit.Worker
	logger *logrus.Entry
}

// NewAuditRecorder creates a new AuditRecorder
func NewAuditRecorder(worker *audit.Worker, logger *logrus.Logger) *AuditRecorder {
	return &AuditRecorder{
		worker: worker,
		logger: logger.WithField("component", "audit_middleware"),
	}
}

const auditEntityIDKey = "audit_entity_id"

// SetAuditEntityID records the id of an entity created during the request so
// the audit record references it. Create routes have no id path parameter;
// the handler calls this after the insert succeeds.
func SetAuditEntityID(c *gin.Context, id string) {
	c.Set(auditEntityIDKey, id)
}

type captureOptions struct {
	idParam  string
	snapshot SnapshotLoader
}

// CaptureOption configures audit capture for a route
type CaptureOption func(*captureOptions)

// WithSnapshot enables old-value pre-capture through the given loader
func WithSnapshot(loader SnapshotLoader) CaptureOption {
	return func(o *captureOptions) { o.snapshot = loader }
}

// WithIDParam overrides the path parameter holding the entity id
// (default "id")
func WithIDParam(param string) CaptureOption {
	return func(o *captureOptions) { o.idParam = param }
}

// Capture returns middleware recording an audit entry for the declared
// entity. Exactly one record is written per request that both passed
// authorization and returned 2xx; failed or rejected requests produce none.
// Old values are pre-captured only for PUT/PATCH/DELETE and only when the
// route supplies a snapshot loader; new values are the accepted request
// body. The write happens on the worker after the response is finished and
// can neither delay nor fail the request.
func (a *AuditRecorder) Capture(entity audit.Entity, action string, opts ...CaptureOption) gin.HandlerFunc {
	options := captureOptions{idParam: "id"}
	for _, opt := range opts {
		opt(&options)
	}

	return func(c *gin.Context) {
		// Buffer the body so both the handler and the audit record see it
		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		var oldValues datatypes.JSON
		if options.snapshot != nil && preCaptures(c.Request.Method) {
			if id := c.Param(options.idParam); id != "" {
				snap, err := options.snapshot(c.Request.Context(), id)
				if err != nil || snap == nil {
					// Entity absent or unloadable: capture proceeds with a
					// null snapshot so deletes of already-gone records still
					// work
					if err != nil {
						a.logger.WithError(err).Debug("old-value snapshot unavailable")
					}
				} else if raw, err := json.Marshal(snap); err == nil {
					oldValues = raw
				}
			}
		}

		c.Next()

		// Errors reported to the context are turned into an error response
		// by the outer handler after this middleware returns, so the writer
		// status is not final until the handler has actually written
		if len(c.Errors) > 0 || !c.Writer.Written() {
			return
		}
		status := c.Writer.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return
		}
		principal, ok := GetPrincipal(c)
		if !ok {
			return
		}

		entityID := c.Param(options.idParam)
		if entityID == "" {
			entityID = c.GetString(auditEntityIDKey)
		}

		record := &models.AuditLog{
			Action:     action,
			EntityType: string(entity),
			EntityID:   entityID,
			ActorID:    principal.UserID,
			OldValues:  oldValues,
			SourceIP:   c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
		}
		if json.Valid(body) {
			record.NewValues = body
		}

		a.worker.Enqueue(record)
	}
}

func preCaptures(method string) bool {
	return method == http.MethodPut || method == http.MethodPatch || method == http.MethodDelete
}
