package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"hrms-platform/internal/audit"
	"hrms-platform/internal/models"
)

type capturingStore struct {
	mu      sync.Mutex
	records []*models.AuditLog
}

func (s *capturingStore) Create(ctx context.Context, record *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *capturingStore) all() []*models.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.AuditLog(nil), s.records...)
}

func auditTestRig(t *testing.T, handler gin.HandlerFunc, principal *Principal, opts ...CaptureOption) (*gin.Engine, *capturingStore, *audit.Worker) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := &capturingStore{}
	worker := audit.NewWorker(store, nil, 16, testLogger())
	worker.Start()

	recorder := NewAuditRecorder(worker, testLogger())
	router := gin.New()
	// Same ordering as the service mains: the error handler wraps the
	// capture middleware
	router.Use(ErrorHandler(testLogger()))
	router.Any("/things/:id",
		func(c *gin.Context) {
			if principal != nil {
				c.Set(principalKey, *principal)
			}
		},
		recorder.Capture(audit.EntityLeave, models.AuditActionUpdate, opts...),
		handler)
	return router, store, worker
}

func TestCaptureWritesRecordOnSuccess(t *testing.T) {
	principal := Principal{UserID: uuid.New(), Role: models.RoleHR}
	router, store, worker := auditTestRig(t, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	}, &principal)

	body := `{"status":"approved"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/things/"+uuid.NewString(), strings.NewReader(body))
	router.ServeHTTP(w, req)
	worker.Stop()

	records := store.all()
	assert.Len(t, records, 1)
	assert.Equal(t, models.AuditActionUpdate, records[0].Action)
	assert.Equal(t, string(audit.EntityLeave), records[0].EntityType)
	assert.Equal(t, principal.UserID, records[0].ActorID)
	assert.JSONEq(t, body, string(records[0].NewValues))
	assert.Empty(t, records[0].OldValues)
}

func TestCapturePreCapturesOldValues(t *testing.T) {
	principal := Principal{UserID: uuid.New(), Role: models.RoleAdmin}
	oldState := map[string]string{"status": "pending"}
	router, store, worker := auditTestRig(t, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	}, &principal, WithSnapshot(func(ctx context.Context, id string) (interface{}, error) {
		return oldState, nil
	}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/things/"+uuid.NewString(), strings.NewReader(`{"status":"approved"}`))
	router.ServeHTTP(w, req)
	worker.Stop()

	records := store.all()
	assert.Len(t, records, 1)
	assert.JSONEq(t, `{"status":"pending"}`, string(records[0].OldValues))
	assert.JSONEq(t, `{"status":"approved"}`, string(records[0].NewValues))
}

func TestCaptureSkipsFailedRequests(t *testing.T) {
	principal := Principal{UserID: uuid.New(), Role: models.RoleHR}
	for _, status := range []int{http.StatusBadRequest, http.StatusConflict, http.StatusInternalServerError} {
		router, store, worker := auditTestRig(t, func(c *gin.Context) {
			c.JSON(status, gin.H{"status": "error"})
		}, &principal)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/things/"+uuid.NewString(), strings.NewReader(`{}`))
		router.ServeHTTP(w, req)
		worker.Stop()

		assert.Empty(t, store.all())
	}
}

func TestCaptureSkipsDeferredHandlerErrors(t *testing.T) {
	// Repository failures are reported via c.Error and only become a 500 in
	// the outer error handler, after the capture middleware has already
	// observed the response. No record may be written for them.
	principal := Principal{UserID: uuid.New(), Role: models.RoleHR}
	router, store, worker := auditTestRig(t, func(c *gin.Context) {
		_ = c.Error(errors.New("connection refused"))
	}, &principal)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/things/"+uuid.NewString(), strings.NewReader(`{"status":"approved"}`))
	router.ServeHTTP(w, req)
	worker.Stop()

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, store.all())
}

func TestCaptureRecordsCreatedEntityID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	principal := Principal{UserID: uuid.New(), Role: models.RoleHR}
	createdID := uuid.NewString()

	store := &capturingStore{}
	worker := audit.NewWorker(store, nil, 16, testLogger())
	worker.Start()
	recorder := NewAuditRecorder(worker, testLogger())

	router := gin.New()
	router.Use(ErrorHandler(testLogger()))
	router.POST("/things",
		func(c *gin.Context) { c.Set(principalKey, principal) },
		recorder.Capture(audit.EntityLeave, models.AuditActionCreate),
		func(c *gin.Context) {
			SetAuditEntityID(c, createdID)
			c.JSON(http.StatusCreated, gin.H{"status": "success"})
		})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/things", strings.NewReader(`{"leaveType":"annual"}`))
	router.ServeHTTP(w, req)
	worker.Stop()

	records := store.all()
	assert.Len(t, records, 1)
	assert.Equal(t, createdID, records[0].EntityID)
	assert.Equal(t, models.AuditActionCreate, records[0].Action)
}

func TestCaptureSkipsUnauthenticatedRequests(t *testing.T) {
	router, store, worker := auditTestRig(t, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/things/"+uuid.NewString(), strings.NewReader(`{}`))
	router.ServeHTTP(w, req)
	worker.Stop()

	assert.Empty(t, store.all())
}

func TestCaptureBodyStillReadableByHandler(t *testing.T) {
	principal := Principal{UserID: uuid.New(), Role: models.RoleHR}
	var seen string
	router, _, worker := auditTestRig(t, func(c *gin.Context) {
		var payload map[string]string
		assert.NoError(t, c.ShouldBindJSON(&payload))
		seen = payload["status"]
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	}, &principal)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/things/"+uuid.NewString(), strings.NewReader(`{"status":"approved"}`))
	router.ServeHTTP(w, req)
	worker.Stop()

	assert.Equal(t, "approved", seen)
}
