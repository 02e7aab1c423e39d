// Package events publishes platform events over NATS. Publishing is always
// best-effort: services run fine without a broker, and a publish failure is
// logged but never fails the operation that triggered it.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"hrms-platform/internal/models"
)

// Event subjects
const (
	SubjectLogin         = "hrms.auth.login"
	SubjectAuditRecorded = "hrms.audit.recorded"
)

// Publisher publishes platform events to NATS. A nil Publisher is valid and
// discards all events.
type Publisher struct {
	conn   *nats.Conn
	logger *logrus.Entry
}

// NewPublisher connects to NATS and returns a publisher
func NewPublisher(url, serviceName string, logger *logrus.Logger) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name(serviceName),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}

	return &Publisher{
		conn:   conn,
		logger: logger.WithField("component", "events"),
	}, nil
}

// Close drains and closes the NATS connection
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	_ = p.conn.Drain()
}

// LoginEvent is published on every successful login
type LoginEvent struct {
	UserID    uuid.UUID `json:"userId"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Timestamp time.Time `json:"timestamp"`
}

// PublishLogin publishes a login event
func (p *Publisher) PublishLogin(userID uuid.UUID, email, role string) error {
	return p.publish(SubjectLogin, LoginEvent{
		UserID:    userID,
		Email:     email,
		Role:      role,
		Timestamp: time.Now().UTC(),
	})
}

// PublishAuditRecorded publishes an event for a persisted audit record
func (p *Publisher) PublishAuditRecorded(record *models.AuditLog) error {
	return p.publish(SubjectAuditRecorded, record)
}

func (p *Publisher) publish(subject string, payload interface{}) error {
	if p == nil || p.conn == nil {
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.WithField("subject", subject).WithError(err).Warn("event publish failed")
		return err
	}
	return nil
}
