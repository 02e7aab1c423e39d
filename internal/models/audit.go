package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Audit action constants
const (
	AuditActionCreate = "CREATE"
	AuditActionUpdate = "UPDATE"
	AuditActionDelete = "DELETE"
)

// AuditLog is an append-only record of a successful mutating request.
// A record exists iff the request passed authorization and returned a 2xx
// status. OldValues is populated only when the route declares pre-capture;
// NewValues is the accepted request payload. Records are never updated or
// deleted.
type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Action     string         `gorm:"type:varchar(20);not null;index" json:"action"`
	EntityType string         `gorm:"type:varchar(50);not null;index" json:"entityType"`
	EntityID   string         `gorm:"type:varchar(64);index" json:"entityId,omitempty"`
	ActorID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"actorId"`
	OldValues  datatypes.JSON `gorm:"type:jsonb" json:"oldValues,omitempty"`
	NewValues  datatypes.JSON `gorm:"type:jsonb" json:"newValues,omitempty"`
	SourceIP   string         `gorm:"type:varchar(45)" json:"sourceIp,omitempty"`
	UserAgent  string         `gorm:"type:varchar(512)" json:"userAgent,omitempty"`
	CreatedAt  time.Time      `gorm:"autoCreateTime;index" json:"createdAt"`
}

// TableName returns the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}
