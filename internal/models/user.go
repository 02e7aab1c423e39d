package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents the access level of a platform user
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleHR       Role = "HR"
	RoleEmployee Role = "EMPLOYEE"
)

// Valid returns true if the role is one of the known roles
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleHR || r == RoleEmployee
}

// ApprovalStatus represents the account approval state
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// User represents a platform account (the principal behind every request).
// Accounts are created PENDING and must be approved before they can
// authenticate. There is no token revocation list; a deactivated account is
// blocked by the per-request isActive recheck, not by invalidating tokens.
type User struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email          string         `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash   string         `gorm:"type:varchar(255);not null" json:"-"`
	Role           Role           `gorm:"type:varchar(20);not null;default:'EMPLOYEE';index" json:"role"`
	ApprovalStatus ApprovalStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"approvalStatus"`
	IsActive       bool           `gorm:"not null;default:true" json:"isActive"`
	EmployeeID     *uuid.UUID     `gorm:"type:uuid;index" json:"employeeId,omitempty"`
	LastSeenAt     *time.Time     `json:"lastSeenAt,omitempty"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`

	Employee *Employee `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
}

// TableName returns the table name for User
func (User) TableName() string {
	return "users"
}

// CanAuthenticate returns true if the account may pass authentication
func (u *User) CanAuthenticate() bool {
	return u.ApprovalStatus == ApprovalApproved && u.IsActive
}
