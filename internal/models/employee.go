package models

import (
	"time"

	"github.com/google/uuid"
)

// Employee represents an employee record
type Employee struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	FirstName  string     `gorm:"type:varchar(100);not null" json:"firstName"`
	LastName   string     `gorm:"type:varchar(100);not null" json:"lastName"`
	Email      string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Department string     `gorm:"type:varchar(100)" json:"department,omitempty"`
	Position   string     `gorm:"type:varchar(100)" json:"position,omitempty"`
	HireDate   *time.Time `json:"hireDate,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName returns the table name for Employee
func (Employee) TableName() string {
	return "employees"
}

// LeaveStatus constants
const (
	LeaveStatusPending  = "pending"
	LeaveStatusApproved = "approved"
	LeaveStatusRejected = "rejected"
)

// LeaveRequest represents a leave request filed by an employee
type LeaveRequest struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EmployeeID uuid.UUID  `gorm:"type:uuid;not null;index" json:"employeeId"`
	LeaveType  string     `gorm:"type:varchar(50);not null" json:"leaveType"`
	StartDate  time.Time  `gorm:"not null" json:"startDate"`
	EndDate    time.Time  `gorm:"not null" json:"endDate"`
	Reason     string     `gorm:"type:text" json:"reason,omitempty"`
	Status     string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	DecidedBy  *uuid.UUID `gorm:"type:uuid" json:"decidedBy,omitempty"`
	DecidedAt  *time.Time `json:"decidedAt,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`

	Employee *Employee `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
}

// TableName returns the table name for LeaveRequest
func (LeaveRequest) TableName() string {
	return "leave_requests"
}

// Payslip represents a single pay period statement for an employee
type Payslip struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index" json:"employeeId"`
	Period     string    `gorm:"type:varchar(7);not null;index" json:"period"` // YYYY-MM
	GrossPay   float64   `gorm:"type:numeric(12,2);not null" json:"grossPay"`
	NetPay     float64   `gorm:"type:numeric(12,2);not null" json:"netPay"`
	IssuedAt   time.Time `gorm:"not null" json:"issuedAt"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`

	Employee *Employee `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
}

// TableName returns the table name for Payslip
func (Payslip) TableName() string {
	return "payslips"
}

// Announcement represents a company-wide announcement
type Announcement struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedBy uuid.UUID `gorm:"type:uuid;not null" json:"createdBy"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName returns the table name for Announcement
func (Announcement) TableName() string {
	return "announcements"
}
