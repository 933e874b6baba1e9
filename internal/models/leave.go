package models

import (
	"time"

	"github.com/google/uuid"
)

// LeaveStatus is the lifecycle state of a leave request.
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveDenied   LeaveStatus = "denied"
)

// Terminal reports whether no further transition is defined from the status.
func (s LeaveStatus) Terminal() bool {
	return s == LeaveApproved || s == LeaveDenied
}

// LeaveRequest is a staff time-off request. It is created pending, scoped to
// the submitter's organization, and transitions exactly once to approved or
// denied by an admin of the same organization.
type LeaveRequest struct {
	ID             uuid.UUID   `json:"id"`
	UserID         uuid.UUID   `json:"user_id"`
	OrganizationID uuid.UUID   `json:"organization_id"`
	LeaveTypeID    uuid.UUID   `json:"leave_type_id"`
	PayPeriodID    uuid.UUID   `json:"pay_period_id"`
	Status         LeaveStatus `json:"status"`
	ReviewedBy     *uuid.UUID  `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time  `json:"reviewed_at,omitempty"`
	AdminNotes     *string     `json:"admin_notes,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// LeaveType is admin-visible reference data for request categorization.
type LeaveType struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// PayPeriod is the payroll window a request is attributed to.
type PayPeriod struct {
	ID        uuid.UUID `json:"id"`
	Label     string    `json:"label"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}
