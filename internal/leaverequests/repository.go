package leaverequests

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leavedesk/backend/internal/models"
)

const selectColumns = `id, user_id, organization_id, leave_type_id, pay_period_id,
	status, reviewed_by, reviewed_at, admin_notes, created_at, updated_at`

// Repository handles leave_requests persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a leave requests repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a pending request, filling ID, status and timestamps.
func (r *Repository) Create(ctx context.Context, req *models.LeaveRequest) error {
	const q = `INSERT INTO leave_requests (user_id, organization_id, leave_type_id, pay_period_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, status, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, req.UserID, req.OrganizationID, req.LeaveTypeID, req.PayPeriodID).
		Scan(&req.ID, &req.Status, &req.CreatedAt, &req.UpdatedAt)
}

// GetByID returns a request by ID, or nil when none exists.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.LeaveRequest, error) {
	q := `SELECT ` + selectColumns + ` FROM leave_requests WHERE id = $1`
	var lr models.LeaveRequest
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&lr.ID, &lr.UserID, &lr.OrganizationID, &lr.LeaveTypeID, &lr.PayPeriodID,
		&lr.Status, &lr.ReviewedBy, &lr.ReviewedAt, &lr.AdminNotes, &lr.CreatedAt, &lr.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &lr, nil
}

// Transition moves a request out of pending. The write is conditional on the
// row still being pending, so two concurrent reviewers get exactly one
// success; the loser sees nil.
func (r *Repository) Transition(ctx context.Context, id uuid.UUID, status models.LeaveStatus, reviewedBy uuid.UUID, reviewedAt time.Time, adminNotes *string) (*models.LeaveRequest, error) {
	q := `UPDATE leave_requests
		SET status = $2, reviewed_by = $3, reviewed_at = $4, admin_notes = $5, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + selectColumns
	var lr models.LeaveRequest
	err := r.pool.QueryRow(ctx, q, id, string(status), reviewedBy, reviewedAt, adminNotes).Scan(
		&lr.ID, &lr.UserID, &lr.OrganizationID, &lr.LeaveTypeID, &lr.PayPeriodID,
		&lr.Status, &lr.ReviewedBy, &lr.ReviewedAt, &lr.AdminNotes, &lr.CreatedAt, &lr.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &lr, nil
}

// ListByUser returns a user's own requests, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.LeaveRequest, error) {
	q := `SELECT ` + selectColumns + ` FROM leave_requests WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, q, userID)
}

// ListByOrganization returns an organization's requests, optionally filtered
// by status, newest first.
func (r *Repository) ListByOrganization(ctx context.Context, orgID uuid.UUID, status models.LeaveStatus) ([]models.LeaveRequest, error) {
	if status != "" {
		q := `SELECT ` + selectColumns + ` FROM leave_requests
			WHERE organization_id = $1 AND status = $2 ORDER BY created_at DESC`
		return r.list(ctx, q, orgID, string(status))
	}
	q := `SELECT ` + selectColumns + ` FROM leave_requests WHERE organization_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, q, orgID)
}

func (r *Repository) list(ctx context.Context, q string, args ...interface{}) ([]models.LeaveRequest, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.LeaveRequest
	for rows.Next() {
		var lr models.LeaveRequest
		if err := rows.Scan(
			&lr.ID, &lr.UserID, &lr.OrganizationID, &lr.LeaveTypeID, &lr.PayPeriodID,
			&lr.Status, &lr.ReviewedBy, &lr.ReviewedAt, &lr.AdminNotes, &lr.CreatedAt, &lr.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, lr)
	}
	return list, rows.Err()
}
