package leaverequests

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leavedesk/backend/internal/models"
	"github.com/leavedesk/backend/pkg/response"
)

// ReferenceRepository reads the seeded leave type and pay period tables.
type ReferenceRepository struct {
	pool *pgxpool.Pool
}

// NewReferenceRepository creates a reference data repository.
func NewReferenceRepository(pool *pgxpool.Pool) *ReferenceRepository {
	return &ReferenceRepository{pool: pool}
}

// ListLeaveTypes returns all leave types.
func (r *ReferenceRepository) ListLeaveTypes(ctx context.Context) ([]models.LeaveType, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description FROM leave_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.LeaveType
	for rows.Next() {
		var lt models.LeaveType
		if err := rows.Scan(&lt.ID, &lt.Name, &lt.Description); err != nil {
			return nil, err
		}
		list = append(list, lt)
	}
	return list, rows.Err()
}

// ListPayPeriods returns all pay periods, oldest first.
func (r *ReferenceRepository) ListPayPeriods(ctx context.Context) ([]models.PayPeriod, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, label, start_date, end_date FROM pay_periods ORDER BY start_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.PayPeriod
	for rows.Next() {
		var pp models.PayPeriod
		if err := rows.Scan(&pp.ID, &pp.Label, &pp.StartDate, &pp.EndDate); err != nil {
			return nil, err
		}
		list = append(list, pp)
	}
	return list, rows.Err()
}

// LeaveTypes handles GET /leave-types.
func (r *ReferenceRepository) LeaveTypes(c *gin.Context) {
	list, err := r.ListLeaveTypes(c.Request.Context())
	if err != nil {
		response.Internal(c, "Internal server error")
		return
	}
	response.OK(c, list)
}

// PayPeriods handles GET /pay-periods.
func (r *ReferenceRepository) PayPeriods(c *gin.Context) {
	list, err := r.ListPayPeriods(c.Request.Context())
	if err != nil {
		response.Internal(c, "Internal server error")
		return
	}
	response.OK(c, list)
}
