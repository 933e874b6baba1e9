package notifications

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leavedesk/backend/internal/models"
)

// RecipientRepository handles notification_recipients persistence.
type RecipientRepository struct {
	pool *pgxpool.Pool
}

// NewRecipientRepository creates a recipient repository.
func NewRecipientRepository(pool *pgxpool.Pool) *RecipientRepository {
	return &RecipientRepository{pool: pool}
}

// Insert adds an active recipient. Re-inserting the same email for an
// organization re-activates it rather than failing.
func (r *RecipientRepository) Insert(ctx context.Context, orgID uuid.UUID, email, name string) error {
	const q = `INSERT INTO notification_recipients (organization_id, email, name, is_active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (organization_id, email) DO UPDATE SET name = EXCLUDED.name, is_active = TRUE`
	_, err := r.pool.Exec(ctx, q, orgID, email, name)
	return err
}

// ListByOrganization returns all recipients for an organization.
func (r *RecipientRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.NotificationRecipient, error) {
	const q = `SELECT id, organization_id, email, name, is_active, created_at
		FROM notification_recipients
		WHERE organization_id = $1
		ORDER BY created_at ASC`
	return r.list(ctx, q, orgID)
}

// ListActiveByOrganization returns only active recipients. This is the list
// the dispatcher consults; the state machine never mutates it.
func (r *RecipientRepository) ListActiveByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.NotificationRecipient, error) {
	const q = `SELECT id, organization_id, email, name, is_active, created_at
		FROM notification_recipients
		WHERE organization_id = $1 AND is_active = TRUE
		ORDER BY created_at ASC`
	return r.list(ctx, q, orgID)
}

func (r *RecipientRepository) list(ctx context.Context, q string, orgID uuid.UUID) ([]models.NotificationRecipient, error) {
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.NotificationRecipient
	for rows.Next() {
		var rec models.NotificationRecipient
		if err := rows.Scan(&rec.ID, &rec.OrganizationID, &rec.Email, &rec.Name, &rec.IsActive, &rec.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

// SetActive toggles a recipient. Scoped by organization so an admin can only
// touch recipients of their own tenant.
func (r *RecipientRepository) SetActive(ctx context.Context, orgID, recipientID uuid.UUID, active bool) (bool, error) {
	const q = `UPDATE notification_recipients SET is_active = $3
		WHERE id = $2 AND organization_id = $1`
	tag, err := r.pool.Exec(ctx, q, orgID, recipientID, active)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
