package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization represents a tenant. Slug is globally unique and derived from
// the organization name at registration time.
type Organization struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	AdminEmail    string    `json:"admin_email"`
	GoogleSheetID *string   `json:"google_sheet_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
