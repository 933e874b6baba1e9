// Package authz implements the authorization guard chain used by every
// privileged mutation: authenticated → admin role → organization ownership →
// required input. Checks are independent predicates that either pass or return
// a tagged Denial; callers run them strictly in order and stop at the first
// failure, so an unauthenticated caller always sees 401 before any 403, and a
// non-admin never learns whether the target organization exists.
package authz

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/leavedesk/backend/internal/models"
)

// Kind is a machine-checkable denial category.
type Kind string

const (
	KindUnauthorized    Kind = "unauthorized"
	KindAdminRequired   Kind = "forbidden_admin_required"
	KindOrgMismatch     Kind = "forbidden_org_mismatch"
	KindMissingField    Kind = "validation_missing_field"
	KindAlreadyReviewed Kind = "conflict_already_reviewed"
	KindConflict        Kind = "conflict"
	KindNotFound        Kind = "not_found"
	KindInternal        Kind = "internal"
)

// Denial is a rejected check: kind, HTTP status, and caller-visible message.
// A nil *Denial means the check passed.
type Denial struct {
	Kind    Kind
	Status  int
	Message string
}

// Error implements the error interface so denials can flow through error
// returns when convenient; callers still branch on Kind, not on string.
func (d *Denial) Error() string {
	return d.Message
}

// Unauthorized builds a 401 denial.
func Unauthorized(msg string) *Denial {
	return &Denial{Kind: KindUnauthorized, Status: http.StatusUnauthorized, Message: msg}
}

// AdminRequired builds the 403 denial for missing admin role.
func AdminRequired() *Denial {
	return &Denial{Kind: KindAdminRequired, Status: http.StatusForbidden, Message: "Forbidden - Admin access required"}
}

// OrgMismatch builds the 403 denial for cross-organization access.
func OrgMismatch() *Denial {
	return &Denial{Kind: KindOrgMismatch, Status: http.StatusForbidden, Message: "Forbidden - Organization mismatch"}
}

// MissingField builds the 400 denial for an absent required field.
func MissingField(field string) *Denial {
	return &Denial{Kind: KindMissingField, Status: http.StatusBadRequest, Message: field + " is required"}
}

// AlreadyReviewed builds the 409 denial for transitions out of a terminal state.
func AlreadyReviewed() *Denial {
	return &Denial{Kind: KindAlreadyReviewed, Status: http.StatusConflict, Message: "Leave request has already been reviewed"}
}

// Conflict builds a generic 409 denial.
func Conflict(msg string) *Denial {
	return &Denial{Kind: KindConflict, Status: http.StatusConflict, Message: msg}
}

// NotFound builds a 404 denial.
func NotFound(msg string) *Denial {
	return &Denial{Kind: KindNotFound, Status: http.StatusNotFound, Message: msg}
}

// Internal builds the opaque 500 denial.
func Internal() *Denial {
	return &Denial{Kind: KindInternal, Status: http.StatusInternalServerError, Message: "Internal server error"}
}

// CheckAuthentication is guard step 1. A nil userID means no verifiable caller
// identity and always yields 401, regardless of any other input.
func CheckAuthentication(userID *uuid.UUID) (uuid.UUID, *Denial) {
	if userID == nil || *userID == uuid.Nil {
		return uuid.Nil, Unauthorized("Unauthorized")
	}
	return *userID, nil
}

// CheckAdminRole is guard step 2. The profile must exist and carry exactly the
// admin role; "Admin" or any other casing is rejected.
func CheckAdminRole(profile *models.Profile) *Denial {
	if profile == nil || profile.Role != models.RoleAdmin {
		return AdminRequired()
	}
	return nil
}

// CheckOrganizationOwnership is guard step 3. Any inequality fails, including
// an absent profile organization.
func CheckOrganizationOwnership(profileOrgID *uuid.UUID, requestedOrgID uuid.UUID) *Denial {
	if profileOrgID == nil || *profileOrgID != requestedOrgID {
		return OrgMismatch()
	}
	return nil
}

// RequireField is guard step 4. Empty or whitespace-only values fail with
// "<Field> is required".
func RequireField(value, field string) *Denial {
	if strings.TrimSpace(value) == "" {
		return MissingField(field)
	}
	return nil
}
