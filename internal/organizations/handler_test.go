package organizations

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/leavedesk/backend/internal/middleware"
	"github.com/leavedesk/backend/internal/models"
	"github.com/leavedesk/backend/pkg/response"
)

func sheetLinkContext(t *testing.T, body SheetLinkRequest, userID *uuid.UUID, profile *models.Profile) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	raw, err := json.Marshal(body)
	require.NoError(t, err)
	c.Request = httptest.NewRequest(http.MethodPut, "/organizations/sheet", bytes.NewReader(raw))
	c.Request.Header.Set("Content-Type", "application/json")

	if userID != nil {
		c.Set(middleware.ContextUserID, *userID)
	}
	if profile != nil {
		c.Set(middleware.ContextProfile, profile)
	}
	return c, rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body response.Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body.Error
}

// The guard chain over the sheet-link operation: each row differs from the
// previous one in exactly one condition, and the first failing check decides
// the response.
func TestLinkSheetGuardMatrix(t *testing.T) {
	orgID := uuid.New()
	otherOrgID := uuid.New()
	userID := uuid.New()

	admin := &models.Profile{UserID: userID, Role: models.RoleAdmin, OrganizationID: &orgID}
	staff := &models.Profile{UserID: userID, Role: models.RoleStaff, OrganizationID: &orgID}

	h := NewHandler(nil, nil, zap.NewNop())

	tests := []struct {
		name        string
		body        SheetLinkRequest
		userID      *uuid.UUID
		profile     *models.Profile
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "unauthenticated",
			body:        SheetLinkRequest{SheetID: "sheet-1", OrganizationID: orgID.String()},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Unauthorized",
		},
		{
			name:        "authenticated without profile",
			body:        SheetLinkRequest{SheetID: "sheet-1", OrganizationID: orgID.String()},
			userID:      &userID,
			wantStatus:  http.StatusForbidden,
			wantMessage: "Forbidden - Admin access required",
		},
		{
			name:        "staff role",
			body:        SheetLinkRequest{SheetID: "sheet-1", OrganizationID: orgID.String()},
			userID:      &userID,
			profile:     staff,
			wantStatus:  http.StatusForbidden,
			wantMessage: "Forbidden - Admin access required",
		},
		{
			name:        "admin missing organization id",
			body:        SheetLinkRequest{SheetID: "sheet-1"},
			userID:      &userID,
			profile:     admin,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Organization ID is required",
		},
		{
			name:        "admin of another organization",
			body:        SheetLinkRequest{SheetID: "sheet-1", OrganizationID: otherOrgID.String()},
			userID:      &userID,
			profile:     admin,
			wantStatus:  http.StatusForbidden,
			wantMessage: "Forbidden - Organization mismatch",
		},
		{
			name:        "admin missing sheet id",
			body:        SheetLinkRequest{OrganizationID: orgID.String()},
			userID:      &userID,
			profile:     admin,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Sheet ID is required",
		},
		{
			name:        "whitespace sheet id",
			body:        SheetLinkRequest{SheetID: "   ", OrganizationID: orgID.String()},
			userID:      &userID,
			profile:     admin,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Sheet ID is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := sheetLinkContext(t, tt.body, tt.userID, tt.profile)
			h.LinkSheet(c)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantMessage, decodeError(t, rec))
		})
	}
}

func TestLinkSheetInvalidOrganizationID(t *testing.T) {
	userID := uuid.New()
	orgID := uuid.New()
	admin := &models.Profile{UserID: userID, Role: models.RoleAdmin, OrganizationID: &orgID}
	h := NewHandler(nil, nil, zap.NewNop())

	c, rec := sheetLinkContext(t, SheetLinkRequest{SheetID: "sheet-1", OrganizationID: "not-a-uuid"}, &userID, admin)
	h.LinkSheet(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
