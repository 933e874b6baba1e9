package realtime

import (
	"github.com/leavedesk/backend/internal/models"
)

// Event names pushed to organization rooms.
const (
	EventLeaveRequestSubmitted = "leave_request.submitted"
	EventLeaveRequestDecided   = "leave_request.decided"
)

// Events adapts the hub to the lifecycle service's publisher interface.
type Events struct {
	hub *Hub
}

// NewEvents creates the event publisher backed by the hub.
func NewEvents(hub *Hub) *Events {
	return &Events{hub: hub}
}

// LeaveRequestSubmitted announces a new pending request to the org room.
func (e *Events) LeaveRequestSubmitted(req *models.LeaveRequest) {
	e.hub.Broadcast(req.OrganizationID, EventLeaveRequestSubmitted, req)
}

// LeaveRequestDecided announces an approval or denial to the org room.
func (e *Events) LeaveRequestDecided(req *models.LeaveRequest) {
	e.hub.Broadcast(req.OrganizationID, EventLeaveRequestDecided, req)
}
