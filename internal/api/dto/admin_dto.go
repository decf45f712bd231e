package dto

import (
	"github.com/desivolt/muzdesk/internal/domain"
	"github.com/desivolt/muzdesk/internal/service"
)

// AssignRequest payload. Presence is validated by the admin service.
type AssignRequest = service.AssignInput

// DeleteTicketRequest payload.
type DeleteTicketRequest = service.DeleteInput

// StatusUpdateRequest payload.
type StatusUpdateRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// DashboardResponse is the admin dashboard.
type DashboardResponse struct {
	Counts      service.StatusCounts     `json:"counts"`
	Tickets     []TicketResponse         `json:"tickets"`
	Performance []service.PerformanceRow `json:"performance"`
}

// ElectricianResponse lists an assignable electrician.
type ElectricianResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// NewDashboardResponse maps the dashboard view.
func NewDashboardResponse(view *service.DashboardView, catalog *domain.Catalog) DashboardResponse {
	return DashboardResponse{
		Counts:      view.Counts,
		Tickets:     NewTicketList(view.Tickets, catalog),
		Performance: view.Performance,
	}
}

// NewElectricianList maps identities.
func NewElectricianList(identities []domain.Identity) []ElectricianResponse {
	items := make([]ElectricianResponse, 0, len(identities))
	for _, identity := range identities {
		items = append(items, ElectricianResponse{
			ID:          identity.ID,
			Username:    identity.Username,
			DisplayName: identity.Name(),
		})
	}
	return items
}
