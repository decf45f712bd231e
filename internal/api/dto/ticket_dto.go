package dto

import (
	"time"

	"github.com/desivolt/muzdesk/internal/domain"
)

// CreateTicketRequest is the complaint form payload.
type CreateTicketRequest struct {
	Name               string `json:"name"`
	Phone              string `json:"phone"`
	Address            string `json:"address"`
	Landmark           string `json:"landmark"`
	Pincode            string `json:"pincode"`
	ApplianceType      string `json:"appliance_type"`
	ProblemDescription string `json:"problem_description"`
}

// TicketResponse is the full ticket as staff see it.
type TicketResponse struct {
	ID                 string              `json:"id"`
	TicketNumber       string              `json:"ticket_number"`
	Name               string              `json:"name"`
	Phone              string              `json:"phone"`
	Address            string              `json:"address"`
	Landmark           string              `json:"landmark,omitempty"`
	Pincode            string              `json:"pincode"`
	ApplianceType      string              `json:"appliance_type"`
	ProblemDescription string              `json:"problem_description"`
	Status             domain.TicketStatus `json:"status"`
	AssignedTo         *string             `json:"assigned_to"`
	DeletedReason      *string             `json:"deleted_reason,omitempty"`
	ServiceCharge      *int                `json:"service_charge,omitempty"`
	Actionable         bool                `json:"actionable"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
	ResolvedAt         *time.Time          `json:"resolved_at,omitempty"`
}

// TrackingResponse is what anyone holding a ticket number sees. It carries
// no contact details.
type TrackingResponse struct {
	TicketNumber       string              `json:"ticket_number"`
	ApplianceType      string              `json:"appliance_type"`
	ProblemDescription string              `json:"problem_description"`
	Status             domain.TicketStatus `json:"status"`
	AssignedTo         *string             `json:"assigned_to"`
	ServiceCharge      *int                `json:"service_charge,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	ResolvedAt         *time.Time          `json:"resolved_at,omitempty"`
}

// ReceiptResponse confirms a submitted complaint.
type ReceiptResponse struct {
	TicketNumber  string              `json:"ticket_number"`
	Status        domain.TicketStatus `json:"status"`
	ServiceCharge *int                `json:"service_charge,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// NewTicketResponse maps a ticket, quoting the catalog charge when listed.
func NewTicketResponse(t *domain.Ticket, catalog *domain.Catalog) TicketResponse {
	return TicketResponse{
		ID:                 t.ID,
		TicketNumber:       t.TicketNumber,
		Name:               t.Name,
		Phone:              t.Phone,
		Address:            t.Address,
		Landmark:           t.Landmark,
		Pincode:            t.Pincode,
		ApplianceType:      t.ApplianceType,
		ProblemDescription: t.ProblemDescription,
		Status:             t.Status,
		AssignedTo:         t.AssignedTo,
		DeletedReason:      t.DeletedReason,
		ServiceCharge:      quote(catalog, t.ApplianceType),
		Actionable:         t.Actionable(),
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
		ResolvedAt:         t.ResolvedAt,
	}
}

// NewTicketList maps tickets in order.
func NewTicketList(tickets []domain.Ticket, catalog *domain.Catalog) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketResponse(&tickets[i], catalog))
	}
	return items
}

// NewTrackingResponse maps a ticket for its customer.
func NewTrackingResponse(t *domain.Ticket, catalog *domain.Catalog) TrackingResponse {
	return TrackingResponse{
		TicketNumber:       t.TicketNumber,
		ApplianceType:      t.ApplianceType,
		ProblemDescription: t.ProblemDescription,
		Status:             t.Status,
		AssignedTo:         t.AssignedTo,
		ServiceCharge:      quote(catalog, t.ApplianceType),
		CreatedAt:          t.CreatedAt,
		ResolvedAt:         t.ResolvedAt,
	}
}

// NewReceiptResponse maps a freshly created ticket.
func NewReceiptResponse(t *domain.Ticket, catalog *domain.Catalog) ReceiptResponse {
	return ReceiptResponse{
		TicketNumber:  t.TicketNumber,
		Status:        t.Status,
		ServiceCharge: quote(catalog, t.ApplianceType),
		CreatedAt:     t.CreatedAt,
	}
}

func quote(catalog *domain.Catalog, appliance string) *int {
	charge, ok := catalog.Charge(appliance)
	if !ok {
		return nil
	}
	return &charge
}
