package domain

import "time"

// TicketStatus enumerates lifecycle states for complaints.
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "Pending"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusResolved   TicketStatus = "Resolved"
	TicketStatusDeleted    TicketStatus = "Deleted"
)

// Valid reports whether s is one of the known statuses.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusPending, TicketStatusInProgress, TicketStatusResolved, TicketStatusDeleted:
		return true
	}
	return false
}

// Terminal reports whether no workflow may move a ticket out of s.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusResolved || s == TicketStatusDeleted
}

// Open reports whether the ticket still awaits a repair.
func (s TicketStatus) Open() bool {
	return s == TicketStatusPending || s == TicketStatusInProgress
}

// Ticket is a customer-reported service request.
type Ticket struct {
	ID                 string
	TicketNumber       string
	Name               string
	Phone              string
	Address            string
	Landmark           string
	Pincode            string
	ApplianceType      string
	ProblemDescription string
	Status             TicketStatus
	AssignedTo         *string
	DeletedReason      *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	ResolvedAt         *time.Time
}

// Actionable reports whether admin affordances (assign, delete) apply.
func (t *Ticket) Actionable() bool {
	return !t.Status.Terminal()
}

// IsAssignedTo reports whether the ticket's assignee equals name.
func (t *Ticket) IsAssignedTo(name string) bool {
	return t.AssignedTo != nil && *t.AssignedTo == name
}

// TicketPatch lists the fields a single update call may touch. Nil fields are left as stored.
type TicketPatch struct {
	Status        *TicketStatus
	AssignedTo    *string
	DeletedReason *string
	ResolvedAt    *time.Time
}

// Empty reports whether the patch would change nothing.
func (p TicketPatch) Empty() bool {
	return p.Status == nil && p.AssignedTo == nil && p.DeletedReason == nil && p.ResolvedAt == nil
}

// ApplyTo copies the patched fields onto t.
func (p TicketPatch) ApplyTo(t *Ticket) {
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.AssignedTo != nil {
		name := *p.AssignedTo
		t.AssignedTo = &name
	}
	if p.DeletedReason != nil {
		reason := *p.DeletedReason
		t.DeletedReason = &reason
	}
	if p.ResolvedAt != nil {
		at := *p.ResolvedAt
		t.ResolvedAt = &at
	}
}
