package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/desivolt/muzdesk/internal/domain"
	"github.com/desivolt/muzdesk/internal/events"
	"github.com/desivolt/muzdesk/internal/repository"
	apperrors "github.com/desivolt/muzdesk/pkg/util/errorutil"
)

// ElectricianService backs the assigned-ticket queue.
type ElectricianService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	now        func() time.Time
	logger     *zap.Logger
}

// ElectricianDependencies bundles collaborators for the electrician workflow.
type ElectricianDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      func() time.Time
}

// NewElectricianService constructs the service.
func NewElectricianService(deps ElectricianDependencies) *ElectricianService {
	svc := &ElectricianService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		now:        deps.Clock,
		logger:     deps.Logger,
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// Queue lists tickets assigned to the signed-in electrician, newest first.
func (s *ElectricianService) Queue(ctx context.Context, actor *domain.Session) ([]domain.Ticket, error) {
	if s.tickets == nil {
		return nil, apperrors.NewStoreUnavailable(errors.New("ticket repository not configured"))
	}
	name := actor.Name()
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{AssignedTo: &name})
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return tickets, nil
}

// AdvanceStatus moves one of the caller's tickets to In Progress or Resolved.
func (s *ElectricianService) AdvanceStatus(ctx context.Context, actor *domain.Session, ticketID string, target domain.TicketStatus) (*domain.Ticket, error) {
	if target != domain.TicketStatusInProgress && target != domain.TicketStatusResolved {
		return nil, apperrors.NewValidationError("status must be In Progress or Resolved", map[string]any{"status": target})
	}
	if s.tickets == nil {
		return nil, apperrors.NewStoreUnavailable(errors.New("ticket repository not configured"))
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, readError(err, "ticket", map[string]any{"id": ticketID})
	}
	if !ticket.IsAssignedTo(actor.Name()) {
		return nil, apperrors.NewForbidden("ticket is not assigned to you")
	}
	if guard := domain.CanAdvance(ticket.Status, target); !guard.Allowed {
		return nil, apperrors.NewConflict(guard.Reason, map[string]any{"status": ticket.Status})
	}

	updated, err := s.tickets.Patch(ctx, ticket.ID, domain.AdvancePatch(target, s.now()))
	if err != nil {
		return nil, writeError(err, "could not update the ticket status")
	}

	s.logger.Info("ticket status changed",
		zap.String("ticket_number", updated.TicketNumber),
		zap.String("from", string(ticket.Status)),
		zap.String("to", string(updated.Status)))
	publishEvent(ctx, s.dispatcher, s.now, events.Event{
		Type:         events.EventTicketStatusChanged,
		TicketID:     updated.ID,
		TicketNumber: updated.TicketNumber,
		Actor:        actorOf(actor),
		Payload:      events.TicketStatusChangedPayload{OldStatus: ticket.Status, NewStatus: updated.Status},
	})
	return updated, nil
}
