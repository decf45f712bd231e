package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/desivolt/muzdesk/internal/domain"
	"github.com/desivolt/muzdesk/internal/events"
	"github.com/desivolt/muzdesk/internal/repository"
	apperrors "github.com/desivolt/muzdesk/pkg/util/errorutil"
)

// ElectricianDirectory lists the electricians tickets can be assigned to.
type ElectricianDirectory interface {
	Electricians() []domain.Identity
	Lookup(id string) (*domain.Identity, bool)
}

// AssignInput is the admin's electrician selection.
type AssignInput struct {
	ElectricianID string `json:"electrician_id" validate:"required"`
}

// DeleteInput carries the mandatory soft-delete reason.
type DeleteInput struct {
	Reason string `json:"reason" validate:"required"`
}

// AdminService backs the dashboard, assignment, and soft delete.
type AdminService struct {
	tickets    repository.TicketRepository
	directory  ElectricianDirectory
	dispatcher events.Dispatcher
	validate   *validator.Validate
	now        func() time.Time
	logger     *zap.Logger
}

// AdminDependencies bundles collaborators for the admin workflow.
type AdminDependencies struct {
	TicketRepo repository.TicketRepository
	Directory  ElectricianDirectory
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      func() time.Time
}

// NewAdminService constructs the service.
func NewAdminService(deps AdminDependencies) *AdminService {
	svc := &AdminService{
		tickets:    deps.TicketRepo,
		directory:  deps.Directory,
		dispatcher: deps.Dispatcher,
		validate:   newValidator(),
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

// Electricians lists assignable electricians.
func (s *AdminService) Electricians() []domain.Identity {
	if s.directory == nil {
		return nil
	}
	return s.directory.Electricians()
}

// Dashboard recomputes counts, the full list, and performance from a fresh snapshot.
func (s *AdminService) Dashboard(ctx context.Context) (*DashboardView, error) {
	tickets, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	view := BuildDashboard(tickets, s.Electricians())
	return &view, nil
}

// Performance returns per-electrician counts.
func (s *AdminService) Performance(ctx context.Context) ([]PerformanceRow, error) {
	tickets, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return BuildPerformance(tickets, s.Electricians()), nil
}

func (s *AdminService) snapshot(ctx context.Context) ([]domain.Ticket, error) {
	if s.tickets == nil {
		return nil, apperrors.NewStoreUnavailable(errors.New("ticket repository not configured"))
	}
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return tickets, nil
}

// Assign hands a ticket to an electrician and moves it to In Progress.
// Pending and In Progress tickets may be (re-)assigned; Resolved and Deleted
// tickets are rejected.
func (s *AdminService) Assign(ctx context.Context, actor *domain.Session, ticketID, electricianID string) (*domain.Ticket, error) {
	selection := AssignInput{ElectricianID: strings.TrimSpace(electricianID)}
	if err := s.validate.Struct(selection); err != nil {
		return nil, validationError(err, "please select an electrician")
	}
	electricianID = selection.ElectricianID
	var elec *domain.Identity
	if s.directory != nil {
		if found, ok := s.directory.Lookup(electricianID); ok && found.Role == domain.RoleElectrician {
			elec = found
		}
	}
	if elec == nil {
		return nil, apperrors.NewNotFound("electrician", map[string]any{"electrician_id": electricianID})
	}

	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if guard := domain.CanAssign(ticket.Status); !guard.Allowed {
		return nil, apperrors.NewConflict(guard.Reason, map[string]any{"status": ticket.Status})
	}

	previous := ticket.AssignedTo
	updated, err := s.tickets.Patch(ctx, ticket.ID, domain.AssignPatch(elec.Name()))
	if err != nil {
		return nil, writeError(err, "could not assign the ticket")
	}

	s.logger.Info("ticket assigned",
		zap.String("ticket_number", updated.TicketNumber),
		zap.String("electrician", elec.Name()))
	publishEvent(ctx, s.dispatcher, s.now, events.Event{
		Type:         events.EventTicketAssigned,
		TicketID:     updated.ID,
		TicketNumber: updated.TicketNumber,
		Actor:        actorOf(actor),
		Payload:      events.TicketAssignedPayload{Electrician: elec.Name(), Previous: previous},
	})
	return updated, nil
}

// SoftDelete marks a ticket Deleted with a mandatory reason. The record and
// its assignee are kept.
func (s *AdminService) SoftDelete(ctx context.Context, actor *domain.Session, ticketID, reason string) (*domain.Ticket, error) {
	input := DeleteInput{Reason: strings.TrimSpace(reason)}
	if err := s.validate.Struct(input); err != nil {
		return nil, validationError(err, "a reason is required to delete a ticket")
	}
	reason = input.Reason

	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if guard := domain.CanSoftDelete(ticket.Status); !guard.Allowed {
		return nil, apperrors.NewConflict(guard.Reason, map[string]any{"status": ticket.Status})
	}

	updated, err := s.tickets.Patch(ctx, ticket.ID, domain.SoftDeletePatch(reason))
	if err != nil {
		return nil, writeError(err, "could not delete the ticket")
	}

	s.logger.Info("ticket deleted",
		zap.String("ticket_number", updated.TicketNumber),
		zap.String("reason", reason))
	publishEvent(ctx, s.dispatcher, s.now, events.Event{
		Type:         events.EventTicketDeleted,
		TicketID:     updated.ID,
		TicketNumber: updated.TicketNumber,
		Actor:        actorOf(actor),
		Payload:      events.TicketDeletedPayload{Reason: reason},
	})
	return updated, nil
}

func (s *AdminService) load(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	if s.tickets == nil {
		return nil, apperrors.NewStoreUnavailable(errors.New("ticket repository not configured"))
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, readError(err, "ticket", map[string]any{"id": ticketID})
	}
	return ticket, nil
}

func actorOf(sess *domain.Session) events.Actor {
	if sess == nil {
		return events.Actor{Role: domain.RoleCustomer}
	}
	return events.Actor{Role: sess.Role, Name: sess.Name()}
}
