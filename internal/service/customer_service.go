package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/desivolt/muzdesk/internal/domain"
	"github.com/desivolt/muzdesk/internal/events"
	"github.com/desivolt/muzdesk/internal/repository"
	apperrors "github.com/desivolt/muzdesk/pkg/util/errorutil"
)

const maxNumberAttempts = 5

// CustomerService lodges and tracks tickets for anonymous customers.
type CustomerService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	catalog    *domain.Catalog
	validate   *validator.Validate
	newNumber  domain.TicketNumberGenerator
	now        func() time.Time
	logger     *zap.Logger
}

// CustomerDependencies bundles collaborators for the customer workflow.
type CustomerDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Catalog    *domain.Catalog
	Logger     *zap.Logger
	// NumberGenerator and Clock default to NewTicketNumber and time.Now.
	NumberGenerator domain.TicketNumberGenerator
	Clock           func() time.Time
}

// CreateTicketInput is the complaint form. Landmark is optional.
type CreateTicketInput struct {
	Name               string `json:"name" validate:"required"`
	Phone              string `json:"phone" validate:"required"`
	Address            string `json:"address" validate:"required"`
	Landmark           string `json:"landmark"`
	Pincode            string `json:"pincode" validate:"required"`
	ApplianceType      string `json:"appliance_type" validate:"required"`
	ProblemDescription string `json:"problem_description" validate:"required"`
}

func (in *CreateTicketInput) trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	in.Landmark = strings.TrimSpace(in.Landmark)
	in.Pincode = strings.TrimSpace(in.Pincode)
	in.ApplianceType = strings.TrimSpace(in.ApplianceType)
	in.ProblemDescription = strings.TrimSpace(in.ProblemDescription)
}

// NewCustomerService constructs the service.
func NewCustomerService(deps CustomerDependencies) *CustomerService {
	svc := &CustomerService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		catalog:    deps.Catalog,
		validate:   newValidator(),
		newNumber:  deps.NumberGenerator,
		now:        deps.Clock,
		logger:     deps.Logger,
	}
	if svc.newNumber == nil {
		svc.newNumber = domain.NewTicketNumber
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.catalog == nil {
		svc.catalog = domain.NewCatalog(domain.DefaultPriceList)
	}
	return svc
}

// Catalog returns the price list quoted to customers.
func (s *CustomerService) Catalog() *domain.Catalog {
	return s.catalog
}

// CreateTicket stores a new Pending, unassigned ticket under a fresh number.
func (s *CustomerService) CreateTicket(ctx context.Context, input CreateTicketInput) (*domain.Ticket, error) {
	if s.tickets == nil {
		return nil, apperrors.NewStoreUnavailable(errors.New("ticket repository not configured"))
	}
	input.trim()
	if err := s.validate.Struct(input); err != nil {
		return nil, validationError(err, "please fill in all required fields")
	}

	ticket := &domain.Ticket{
		Name:               input.Name,
		Phone:              input.Phone,
		Address:            input.Address,
		Landmark:           input.Landmark,
		Pincode:            input.Pincode,
		ApplianceType:      input.ApplianceType,
		ProblemDescription: input.ProblemDescription,
		Status:             domain.TicketStatusPending,
		CreatedAt:          s.now().UTC(),
	}

	var err error
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		ticket.ID = ""
		ticket.TicketNumber = domain.NormalizeTicketNumber(s.newNumber())
		err = s.tickets.Create(ctx, ticket)
		if !errors.Is(err, repository.ErrDuplicateNumber) {
			break
		}
		s.logger.Warn("ticket number collision; retrying",
			zap.String("ticket_number", ticket.TicketNumber),
			zap.Int("attempt", attempt))
	}
	if err != nil {
		return nil, apperrors.NewWriteRejected("could not submit the complaint, please try again", err)
	}

	s.logger.Info("ticket created", zap.String("ticket_number", ticket.TicketNumber))
	publishEvent(ctx, s.dispatcher, s.now, events.Event{
		Type:         events.EventTicketCreated,
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketNumber,
		Actor:        events.Actor{Role: domain.RoleCustomer, Name: ticket.Name},
		Payload: events.TicketCreatedPayload{
			ApplianceType: ticket.ApplianceType,
			Pincode:       ticket.Pincode,
		},
	})
	return ticket, nil
}

// TrackTicket resolves a customer-entered ticket number, ignoring case and surrounding space.
func (s *CustomerService) TrackTicket(ctx context.Context, number string) (*domain.Ticket, error) {
	if s.tickets == nil {
		return nil, apperrors.NewStoreUnavailable(errors.New("ticket repository not configured"))
	}
	normalized := domain.NormalizeTicketNumber(number)
	if normalized == "" {
		return nil, apperrors.NewValidationError("ticket number is required", map[string]any{"ticket_number": "required"})
	}

	ticket, err := s.tickets.GetByTicketNumber(ctx, normalized)
	if err != nil {
		return nil, readError(err, "ticket number", map[string]any{"ticket_number": normalized})
	}
	return ticket, nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

func validationError(err error, message string) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	details := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fe.Tag()
	}
	return apperrors.NewValidationError(message, details)
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, now func() time.Time, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = now().UTC()
	}
	_ = dispatcher.Publish(ctx, event)
}
