package service

import (
	"context"
	"errors"
	"testing"

	"github.com/desivolt/muzdesk/internal/domain"
	"github.com/desivolt/muzdesk/internal/events"
	"github.com/desivolt/muzdesk/internal/repository"
	apperrors "github.com/desivolt/muzdesk/pkg/util/errorutil"
)

func newTestCustomerService(repo repository.TicketRepository, dispatcher events.Dispatcher, numbers ...string) *CustomerService {
	if len(numbers) == 0 {
		numbers = []string{"MUZ-1234"}
	}
	return NewCustomerService(CustomerDependencies{
		TicketRepo:      repo,
		Dispatcher:      dispatcher,
		NumberGenerator: sequenceNumbers(numbers...),
		Clock:           fixedClock(),
	})
}

func TestCreateTicket(t *testing.T) {
	repo := newFakeTicketRepo()
	dispatcher := &recordingDispatcher{}
	svc := newTestCustomerService(repo, dispatcher)

	ticket, err := svc.CreateTicket(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateTicket failed: %v", err)
	}
	if ticket.Status != domain.TicketStatusPending {
		t.Errorf("expected status Pending, got '%s'", ticket.Status)
	}
	if ticket.AssignedTo != nil {
		t.Error("expected no assignee on a new ticket")
	}

	stored, err := repo.GetByID(context.Background(), ticket.ID)
	if err != nil {
		t.Fatalf("stored ticket missing: %v", err)
	}
	if stored.TicketNumber != ticket.TicketNumber || stored.TicketNumber != "MUZ-1234" {
		t.Errorf("receipt %s does not match stored %s", ticket.TicketNumber, stored.TicketNumber)
	}
	if got := dispatcher.types(); len(got) != 1 || got[0] != events.EventTicketCreated {
		t.Errorf("expected one ticket_created event, got %v", got)
	}
}

func TestCreateTicket_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateTicketInput)
		field  string
	}{
		{name: "missing name", mutate: func(in *CreateTicketInput) { in.Name = "" }, field: "name"},
		{name: "blank phone", mutate: func(in *CreateTicketInput) { in.Phone = "   " }, field: "phone"},
		{name: "missing address", mutate: func(in *CreateTicketInput) { in.Address = "" }, field: "address"},
		{name: "missing pincode", mutate: func(in *CreateTicketInput) { in.Pincode = "" }, field: "pincode"},
		{name: "missing appliance", mutate: func(in *CreateTicketInput) { in.ApplianceType = "" }, field: "appliance_type"},
		{name: "missing problem", mutate: func(in *CreateTicketInput) { in.ProblemDescription = "\n" }, field: "problem_description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeTicketRepo()
			svc := newTestCustomerService(repo, nil)

			input := validInput()
			tt.mutate(&input)
			_, err := svc.CreateTicket(context.Background(), input)

			var domainErr *apperrors.DomainError
			if !errors.As(err, &domainErr) || domainErr.Code != "VALIDATION_FAILED" {
				t.Fatalf("expected VALIDATION_FAILED, got %v", err)
			}
			if _, ok := domainErr.Details[tt.field]; !ok {
				t.Errorf("expected details to name %s, got %v", tt.field, domainErr.Details)
			}
			if repo.count() != 0 {
				t.Error("invalid input must not be written")
			}
		})
	}
}

func TestCreateTicket_LandmarkOptional(t *testing.T) {
	svc := newTestCustomerService(newFakeTicketRepo(), nil)
	input := validInput()
	input.Landmark = ""
	if _, err := svc.CreateTicket(context.Background(), input); err != nil {
		t.Fatalf("expected landmark to be optional, got %v", err)
	}
}

func TestCreateTicket_RetriesNumberCollision(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := newTestCustomerService(repo, nil, "MUZ-1111", "MUZ-1111", "MUZ-2222")

	first, err := svc.CreateTicket(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateTicket failed: %v", err)
	}
	second, err := svc.CreateTicket(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateTicket failed: %v", err)
	}
	if first.TicketNumber != "MUZ-1111" || second.TicketNumber != "MUZ-2222" {
		t.Errorf("expected MUZ-1111 then MUZ-2222, got %s then %s", first.TicketNumber, second.TicketNumber)
	}
}

func TestCreateTicket_GivesUpAfterRepeatedCollisions(t *testing.T) {
	repo := newFakeTicketRepo()
	repo.createErrs = []error{
		repository.ErrDuplicateNumber, repository.ErrDuplicateNumber, repository.ErrDuplicateNumber,
		repository.ErrDuplicateNumber, repository.ErrDuplicateNumber,
	}
	svc := newTestCustomerService(repo, nil)

	_, err := svc.CreateTicket(context.Background(), validInput())
	if !apperrors.IsCode(err, "WRITE_REJECTED") {
		t.Errorf("expected WRITE_REJECTED, got %v", err)
	}
	if len(repo.createErrs) != 0 {
		t.Errorf("expected %d attempts, %d left unused", maxNumberAttempts, len(repo.createErrs))
	}
}

func TestCreateTicket_WriteRejected(t *testing.T) {
	repo := newFakeTicketRepo()
	repo.createErrs = []error{errors.New("connection refused")}
	dispatcher := &recordingDispatcher{}
	svc := newTestCustomerService(repo, dispatcher)

	_, err := svc.CreateTicket(context.Background(), validInput())
	if !apperrors.IsCode(err, "WRITE_REJECTED") {
		t.Errorf("expected WRITE_REJECTED, got %v", err)
	}
	if len(dispatcher.types()) != 0 {
		t.Error("a failed write must not publish an event")
	}
}

func TestCreateTicket_StoreUnavailable(t *testing.T) {
	svc := NewCustomerService(CustomerDependencies{})
	_, err := svc.CreateTicket(context.Background(), validInput())
	if !apperrors.IsCode(err, "STORE_UNAVAILABLE") {
		t.Errorf("expected STORE_UNAVAILABLE, got %v", err)
	}
}

func TestTrackTicket(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := newTestCustomerService(repo, nil)

	created, err := svc.CreateTicket(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateTicket failed: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		wantCode string
	}{
		{name: "exact", input: "MUZ-1234"},
		{name: "lower case", input: "muz-1234"},
		{name: "padded", input: "  muz-1234 "},
		{name: "unknown", input: "MUZ-9999", wantCode: "NOT_FOUND"},
		{name: "empty", input: "  ", wantCode: "VALIDATION_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket, err := svc.TrackTicket(context.Background(), tt.input)
			if tt.wantCode != "" {
				if !apperrors.IsCode(err, tt.wantCode) {
					t.Errorf("expected %s, got %v", tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("TrackTicket failed: %v", err)
			}
			if ticket.ID != created.ID {
				t.Errorf("expected ticket %s, got %s", created.ID, ticket.ID)
			}
		})
	}
}

func TestTrackTicket_StoreError(t *testing.T) {
	repo := newFakeTicketRepo()
	repo.getErr = errors.New("timeout")
	svc := newTestCustomerService(repo, nil)

	_, err := svc.TrackTicket(context.Background(), "MUZ-1234")
	if !apperrors.IsCode(err, "STORE_UNAVAILABLE") {
		t.Errorf("expected STORE_UNAVAILABLE, got %v", err)
	}
}
