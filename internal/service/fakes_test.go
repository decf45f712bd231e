package service

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/desivolt/muzdesk/internal/domain"
	"github.com/desivolt/muzdesk/internal/events"
	"github.com/desivolt/muzdesk/internal/repository"
)

// fakeTicketRepo is an in-memory TicketRepository with failure injection.
type fakeTicketRepo struct {
	mu       sync.Mutex
	byID     map[string]domain.Ticket
	nextID   int
	listErr  error
	getErr   error
	patchErr error
	// createErrs is consumed one per Create call.
	createErrs []error
	patches    int
	// afterGet runs once GetByID has read the ticket, outside the lock.
	afterGet func(id string)
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{byID: make(map[string]domain.Ticket)}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.createErrs) > 0 {
		err := r.createErrs[0]
		r.createErrs = r.createErrs[1:]
		if err != nil {
			return err
		}
	}
	for _, t := range r.byID {
		if t.TicketNumber == ticket.TicketNumber {
			return repository.ErrDuplicateNumber
		}
	}
	r.nextID++
	ticket.ID = "t" + strconv.Itoa(r.nextID)
	ticket.UpdatedAt = ticket.CreatedAt
	r.byID[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []domain.Ticket
	for _, t := range r.byID {
		if filter.AssignedTo != nil && !t.IsAssignedTo(*filter.AssignedTo) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, t.Status) {
			continue
		}
		if filter.CreatedBefore != nil && !t.CreatedAt.Before(*filter.CreatedBefore) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	if r.getErr != nil {
		r.mu.Unlock()
		return nil, r.getErr
	}
	t, ok := r.byID[id]
	hook := r.afterGet
	r.mu.Unlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	if hook != nil {
		hook(id)
	}
	return &t, nil
}

// force overwrites a stored status without going through Patch.
func (r *fakeTicketRepo) force(id string, status domain.TicketStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.byID[id]
	t.Status = status
	r.byID[id] = t
}

func (r *fakeTicketRepo) status(id string) domain.TicketStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id].Status
}

func (r *fakeTicketRepo) GetByTicketNumber(_ context.Context, number string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, t := range r.byID {
		if t.TicketNumber == number {
			return &t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTicketRepo) Patch(_ context.Context, id string, patch domain.TicketPatch) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.patchErr != nil {
		return nil, r.patchErr
	}
	t, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if t.Status.Terminal() {
		return nil, repository.ErrTicketClosed
	}
	patch.ApplyTo(&t)
	r.byID[id] = t
	r.patches++
	return &t, nil
}

func (r *fakeTicketRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func containsStatus(statuses []domain.TicketStatus, s domain.TicketStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// fakeDirectory is a fixed electrician list.
type fakeDirectory struct {
	identities []domain.Identity
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{identities: []domain.Identity{
		{ID: "admin1", Username: "admin1", Role: domain.RoleAdmin},
		{ID: "elec1", Username: "elec1", Role: domain.RoleElectrician},
		{ID: "elec2", Username: "elec2", Role: domain.RoleElectrician},
	}}
}

func (d *fakeDirectory) Electricians() []domain.Identity {
	var out []domain.Identity
	for _, id := range d.identities {
		if id.Role == domain.RoleElectrician {
			out = append(out, id)
		}
	}
	return out
}

func (d *fakeDirectory) Lookup(id string) (*domain.Identity, bool) {
	for _, identity := range d.identities {
		if identity.ID == id {
			found := identity
			return &found, true
		}
	}
	return nil, false
}

// recordingDispatcher captures published events.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, len(d.events))
	for i, e := range d.events {
		out[i] = e.Type
	}
	return out
}

func fixedClock() func() time.Time {
	now := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func sequenceNumbers(numbers ...string) domain.TicketNumberGenerator {
	i := 0
	return func() string {
		n := numbers[i%len(numbers)]
		i++
		return n
	}
}

func electricianSession(name string) *domain.Session {
	return &domain.Session{ID: "s-" + name, IdentityID: name, Username: name, Role: domain.RoleElectrician}
}

func adminSession() *domain.Session {
	return &domain.Session{ID: "s-admin", IdentityID: "admin1", Username: "admin1", Role: domain.RoleAdmin}
}

func validInput() CreateTicketInput {
	return CreateTicketInput{
		Name:               "Ravi",
		Phone:              "9000000000",
		Address:            "X",
		Pincode:            "842001",
		ApplianceType:      "Fan",
		ProblemDescription: "not spinning",
	}
}
