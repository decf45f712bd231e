package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desivolt/muzdesk/internal/domain"
	"github.com/desivolt/muzdesk/internal/persistence"
	"github.com/desivolt/muzdesk/internal/repository"
)

func setupTicketRepo(t *testing.T) repository.TicketRepository {
	t.Helper()

	db, err := persistence.OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return repository.NewSQLiteTicketRepository(db)
}

func createTestTicket(t *testing.T, repo repository.TicketRepository, number string, createdAt time.Time) *domain.Ticket {
	t.Helper()

	ticket := &domain.Ticket{
		TicketNumber:       number,
		Name:               "Ravi",
		Phone:              "9000000000",
		Address:            "X",
		Pincode:            "842001",
		ApplianceType:      "Fan",
		ProblemDescription: "not spinning",
		Status:             domain.TicketStatusPending,
		CreatedAt:          createdAt,
	}
	if err := repo.Create(context.Background(), ticket); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return ticket
}

func TestSQLiteTicketRepository_Create(t *testing.T) {
	repo := setupTicketRepo(t)
	ctx := context.Background()

	created := createTestTicket(t, repo, "MUZ-1234", time.Now())
	if created.ID == "" {
		t.Fatal("expected storage id to be assigned")
	}

	retrieved, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if retrieved.TicketNumber != "MUZ-1234" {
		t.Errorf("expected ticket number 'MUZ-1234', got '%s'", retrieved.TicketNumber)
	}
	if retrieved.Status != domain.TicketStatusPending {
		t.Errorf("expected status Pending, got '%s'", retrieved.Status)
	}
	if retrieved.AssignedTo != nil {
		t.Errorf("expected nil assignee, got '%s'", *retrieved.AssignedTo)
	}
	if retrieved.ResolvedAt != nil || retrieved.DeletedReason != nil {
		t.Error("expected no resolution or deletion fields on a new ticket")
	}
}

func TestSQLiteTicketRepository_Create_DuplicateNumber(t *testing.T) {
	repo := setupTicketRepo(t)

	createTestTicket(t, repo, "MUZ-1234", time.Now())

	dup := &domain.Ticket{TicketNumber: "MUZ-1234", Status: domain.TicketStatusPending, CreatedAt: time.Now()}
	err := repo.Create(context.Background(), dup)
	if !errors.Is(err, repository.ErrDuplicateNumber) {
		t.Errorf("expected ErrDuplicateNumber, got %v", err)
	}
}

func TestSQLiteTicketRepository_GetByTicketNumber(t *testing.T) {
	repo := setupTicketRepo(t)
	ctx := context.Background()

	created := createTestTicket(t, repo, "MUZ-4821", time.Now())

	retrieved, err := repo.GetByTicketNumber(ctx, "MUZ-4821")
	if err != nil {
		t.Fatalf("GetByTicketNumber failed: %v", err)
	}
	if retrieved.ID != created.ID {
		t.Errorf("expected id '%s', got '%s'", created.ID, retrieved.ID)
	}

	_, err = repo.GetByTicketNumber(ctx, "MUZ-9999")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteTicketRepository_GetByID_NotFound(t *testing.T) {
	repo := setupTicketRepo(t)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteTicketRepository_Patch(t *testing.T) {
	repo := setupTicketRepo(t)
	ctx := context.Background()

	created := createTestTicket(t, repo, "MUZ-1111", time.Now())

	assigned, err := repo.Patch(ctx, created.ID, domain.AssignPatch("elec1"))
	if err != nil {
		t.Fatalf("Patch failed: %v", err)
	}
	if assigned.Status != domain.TicketStatusInProgress {
		t.Errorf("expected status In Progress, got '%s'", assigned.Status)
	}
	if !assigned.IsAssignedTo("elec1") {
		t.Errorf("expected assignee elec1, got %v", assigned.AssignedTo)
	}

	resolvedAt := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	resolved, err := repo.Patch(ctx, created.ID, domain.AdvancePatch(domain.TicketStatusResolved, resolvedAt))
	if err != nil {
		t.Fatalf("Patch failed: %v", err)
	}
	if resolved.Status != domain.TicketStatusResolved {
		t.Errorf("expected status Resolved, got '%s'", resolved.Status)
	}
	if resolved.ResolvedAt == nil || !resolved.ResolvedAt.Equal(resolvedAt) {
		t.Errorf("expected resolved_at %v, got %v", resolvedAt, resolved.ResolvedAt)
	}
	if !resolved.IsAssignedTo("elec1") {
		t.Error("status patch must not clear the assignee")
	}
}

func TestSQLiteTicketRepository_Patch_ClosedTicket(t *testing.T) {
	tests := []struct {
		name  string
		close domain.TicketPatch
	}{
		{name: "resolved", close: domain.AdvancePatch(domain.TicketStatusResolved, time.Now())},
		{name: "deleted", close: domain.SoftDeletePatch("duplicate")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := setupTicketRepo(t)
			ctx := context.Background()
			created := createTestTicket(t, repo, "MUZ-1111", time.Now())

			closed, err := repo.Patch(ctx, created.ID, tt.close)
			if err != nil {
				t.Fatalf("Patch failed: %v", err)
			}

			_, err = repo.Patch(ctx, created.ID, domain.AssignPatch("elec2"))
			if !errors.Is(err, repository.ErrTicketClosed) {
				t.Fatalf("expected ErrTicketClosed, got %v", err)
			}
			stored, err := repo.GetByID(ctx, created.ID)
			if err != nil {
				t.Fatalf("GetByID failed: %v", err)
			}
			if stored.Status != closed.Status || stored.AssignedTo != nil {
				t.Errorf("closed ticket changed: status %s, assignee %v", stored.Status, stored.AssignedTo)
			}
		})
	}
}

func TestSQLiteTicketRepository_Patch_NotFound(t *testing.T) {
	repo := setupTicketRepo(t)

	_, err := repo.Patch(context.Background(), "missing", domain.SoftDeletePatch("spam"))
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteTicketRepository_List(t *testing.T) {
	repo := setupTicketRepo(t)
	ctx := context.Background()

	base := time.Now().Add(-48 * time.Hour)
	t1 := createTestTicket(t, repo, "MUZ-1001", base)
	t2 := createTestTicket(t, repo, "MUZ-1002", base.Add(time.Hour))
	createTestTicket(t, repo, "MUZ-1003", time.Now())

	if _, err := repo.Patch(ctx, t1.ID, domain.AssignPatch("elec1")); err != nil {
		t.Fatalf("Patch failed: %v", err)
	}
	if _, err := repo.Patch(ctx, t2.ID, domain.AssignPatch("elec2")); err != nil {
		t.Fatalf("Patch failed: %v", err)
	}

	all, err := repo.List(ctx, repository.TicketFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 tickets, got %d", len(all))
	}
	if all[0].TicketNumber != "MUZ-1003" {
		t.Errorf("expected newest first, got '%s'", all[0].TicketNumber)
	}

	elec1 := "elec1"
	mine, err := repo.List(ctx, repository.TicketFilter{AssignedTo: &elec1})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != t1.ID {
		t.Errorf("expected only MUZ-1001 for elec1, got %d tickets", len(mine))
	}

	pending, err := repo.List(ctx, repository.TicketFilter{Statuses: []domain.TicketStatus{domain.TicketStatusPending}})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("expected 1 pending ticket, got %d", len(pending))
	}

	cutoff := time.Now().Add(-24 * time.Hour)
	old, err := repo.List(ctx, repository.TicketFilter{CreatedBefore: &cutoff})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(old) != 2 {
		t.Errorf("expected 2 tickets older than a day, got %d", len(old))
	}
}
