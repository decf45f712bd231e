package domain

import (
	"strings"
	"testing"
	"time"
)

func TestCanAssign(t *testing.T) {
	tests := []struct {
		name        string
		current     TicketStatus
		wantAllowed bool
	}{
		{name: "pending ticket can be assigned", current: TicketStatusPending, wantAllowed: true},
		{name: "in progress ticket can be re-assigned", current: TicketStatusInProgress, wantAllowed: true},
		{name: "resolved ticket cannot be assigned", current: TicketStatusResolved, wantAllowed: false},
		{name: "deleted ticket cannot be assigned", current: TicketStatusDeleted, wantAllowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanAssign(tt.current)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("CanAssign(%q).Allowed = %v, want %v", tt.current, result.Allowed, tt.wantAllowed)
			}
			if !tt.wantAllowed && result.Reason == "" {
				t.Error("expected a reason for a denied assignment")
			}
		})
	}
}

func TestCanSoftDelete(t *testing.T) {
	tests := []struct {
		current     TicketStatus
		wantAllowed bool
	}{
		{TicketStatusPending, true},
		{TicketStatusInProgress, true},
		{TicketStatusResolved, false},
		{TicketStatusDeleted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.current), func(t *testing.T) {
			if got := CanSoftDelete(tt.current).Allowed; got != tt.wantAllowed {
				t.Errorf("CanSoftDelete(%q).Allowed = %v, want %v", tt.current, got, tt.wantAllowed)
			}
		})
	}
}

func TestCanAdvance(t *testing.T) {
	tests := []struct {
		name        string
		current     TicketStatus
		target      TicketStatus
		wantAllowed bool
		wantReason  string
	}{
		{name: "in progress to resolved", current: TicketStatusInProgress, target: TicketStatusResolved, wantAllowed: true},
		{name: "in progress to in progress", current: TicketStatusInProgress, target: TicketStatusInProgress, wantAllowed: true},
		{name: "pending to in progress", current: TicketStatusPending, target: TicketStatusInProgress, wantAllowed: true},
		{name: "resolved is final", current: TicketStatusResolved, target: TicketStatusInProgress, wantAllowed: false, wantReason: "can no longer be updated"},
		{name: "resolved cannot resolve again", current: TicketStatusResolved, target: TicketStatusResolved, wantAllowed: false, wantReason: "can no longer be updated"},
		{name: "deleted is final", current: TicketStatusDeleted, target: TicketStatusResolved, wantAllowed: false, wantReason: "can no longer be updated"},
		{name: "no transition back to pending", current: TicketStatusInProgress, target: TicketStatusPending, wantAllowed: false, wantReason: "not an electrician transition"},
		{name: "electrician cannot delete", current: TicketStatusInProgress, target: TicketStatusDeleted, wantAllowed: false, wantReason: "not an electrician transition"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanAdvance(tt.current, tt.target)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if !tt.wantAllowed && !strings.Contains(result.Reason, tt.wantReason) {
				t.Errorf("Reason = %q, want it to contain %q", result.Reason, tt.wantReason)
			}
		})
	}
}

func TestAdvancePatch(t *testing.T) {
	fixedTime := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

	resolved := AdvancePatch(TicketStatusResolved, fixedTime)
	if resolved.Status == nil || *resolved.Status != TicketStatusResolved {
		t.Fatalf("Status = %v, want Resolved", resolved.Status)
	}
	if resolved.ResolvedAt == nil || !resolved.ResolvedAt.Equal(fixedTime) {
		t.Errorf("ResolvedAt = %v, want %v", resolved.ResolvedAt, fixedTime)
	}

	inProgress := AdvancePatch(TicketStatusInProgress, fixedTime)
	if inProgress.ResolvedAt != nil {
		t.Errorf("ResolvedAt = %v, want nil", inProgress.ResolvedAt)
	}
}

func TestAssignAndDeletePatches(t *testing.T) {
	ticket := &Ticket{Status: TicketStatusPending}

	AssignPatch("elec1").ApplyTo(ticket)
	if ticket.Status != TicketStatusInProgress {
		t.Errorf("Status = %q, want %q", ticket.Status, TicketStatusInProgress)
	}
	if !ticket.IsAssignedTo("elec1") {
		t.Errorf("AssignedTo = %v, want elec1", ticket.AssignedTo)
	}

	SoftDeletePatch("duplicate complaint").ApplyTo(ticket)
	if ticket.Status != TicketStatusDeleted {
		t.Errorf("Status = %q, want %q", ticket.Status, TicketStatusDeleted)
	}
	if ticket.DeletedReason == nil || *ticket.DeletedReason != "duplicate complaint" {
		t.Errorf("DeletedReason = %v, want %q", ticket.DeletedReason, "duplicate complaint")
	}
	if !ticket.IsAssignedTo("elec1") {
		t.Error("soft delete must not alter the assignee")
	}
	if ticket.Actionable() {
		t.Error("deleted ticket should not be actionable")
	}
}

func TestTicketPatchEmpty(t *testing.T) {
	if !(TicketPatch{}).Empty() {
		t.Error("zero patch should be empty")
	}
	if AssignPatch("elec2").Empty() {
		t.Error("assign patch should not be empty")
	}
}
