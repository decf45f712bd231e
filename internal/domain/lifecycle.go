package domain

import (
	"fmt"
	"time"
)

// GuardResult is the outcome of a lifecycle check.
type GuardResult struct {
	Allowed bool
	Reason  string
}

func allow() GuardResult { return GuardResult{Allowed: true} }

func deny(format string, args ...any) GuardResult {
	return GuardResult{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}

// CanAssign checks whether an admin may (re-)assign a ticket in the given status.
// Re-assignment of an In Progress ticket is permitted; terminal tickets are not touched.
func CanAssign(current TicketStatus) GuardResult {
	if current.Terminal() {
		return deny("ticket is %s and can no longer be assigned", current)
	}
	return allow()
}

// CanSoftDelete checks whether an admin may mark the ticket Deleted.
func CanSoftDelete(current TicketStatus) GuardResult {
	if current.Terminal() {
		return deny("ticket is already %s", current)
	}
	return allow()
}

// CanAdvance checks an electrician's forward transition from current to target.
func CanAdvance(current, target TicketStatus) GuardResult {
	if target != TicketStatusInProgress && target != TicketStatusResolved {
		return deny("status %q is not an electrician transition", target)
	}
	if current.Terminal() {
		return deny("ticket is %s and can no longer be updated", current)
	}
	return allow()
}

// AssignPatch sets the assignee and moves the ticket to In Progress.
func AssignPatch(displayName string) TicketPatch {
	status := TicketStatusInProgress
	return TicketPatch{Status: &status, AssignedTo: &displayName}
}

// SoftDeletePatch marks the ticket Deleted with a reason. The assignee is kept.
func SoftDeletePatch(reason string) TicketPatch {
	status := TicketStatusDeleted
	return TicketPatch{Status: &status, DeletedReason: &reason}
}

// AdvancePatch moves the ticket to target, stamping ResolvedAt when it reaches Resolved.
func AdvancePatch(target TicketStatus, now time.Time) TicketPatch {
	patch := TicketPatch{Status: &target}
	if target == TicketStatusResolved {
		resolvedAt := now.UTC()
		patch.ResolvedAt = &resolvedAt
	}
	return patch
}
