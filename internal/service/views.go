package service

import (
	"github.com/desivolt/muzdesk/internal/domain"
)

// StatusCounts partitions the collection by status. Total includes deleted tickets.
type StatusCounts struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Resolved   int `json:"resolved"`
	Deleted    int `json:"deleted"`
}

// PerformanceRow is one electrician's workload.
type PerformanceRow struct {
	ElectricianID string `json:"electrician_id"`
	Electrician   string `json:"electrician"`
	Assigned      int    `json:"assigned"`
	Solved        int    `json:"solved"`
	Pending       int    `json:"pending"`
}

// DashboardView is everything the admin screen renders from one snapshot.
type DashboardView struct {
	Counts      StatusCounts     `json:"counts"`
	Tickets     []domain.Ticket  `json:"-"`
	Performance []PerformanceRow `json:"performance"`
}

// CountByStatus tallies tickets per status.
func CountByStatus(tickets []domain.Ticket) StatusCounts {
	counts := StatusCounts{Total: len(tickets)}
	for _, t := range tickets {
		switch t.Status {
		case domain.TicketStatusPending:
			counts.Pending++
		case domain.TicketStatusInProgress:
			counts.InProgress++
		case domain.TicketStatusResolved:
			counts.Resolved++
		case domain.TicketStatusDeleted:
			counts.Deleted++
		}
	}
	return counts
}

// BuildPerformance derives per-electrician counts. Pending counts assigned
// tickets that are still Pending or In Progress.
func BuildPerformance(tickets []domain.Ticket, electricians []domain.Identity) []PerformanceRow {
	rows := make([]PerformanceRow, 0, len(electricians))
	for _, elec := range electricians {
		row := PerformanceRow{ElectricianID: elec.ID, Electrician: elec.Name()}
		for i := range tickets {
			t := &tickets[i]
			if !t.IsAssignedTo(row.Electrician) {
				continue
			}
			row.Assigned++
			if t.Status == domain.TicketStatusResolved {
				row.Solved++
			}
			if t.Status.Open() {
				row.Pending++
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// BuildDashboard recomputes the admin view from a snapshot.
func BuildDashboard(tickets []domain.Ticket, electricians []domain.Identity) DashboardView {
	return DashboardView{
		Counts:      CountByStatus(tickets),
		Tickets:     tickets,
		Performance: BuildPerformance(tickets, electricians),
	}
}
