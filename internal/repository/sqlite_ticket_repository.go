package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/desivolt/muzdesk/internal/domain"
)

const sqliteTicketColumns = "id, ticket_number, name, phone, address, landmark, pincode, appliance_type, problem_description, status, assigned_to, deleted_reason, created_at, updated_at, resolved_at"

type sqliteTicketRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteTicketRepository instantiates the embedded-store repository.
func NewSQLiteTicketRepository(db *sql.DB) TicketRepository {
	return &sqliteTicketRepository{db: db, now: time.Now}
}

func (r *sqliteTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	ticket.UpdatedAt = ticket.CreatedAt

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO tickets (id, ticket_number, name, phone, address, landmark, pincode, appliance_type, problem_description, status, assigned_to, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		ticket.ID, ticket.TicketNumber, ticket.Name, ticket.Phone, ticket.Address, ticket.Landmark, ticket.Pincode,
		ticket.ApplianceType, ticket.ProblemDescription, string(ticket.Status), nullString(ticket.AssignedTo),
		ticket.CreatedAt.UTC(), ticket.UpdatedAt.UTC(),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrDuplicateNumber
		}
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return nil
}

func (r *sqliteTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+sqliteTicketColumns+" FROM tickets WHERE id = ?", id)
	return r.single(row)
}

func (r *sqliteTicketRepository) GetByTicketNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+sqliteTicketColumns+" FROM tickets WHERE ticket_number = ?", number)
	return r.single(row)
}

func (r *sqliteTicketRepository) single(row *sql.Row) (*domain.Ticket, error) {
	ticket, err := scanSQLiteTicket(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return ticket, nil
}

func (r *sqliteTicketRepository) Patch(ctx context.Context, id string, patch domain.TicketPatch) (*domain.Ticket, error) {
	sets := []string{"updated_at = ?"}
	args := []any{r.now().UTC()}

	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*patch.Status))
	}
	if patch.AssignedTo != nil {
		sets = append(sets, "assigned_to = ?")
		args = append(args, *patch.AssignedTo)
	}
	if patch.DeletedReason != nil {
		sets = append(sets, "deleted_reason = ?")
		args = append(args, *patch.DeletedReason)
	}
	if patch.ResolvedAt != nil {
		sets = append(sets, "resolved_at = ?")
		args = append(args, patch.ResolvedAt.UTC())
	}
	args = append(args, id, string(domain.TicketStatusResolved), string(domain.TicketStatusDeleted))

	res, err := r.db.ExecContext(ctx, "UPDATE tickets SET "+strings.Join(sets, ", ")+" WHERE id = ? AND status NOT IN (?, ?)", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update ticket: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to update ticket: %w", err)
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrTicketClosed
	}
	return r.GetByID(ctx, id)
}

func (r *sqliteTicketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	query := "SELECT " + sqliteTicketColumns + " FROM tickets WHERE 1=1"
	args := []any{}

	if filter.AssignedTo != nil {
		query += " AND assigned_to = ?"
		args = append(args, *filter.AssignedTo)
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, string(status))
		}
		query += " AND status IN (" + strings.Join(placeholders, ",") + ")"
	}
	if filter.CreatedBefore != nil {
		query += " AND created_at < ?"
		args = append(args, filter.CreatedBefore.UTC())
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		ticket, err := scanSQLiteTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, *ticket)
	}
	return tickets, rows.Err()
}

func scanSQLiteTicket(scanner interface {
	Scan(dest ...any) error
}) (*domain.Ticket, error) {
	var (
		ticket        domain.Ticket
		status        string
		assignedTo    sql.NullString
		deletedReason sql.NullString
		resolvedAt    sql.NullTime
	)
	err := scanner.Scan(
		&ticket.ID, &ticket.TicketNumber, &ticket.Name, &ticket.Phone, &ticket.Address, &ticket.Landmark,
		&ticket.Pincode, &ticket.ApplianceType, &ticket.ProblemDescription, &status,
		&assignedTo, &deletedReason, &ticket.CreatedAt, &ticket.UpdatedAt, &resolvedAt,
	)
	if err != nil {
		return nil, err
	}

	ticket.Status = domain.TicketStatus(status)
	if assignedTo.Valid {
		ticket.AssignedTo = &assignedTo.String
	}
	if deletedReason.Valid {
		ticket.DeletedReason = &deletedReason.String
	}
	if resolvedAt.Valid {
		at := resolvedAt.Time
		ticket.ResolvedAt = &at
	}
	return &ticket, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
