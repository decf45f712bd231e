package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/desivolt/muzdesk/internal/domain"
)

var (
	// ErrNotFound is returned when no ticket matches the key.
	ErrNotFound = errors.New("ticket not found")
	// ErrDuplicateNumber is returned when a ticket number is already taken.
	ErrDuplicateNumber = errors.New("ticket number already exists")
	// ErrTicketClosed is returned by Patch when the stored ticket is already
	// Resolved or Deleted. Closed tickets are never updated.
	ErrTicketClosed = errors.New("ticket is closed")
)

// TicketFilter narrows List. The zero value lists every ticket.
type TicketFilter struct {
	AssignedTo    *string
	Statuses      []domain.TicketStatus
	CreatedBefore *time.Time
}

// TicketRepository is the complaint collection.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByTicketNumber(ctx context.Context, number string) (*domain.Ticket, error)
	Patch(ctx context.Context, id string, patch domain.TicketPatch) (*domain.Ticket, error)
}

const ticketColumns = `id, ticket_number, name, phone, address, landmark, pincode, appliance_type,
               problem_description, status, assigned_to, deleted_reason, created_at, updated_at, resolved_at`

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the Postgres repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_number, name, phone, address, landmark, pincode, appliance_type,
                             problem_description, status, assigned_to, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$11)
        RETURNING id, updated_at`
	err := r.pool.QueryRow(ctx, query,
		ticket.TicketNumber,
		ticket.Name,
		ticket.Phone,
		ticket.Address,
		ticket.Landmark,
		ticket.Pincode,
		ticket.ApplianceType,
		ticket.ProblemDescription,
		string(ticket.Status),
		ticket.AssignedTo,
		ticket.CreatedAt,
	).Scan(&ticket.ID, &ticket.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateNumber
	}
	return err
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByTicketNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ticket_number=$1`
	return r.fetchSingle(ctx, query, number)
}

func (r *ticketRepository) Patch(ctx context.Context, id string, patch domain.TicketPatch) (*domain.Ticket, error) {
	query := `
        UPDATE tickets SET
            status=COALESCE($1, status),
            assigned_to=COALESCE($2, assigned_to),
            deleted_reason=COALESCE($3, deleted_reason),
            resolved_at=COALESCE($4, resolved_at),
            updated_at=NOW()
        WHERE id=$5 AND status NOT IN ($6, $7)
        RETURNING ` + ticketColumns
	var status *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query,
		status,
		patch.AssignedTo,
		patch.DeletedReason,
		patch.ResolvedAt,
		id,
		string(domain.TicketStatusResolved),
		string(domain.TicketStatusDeleted),
	))
	if err == nil {
		return ticket, nil
	}
	if err = mapPgError(err); !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	// No row matched: either the id is unknown or the ticket is closed.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrTicketClosed
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, mapPgError(err)
	}
	return ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT ` + ticketColumns + ` FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, string(status))
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedBefore != nil {
		args = append(args, *filter.CreatedBefore)
		clauses = append(clauses, fmt.Sprintf("created_at < $%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC`, base, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket domain.Ticket
		status string
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.Name,
		&ticket.Phone,
		&ticket.Address,
		&ticket.Landmark,
		&ticket.Pincode,
		&ticket.ApplianceType,
		&ticket.ProblemDescription,
		&status,
		&ticket.AssignedTo,
		&ticket.DeletedReason,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ResolvedAt,
	); err != nil {
		return nil, err
	}
	ticket.Status = domain.TicketStatus(status)
	return &ticket, nil
}

func mapPgError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	// A malformed UUID key can never match a row.
	if errors.As(err, &pgErr) && pgErr.Code == "22P02" {
		return ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
