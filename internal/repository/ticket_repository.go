package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicworks/triage-service/internal/domain"
)

// TicketFilter captures listing parameters. Results are always ordered
// reverse-chronologically by creation time; callers must not re-sort.
type TicketFilter struct {
	ReporterID *string
	Statuses   []domain.TicketStatus
	Types      []domain.IssueType
	Severities []domain.Severity
	AssignedTo *string
	Limit      int
	Offset     int
}

// TicketRepository is the persistence boundary for tickets. The store is
// the sole arbiter of final state; writes are last-writer-wins.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// Delete removes a ticket permanently. Deleting an absent id is a
	// no-op success.
	Delete(ctx context.Context, id string) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, issue_type, severity, location, description, reporter_id, reporter_name,
               status, reason, assigned_to, council_notes, image_ref, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, issue_type, severity, location, description, reporter_id, reporter_name,
                             status, reason, assigned_to, council_notes, image_ref)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ID,
		ticket.Type,
		ticket.Severity,
		ticket.Location,
		ticket.Description,
		ticket.ReporterID,
		ticket.ReporterName,
		ticket.Status,
		ticket.Reason,
		ticket.AssignedTo,
		ticket.CouncilNotes,
		ticket.ImageRef,
	).Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET issue_type=$1, severity=$2, location=$3, description=$4,
            status=$5, reason=$6, assigned_to=$7, council_notes=$8, image_ref=$9, updated_at=NOW()
        WHERE id=$10`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Type,
		ticket.Severity,
		ticket.Location,
		ticket.Description,
		ticket.Status,
		ticket.Reason,
		ticket.AssignedTo,
		ticket.CouncilNotes,
		ticket.ImageRef,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)

	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Type,
		&ticket.Severity,
		&ticket.Location,
		&ticket.Description,
		&ticket.ReporterID,
		&ticket.ReporterName,
		&ticket.Status,
		&ticket.Reason,
		&ticket.AssignedTo,
		&ticket.CouncilNotes,
		&ticket.ImageRef,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ReporterID != nil {
		args = append(args, *filter.ReporterID)
		clauses = append(clauses, fmt.Sprintf("reporter_id=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		for i, issueType := range filter.Types {
			args = append(args, issueType)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("issue_type IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Severities) > 0 {
		placeholders := make([]string, len(filter.Severities))
		for i, severity := range filter.Severities {
			args = append(args, severity)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("severity IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	// Intentionally ignores RowsAffected: delete is idempotent.
	_, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	return err
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Type,
			&ticket.Severity,
			&ticket.Location,
			&ticket.Description,
			&ticket.ReporterID,
			&ticket.ReporterName,
			&ticket.Status,
			&ticket.Reason,
			&ticket.AssignedTo,
			&ticket.CouncilNotes,
			&ticket.ImageRef,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
