package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ActionType enumerates recorded triage actions.
type ActionType string

const (
	ActionAccepted ActionType = "ACCEPTED"
	ActionRejected ActionType = "REJECTED"
	ActionSpam     ActionType = "SPAM"
	ActionDeleted  ActionType = "DELETED"
)

// TicketAction is an append-only audit record of a triage transition.
// Actions outlive the ticket row, so hard deletes keep a trail.
type TicketAction struct {
	ID              string
	TicketID        string
	ActionType      ActionType
	ActorID         string
	Reason          string
	AssignedTo      string
	TicketCreatedAt time.Time
	CreatedAt       time.Time
}

// ActionRepository persists the triage audit trail and supplies the
// response-time data used by the council dashboard.
type ActionRepository interface {
	Create(ctx context.Context, action *TicketAction) error
	// ResponseDurations returns, per triaged ticket, the elapsed time
	// between ticket creation and its first triage action.
	ResponseDurations(ctx context.Context) ([]time.Duration, error)
}

type actionRepository struct {
	pool *pgxpool.Pool
}

// NewActionRepository instantiates the repository.
func NewActionRepository(pool *pgxpool.Pool) ActionRepository {
	return &actionRepository{pool: pool}
}

func (r *actionRepository) Create(ctx context.Context, action *TicketAction) error {
	const query = `
        INSERT INTO ticket_actions (ticket_id, action_type, actor_id, reason, assigned_to, ticket_created_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		action.TicketID,
		action.ActionType,
		action.ActorID,
		action.Reason,
		action.AssignedTo,
		action.TicketCreatedAt,
	).Scan(&action.ID, &action.CreatedAt)
}

func (r *actionRepository) ResponseDurations(ctx context.Context) ([]time.Duration, error) {
	const query = `
        SELECT MIN(created_at) - ticket_created_at
        FROM ticket_actions
        WHERE action_type IN ('ACCEPTED', 'REJECTED', 'SPAM')
        GROUP BY ticket_id, ticket_created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []time.Duration
	for rows.Next() {
		var elapsed time.Duration
		if err := rows.Scan(&elapsed); err != nil {
			return nil, err
		}
		result = append(result, elapsed)
	}
	return result, rows.Err()
}
