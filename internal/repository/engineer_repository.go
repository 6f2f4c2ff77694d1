package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicworks/triage-service/internal/domain"
)

// EngineerDirectory is the read-only roster boundary consumed by the
// assignment coordinator. Backed by an external directory; never mutated
// by the triage core.
type EngineerDirectory interface {
	List(ctx context.Context) ([]domain.Engineer, error)
}

type engineerDirectory struct {
	pool *pgxpool.Pool
}

// NewEngineerDirectory instantiates the directory over the accounts table,
// deriving workload stats from currently assigned tickets.
func NewEngineerDirectory(pool *pgxpool.Pool) EngineerDirectory {
	return &engineerDirectory{pool: pool}
}

func (d *engineerDirectory) List(ctx context.Context) ([]domain.Engineer, error) {
	const query = `
        SELECT a.name, a.email,
               COUNT(t.id) AS total_assigned,
               COUNT(t.id) FILTER (WHERE t.severity = 'HIGH') AS high_priority_assigned
        FROM accounts a
        LEFT JOIN tickets t ON t.assigned_to = a.name
        WHERE a.role = 'ENGINEER' AND a.active_flag
        GROUP BY a.name, a.email
        ORDER BY a.name`

	rows, err := d.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Engineer
	for rows.Next() {
		var eng domain.Engineer
		if err := rows.Scan(&eng.Name, &eng.Email, &eng.TotalAssigned, &eng.HighPriorityAssigned); err != nil {
			return nil, err
		}
		result = append(result, eng)
	}
	return result, rows.Err()
}
