package repository

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/civicworks/triage-service/internal/domain"
)

// MemoryTicketRepository is a mutex-guarded in-memory TicketRepository.
// Tickets are copied on the way in and out, so a concurrent reader can
// never observe a ticket mixing an old status with a new assignee.
type MemoryTicketRepository struct {
	mu      sync.Mutex
	tickets []domain.Ticket
}

// NewMemoryTicketRepository creates an empty store.
func NewMemoryTicketRepository() *MemoryTicketRepository {
	return &MemoryTicketRepository{}
}

func (r *MemoryTicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = now
	}
	ticket.UpdatedAt = now
	// Newest first, matching the backing store's native order.
	r.tickets = append([]domain.Ticket{*ticket}, r.tickets...)
	return nil
}

func (r *MemoryTicketRepository) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tickets {
		if r.tickets[i].ID == ticket.ID {
			ticket.UpdatedAt = time.Now()
			r.tickets[i] = *ticket
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *MemoryTicketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tickets {
		if r.tickets[i].ID == id {
			found := r.tickets[i]
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *MemoryTicketRepository) List(_ context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if !matchesFilter(ticket, filter) {
			continue
		}
		result = append(result, ticket)
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return nil, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *MemoryTicketRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tickets {
		if r.tickets[i].ID == id {
			r.tickets = append(r.tickets[:i], r.tickets[i+1:]...)
			return nil
		}
	}
	return nil
}

func matchesFilter(ticket domain.Ticket, filter TicketFilter) bool {
	if filter.ReporterID != nil && ticket.ReporterID != *filter.ReporterID {
		return false
	}
	if filter.AssignedTo != nil && ticket.AssignedTo != *filter.AssignedTo {
		return false
	}
	if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
		return false
	}
	if len(filter.Types) > 0 && !containsType(filter.Types, ticket.Type) {
		return false
	}
	if len(filter.Severities) > 0 && !containsSeverity(filter.Severities, ticket.Severity) {
		return false
	}
	return true
}

func containsStatus(values []domain.TicketStatus, v domain.TicketStatus) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func containsType(values []domain.IssueType, v domain.IssueType) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func containsSeverity(values []domain.Severity, v domain.Severity) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
