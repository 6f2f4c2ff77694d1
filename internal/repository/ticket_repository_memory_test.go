package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/civicworks/triage-service/internal/domain"
)

func seedMemoryRepo(t *testing.T, n int) *MemoryTicketRepository {
	t.Helper()
	repo := NewMemoryTicketRepository()
	for i := 1; i <= n; i++ {
		ticket := &domain.Ticket{
			ID:         fmt.Sprintf("TKT-%04d", i),
			Type:       domain.IssueTypeRoad,
			Severity:   domain.SeverityLow,
			ReporterID: fmt.Sprintf("u%d", i%2),
			Status:     domain.TicketStatusPending,
		}
		if err := repo.Create(context.Background(), ticket); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	return repo
}

func TestMemoryRepoListsNewestFirst(t *testing.T) {
	repo := seedMemoryRepo(t, 3)

	tickets, err := repo.List(context.Background(), TicketFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tickets) != 3 {
		t.Fatalf("len = %d, want 3", len(tickets))
	}
	if tickets[0].ID != "TKT-0003" || tickets[2].ID != "TKT-0001" {
		t.Fatalf("order = %s..%s, want newest first", tickets[0].ID, tickets[2].ID)
	}
}

func TestMemoryRepoListFilters(t *testing.T) {
	repo := seedMemoryRepo(t, 4)
	reporter := "u1"

	tickets, err := repo.List(context.Background(), TicketFilter{ReporterID: &reporter})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, ticket := range tickets {
		if ticket.ReporterID != reporter {
			t.Fatalf("foreign ticket %s in filtered list", ticket.ID)
		}
	}
	if len(tickets) != 2 {
		t.Fatalf("len = %d, want 2", len(tickets))
	}
}

func TestMemoryRepoUpdateMissingReturnsNoRows(t *testing.T) {
	repo := NewMemoryTicketRepository()

	err := repo.Update(context.Background(), &domain.Ticket{ID: "TKT-MISSING"})
	if !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("err = %v, want pgx.ErrNoRows", err)
	}
}

func TestMemoryRepoGetReturnsCopy(t *testing.T) {
	repo := seedMemoryRepo(t, 1)

	first, err := repo.GetByID(context.Background(), "TKT-0001")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	first.Status = domain.TicketStatusSpam

	second, err := repo.GetByID(context.Background(), "TKT-0001")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if second.Status != domain.TicketStatusPending {
		t.Fatal("mutation of a returned ticket leaked into the store")
	}
}

func TestMemoryRepoDeleteMissingIsNoOp(t *testing.T) {
	repo := seedMemoryRepo(t, 2)

	if err := repo.Delete(context.Background(), "TKT-MISSING"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	if err := repo.Delete(context.Background(), "TKT-0001"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), "TKT-0001"); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("get after delete = %v, want pgx.ErrNoRows", err)
	}
}
