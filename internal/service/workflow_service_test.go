package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/civicworks/triage-service/internal/domain"
	"github.com/civicworks/triage-service/internal/repository"
	apperrors "github.com/civicworks/triage-service/pkg/util"
)

type fakeDirectory struct {
	engineers []domain.Engineer
	err       error
	calls     int
}

func (f *fakeDirectory) List(_ context.Context) ([]domain.Engineer, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.engineers, nil
}

type fakeActions struct {
	records []repository.TicketAction
	err     error
}

func (f *fakeActions) Create(_ context.Context, action *repository.TicketAction) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, *action)
	return nil
}

func (f *fakeActions) ResponseDurations(_ context.Context) ([]time.Duration, error) {
	return nil, nil
}

func defaultRoster() []domain.Engineer {
	return []domain.Engineer{
		{Name: "Alice", Email: "alice@example.com"},
		{Name: "Bob", Email: "bob@example.com", TotalAssigned: 3},
	}
}

func newTestWorkflow(t *testing.T, directory *fakeDirectory) (*WorkflowService, *repository.MemoryTicketRepository) {
	t.Helper()
	if directory == nil {
		directory = &fakeDirectory{engineers: defaultRoster()}
	}
	store := repository.NewMemoryTicketRepository()
	svc := NewWorkflowService(WorkflowDependencies{
		TicketRepo: store,
		Assignment: NewAssignmentService(directory),
	})
	return svc, store
}

func newAuditedWorkflow(t *testing.T, actions *fakeActions) (*WorkflowService, *repository.MemoryTicketRepository) {
	t.Helper()
	store := repository.NewMemoryTicketRepository()
	svc := NewWorkflowService(WorkflowDependencies{
		TicketRepo: store,
		Assignment: NewAssignmentService(&fakeDirectory{engineers: defaultRoster()}),
		ActionRepo: actions,
	})
	return svc, store
}

func citizen(id string) Actor {
	return Actor{ID: id, Name: "Reporter " + id, Role: domain.RoleCitizen}
}

func engineer() Actor {
	return Actor{ID: "eng-1", Name: "Alice", Role: domain.RoleEngineer}
}

func council() Actor {
	return Actor{ID: "cnc-1", Name: "Council Clerk", Role: domain.RoleCouncil}
}

func submitTicket(t *testing.T, svc *WorkflowService, reporter string) *domain.Ticket {
	t.Helper()
	ticket, err := svc.Submit(context.Background(), citizen(reporter), SubmitInput{
		Type:        domain.IssueTypeRoad,
		Severity:    domain.SeverityHigh,
		Location:    "Main St",
		Description: "pothole",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return ticket
}

func TestSubmitCreatesPendingTicket(t *testing.T) {
	svc, _ := newTestWorkflow(t, nil)

	ticket := submitTicket(t, svc, "u1")
	if ticket.Status != domain.TicketStatusPending {
		t.Fatalf("status = %s, want PENDING", ticket.Status)
	}
	if ticket.ID == "" {
		t.Fatal("expected generated id")
	}
	if ticket.CreatedAt.IsZero() {
		t.Fatal("expected createdAt to be set")
	}

	seen := map[string]bool{ticket.ID: true}
	for i := 0; i < 50; i++ {
		next := submitTicket(t, svc, "u1")
		if seen[next.ID] {
			t.Fatalf("duplicate id issued: %s", next.ID)
		}
		seen[next.ID] = true
	}
}

func TestSubmitValidation(t *testing.T) {
	svc, _ := newTestWorkflow(t, nil)

	tests := []struct {
		name  string
		actor Actor
		input SubmitInput
	}{
		{
			name:  "unknown type",
			actor: citizen("u1"),
			input: SubmitInput{Type: "BRIDGE", Severity: domain.SeverityLow},
		},
		{
			name:  "unknown severity",
			actor: citizen("u1"),
			input: SubmitInput{Type: domain.IssueTypeRoad, Severity: "CRITICAL"},
		},
		{
			name:  "empty reporter",
			actor: Actor{Role: domain.RoleCitizen},
			input: SubmitInput{Type: domain.IssueTypeRoad, Severity: domain.SeverityLow},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Submit(context.Background(), tc.actor, tc.input); !apperrors.IsCode(err, "VALIDATION_FAILED") {
				t.Fatalf("err = %v, want VALIDATION_FAILED", err)
			}
		})
	}
}

func TestAcceptAssignsEngineer(t *testing.T) {
	svc, _ := newTestWorkflow(t, nil)
	ticket := submitTicket(t, svc, "u1")

	accepted, err := svc.Accept(context.Background(), council(), ticket.ID, "dispatching crew", "Alice", "use cones")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != domain.TicketStatusAccepted {
		t.Fatalf("status = %s, want ACCEPTED", accepted.Status)
	}
	if accepted.AssignedTo != "Alice" {
		t.Fatalf("assignedTo = %q, want Alice", accepted.AssignedTo)
	}
	if accepted.Reason != "dispatching crew" {
		t.Fatalf("reason = %q", accepted.Reason)
	}
	if accepted.CouncilNotes != "use cones" {
		t.Fatalf("councilNotes = %q", accepted.CouncilNotes)
	}
}

func TestSecondTransitionFails(t *testing.T) {
	svc, store := newTestWorkflow(t, nil)
	ticket := submitTicket(t, svc, "u1")

	if _, err := svc.Accept(context.Background(), engineer(), ticket.ID, "r", "Alice", ""); err != nil {
		t.Fatalf("first accept: %v", err)
	}

	if _, err := svc.Accept(context.Background(), engineer(), ticket.ID, "r2", "Bob", ""); !apperrors.IsCode(err, "INVALID_TRANSITION") {
		t.Fatalf("second accept err = %v, want INVALID_TRANSITION", err)
	}
	if _, err := svc.Reject(context.Background(), engineer(), ticket.ID, "nope"); !apperrors.IsCode(err, "INVALID_TRANSITION") {
		t.Fatalf("reject err = %v, want INVALID_TRANSITION", err)
	}
	if _, err := svc.MarkSpam(context.Background(), engineer(), ticket.ID); !apperrors.IsCode(err, "INVALID_TRANSITION") {
		t.Fatalf("spam err = %v, want INVALID_TRANSITION", err)
	}

	// The failed attempts must not have mutated the ticket.
	current, err := store.GetByID(context.Background(), ticket.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if current.AssignedTo != "Alice" || current.Reason != "r" || current.Status != domain.TicketStatusAccepted {
		t.Fatalf("ticket mutated by rejected transition: %+v", current)
	}
}

func TestTransitionValidation(t *testing.T) {
	svc, _ := newTestWorkflow(t, nil)
	ticket := submitTicket(t, svc, "u1")

	if _, err := svc.Accept(context.Background(), engineer(), ticket.ID, "", "Alice", ""); !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("empty reason err = %v, want VALIDATION_FAILED", err)
	}
	if _, err := svc.Accept(context.Background(), engineer(), ticket.ID, "r", "", ""); !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("empty engineer err = %v, want VALIDATION_FAILED", err)
	}
	if _, err := svc.Reject(context.Background(), engineer(), ticket.ID, "   "); !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("blank reject reason err = %v, want VALIDATION_FAILED", err)
	}
	if _, err := svc.Accept(context.Background(), citizen("u2"), ticket.ID, "r", "Alice", ""); !apperrors.IsCode(err, "FORBIDDEN") {
		t.Fatalf("citizen accept err = %v, want FORBIDDEN", err)
	}
}

func TestAcceptUnknownEngineer(t *testing.T) {
	svc, store := newTestWorkflow(t, nil)
	ticket := submitTicket(t, svc, "u1")

	if _, err := svc.Accept(context.Background(), council(), ticket.ID, "r", "Mallory", ""); !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("err = %v, want VALIDATION_FAILED", err)
	}

	current, _ := store.GetByID(context.Background(), ticket.ID)
	if current.Status != domain.TicketStatusPending {
		t.Fatalf("status = %s, want PENDING", current.Status)
	}
}

func TestAcceptDirectoryDownLeavesTicketUntouched(t *testing.T) {
	directory := &fakeDirectory{err: errors.New("connection refused")}
	svc, store := newTestWorkflow(t, directory)
	ticket := submitTicket(t, svc, "u1")

	if _, err := svc.Accept(context.Background(), council(), ticket.ID, "r", "Alice", ""); !apperrors.IsCode(err, "UPSTREAM_UNAVAILABLE") {
		t.Fatalf("err = %v, want UPSTREAM_UNAVAILABLE", err)
	}
	if directory.calls != 1 {
		t.Fatalf("directory calls = %d, want 1 (no auto-retry)", directory.calls)
	}

	current, _ := store.GetByID(context.Background(), ticket.ID)
	if current.Status != domain.TicketStatusPending || current.AssignedTo != "" {
		t.Fatalf("store written despite directory failure: %+v", current)
	}
}

func TestMarkSpamNeedsNoReason(t *testing.T) {
	svc, _ := newTestWorkflow(t, nil)
	ticket := submitTicket(t, svc, "u1")

	spammed, err := svc.MarkSpam(context.Background(), engineer(), ticket.ID)
	if err != nil {
		t.Fatalf("markSpam: %v", err)
	}
	if spammed.Status != domain.TicketStatusSpam {
		t.Fatalf("status = %s, want SPAM", spammed.Status)
	}
	if spammed.Reason != "" {
		t.Fatalf("reason = %q, want empty", spammed.Reason)
	}
}

func TestTransitionOnMissingTicket(t *testing.T) {
	svc, _ := newTestWorkflow(t, nil)

	if _, err := svc.Accept(context.Background(), engineer(), "TKT-MISSING", "r", "Alice", ""); !apperrors.IsCode(err, "INVALID_TRANSITION") {
		t.Fatalf("err = %v, want INVALID_TRANSITION", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	svc, _ := newTestWorkflow(t, nil)
	ticket := submitTicket(t, svc, "u1")

	if err := svc.Delete(context.Background(), engineer(), "TKT-MISSING"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}

	if err := svc.Delete(context.Background(), engineer(), ticket.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(context.Background(), engineer(), ticket.ID); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}

	tickets, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, remaining := range tickets {
		if remaining.ID == ticket.ID {
			t.Fatalf("ticket %s still listed after delete", ticket.ID)
		}
	}

	if err := svc.Delete(context.Background(), council(), ticket.ID); !apperrors.IsCode(err, "FORBIDDEN") {
		t.Fatalf("council delete err = %v, want FORBIDDEN", err)
	}
}

func TestAcceptMovesTicketAcrossCouncilTabs(t *testing.T) {
	svc, _ := newTestWorkflow(t, nil)
	ticket := submitTicket(t, svc, "u1")
	submitTicket(t, svc, "u2")

	before := ProjectCouncil(mustListAll(t, svc), "N/A")
	if _, err := svc.Accept(context.Background(), engineer(), ticket.ID, "dispatching crew", "Bob", ""); err != nil {
		t.Fatalf("accept: %v", err)
	}
	after := ProjectCouncil(mustListAll(t, svc), "N/A")

	if got, want := tabCount(after.Tabs, TabCompleted), tabCount(before.Tabs, TabCompleted)+1; got != want {
		t.Fatalf("completed count = %d, want %d", got, want)
	}
	if got, want := tabCount(after.Tabs, TabPending), tabCount(before.Tabs, TabPending)-1; got != want {
		t.Fatalf("pending count = %d, want %d", got, want)
	}
}

func TestTransitionsRecordAuditActions(t *testing.T) {
	tests := []struct {
		name       string
		transition func(svc *WorkflowService, id string) error
		want       repository.ActionType
		wantReason string
		wantAssign string
	}{
		{
			name: "accept",
			transition: func(svc *WorkflowService, id string) error {
				_, err := svc.Accept(context.Background(), council(), id, "dispatching crew", "Alice", "")
				return err
			},
			want:       repository.ActionAccepted,
			wantReason: "dispatching crew",
			wantAssign: "Alice",
		},
		{
			name: "reject",
			transition: func(svc *WorkflowService, id string) error {
				_, err := svc.Reject(context.Background(), engineer(), id, "duplicate report")
				return err
			},
			want:       repository.ActionRejected,
			wantReason: "duplicate report",
		},
		{
			name: "spam",
			transition: func(svc *WorkflowService, id string) error {
				_, err := svc.MarkSpam(context.Background(), engineer(), id)
				return err
			},
			want: repository.ActionSpam,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			actions := &fakeActions{}
			svc, _ := newAuditedWorkflow(t, actions)
			ticket := submitTicket(t, svc, "u1")

			if err := tc.transition(svc, ticket.ID); err != nil {
				t.Fatalf("transition: %v", err)
			}

			if len(actions.records) != 1 {
				t.Fatalf("recorded actions = %d, want 1", len(actions.records))
			}
			record := actions.records[0]
			if record.ActionType != tc.want {
				t.Fatalf("actionType = %s, want %s", record.ActionType, tc.want)
			}
			if record.TicketID != ticket.ID {
				t.Fatalf("ticketID = %s, want %s", record.TicketID, ticket.ID)
			}
			if record.Reason != tc.wantReason {
				t.Fatalf("reason = %q, want %q", record.Reason, tc.wantReason)
			}
			if record.AssignedTo != tc.wantAssign {
				t.Fatalf("assignedTo = %q, want %q", record.AssignedTo, tc.wantAssign)
			}
			if !record.TicketCreatedAt.Equal(ticket.CreatedAt) {
				t.Fatalf("ticketCreatedAt = %v, want %v", record.TicketCreatedAt, ticket.CreatedAt)
			}
		})
	}
}

func TestDeleteRecordsActionForRemovedTicket(t *testing.T) {
	actions := &fakeActions{}
	svc, store := newAuditedWorkflow(t, actions)
	ticket := submitTicket(t, svc, "u1")

	if err := svc.Delete(context.Background(), engineer(), ticket.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := store.GetByID(context.Background(), ticket.ID); err == nil {
		t.Fatal("ticket row still present after delete")
	}
	if len(actions.records) != 1 {
		t.Fatalf("recorded actions = %d, want 1", len(actions.records))
	}
	record := actions.records[0]
	if record.ActionType != repository.ActionDeleted {
		t.Fatalf("actionType = %s, want DELETED", record.ActionType)
	}
	// The record captures the ticket's creation time even though the row
	// is gone.
	if !record.TicketCreatedAt.Equal(ticket.CreatedAt) {
		t.Fatalf("ticketCreatedAt = %v, want %v", record.TicketCreatedAt, ticket.CreatedAt)
	}

	// Deleting an absent id succeeds without adding a record.
	if err := svc.Delete(context.Background(), engineer(), ticket.ID); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
	if len(actions.records) != 1 {
		t.Fatalf("recorded actions = %d after repeat delete, want 1", len(actions.records))
	}
}

func TestAuditWriteFailureSurfaces(t *testing.T) {
	actions := &fakeActions{err: errors.New("insert failed")}
	svc, store := newAuditedWorkflow(t, actions)
	ticket := submitTicket(t, svc, "u1")

	_, err := svc.Accept(context.Background(), council(), ticket.ID, "dispatching crew", "Alice", "")
	if !apperrors.IsCode(err, "UPSTREAM_UNAVAILABLE") {
		t.Fatalf("err = %v, want UPSTREAM_UNAVAILABLE", err)
	}

	// The status write is last-writer-wins and lands before the audit
	// write; the surfaced error tells the caller the trail is incomplete.
	current, getErr := store.GetByID(context.Background(), ticket.ID)
	if getErr != nil {
		t.Fatalf("get: %v", getErr)
	}
	if current.Status != domain.TicketStatusAccepted {
		t.Fatalf("status = %s, want ACCEPTED", current.Status)
	}
}

func mustListAll(t *testing.T, svc *WorkflowService) []domain.Ticket {
	t.Helper()
	tickets, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	return tickets
}

func tabCount(tabs []Tab, key TabKey) int {
	for _, tab := range tabs {
		if tab.Key == key {
			return tab.Count
		}
	}
	return -1
}
