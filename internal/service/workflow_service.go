package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/civicworks/triage-service/internal/domain"
	"github.com/civicworks/triage-service/internal/events"
	"github.com/civicworks/triage-service/internal/repository"
	apperrors "github.com/civicworks/triage-service/pkg/util"
)

// Actor identifies the caller of a workflow operation.
type Actor struct {
	ID   string
	Name string
	Role domain.Role
}

// SubmitInput describes a new citizen report.
type SubmitInput struct {
	Type        domain.IssueType
	Severity    domain.Severity
	Location    string
	Description string
	ImageRef    string
}

// CacheInvalidator is notified after every successful mutation so stale
// dashboard snapshots are dropped.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// WorkflowService is the single authority for ticket status changes and
// the fields coupled to them. Every mutation performs at most one store
// write; the store is last-writer-wins.
type WorkflowService struct {
	tickets    repository.TicketRepository
	assignment *AssignmentService
	actions    repository.ActionRepository
	dispatcher events.Dispatcher
	cache      CacheInvalidator
}

// WorkflowDependencies bundles collaborators for the workflow service.
// Actions, Dispatcher and Cache are optional.
type WorkflowDependencies struct {
	TicketRepo repository.TicketRepository
	Assignment *AssignmentService
	ActionRepo repository.ActionRepository
	Dispatcher events.Dispatcher
	Cache      CacheInvalidator
}

// NewWorkflowService constructs the service.
func NewWorkflowService(deps WorkflowDependencies) *WorkflowService {
	return &WorkflowService{
		tickets:    deps.TicketRepo,
		assignment: deps.Assignment,
		actions:    deps.ActionRepo,
		dispatcher: deps.Dispatcher,
		cache:      deps.Cache,
	}
}

// Submit creates a new ticket in PENDING state with a generated id.
func (s *WorkflowService) Submit(ctx context.Context, actor Actor, input SubmitInput) (*domain.Ticket, error) {
	if !input.Type.Valid() {
		return nil, apperrors.NewValidationError("unknown issue type", map[string]any{"type": input.Type})
	}
	if !input.Severity.Valid() {
		return nil, apperrors.NewValidationError("unknown severity", map[string]any{"severity": input.Severity})
	}
	if strings.TrimSpace(actor.ID) == "" {
		return nil, apperrors.NewValidationError("reporter id required", nil)
	}

	ticket := &domain.Ticket{
		ID:           generateTicketID(),
		Type:         input.Type,
		Severity:     input.Severity,
		Location:     strings.TrimSpace(input.Location),
		Description:  strings.TrimSpace(input.Description),
		ReporterID:   actor.ID,
		ReporterName: actor.Name,
		Status:       domain.TicketStatusPending,
		ImageRef:     input.ImageRef,
	}
	if ticket.ReporterName == "" {
		ticket.ReporterName = "Anonymous"
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, mapStoreError(err)
	}
	s.invalidate(ctx)
	s.publish(ctx, events.Event{
		Type:     events.EventTicketSubmitted,
		TicketID: ticket.ID,
		Actor:    events.Actor{ID: actor.ID, Role: actor.Role},
		Payload: events.TicketSubmittedPayload{
			Type:     ticket.Type,
			Severity: ticket.Severity,
			Location: ticket.Location,
		},
	})
	return ticket, nil
}

// Accept transitions a PENDING ticket to ACCEPTED and assigns an engineer.
// The directory is consulted before the store write; if the roster cannot
// be read, no write occurs.
func (s *WorkflowService) Accept(ctx context.Context, actor Actor, ticketID, reason, engineerName, councilNotes string) (*domain.Ticket, error) {
	if err := requireTriageRole(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewValidationError("reason required to accept", nil)
	}
	if strings.TrimSpace(engineerName) == "" {
		return nil, apperrors.NewValidationError("engineer required to accept", nil)
	}

	ok, err := s.assignment.ValidateAssignable(ctx, engineerName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewValidationError("engineer not in directory", map[string]any{"engineer": engineerName})
	}

	ticket, err := s.loadForTransition(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	ticket.Status = domain.TicketStatusAccepted
	ticket.Reason = strings.TrimSpace(reason)
	ticket.AssignedTo = strings.TrimSpace(engineerName)
	ticket.CouncilNotes = strings.TrimSpace(councilNotes)
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, mapStoreError(err)
	}

	if err := s.recordAction(ctx, actor, ticket, repository.ActionAccepted); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    events.Actor{ID: actor.ID, Role: actor.Role},
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
			Reason:    ticket.Reason,
		},
	})
	s.publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Actor:    events.Actor{ID: actor.ID, Role: actor.Role},
		Payload: events.TicketAssignedPayload{
			AssignedTo:   ticket.AssignedTo,
			CouncilNotes: ticket.CouncilNotes,
		},
	})
	return ticket, nil
}

// Reject transitions a PENDING ticket to REJECTED with a justification.
func (s *WorkflowService) Reject(ctx context.Context, actor Actor, ticketID, reason string) (*domain.Ticket, error) {
	if err := requireTriageRole(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewValidationError("reason required to reject", nil)
	}

	ticket, err := s.loadForTransition(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	ticket.Status = domain.TicketStatusRejected
	ticket.Reason = strings.TrimSpace(reason)
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, mapStoreError(err)
	}

	if err := s.recordAction(ctx, actor, ticket, repository.ActionRejected); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    events.Actor{ID: actor.ID, Role: actor.Role},
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
			Reason:    ticket.Reason,
		},
	})
	return ticket, nil
}

// MarkSpam transitions a PENDING ticket to SPAM. No reason is required:
// the engineer flow never asked for one, and the field stays untouched.
func (s *WorkflowService) MarkSpam(ctx context.Context, actor Actor, ticketID string) (*domain.Ticket, error) {
	if err := requireTriageRole(actor); err != nil {
		return nil, err
	}

	ticket, err := s.loadForTransition(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	ticket.Status = domain.TicketStatusSpam
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, mapStoreError(err)
	}

	if err := s.recordAction(ctx, actor, ticket, repository.ActionSpam); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    events.Actor{ID: actor.ID, Role: actor.Role},
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		},
	})
	return ticket, nil
}

// Delete removes a ticket permanently regardless of status. Deleting a
// non-existent id is a no-op success.
func (s *WorkflowService) Delete(ctx context.Context, actor Actor, ticketID string) error {
	if actor.Role != domain.RoleEngineer {
		return apperrors.NewForbidden("only engineers may delete tickets")
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return mapStoreError(err)
	}

	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		return mapStoreError(err)
	}

	if err := s.recordAction(ctx, actor, ticket, repository.ActionDeleted); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.publish(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticket.ID,
		Actor:    events.Actor{ID: actor.ID, Role: actor.Role},
		Payload:  events.TicketDeletedPayload{Status: ticket.Status},
	})
	return nil
}

// Get fetches a single ticket.
func (s *WorkflowService) Get(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, mapStoreError(err)
	}
	return ticket, nil
}

// ListForReporter returns a citizen's own tickets in store order.
func (s *WorkflowService) ListForReporter(ctx context.Context, reporterID string) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{ReporterID: &reporterID})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return tickets, nil
}

// ListAll returns every ticket in store order.
func (s *WorkflowService) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return tickets, nil
}

// loadForTransition fetches a ticket and verifies it is still PENDING.
// A missing ticket is an illegal transition, not a NotFound.
func (s *WorkflowService) loadForTransition(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidTransition("ticket does not exist", map[string]any{"ticket_id": ticketID})
		}
		return nil, mapStoreError(err)
	}
	if ticket.Status.IsTerminal() {
		return nil, apperrors.NewInvalidTransition("ticket is not pending", map[string]any{
			"ticket_id": ticketID,
			"status":    ticket.Status,
		})
	}
	return ticket, nil
}

// recordAction appends to the audit trail. A failed write surfaces to the
// caller: the trail is what outlives hard deletes and feeds the response
// time stat, so losing a record silently is not acceptable.
func (s *WorkflowService) recordAction(ctx context.Context, actor Actor, ticket *domain.Ticket, actionType repository.ActionType) error {
	if s.actions == nil {
		return nil
	}
	if err := s.actions.Create(ctx, &repository.TicketAction{
		TicketID:        ticket.ID,
		ActionType:      actionType,
		ActorID:         actor.ID,
		Reason:          ticket.Reason,
		AssignedTo:      ticket.AssignedTo,
		TicketCreatedAt: ticket.CreatedAt,
	}); err != nil {
		return apperrors.NewUpstreamUnavailable("audit trail", err)
	}
	return nil
}

func (s *WorkflowService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx)
}

func (s *WorkflowService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func requireTriageRole(actor Actor) error {
	if !actor.Role.CanTriage() {
		return apperrors.NewForbidden("role may not triage tickets")
	}
	return nil
}

func mapStoreError(err error) error {
	return apperrors.NewUpstreamUnavailable("ticket store", err)
}

func generateTicketID() string {
	return "TKT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
