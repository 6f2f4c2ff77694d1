package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/civicworks/triage-service/internal/api/dto"
	"github.com/civicworks/triage-service/internal/auth"
	"github.com/civicworks/triage-service/internal/domain"
	"github.com/civicworks/triage-service/internal/service"
	apperrors "github.com/civicworks/triage-service/pkg/util"
)

// TicketsHandler manages citizen-facing ticket endpoints.
type TicketsHandler struct {
	workflow *service.WorkflowService
}

// NewTicketsHandler constructs the handler.
func NewTicketsHandler(workflow *service.WorkflowService) *TicketsHandler {
	return &TicketsHandler{workflow: workflow}
}

// Submit POST /tickets.
func (h *TicketsHandler) Submit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SubmitTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.SubmitInput{
		Type:        domain.IssueType(strings.ToUpper(strings.TrimSpace(req.Type))),
		Severity:    domain.Severity(strings.ToUpper(strings.TrimSpace(req.Severity))),
		Location:    req.Location,
		Description: req.Description,
		ImageRef:    req.ImageRef,
	}
	ticket, err := h.workflow.Submit(c.Context(), actorFromPrincipal(principal), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Mine GET /tickets/mine returns the citizen projection of the caller's
// own tickets, optionally narrowed by the shared filter parameters.
func (h *TicketsHandler) Mine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	tickets, err := h.workflow.ListForReporter(c.Context(), principal.ID)
	if err != nil {
		return err
	}

	projection := service.ProjectCitizen(principal.ID, tickets)
	filtered := service.FilterTickets(projection.Tickets, parseFilterQuery(c))

	return c.JSON(fiber.Map{"data": fiber.Map{
		"tickets": dto.FromTickets(filtered),
		"counts": fiber.Map{
			"total":    projection.Total,
			"pending":  projection.Pending,
			"accepted": projection.Accepted,
			"rejected": projection.Rejected,
		},
	}})
}

// Get GET /tickets/:id. Citizens may only fetch their own reports.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.workflow.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	if principal.Role == domain.RoleCitizen && ticket.ReporterID != principal.ID {
		return apperrors.NewForbidden("access denied")
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

func actorFromPrincipal(principal *auth.Principal) service.Actor {
	return service.Actor{
		ID:   principal.ID,
		Name: principal.DisplayName,
		Role: principal.Role,
	}
}

// parseFilterQuery reads the shared q/type/severity/fields parameters.
func parseFilterQuery(c *fiber.Ctx) service.FilterQuery {
	query := service.FilterQuery{Query: c.Query("q")}

	if raw := strings.TrimSpace(c.Query("type")); raw != "" && !strings.EqualFold(raw, "all") {
		issueType := domain.IssueType(strings.ToUpper(raw))
		if issueType.Valid() {
			query.Type = &issueType
		}
	}
	if raw := strings.TrimSpace(c.Query("severity")); raw != "" && !strings.EqualFold(raw, "all") {
		severity := domain.Severity(strings.ToUpper(raw))
		if severity.Valid() {
			query.Severity = &severity
		}
	}
	if raw := strings.TrimSpace(c.Query("fields")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			switch strings.ToUpper(strings.TrimSpace(part)) {
			case string(service.SearchFieldLocation):
				query.Fields = append(query.Fields, service.SearchFieldLocation)
			case string(service.SearchFieldDescription):
				query.Fields = append(query.Fields, service.SearchFieldDescription)
			}
		}
	}
	return query
}
