package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/civicworks/triage-service/internal/api/dto"
	"github.com/civicworks/triage-service/internal/auth"
	"github.com/civicworks/triage-service/internal/cache"
	"github.com/civicworks/triage-service/internal/domain"
	"github.com/civicworks/triage-service/internal/service"
	apperrors "github.com/civicworks/triage-service/pkg/util"
)

// TriageHandler serves the engineer and council dashboards and the
// triage transition endpoints.
type TriageHandler struct {
	workflow   *service.WorkflowService
	assignment *service.AssignmentService
	stats      *service.StatsService
	snapshots  *cache.DashboardCache
}

// NewTriageHandler constructs the handler.
func NewTriageHandler(workflow *service.WorkflowService, assignment *service.AssignmentService, stats *service.StatsService, snapshots *cache.DashboardCache) *TriageHandler {
	return &TriageHandler{workflow: workflow, assignment: assignment, stats: stats, snapshots: snapshots}
}

// Dashboard GET /triage/dashboard. Returns the role projection; when a
// tab parameter is present the response additionally carries that tab's
// tickets narrowed by the filter parameters.
func (h *TriageHandler) Dashboard(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	switch principal.Role {
	case domain.RoleEngineer:
		return h.engineerDashboard(c)
	case domain.RoleCouncil:
		return h.councilDashboard(c)
	default:
		return apperrors.NewForbidden("role has no triage dashboard")
	}
}

func (h *TriageHandler) engineerDashboard(c *fiber.Ctx) error {
	var projection service.EngineerProjection
	if !h.snapshots.Get(c.Context(), domain.RoleEngineer, &projection) {
		tickets, err := h.workflow.ListAll(c.Context())
		if err != nil {
			return err
		}
		projection = service.ProjectEngineer(tickets, time.Now())
		h.snapshots.Set(c.Context(), domain.RoleEngineer, projection)
	}

	response := fiber.Map{
		"tabs":  tabSummaries(projection.Tabs),
		"stats": projection.Stats,
	}
	if tab := c.Query("tab"); tab != "" {
		results, err := selectTab(projection.Tabs, tab)
		if err != nil {
			return err
		}
		response["results"] = dto.FromTickets(service.FilterTickets(results, parseFilterQuery(c)))
	}
	return c.JSON(fiber.Map{"data": response})
}

func (h *TriageHandler) councilDashboard(c *fiber.Ctx) error {
	var projection service.CouncilProjection
	if !h.snapshots.Get(c.Context(), domain.RoleCouncil, &projection) {
		tickets, err := h.workflow.ListAll(c.Context())
		if err != nil {
			return err
		}
		avgResponse, err := h.stats.AverageResponseTime(c.Context())
		if err != nil {
			return apperrors.NewUpstreamUnavailable("ticket store", err)
		}
		projection = service.ProjectCouncil(tickets, avgResponse)
		h.snapshots.Set(c.Context(), domain.RoleCouncil, projection)
	}

	response := fiber.Map{
		"tabs":  tabSummaries(projection.Tabs),
		"stats": projection.Stats,
	}
	if tab := c.Query("tab"); tab != "" {
		results, err := selectTab(projection.Tabs, tab)
		if err != nil {
			return err
		}
		response["results"] = dto.FromTickets(service.FilterTickets(results, parseFilterQuery(c)))
	}
	return c.JSON(fiber.Map{"data": response})
}

// Accept POST /triage/tickets/:id/accept.
func (h *TriageHandler) Accept(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.TriageActionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.workflow.Accept(c.Context(), actorFromPrincipal(principal), c.Params("id"), req.Reason, req.Engineer, req.CouncilNotes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Reject POST /triage/tickets/:id/reject.
func (h *TriageHandler) Reject(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.TriageActionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.workflow.Reject(c.Context(), actorFromPrincipal(principal), c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// MarkSpam POST /triage/tickets/:id/spam.
func (h *TriageHandler) MarkSpam(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.workflow.MarkSpam(c.Context(), actorFromPrincipal(principal), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Delete DELETE /triage/tickets/:id.
func (h *TriageHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.workflow.Delete(c.Context(), actorFromPrincipal(principal), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Engineers GET /triage/engineers lists assignment candidates.
func (h *TriageHandler) Engineers(c *fiber.Ctx) error {
	engineers, err := h.assignment.ListCandidates(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromEngineers(engineers)})
}

func selectTab(tabs []service.Tab, key string) ([]domain.Ticket, error) {
	wanted := service.TabKey(strings.ToUpper(strings.TrimSpace(key)))
	for _, tab := range tabs {
		if tab.Key == wanted {
			return tab.Tickets, nil
		}
	}
	return nil, apperrors.NewValidationError("unknown tab", map[string]any{"tab": key})
}

func tabSummaries(tabs []service.Tab) []fiber.Map {
	result := make([]fiber.Map, 0, len(tabs))
	for _, tab := range tabs {
		result = append(result, fiber.Map{
			"key":   tab.Key,
			"count": tab.Count,
		})
	}
	return result
}
