package dto

import (
	"time"

	"github.com/civicworks/triage-service/internal/domain"
)

// SubmitTicketRequest payload.
type SubmitTicketRequest struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Location    string `json:"location"`
	Description string `json:"description"`
	ImageRef    string `json:"image_ref,omitempty"`
}

// TriageActionRequest carries accept/reject parameters.
type TriageActionRequest struct {
	Reason       string `json:"reason"`
	Engineer     string `json:"engineer,omitempty"`
	CouncilNotes string `json:"council_notes,omitempty"`
}

// TicketResponse is the full wire representation of a ticket.
type TicketResponse struct {
	ID           string              `json:"id"`
	Type         domain.IssueType    `json:"type"`
	Severity     domain.Severity     `json:"severity"`
	Location     string              `json:"location"`
	Description  string              `json:"description"`
	ReporterID   string              `json:"reporter_id"`
	ReporterName string              `json:"reporter_name"`
	Status       domain.TicketStatus `json:"status"`
	Reason       string              `json:"reason,omitempty"`
	AssignedTo   string              `json:"assigned_to,omitempty"`
	CouncilNotes string              `json:"council_notes,omitempty"`
	ImageRef     string              `json:"image_ref,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// FromTicket maps a domain ticket onto the wire shape.
func FromTicket(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:           ticket.ID,
		Type:         ticket.Type,
		Severity:     ticket.Severity,
		Location:     ticket.Location,
		Description:  ticket.Description,
		ReporterID:   ticket.ReporterID,
		ReporterName: ticket.ReporterName,
		Status:       ticket.Status,
		Reason:       ticket.Reason,
		AssignedTo:   ticket.AssignedTo,
		CouncilNotes: ticket.CouncilNotes,
		ImageRef:     ticket.ImageRef,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
	}
}

// FromTickets maps a slice preserving order.
func FromTickets(tickets []domain.Ticket) []TicketResponse {
	result := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		result = append(result, FromTicket(&tickets[i]))
	}
	return result
}
