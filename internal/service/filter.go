package service

import (
	"strings"

	"github.com/civicworks/triage-service/internal/domain"
)

// SearchField names a ticket field the free-text query may match.
type SearchField string

const (
	SearchFieldLocation    SearchField = "LOCATION"
	SearchFieldDescription SearchField = "DESCRIPTION"
)

// FilterQuery narrows an already-tab-partitioned ticket list. A nil Type
// or Severity means "All". An empty Fields set falls back to searching
// location, description and type.
type FilterQuery struct {
	Query    string
	Type     *domain.IssueType
	Severity *domain.Severity
	Fields   []SearchField
}

// FilterTickets applies the query to the list. Text match is a
// case-insensitive substring check OR-combined across the selected
// fields; type and severity filters are ANDed on top. The filter is
// stable: output preserves input order, and an empty result is a valid
// outcome, not an error.
func FilterTickets(tickets []domain.Ticket, query FilterQuery) []domain.Ticket {
	result := make([]domain.Ticket, 0, len(tickets))
	needle := strings.ToLower(strings.TrimSpace(query.Query))

	searchLocation, searchDescription, searchType := resolveFields(query.Fields)

	for _, ticket := range tickets {
		if query.Type != nil && !strings.EqualFold(string(ticket.Type), string(*query.Type)) {
			continue
		}
		if query.Severity != nil && !strings.EqualFold(string(ticket.Severity), string(*query.Severity)) {
			continue
		}
		if needle != "" {
			matched := false
			if searchLocation && strings.Contains(strings.ToLower(ticket.Location), needle) {
				matched = true
			}
			if searchDescription && strings.Contains(strings.ToLower(ticket.Description), needle) {
				matched = true
			}
			if searchType && strings.Contains(strings.ToLower(string(ticket.Type)), needle) {
				matched = true
			}
			if !matched {
				continue
			}
		}
		result = append(result, ticket)
	}
	return result
}

// resolveFields maps the selected search fields to per-field toggles.
// No selection means the broad default: location, description and type.
func resolveFields(fields []SearchField) (location, description, issueType bool) {
	if len(fields) == 0 {
		return true, true, true
	}
	for _, field := range fields {
		switch field {
		case SearchFieldLocation:
			location = true
		case SearchFieldDescription:
			description = true
		}
	}
	return location, description, false
}
