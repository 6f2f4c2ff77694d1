package dto

import "github.com/civicworks/triage-service/internal/domain"

// EngineerResponse is a roster entry with workload stats.
type EngineerResponse struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	TotalAssigned        int    `json:"total_assigned"`
	HighPriorityAssigned int    `json:"high_priority_assigned"`
}

// FromEngineers maps the roster onto the wire shape.
func FromEngineers(engineers []domain.Engineer) []EngineerResponse {
	result := make([]EngineerResponse, 0, len(engineers))
	for _, eng := range engineers {
		result = append(result, EngineerResponse{
			Name:                 eng.Name,
			Email:                eng.Email,
			TotalAssigned:        eng.TotalAssigned,
			HighPriorityAssigned: eng.HighPriorityAssigned,
		})
	}
	return result
}
