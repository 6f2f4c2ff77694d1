package service

import (
	"context"
	"fmt"
	"time"

	"github.com/civicworks/triage-service/internal/repository"
)

// StatsService derives the council dashboard's average response time from
// the triage action trail. The projector consumes the result as an opaque
// string.
type StatsService struct {
	actions repository.ActionRepository
}

// NewStatsService constructs the service.
func NewStatsService(actions repository.ActionRepository) *StatsService {
	return &StatsService{actions: actions}
}

// AverageResponseTime returns a display string for the mean elapsed time
// between ticket creation and first triage action: "N/A" when nothing has
// been triaged, "< 1 hr" under an hour, otherwise "x.x hrs".
func (s *StatsService) AverageResponseTime(ctx context.Context) (string, error) {
	if s.actions == nil {
		return "N/A", nil
	}
	durations, err := s.actions.ResponseDurations(ctx)
	if err != nil {
		return "", err
	}
	return FormatAverageResponse(durations), nil
}

// FormatAverageResponse renders a duration set the way the dashboards
// display it.
func FormatAverageResponse(durations []time.Duration) string {
	if len(durations) == 0 {
		return "N/A"
	}
	var total time.Duration
	for _, d := range durations {
		total += d
	}
	avg := total / time.Duration(len(durations))
	hours := avg.Hours()
	if hours < 1 {
		return "< 1 hr"
	}
	return fmt.Sprintf("%.1f hrs", hours)
}
