package service

import (
	"context"
	"strings"

	"github.com/civicworks/triage-service/internal/domain"
	"github.com/civicworks/triage-service/internal/repository"
	apperrors "github.com/civicworks/triage-service/pkg/util"
)

// AssignmentService bridges accept() to the external engineer directory.
// It never auto-retries; a directory failure surfaces as a single
// UPSTREAM_UNAVAILABLE result and the caller decides on retry.
type AssignmentService struct {
	directory repository.EngineerDirectory
}

// NewAssignmentService creates the service.
func NewAssignmentService(directory repository.EngineerDirectory) *AssignmentService {
	return &AssignmentService{directory: directory}
}

// ListCandidates fetches the current engineer roster with workload stats.
func (s *AssignmentService) ListCandidates(ctx context.Context) ([]domain.Engineer, error) {
	engineers, err := s.directory.List(ctx)
	if err != nil {
		return nil, apperrors.NewUpstreamUnavailable("engineer directory", err)
	}
	return engineers, nil
}

// ValidateAssignable reports whether engineerName appears in the current
// roster. Name comparison is case-insensitive.
func (s *AssignmentService) ValidateAssignable(ctx context.Context, engineerName string) (bool, error) {
	engineers, err := s.ListCandidates(ctx)
	if err != nil {
		return false, err
	}
	for _, eng := range engineers {
		if strings.EqualFold(eng.Name, engineerName) {
			return true, nil
		}
	}
	return false, nil
}
