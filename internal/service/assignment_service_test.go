package service

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/civicworks/triage-service/pkg/util"
)

func TestListCandidatesWrapsDirectoryFailure(t *testing.T) {
	svc := NewAssignmentService(&fakeDirectory{err: errors.New("timeout")})

	_, err := svc.ListCandidates(context.Background())
	if !apperrors.IsCode(err, "UPSTREAM_UNAVAILABLE") {
		t.Fatalf("err = %v, want UPSTREAM_UNAVAILABLE", err)
	}
}

func TestListCandidatesReturnsRoster(t *testing.T) {
	svc := NewAssignmentService(&fakeDirectory{engineers: defaultRoster()})

	engineers, err := svc.ListCandidates(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(engineers) != 2 {
		t.Fatalf("len = %d, want 2", len(engineers))
	}
	if engineers[1].TotalAssigned != 3 {
		t.Fatalf("workload stats dropped: %+v", engineers[1])
	}
}

func TestValidateAssignable(t *testing.T) {
	svc := NewAssignmentService(&fakeDirectory{engineers: defaultRoster()})

	tests := []struct {
		name     string
		engineer string
		want     bool
	}{
		{"exact match", "Alice", true},
		{"case-insensitive match", "aLiCe", true},
		{"unknown engineer", "Mallory", false},
		{"empty name", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := svc.ValidateAssignable(context.Background(), tc.engineer)
			if err != nil {
				t.Fatalf("validate: %v", err)
			}
			if ok != tc.want {
				t.Fatalf("assignable(%q) = %v, want %v", tc.engineer, ok, tc.want)
			}
		})
	}
}

func TestValidateAssignablePropagatesFailure(t *testing.T) {
	svc := NewAssignmentService(&fakeDirectory{err: errors.New("dns failure")})

	if _, err := svc.ValidateAssignable(context.Background(), "Alice"); !apperrors.IsCode(err, "UPSTREAM_UNAVAILABLE") {
		t.Fatalf("err = %v, want UPSTREAM_UNAVAILABLE", err)
	}
}
