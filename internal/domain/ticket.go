package domain

import "time"

// TicketStatus enumerates lifecycle states for reported issues.
type TicketStatus string

const (
	TicketStatusPending     TicketStatus = "PENDING"
	TicketStatusAccepted    TicketStatus = "ACCEPTED"
	TicketStatusRejected    TicketStatus = "REJECTED"
	TicketStatusSpam        TicketStatus = "SPAM"
	TicketStatusUnderReview TicketStatus = "UNDER_REVIEW"
)

// IsTerminal reports whether no further triage transition is defined
// from the given status. Only PENDING tickets may be triaged.
func (s TicketStatus) IsTerminal() bool {
	return s != TicketStatusPending
}

// IssueType enumerates the fixed reporting categories.
type IssueType string

const (
	IssueTypeRoad        IssueType = "ROAD"
	IssueTypeUtilities   IssueType = "UTILITIES"
	IssueTypeFacilities  IssueType = "FACILITIES"
	IssueTypeEnvironment IssueType = "ENVIRONMENT"
	IssueTypeOther       IssueType = "OTHER"
)

// Valid reports whether the type is a member of the fixed category set.
func (t IssueType) Valid() bool {
	switch t {
	case IssueTypeRoad, IssueTypeUtilities, IssueTypeFacilities, IssueTypeEnvironment, IssueTypeOther:
		return true
	}
	return false
}

// Severity enumerates urgency, ordered Low < Medium < High.
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Valid reports whether the severity is a known level.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// Rank returns the ordering position used for prioritization.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// Ticket is the aggregate for a single reported infrastructure issue.
//
// Reason is non-empty whenever Status is ACCEPTED or REJECTED.
// AssignedTo is non-empty exactly when Status is ACCEPTED.
type Ticket struct {
	ID           string
	Type         IssueType
	Severity     Severity
	Location     string
	Description  string
	ReporterID   string
	ReporterName string
	Status       TicketStatus
	Reason       string
	AssignedTo   string
	CouncilNotes string
	ImageRef     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
