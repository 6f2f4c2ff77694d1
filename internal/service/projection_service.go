package service

import (
	"time"

	"github.com/civicworks/triage-service/internal/domain"
)

// TabKey names a role-specific partition of a ticket set.
type TabKey string

// Engineer dashboard tabs: disjoint, keyed by status. UNDER_REVIEW
// tickets sit in the pending-review tab so the four tabs always sum to
// the full set.
const (
	TabPendingReview TabKey = "PENDING_REVIEW"
	TabRejected      TabKey = "REJECTED"
	TabSpam          TabKey = "SPAM"
	TabAccepted      TabKey = "ACCEPTED"
)

// Council dashboard tabs. Rejected and spam are merged into one tab at
// this role, unlike the engineer view.
const (
	TabTotalReports TabKey = "TOTAL_REPORTS"
	TabCompleted    TabKey = "COMPLETED"
	TabPending      TabKey = "PENDING"
	TabCouncilSpam  TabKey = "SPAM_COMBINED"
)

// Tab is a named slice of a ticket set. Tickets keep store order.
type Tab struct {
	Key     TabKey          `json:"key"`
	Count   int             `json:"count"`
	Tickets []domain.Ticket `json:"tickets"`
}

// CitizenProjection summarizes a reporter's own tickets.
type CitizenProjection struct {
	Tickets  []domain.Ticket `json:"tickets"`
	Total    int             `json:"total"`
	Pending  int             `json:"pending"`
	Accepted int             `json:"accepted"`
	Rejected int             `json:"rejected"`
}

// EngineerStats are the headline counters above the engineer tabs.
type EngineerStats struct {
	NewToday     int `json:"new_today"`
	ThisWeek     int `json:"this_week"`
	HighPriority int `json:"high_priority"`
}

// EngineerProjection partitions tickets into the four engineer tabs.
type EngineerProjection struct {
	Tabs  []Tab         `json:"tabs"`
	Stats EngineerStats `json:"stats"`
}

// CouncilStats are the headline counters above the council tabs. The
// average response time is computed outside the projector and passed
// through opaquely.
type CouncilStats struct {
	TotalReports        int    `json:"total_reports"`
	TotalPending        int    `json:"total_pending"`
	HighPriorityPending int    `json:"high_priority_pending"`
	AverageResponseTime string `json:"average_response_time"`
}

// CouncilProjection holds the council tabs and stats.
type CouncilProjection struct {
	Tabs  []Tab        `json:"tabs"`
	Stats CouncilStats `json:"stats"`
}

// ProjectCitizen returns the reporter's own tickets with aggregate counts.
// Input order is preserved.
func ProjectCitizen(reporterID string, tickets []domain.Ticket) CitizenProjection {
	projection := CitizenProjection{Tickets: []domain.Ticket{}}
	for _, ticket := range tickets {
		if ticket.ReporterID != reporterID {
			continue
		}
		projection.Tickets = append(projection.Tickets, ticket)
		projection.Total++
		switch ticket.Status {
		case domain.TicketStatusPending:
			projection.Pending++
		case domain.TicketStatusAccepted:
			projection.Accepted++
		case domain.TicketStatusRejected:
			projection.Rejected++
		}
	}
	return projection
}

// ProjectEngineer partitions tickets into four disjoint tabs and derives
// the engineer stats. now anchors the "new today" calendar-day check.
func ProjectEngineer(tickets []domain.Ticket, now time.Time) EngineerProjection {
	pending := Tab{Key: TabPendingReview, Tickets: []domain.Ticket{}}
	rejected := Tab{Key: TabRejected, Tickets: []domain.Ticket{}}
	spam := Tab{Key: TabSpam, Tickets: []domain.Ticket{}}
	accepted := Tab{Key: TabAccepted, Tickets: []domain.Ticket{}}

	for _, ticket := range tickets {
		switch ticket.Status {
		case domain.TicketStatusRejected:
			rejected.Tickets = append(rejected.Tickets, ticket)
		case domain.TicketStatusSpam:
			spam.Tickets = append(spam.Tickets, ticket)
		case domain.TicketStatusAccepted:
			accepted.Tickets = append(accepted.Tickets, ticket)
		default:
			pending.Tickets = append(pending.Tickets, ticket)
		}
	}

	stats := EngineerStats{ThisWeek: len(pending.Tickets)}
	year, month, day := now.Date()
	for _, ticket := range pending.Tickets {
		ty, tm, td := ticket.CreatedAt.In(now.Location()).Date()
		if ty == year && tm == month && td == day {
			stats.NewToday++
		}
		if ticket.Severity == domain.SeverityHigh {
			stats.HighPriority++
		}
	}

	pending.Count = len(pending.Tickets)
	rejected.Count = len(rejected.Tickets)
	spam.Count = len(spam.Tickets)
	accepted.Count = len(accepted.Tickets)

	return EngineerProjection{
		Tabs:  []Tab{pending, rejected, spam, accepted},
		Stats: stats,
	}
}

// ProjectCouncil builds the council tabs and stats. avgResponseTime is an
// opaque pass-through string; the projector never derives elapsed-time
// figures from timestamps itself.
func ProjectCouncil(tickets []domain.Ticket, avgResponseTime string) CouncilProjection {
	total := Tab{Key: TabTotalReports, Tickets: []domain.Ticket{}}
	completed := Tab{Key: TabCompleted, Tickets: []domain.Ticket{}}
	pending := Tab{Key: TabPending, Tickets: []domain.Ticket{}}
	spam := Tab{Key: TabCouncilSpam, Tickets: []domain.Ticket{}}

	stats := CouncilStats{AverageResponseTime: avgResponseTime}

	for _, ticket := range tickets {
		total.Tickets = append(total.Tickets, ticket)
		stats.TotalReports++
		switch ticket.Status {
		case domain.TicketStatusAccepted:
			completed.Tickets = append(completed.Tickets, ticket)
		case domain.TicketStatusPending:
			pending.Tickets = append(pending.Tickets, ticket)
			stats.TotalPending++
			if ticket.Severity == domain.SeverityHigh {
				stats.HighPriorityPending++
			}
		case domain.TicketStatusRejected, domain.TicketStatusSpam:
			spam.Tickets = append(spam.Tickets, ticket)
		}
	}

	total.Count = len(total.Tickets)
	completed.Count = len(completed.Tickets)
	pending.Count = len(pending.Tickets)
	spam.Count = len(spam.Tickets)

	return CouncilProjection{
		Tabs:  []Tab{total, completed, pending, spam},
		Stats: stats,
	}
}
