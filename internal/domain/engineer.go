package domain

// Engineer is a read-only roster entry from the engineer directory,
// carrying workload stats shown on the assignment candidate list.
// The core never mutates engineers.
type Engineer struct {
	Name                 string
	Email                string
	TotalAssigned        int
	HighPriorityAssigned int
}
