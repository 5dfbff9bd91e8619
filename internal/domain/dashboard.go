package domain

import "time"

type SummaryPriority string

const (
	SummaryPriorityLow    SummaryPriority = "Low"
	SummaryPriorityMedium SummaryPriority = "Medium"
	SummaryPriorityHigh   SummaryPriority = "High"
)

// StatusPlanning is the status every newly created board starts in.
const StatusPlanning = "Planning"

// BoardSummary is the dashboard card for a board. It is owned by the
// dashboard and is never reconciled with the detailed Board of the same id.
type BoardSummary struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	TasksCount  int             `json:"tasksCount"`
	Status      string          `json:"status"`
	Priority    SummaryPriority `json:"priority"`
}

func CloneSummaries(boards []BoardSummary) []BoardSummary {
	out := make([]BoardSummary, len(boards))
	copy(out, boards)
	return out
}
