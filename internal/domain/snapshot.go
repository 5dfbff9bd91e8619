package domain

import (
	"time"
)

// Dates are persisted as strings and must be parsed back explicitly;
// nothing in the codec revives them on its own.
const dateLayout = time.RFC3339Nano

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}

type StoredTask struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	DueDate     *string  `json:"dueDate"`
	Assignee    *string  `json:"assignee"`
}

type StoredColumn struct {
	ID    string       `json:"id"`
	Title string       `json:"title"`
	Tasks []StoredTask `json:"tasks"`
}

type StoredBoard struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// BoardSnapshot is the full persisted state of one board.
type BoardSnapshot struct {
	Columns []StoredColumn `json:"columns"`
	Board   StoredBoard    `json:"board"`
}

type StoredSummary struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	UpdatedAt   string          `json:"updatedAt"`
	TasksCount  int             `json:"tasksCount"`
	Status      string          `json:"status"`
	Priority    SummaryPriority `json:"priority"`
}

// FormatDate renders a date for storage. A nil date stays nil.
func FormatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(dateLayout)
	return &s
}

// ParseDate reverses FormatDate. Missing or unparseable values come back nil.
func ParseDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func NewBoardSnapshot(b Board) BoardSnapshot {
	snap := BoardSnapshot{
		Columns: make([]StoredColumn, 0, len(b.Columns)),
		Board:   StoredBoard{ID: b.ID, Title: b.Title, Description: b.Description},
	}
	for _, c := range b.Columns {
		sc := StoredColumn{ID: c.ID, Title: c.Title, Tasks: make([]StoredTask, 0, len(c.Tasks))}
		for _, t := range c.Tasks {
			sc.Tasks = append(sc.Tasks, StoredTask{
				ID:          t.ID,
				Title:       t.Title,
				Description: t.Description,
				Priority:    t.Priority,
				DueDate:     FormatDate(t.DueDate),
				Assignee:    copyString(t.Assignee),
			})
		}
		snap.Columns = append(snap.Columns, sc)
	}
	return snap
}

// ToBoard hydrates a snapshot, re-parsing due dates.
func (s BoardSnapshot) ToBoard() Board {
	b := Board{
		ID:          s.Board.ID,
		Title:       s.Board.Title,
		Description: s.Board.Description,
		Columns:     make([]Column, 0, len(s.Columns)),
	}
	for _, sc := range s.Columns {
		c := Column{ID: sc.ID, Title: sc.Title, Tasks: make([]Task, 0, len(sc.Tasks))}
		for _, st := range sc.Tasks {
			c.Tasks = append(c.Tasks, Task{
				ID:          st.ID,
				Title:       st.Title,
				Description: st.Description,
				Priority:    st.Priority,
				DueDate:     ParseDate(st.DueDate),
				Assignee:    copyString(st.Assignee),
			})
		}
		b.Columns = append(b.Columns, c)
	}
	return b
}

func NewDashboardSnapshot(boards []BoardSummary) []StoredSummary {
	out := make([]StoredSummary, 0, len(boards))
	for _, b := range boards {
		out = append(out, StoredSummary{
			ID:          b.ID,
			Title:       b.Title,
			Description: b.Description,
			UpdatedAt:   *FormatDate(&b.UpdatedAt),
			TasksCount:  b.TasksCount,
			Status:      b.Status,
			Priority:    b.Priority,
		})
	}
	return out
}

// SummariesFromSnapshot hydrates the dashboard list. An unparseable
// updatedAt becomes the zero time.
func SummariesFromSnapshot(stored []StoredSummary) []BoardSummary {
	out := make([]BoardSummary, 0, len(stored))
	for _, s := range stored {
		var updated time.Time
		if t := ParseDate(&s.UpdatedAt); t != nil {
			updated = *t
		}
		out = append(out, BoardSummary{
			ID:          s.ID,
			Title:       s.Title,
			Description: s.Description,
			UpdatedAt:   updated,
			TasksCount:  s.TasksCount,
			Status:      s.Status,
			Priority:    s.Priority,
		})
	}
	return out
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
