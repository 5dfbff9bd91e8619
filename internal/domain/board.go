package domain

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Task is a unit of work. It belongs to exactly one Column at a time.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	Assignee    *string    `json:"assignee"` // free text, not a user reference
}

// Column is an ordered lane of tasks. Task order is slice order.
type Column struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Tasks []Task `json:"tasks"`
}

type Board struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Columns     []Column `json:"columns"`
}

func (t Task) Clone() Task {
	c := t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.Assignee != nil {
		a := *t.Assignee
		c.Assignee = &a
	}
	return c
}

func (c Column) Clone() Column {
	out := Column{ID: c.ID, Title: c.Title, Tasks: make([]Task, 0, len(c.Tasks))}
	for _, t := range c.Tasks {
		out.Tasks = append(out.Tasks, t.Clone())
	}
	return out
}

// CloneColumns deep-copies a column list so callers can hold on to it
// while the owning store keeps mutating.
func CloneColumns(columns []Column) []Column {
	out := make([]Column, 0, len(columns))
	for _, c := range columns {
		out = append(out, c.Clone())
	}
	return out
}

func (b Board) Clone() Board {
	out := b
	out.Columns = CloneColumns(b.Columns)
	return out
}

// TaskCount returns the number of tasks across all columns.
func (b Board) TaskCount() int {
	n := 0
	for _, c := range b.Columns {
		n += len(c.Tasks)
	}
	return n
}
