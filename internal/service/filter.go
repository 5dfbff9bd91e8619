package service

import (
	"context"
	"strings"
	"sync"

	"github.com/ByteBlast1/KanFlow/internal/domain"
)

// FilterColumns narrows each column's tasks to those whose title or
// description contains query, ignoring case. Columns are never dropped.
// A blank query returns columns itself.
func FilterColumns(columns []domain.Column, query string) []domain.Column {
	if isBlank(query) {
		return columns
	}
	q := strings.ToLower(query)
	out := make([]domain.Column, 0, len(columns))
	for _, c := range columns {
		tasks := make([]domain.Task, 0, len(c.Tasks))
		for _, t := range c.Tasks {
			if matches(t.Title, t.Description, q) {
				tasks = append(tasks, t)
			}
		}
		out = append(out, domain.Column{ID: c.ID, Title: c.Title, Tasks: tasks})
	}
	return out
}

// FilterBoards keeps the summaries whose title or description contains
// query, ignoring case. A blank query returns boards itself.
func FilterBoards(boards []domain.BoardSummary, query string) []domain.BoardSummary {
	if isBlank(query) {
		return boards
	}
	q := strings.ToLower(query)
	out := make([]domain.BoardSummary, 0, len(boards))
	for _, b := range boards {
		if matches(b.Title, b.Description, q) {
			out = append(out, b)
		}
	}
	return out
}

func matches(title, description, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(title), lowerQuery) ||
		strings.Contains(strings.ToLower(description), lowerQuery)
}

// FilteredView keeps a live search result for one client. It recomputes
// whenever the query or the observed board changes.
type FilteredView struct {
	mu       sync.Mutex
	query    string
	columns  []domain.Column
	filtered []domain.Column
}

func NewFilteredView(columns []domain.Column) *FilteredView {
	v := &FilteredView{columns: columns}
	v.filtered = FilterColumns(columns, "")
	return v
}

func (v *FilteredView) OnChange(_ context.Context, change BoardChange) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.columns = change.Board.Columns
	v.filtered = FilterColumns(v.columns, v.query)
}

func (v *FilteredView) SetQuery(query string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.query = query
	v.filtered = FilterColumns(v.columns, query)
}

func (v *FilteredView) Query() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.query
}

// Columns returns a copy of the current filtered projection.
func (v *FilteredView) Columns() []domain.Column {
	v.mu.Lock()
	defer v.mu.Unlock()
	return domain.CloneColumns(v.filtered)
}
