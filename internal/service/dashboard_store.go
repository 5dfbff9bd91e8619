package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ByteBlast1/KanFlow/internal/domain"
)

// SummaryFields are the editable fields of a dashboard summary.
type SummaryFields struct {
	Title       string
	Description string
	Priority    domain.SummaryPriority
}

// DashboardStore holds the board summaries shown on the dashboard. It is
// independent of the per-board stores: nothing here renames, counts or
// deletes detailed boards.
type DashboardStore struct {
	mu        sync.Mutex
	boards    []domain.BoardSummary
	snapshots Snapshots
	key       string
	seed      Seed
	ids       *idGenerator
	now       func() time.Time
	changes   notifier[DashboardChange]
}

func NewDashboardStore(snapshots Snapshots, key string, seed Seed) *DashboardStore {
	return &DashboardStore{
		snapshots: snapshots,
		key:       key,
		seed:      seed,
		ids:       defaultIDs,
		now:       time.Now,
	}
}

func (s *DashboardStore) Subscribe(o Observer[DashboardChange]) func() {
	return s.changes.subscribe(o)
}

// Load hydrates from the persisted list, falling back to the seed list.
func (s *DashboardStore) Load(ctx context.Context) {
	boards := []domain.BoardSummary{}
	var stored []domain.StoredSummary
	if s.snapshots != nil && s.snapshots.Read(ctx, s.key, &stored) {
		boards = domain.SummariesFromSnapshot(stored)
	} else if s.seed != nil {
		boards = s.seed.Dashboard()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards = boards
	s.publish(ctx, OpLoad)
}

func (s *DashboardStore) Boards() []domain.BoardSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneSummaries(s.boards)
}

// Filter returns the summaries matching query. A blank query returns the
// full list.
func (s *DashboardStore) Filter(query string) []domain.BoardSummary {
	return FilterBoards(s.Boards(), query)
}

// Create puts a new summary at the top of the list.
func (s *DashboardStore) Create(ctx context.Context, title, description string, priority domain.SummaryPriority) (domain.BoardSummary, bool) {
	if isBlank(title) {
		return domain.BoardSummary{}, false
	}
	if priority == "" {
		priority = domain.SummaryPriorityMedium
	}
	summary := domain.BoardSummary{
		ID:          s.ids.next(""),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		UpdatedAt:   s.now().UTC(),
		TasksCount:  0,
		Status:      domain.StatusPlanning,
		Priority:    priority,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards = append([]domain.BoardSummary{summary}, s.boards...)
	s.publish(ctx, OpCreateBoard)
	return summary, true
}

// Update replaces title, description and priority and refreshes the
// timestamp. An empty priority keeps the current one.
func (s *DashboardStore) Update(ctx context.Context, boardID string, fields SummaryFields) (domain.BoardSummary, bool) {
	if isBlank(fields.Title) {
		return domain.BoardSummary{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.boards {
		if s.boards[i].ID != boardID {
			continue
		}
		b := &s.boards[i]
		b.Title = strings.TrimSpace(fields.Title)
		b.Description = strings.TrimSpace(fields.Description)
		if fields.Priority != "" {
			b.Priority = fields.Priority
		}
		b.UpdatedAt = s.now().UTC()
		s.publish(ctx, OpUpdateBoard)
		return *b, true
	}
	return domain.BoardSummary{}, false
}

// Delete removes the summary. The board's own snapshot is kept.
func (s *DashboardStore) Delete(ctx context.Context, boardID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := make([]domain.BoardSummary, 0, len(s.boards))
	for _, b := range s.boards {
		if b.ID != boardID {
			kept = append(kept, b)
		}
	}
	removed := len(kept) != len(s.boards)
	s.boards = kept
	s.publish(ctx, OpDeleteBoard)
	return removed
}

func (s *DashboardStore) publish(ctx context.Context, op Op) {
	s.changes.notify(ctx, DashboardChange{Op: op, Boards: domain.CloneSummaries(s.boards)})
}

// DashboardPersister writes the full summary list after every mutation.
type DashboardPersister struct {
	snapshots Snapshots
	key       string
}

func NewDashboardPersister(snapshots Snapshots, key string) *DashboardPersister {
	return &DashboardPersister{snapshots: snapshots, key: key}
}

func (p *DashboardPersister) OnChange(ctx context.Context, change DashboardChange) {
	if change.Op == OpLoad {
		return
	}
	p.snapshots.Write(ctx, p.key, domain.NewDashboardSnapshot(change.Boards))
}
