package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ByteBlast1/KanFlow/internal/domain"
	"github.com/ByteBlast1/KanFlow/internal/persistence"
)

// Snapshots is the persistence boundary used by the stores.
type Snapshots interface {
	Read(ctx context.Context, key string, out any) bool
	Write(ctx context.Context, key string, value any)
}

// Seed provides fallback content for ids that were never persisted.
type Seed interface {
	Board(id string) (domain.Board, bool)
	Dashboard() []domain.BoardSummary
}

// TaskFields are the editable fields of a task. Only Title is checked.
type TaskFields struct {
	Title       string
	Description string
	Priority    domain.Priority
	DueDate     *time.Time
	Assignee    *string
}

// BoardStore holds the authoritative columns and tasks of one open board.
// Every accepted mutation is published to subscribers as a BoardChange.
type BoardStore struct {
	mu        sync.Mutex
	board     domain.Board
	snapshots Snapshots
	keys      persistence.Keys
	seed      Seed
	ids       *idGenerator
	changes   notifier[BoardChange]
}

func NewBoardStore(snapshots Snapshots, keys persistence.Keys, seed Seed) *BoardStore {
	return &BoardStore{
		snapshots: snapshots,
		keys:      keys,
		seed:      seed,
		ids:       defaultIDs,
	}
}

// Subscribe registers o for change events and returns a function that
// removes it again.
func (s *BoardStore) Subscribe(o Observer[BoardChange]) func() {
	return s.changes.subscribe(o)
}

// Watch subscribes o and immediately delivers the current state to it, with
// no mutation able to slip in between.
func (s *BoardStore) Watch(ctx context.Context, o Observer[BoardChange]) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	unsubscribe := s.changes.subscribe(o)
	o.OnChange(ctx, BoardChange{Op: OpLoad, Board: s.board.Clone()})
	return unsubscribe
}

// Load replaces the in-memory board with the persisted snapshot for
// boardID, the seed board of that id, or an empty untitled board, in that
// order. It never fails.
func (s *BoardStore) Load(ctx context.Context, boardID string) {
	board := domain.Board{ID: boardID, Columns: []domain.Column{}}

	var snap domain.BoardSnapshot
	if s.snapshots != nil && s.snapshots.Read(ctx, s.keys.Board(boardID), &snap) {
		board = snap.ToBoard()
	} else if s.seed != nil {
		if seeded, ok := s.seed.Board(boardID); ok {
			board = seeded
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.board = board
	s.publish(ctx, OpLoad)
}

func (s *BoardStore) Board() domain.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Clone()
}

func (s *BoardStore) Columns() []domain.Column {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneColumns(s.board.Columns)
}

// UpdateDetails renames the open board. The dashboard summary of the same
// id is left alone.
func (s *BoardStore) UpdateDetails(ctx context.Context, title, description string) bool {
	if isBlank(title) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board.Title = title
	s.board.Description = description
	s.publish(ctx, OpUpdateDetails)
	return true
}

// AddColumn appends an empty column. Blank titles are ignored.
func (s *BoardStore) AddColumn(ctx context.Context, title string) (domain.Column, bool) {
	if isBlank(title) {
		return domain.Column{}, false
	}
	col := domain.Column{ID: s.ids.next("col-"), Title: title, Tasks: []domain.Task{}}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.board.Columns = append(s.board.Columns, col)
	s.publish(ctx, OpAddColumn)
	return col.Clone(), true
}

// DeleteColumn removes the column together with its tasks.
func (s *BoardStore) DeleteColumn(ctx context.Context, columnID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := make([]domain.Column, 0, len(s.board.Columns))
	for _, c := range s.board.Columns {
		if c.ID != columnID {
			kept = append(kept, c)
		}
	}
	s.board.Columns = kept
	s.publish(ctx, OpDeleteColumn)
}

// AddTask appends a new task to columnID. It reports false when the title
// is blank or the column does not exist.
func (s *BoardStore) AddTask(ctx context.Context, columnID string, fields TaskFields) (domain.Task, bool) {
	if isBlank(fields.Title) {
		return domain.Task{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.columnIndex(columnID)
	if idx < 0 {
		return domain.Task{}, false
	}
	task := fields.toTask(s.ids.next("task-"))
	col := &s.board.Columns[idx]
	col.Tasks = append(col.Tasks, task)
	s.publish(ctx, OpAddTask)
	return task.Clone(), true
}

// UpdateTask replaces the fields of the task wherever it currently lives.
func (s *BoardStore) UpdateTask(ctx context.Context, taskID string, fields TaskFields) (domain.Task, bool) {
	if isBlank(fields.Title) {
		return domain.Task{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for ci := range s.board.Columns {
		tasks := s.board.Columns[ci].Tasks
		for ti := range tasks {
			if tasks[ti].ID == taskID {
				tasks[ti] = fields.toTask(taskID)
				s.publish(ctx, OpUpdateTask)
				return tasks[ti].Clone(), true
			}
		}
	}
	return domain.Task{}, false
}

// DeleteTask removes taskID from columnID. Missing ids are ignored.
func (s *BoardStore) DeleteTask(ctx context.Context, taskID, columnID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.columnIndex(columnID); idx >= 0 {
		s.board.Columns[idx].Tasks = removeTask(s.board.Columns[idx].Tasks, taskID)
	}
	s.publish(ctx, OpDeleteTask)
}

// MoveTask relocates a task to the end of toColumnID. Moving within the
// same column re-appends the task at the end. Nothing happens when the
// task is not in fromColumnID or toColumnID does not exist, so a task is
// never dropped or duplicated.
func (s *BoardStore) MoveTask(ctx context.Context, taskID, fromColumnID, toColumnID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, to := s.columnIndex(fromColumnID), s.columnIndex(toColumnID)
	if from < 0 || to < 0 {
		return false
	}
	var (
		task  domain.Task
		found bool
	)
	for _, t := range s.board.Columns[from].Tasks {
		if t.ID == taskID {
			task, found = t, true
			break
		}
	}
	if !found {
		return false
	}

	s.board.Columns[from].Tasks = removeTask(s.board.Columns[from].Tasks, taskID)
	s.board.Columns[to].Tasks = append(s.board.Columns[to].Tasks, task)
	s.publish(ctx, OpMoveTask)
	return true
}

// publish must be called with s.mu held.
func (s *BoardStore) publish(ctx context.Context, op Op) {
	s.changes.notify(ctx, BoardChange{Op: op, Board: s.board.Clone()})
}

func (s *BoardStore) columnIndex(columnID string) int {
	for i, c := range s.board.Columns {
		if c.ID == columnID {
			return i
		}
	}
	return -1
}

func (f TaskFields) toTask(id string) domain.Task {
	priority := f.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	return domain.Task{
		ID:          id,
		Title:       f.Title,
		Description: f.Description,
		Priority:    priority,
		DueDate:     f.DueDate,
		Assignee:    f.Assignee,
	}.Clone()
}

func removeTask(tasks []domain.Task, taskID string) []domain.Task {
	kept := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != taskID {
			kept = append(kept, t)
		}
	}
	return kept
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// BoardPersister writes the full board snapshot after every mutation.
// Loads are not written back.
type BoardPersister struct {
	snapshots Snapshots
	keys      persistence.Keys
}

func NewBoardPersister(snapshots Snapshots, keys persistence.Keys) *BoardPersister {
	return &BoardPersister{snapshots: snapshots, keys: keys}
}

func (p *BoardPersister) OnChange(ctx context.Context, change BoardChange) {
	if change.Op == OpLoad || change.Board.ID == "" {
		return
	}
	p.snapshots.Write(ctx, p.keys.Board(change.Board.ID), domain.NewBoardSnapshot(change.Board))
}
