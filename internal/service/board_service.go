package service

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ByteBlast1/KanFlow/internal/domain"
	"github.com/ByteBlast1/KanFlow/internal/persistence"
)

type UpdateBoardRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type CreateColumnRequest struct {
	Title string `json:"title"`
}

// TaskRequest is used for both creating and editing a task. DueDate accepts
// RFC 3339 timestamps or plain YYYY-MM-DD dates; null clears it.
type TaskRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    domain.Priority `json:"priority"`
	DueDate     *string         `json:"dueDate"`
	Assignee    *string         `json:"assignee"`
}

type MoveTaskRequest struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}

type SearchRequest struct {
	Query string `json:"query"`
}

type DragStartRequest struct {
	TaskID   string `json:"taskId" validate:"required"`
	ColumnID string `json:"columnId" validate:"required"`
}

type DropRequest struct {
	ColumnID string `json:"columnId" validate:"required"`
}

// BoardView is what a client sees of a board: its details plus the columns
// after applying the search query.
type BoardView struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Query       string          `json:"query"`
	Columns     []domain.Column `json:"columns"`
	TaskCount   int             `json:"taskCount"`
}

type DropResult struct {
	Moved bool       `json:"moved"`
	Board *BoardView `json:"board"`
}

// BoardService exposes the per-board stores to the HTTP layer. Search
// queries and drag gestures are kept per client id.
type BoardService interface {
	GetBoard(ctx context.Context, boardID, clientID string, query *string) *BoardView
	UpdateBoard(ctx context.Context, boardID string, req UpdateBoardRequest) (*BoardView, error)
	SetSearch(ctx context.Context, boardID, clientID string, req SearchRequest) *BoardView

	AddColumn(ctx context.Context, boardID string, req CreateColumnRequest) (*domain.Column, error)
	DeleteColumn(ctx context.Context, boardID, columnID string)

	AddTask(ctx context.Context, boardID, columnID string, req TaskRequest) (*domain.Task, error)
	UpdateTask(ctx context.Context, boardID, taskID string, req TaskRequest) (*domain.Task, error)
	DeleteTask(ctx context.Context, boardID, columnID, taskID string)
	MoveTask(ctx context.Context, boardID, taskID string, req MoveTaskRequest) (*BoardView, error)

	StartDrag(ctx context.Context, boardID, clientID string, req DragStartRequest)
	Drop(ctx context.Context, boardID, clientID string, req DropRequest) *DropResult

	EvictIdle(idle time.Duration) (clients, boards int)
}

const defaultMaxClients = 256

type clientView struct {
	filter      *FilteredView
	drag        *DragReorder
	unsubscribe func()
	lastSeen    time.Time
}

type openBoard struct {
	store *BoardStore

	mu       sync.Mutex
	clients  map[string]*clientView
	lastUsed time.Time
}

type boardService struct {
	snapshots  Snapshots
	keys       persistence.Keys
	seed       Seed
	now        func() time.Time
	maxClients int

	mu     sync.Mutex
	boards map[string]*openBoard
}

type BoardServiceOption func(*boardService)

// WithServiceClock overrides the time source used for idle tracking.
func WithServiceClock(now func() time.Time) BoardServiceOption {
	return func(s *boardService) { s.now = now }
}

// WithMaxClients caps the number of client views kept per board. When the
// cap is reached the least recently seen client is dropped.
func WithMaxClients(n int) BoardServiceOption {
	return func(s *boardService) { s.maxClients = n }
}

func NewBoardService(snapshots Snapshots, keys persistence.Keys, seed Seed, opts ...BoardServiceOption) BoardService {
	s := &boardService{
		snapshots:  snapshots,
		keys:       keys,
		seed:       seed,
		now:        time.Now,
		maxClients: defaultMaxClients,
		boards:     make(map[string]*openBoard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// open returns the live store for boardID, loading it on first use. The
// load runs outside s.mu so a slow backend only delays its own board.
func (s *boardService) open(ctx context.Context, boardID string) *openBoard {
	s.mu.Lock()
	b, ok := s.boards[boardID]
	s.mu.Unlock()
	if !ok {
		b = s.load(ctx, boardID)
	}
	b.touch(s.now())
	return b
}

func (s *boardService) load(ctx context.Context, boardID string) *openBoard {
	store := NewBoardStore(s.snapshots, s.keys, s.seed)
	unsubscribe := store.Subscribe(NewBoardPersister(s.snapshots, s.keys))
	store.Load(ctx, boardID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.boards[boardID]; ok {
		// lost the race to a concurrent load of the same board
		unsubscribe()
		return b
	}
	b := &openBoard{store: store, clients: make(map[string]*clientView), lastUsed: s.now()}
	s.boards[boardID] = b
	log.WithField("board_id", boardID).Debug("board opened")
	return b
}

func (s *boardService) client(ctx context.Context, b *openBoard, clientID string) *clientView {
	return b.client(ctx, clientID, s.now(), s.maxClients)
}

// EvictIdle drops client views not seen within idle, then closes boards
// left without clients that were not used within idle either. Closed boards
// are reloaded from their snapshot on the next request.
func (s *boardService) EvictIdle(idle time.Duration) (clients, boards int) {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, b := range s.boards {
		n, idleBoard := b.evictIdle(cutoff)
		clients += n
		if idleBoard {
			delete(s.boards, id)
			boards++
		}
	}
	return clients, boards
}

func (b *openBoard) touch(now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if now.After(b.lastUsed) {
		b.lastUsed = now
	}
}

func (b *openBoard) client(ctx context.Context, clientID string, now time.Time, maxClients int) *clientView {
	b.mu.Lock()
	defer b.mu.Unlock()
	if cv, ok := b.clients[clientID]; ok {
		cv.lastSeen = now
		return cv
	}
	if maxClients > 0 && len(b.clients) >= maxClients {
		b.evictOldestLocked()
	}

	view := NewFilteredView(nil)
	cv := &clientView{
		filter:      view,
		drag:        NewDragReorder(b.store),
		unsubscribe: b.store.Watch(ctx, view),
		lastSeen:    now,
	}
	b.clients[clientID] = cv
	return cv
}

// evictIdle reports how many clients were dropped and whether the board
// itself is idle and may be closed.
func (b *openBoard) evictIdle(cutoff time.Time) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for id, cv := range b.clients {
		if cv.lastSeen.Before(cutoff) {
			cv.unsubscribe()
			delete(b.clients, id)
			n++
		}
	}
	return n, len(b.clients) == 0 && b.lastUsed.Before(cutoff)
}

func (b *openBoard) evictOldestLocked() {
	var (
		oldestID string
		oldest   *clientView
	)
	for id, cv := range b.clients {
		if oldest == nil || cv.lastSeen.Before(oldest.lastSeen) {
			oldestID, oldest = id, cv
		}
	}
	if oldest != nil {
		oldest.unsubscribe()
		delete(b.clients, oldestID)
	}
}

func (s *boardService) GetBoard(ctx context.Context, boardID, clientID string, query *string) *BoardView {
	b := s.open(ctx, boardID)
	if query != nil {
		board := b.store.Board()
		return newBoardView(board, *query, FilterColumns(board.Columns, *query))
	}
	cv := s.client(ctx, b, clientID)
	return newBoardView(b.store.Board(), cv.filter.Query(), cv.filter.Columns())
}

func (s *boardService) UpdateBoard(ctx context.Context, boardID string, req UpdateBoardRequest) (*BoardView, error) {
	b := s.open(ctx, boardID)
	if !b.store.UpdateDetails(ctx, req.Title, req.Description) {
		return nil, ErrTitleRequired
	}
	board := b.store.Board()
	return newBoardView(board, "", board.Columns), nil
}

func (s *boardService) SetSearch(ctx context.Context, boardID, clientID string, req SearchRequest) *BoardView {
	b := s.open(ctx, boardID)
	cv := s.client(ctx, b, clientID)
	cv.filter.SetQuery(req.Query)
	return newBoardView(b.store.Board(), cv.filter.Query(), cv.filter.Columns())
}

func (s *boardService) AddColumn(ctx context.Context, boardID string, req CreateColumnRequest) (*domain.Column, error) {
	col, ok := s.open(ctx, boardID).store.AddColumn(ctx, req.Title)
	if !ok {
		return nil, ErrTitleRequired
	}
	return &col, nil
}

func (s *boardService) DeleteColumn(ctx context.Context, boardID, columnID string) {
	s.open(ctx, boardID).store.DeleteColumn(ctx, columnID)
}

func (s *boardService) AddTask(ctx context.Context, boardID, columnID string, req TaskRequest) (*domain.Task, error) {
	fields, err := req.fields()
	if err != nil {
		return nil, err
	}
	task, ok := s.open(ctx, boardID).store.AddTask(ctx, columnID, fields)
	if !ok {
		return nil, ErrColumnNotFound
	}
	return &task, nil
}

func (s *boardService) UpdateTask(ctx context.Context, boardID, taskID string, req TaskRequest) (*domain.Task, error) {
	fields, err := req.fields()
	if err != nil {
		return nil, err
	}
	task, ok := s.open(ctx, boardID).store.UpdateTask(ctx, taskID, fields)
	if !ok {
		return nil, ErrTaskNotFound
	}
	return &task, nil
}

func (s *boardService) DeleteTask(ctx context.Context, boardID, columnID, taskID string) {
	s.open(ctx, boardID).store.DeleteTask(ctx, taskID, columnID)
}

func (s *boardService) MoveTask(ctx context.Context, boardID, taskID string, req MoveTaskRequest) (*BoardView, error) {
	b := s.open(ctx, boardID)
	if !b.store.MoveTask(ctx, taskID, req.From, req.To) {
		return nil, ErrTaskNotFound
	}
	board := b.store.Board()
	return newBoardView(board, "", board.Columns), nil
}

func (s *boardService) StartDrag(ctx context.Context, boardID, clientID string, req DragStartRequest) {
	cv := s.client(ctx, s.open(ctx, boardID), clientID)
	cv.drag.OnDragStart(req.TaskID, req.ColumnID)
}

func (s *boardService) Drop(ctx context.Context, boardID, clientID string, req DropRequest) *DropResult {
	b := s.open(ctx, boardID)
	cv := s.client(ctx, b, clientID)
	moved := cv.drag.OnDrop(ctx, req.ColumnID)
	return &DropResult{
		Moved: moved,
		Board: newBoardView(b.store.Board(), cv.filter.Query(), cv.filter.Columns()),
	}
}

func (r TaskRequest) fields() (TaskFields, error) {
	if isBlank(r.Title) {
		return TaskFields{}, ErrTitleRequired
	}
	f := TaskFields{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		Assignee:    r.Assignee,
	}
	if r.DueDate != nil && *r.DueDate != "" {
		f.DueDate = domain.ParseDate(r.DueDate)
		if f.DueDate == nil {
			return TaskFields{}, ErrInvalidDueDate
		}
	}
	return f, nil
}

func newBoardView(board domain.Board, query string, columns []domain.Column) *BoardView {
	if columns == nil {
		columns = []domain.Column{}
	}
	return &BoardView{
		ID:          board.ID,
		Title:       board.Title,
		Description: board.Description,
		Query:       query,
		Columns:     columns,
		TaskCount:   board.TaskCount(),
	}
}
