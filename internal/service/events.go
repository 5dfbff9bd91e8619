package service

import (
	"context"
	"sync"

	"github.com/ByteBlast1/KanFlow/internal/domain"
)

// Op names the mutation that produced a change event.
type Op string

const (
	OpLoad          Op = "load"
	OpAddColumn     Op = "add_column"
	OpDeleteColumn  Op = "delete_column"
	OpAddTask       Op = "add_task"
	OpUpdateTask    Op = "update_task"
	OpDeleteTask    Op = "delete_task"
	OpMoveTask      Op = "move_task"
	OpUpdateDetails Op = "update_details"

	OpCreateBoard Op = "create_board"
	OpUpdateBoard Op = "update_board"
	OpDeleteBoard Op = "delete_board"
)

// BoardChange carries a deep copy of the board after a mutation.
type BoardChange struct {
	Op    Op
	Board domain.Board
}

// DashboardChange carries a copy of the full summary list after a mutation.
type DashboardChange struct {
	Op     Op
	Boards []domain.BoardSummary
}

// Observer receives state-change events. OnChange runs synchronously while
// the publishing store holds its lock, so it must not call back into it.
type Observer[T any] interface {
	OnChange(ctx context.Context, change T)
}

type ObserverFunc[T any] func(ctx context.Context, change T)

func (f ObserverFunc[T]) OnChange(ctx context.Context, change T) { f(ctx, change) }

type subscription[T any] struct {
	id       int
	observer Observer[T]
}

type notifier[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   []subscription[T]
}

func (n *notifier[T]) subscribe(o Observer[T]) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextID++
	id := n.nextID
	n.subs = append(n.subs, subscription[T]{id: id, observer: o})

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, s := range n.subs {
			if s.id == id {
				n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
				return
			}
		}
	}
}

func (n *notifier[T]) notify(ctx context.Context, change T) {
	n.mu.Lock()
	subs := make([]subscription[T], len(n.subs))
	copy(subs, n.subs)
	n.mu.Unlock()

	for _, s := range subs {
		s.observer.OnChange(ctx, change)
	}
}

func (n *notifier[T]) len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}
