package service

import (
	"context"
	"sync"
)

// TaskMover is the store operation a drop turns into.
type TaskMover interface {
	MoveTask(ctx context.Context, taskID, fromColumnID, toColumnID string) bool
}

// DragReorder turns a drag gesture into a task move. The dragged task is
// transient state and is never persisted.
type DragReorder struct {
	mover TaskMover

	mu       sync.Mutex
	taskID   string
	columnID string
	active   bool
}

func NewDragReorder(mover TaskMover) *DragReorder {
	return &DragReorder{mover: mover}
}

// OnDragStart records the dragged task and the column it was picked up from.
// A second start replaces the first.
func (d *DragReorder) OnDragStart(taskID, columnID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.taskID, d.columnID, d.active = taskID, columnID, true
}

// OnDragOver is a visual affordance only.
func (d *DragReorder) OnDragOver(string) {}

// Dragging reports the drag in progress, if any.
func (d *DragReorder) Dragging() (taskID, columnID string, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.taskID, d.columnID, d.active
}

// OnDrop appends the dragged task to targetColumnID. The drag state is
// cleared whether or not the move took place. It reports whether a task
// was moved.
func (d *DragReorder) OnDrop(ctx context.Context, targetColumnID string) bool {
	d.mu.Lock()
	taskID, from, active := d.taskID, d.columnID, d.active
	d.taskID, d.columnID, d.active = "", "", false
	d.mu.Unlock()

	if !active {
		return false
	}
	return d.mover.MoveTask(ctx, taskID, from, targetColumnID)
}
