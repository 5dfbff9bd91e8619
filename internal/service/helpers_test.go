package service

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/ByteBlast1/KanFlow/internal/domain"
	"github.com/ByteBlast1/KanFlow/internal/persistence"
	"github.com/ByteBlast1/KanFlow/internal/repository"
	"github.com/ByteBlast1/KanFlow/internal/seed"
)

var testKeys = persistence.Keys{BoardPrefix: "kanban_board_", Dashboard: "kanban_boards"}

func newTestSnapshots(t *testing.T) *persistence.Adapter {
	t.Helper()
	l, _ := test.NewNullLogger()
	return persistence.NewAdapter(repository.NewMemoryStore(), l, time.Second)
}

// recordingSnapshots counts writes per key on top of a real adapter.
type recordingSnapshots struct {
	*persistence.Adapter
	writes map[string]int
}

func newRecordingSnapshots(t *testing.T) *recordingSnapshots {
	return &recordingSnapshots{Adapter: newTestSnapshots(t), writes: make(map[string]int)}
}

func (r *recordingSnapshots) Write(ctx context.Context, key string, value any) {
	r.writes[key]++
	r.Adapter.Write(ctx, key, value)
}

// openStore loads boardID into a fresh store wired to persist into snaps,
// the way the board service wires it.
func openStore(t *testing.T, snaps Snapshots, boardID string) *BoardStore {
	t.Helper()
	s := NewBoardStore(snaps, testKeys, seed.MustLoad())
	s.Subscribe(NewBoardPersister(snaps, testKeys))
	s.Load(context.Background(), boardID)
	return s
}

func findColumn(t *testing.T, b domain.Board, columnID string) domain.Column {
	t.Helper()
	for _, c := range b.Columns {
		if c.ID == columnID {
			return c
		}
	}
	t.Fatalf("column %s not found", columnID)
	return domain.Column{}
}

func taskIDs(c domain.Column) []string {
	ids := make([]string, 0, len(c.Tasks))
	for _, t := range c.Tasks {
		ids = append(ids, t.ID)
	}
	return ids
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
