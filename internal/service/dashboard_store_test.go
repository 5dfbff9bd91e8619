package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByteBlast1/KanFlow/internal/domain"
	"github.com/ByteBlast1/KanFlow/internal/seed"
)

func openDashboard(t *testing.T, snaps Snapshots, now time.Time) *DashboardStore {
	t.Helper()
	s := NewDashboardStore(snaps, testKeys.Dashboard, seed.MustLoad())
	s.now = fixedClock(now)
	s.ids = newIDGenerator(fixedClock(now))
	s.Subscribe(NewDashboardPersister(snaps, testKeys.Dashboard))
	s.Load(context.Background())
	return s
}

func TestDashboardStoreLoadsSeed(t *testing.T) {
	s := openDashboard(t, newTestSnapshots(t), time.Now())

	boards := s.Boards()
	require.Len(t, boards, 3)
	assert.Equal(t, "Product Development", boards[0].Title)
}

func TestDashboardStoreCreate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	snaps := newTestSnapshots(t)
	s := openDashboard(t, snaps, now)

	b, ok := s.Create(ctx, "  Mobile App  ", " iOS and Android ", domain.SummaryPriorityLow)
	require.True(t, ok)
	assert.Equal(t, "Mobile App", b.Title)
	assert.Equal(t, "iOS and Android", b.Description)
	assert.Equal(t, domain.StatusPlanning, b.Status)
	assert.Zero(t, b.TasksCount)
	assert.Equal(t, now, b.UpdatedAt)
	assert.Equal(t, "1709294400000", b.ID)

	boards := s.Boards()
	require.Len(t, boards, 4)
	assert.Equal(t, b, boards[0], "new boards go on top")

	reloaded := openDashboard(t, snaps, now)
	assert.Equal(t, boards, reloaded.Boards())

	t.Run("default priority", func(t *testing.T) {
		b, ok := s.Create(ctx, "Hiring", "", "")
		require.True(t, ok)
		assert.Equal(t, domain.SummaryPriorityMedium, b.Priority)
	})

	t.Run("blank title", func(t *testing.T) {
		_, ok := s.Create(ctx, "   ", "nothing", domain.SummaryPriorityHigh)
		assert.False(t, ok)
		assert.Len(t, s.Boards(), 5)
	})
}

func TestDashboardStoreUpdate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.March, 2, 8, 30, 0, 0, time.UTC)
	s := openDashboard(t, newTestSnapshots(t), now)

	b, ok := s.Update(ctx, "2", SummaryFields{Title: "Spring Campaign ", Description: "Q2", Priority: domain.SummaryPriorityHigh})
	require.True(t, ok)
	assert.Equal(t, "Spring Campaign", b.Title)
	assert.Equal(t, "Q2", b.Description)
	assert.Equal(t, domain.SummaryPriorityHigh, b.Priority)
	assert.Equal(t, now, b.UpdatedAt)
	assert.Equal(t, 8, b.TasksCount, "counts are not touched")

	b, ok = s.Update(ctx, "2", SummaryFields{Title: "Spring Campaign"})
	require.True(t, ok)
	assert.Equal(t, domain.SummaryPriorityHigh, b.Priority, "empty priority keeps the current one")

	_, ok = s.Update(ctx, "2", SummaryFields{Title: ""})
	assert.False(t, ok)
	_, ok = s.Update(ctx, "404", SummaryFields{Title: "Nope"})
	assert.False(t, ok)
}

func TestDashboardStoreDeleteDoesNotCascade(t *testing.T) {
	ctx := context.Background()
	snaps := newTestSnapshots(t)
	board := openStore(t, snaps, "1")
	board.AddColumn(ctx, "Blocked")

	s := openDashboard(t, snaps, time.Now())
	assert.True(t, s.Delete(ctx, "1"))
	assert.False(t, s.Delete(ctx, "1"))
	assert.Len(t, s.Boards(), 2)

	var snap domain.BoardSnapshot
	assert.True(t, snaps.Read(ctx, "kanban_board_1", &snap), "board snapshot survives")
}

func TestDashboardStoreFilter(t *testing.T) {
	s := openDashboard(t, newTestSnapshots(t), time.Now())

	assert.Len(t, s.Filter(""), 3)
	assert.Len(t, s.Filter("   "), 3)

	got := s.Filter("REDESIGN")
	require.Len(t, got, 1)
	assert.Equal(t, "3", got[0].ID)

	got = s.Filter("q1 marketing")
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)

	assert.Empty(t, s.Filter("payroll"))
}

func TestDashboardIsIndependentOfBoards(t *testing.T) {
	ctx := context.Background()
	snaps := newTestSnapshots(t)
	board := openStore(t, snaps, "1")
	dash := openDashboard(t, snaps, time.Now())

	require.True(t, board.UpdateDetails(ctx, "Renamed Inside", ""))
	assert.Equal(t, "Product Development", dash.Boards()[0].Title)

	_, ok := dash.Update(ctx, "1", SummaryFields{Title: "Renamed Outside"})
	require.True(t, ok)
	assert.Equal(t, "Renamed Inside", board.Board().Title)
}
