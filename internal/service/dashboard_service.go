package service

import (
	"context"

	"github.com/ByteBlast1/KanFlow/internal/domain"
)

type BoardSummaryRequest struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Priority    domain.SummaryPriority `json:"priority"`
}

// DashboardService exposes the dashboard store to the HTTP layer.
type DashboardService interface {
	ListBoards(ctx context.Context, query string) []domain.BoardSummary
	CreateBoard(ctx context.Context, req BoardSummaryRequest) (*domain.BoardSummary, error)
	UpdateBoard(ctx context.Context, boardID string, req BoardSummaryRequest) (*domain.BoardSummary, error)
	DeleteBoard(ctx context.Context, boardID string)
}

type dashboardService struct {
	store *DashboardStore
}

// NewDashboardService wraps an already loaded store.
func NewDashboardService(store *DashboardStore) DashboardService {
	return &dashboardService{store: store}
}

func (s *dashboardService) ListBoards(ctx context.Context, query string) []domain.BoardSummary {
	return s.store.Filter(query)
}

func (s *dashboardService) CreateBoard(ctx context.Context, req BoardSummaryRequest) (*domain.BoardSummary, error) {
	b, ok := s.store.Create(ctx, req.Title, req.Description, req.Priority)
	if !ok {
		return nil, ErrTitleRequired
	}
	return &b, nil
}

func (s *dashboardService) UpdateBoard(ctx context.Context, boardID string, req BoardSummaryRequest) (*domain.BoardSummary, error) {
	if isBlank(req.Title) {
		return nil, ErrTitleRequired
	}
	b, ok := s.store.Update(ctx, boardID, SummaryFields{Title: req.Title, Description: req.Description, Priority: req.Priority})
	if !ok {
		return nil, ErrBoardNotFound
	}
	return &b, nil
}

func (s *dashboardService) DeleteBoard(ctx context.Context, boardID string) {
	s.store.Delete(ctx, boardID)
}
