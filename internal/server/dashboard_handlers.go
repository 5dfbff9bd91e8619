package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/ByteBlast1/KanFlow/internal/service"
)

func (s *Server) listBoardsHandler(w http.ResponseWriter, r *http.Request) {
	boards := s.dashboard.ListBoards(r.Context(), r.URL.Query().Get("q"))
	respondWithJSON(w, http.StatusOK, boards)
}

func (s *Server) createBoardHandler(w http.ResponseWriter, r *http.Request) {
	var req service.BoardSummaryRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	board, err := s.dashboard.CreateBoard(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrTitleRequired) {
			respondWithError(w, http.StatusBadRequest, err.Error())
		} else {
			log.WithError(err).Error("create board")
			respondWithError(w, http.StatusInternalServerError, "Failed to create board")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, board)
}

func (s *Server) updateBoardSummaryHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req service.BoardSummaryRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	board, err := s.dashboard.UpdateBoard(r.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTitleRequired):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrBoardNotFound):
			respondWithError(w, http.StatusNotFound, err.Error())
		default:
			log.WithError(err).WithField("board_id", id).Error("update board")
			respondWithError(w, http.StatusInternalServerError, "Failed to update board")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, board)
}

func (s *Server) deleteBoardHandler(w http.ResponseWriter, r *http.Request) {
	s.dashboard.DeleteBoard(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}
