package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/ByteBlast1/KanFlow/internal/service"
)

const (
	clientIDHeader  = "X-Client-ID"
	anonymousClient = "anonymous"
)

// clientID identifies whose search query and drag gesture a request
// belongs to.
func clientID(r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if id := r.Header.Get(clientIDHeader); id != "" {
		return id
	}
	return anonymousClient
}

func (s *Server) getBoardHandler(w http.ResponseWriter, r *http.Request) {
	var query *string
	if values := r.URL.Query(); values.Has("q") {
		q := values.Get("q")
		query = &q
	}
	view := s.boards.GetBoard(r.Context(), chi.URLParam(r, "id"), clientID(r), query)
	respondWithJSON(w, http.StatusOK, view)
}

func (s *Server) updateBoardHandler(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateBoardRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	view, err := s.boards.UpdateBoard(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.respondWithServiceError(w, r, err, "Failed to update board")
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	var req service.SearchRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	view := s.boards.SetSearch(r.Context(), chi.URLParam(r, "id"), clientID(r), req)
	respondWithJSON(w, http.StatusOK, view)
}

func (s *Server) addColumnHandler(w http.ResponseWriter, r *http.Request) {
	var req service.CreateColumnRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	col, err := s.boards.AddColumn(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.respondWithServiceError(w, r, err, "Failed to add column")
		return
	}
	respondWithJSON(w, http.StatusCreated, col)
}

func (s *Server) deleteColumnHandler(w http.ResponseWriter, r *http.Request) {
	s.boards.DeleteColumn(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "columnId"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addTaskHandler(w http.ResponseWriter, r *http.Request) {
	var req service.TaskRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	task, err := s.boards.AddTask(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "columnId"), req)
	if err != nil {
		s.respondWithServiceError(w, r, err, "Failed to add task")
		return
	}
	respondWithJSON(w, http.StatusCreated, task)
}

func (s *Server) updateTaskHandler(w http.ResponseWriter, r *http.Request) {
	var req service.TaskRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	task, err := s.boards.UpdateTask(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "taskId"), req)
	if err != nil {
		s.respondWithServiceError(w, r, err, "Failed to update task")
		return
	}
	respondWithJSON(w, http.StatusOK, task)
}

func (s *Server) deleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	s.boards.DeleteTask(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "columnId"), chi.URLParam(r, "taskId"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) moveTaskHandler(w http.ResponseWriter, r *http.Request) {
	var req service.MoveTaskRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	view, err := s.boards.MoveTask(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "taskId"), req)
	if err != nil {
		s.respondWithServiceError(w, r, err, "Failed to move task")
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

func (s *Server) dragStartHandler(w http.ResponseWriter, r *http.Request) {
	var req service.DragStartRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	s.boards.StartDrag(r.Context(), chi.URLParam(r, "id"), clientID(r), req)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) dropHandler(w http.ResponseWriter, r *http.Request) {
	var req service.DropRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	res := s.boards.Drop(r.Context(), chi.URLParam(r, "id"), clientID(r), req)
	respondWithJSON(w, http.StatusOK, res)
}

func (s *Server) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrTitleRequired), errors.Is(err, service.ErrInvalidDueDate):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrColumnNotFound), errors.Is(err, service.ErrTaskNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	default:
		log.WithError(err).WithField("path", r.URL.Path).Error(fallback)
		respondWithError(w, http.StatusInternalServerError, fallback)
	}
}
