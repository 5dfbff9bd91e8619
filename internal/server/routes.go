package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", clientIDHeader},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", s.HelloWorldHandler)

	r.Get("/health", s.healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.registerHandler)
			r.Post("/login", s.loginHandler)
			r.Post("/logout", s.logoutHandler)
			r.Get("/session", s.sessionHandler)
		})

		r.Route("/dashboard/boards", func(r chi.Router) {
			r.Get("/", s.listBoardsHandler)
			r.Post("/", s.createBoardHandler)
			r.Put("/{id}", s.updateBoardSummaryHandler)
			r.Delete("/{id}", s.deleteBoardHandler)
		})

		r.Route("/boards/{id}", func(r chi.Router) {
			r.Get("/", s.getBoardHandler)
			r.Patch("/", s.updateBoardHandler)
			r.Put("/search", s.searchHandler)

			r.Post("/columns", s.addColumnHandler)
			r.Delete("/columns/{columnId}", s.deleteColumnHandler)

			r.Post("/columns/{columnId}/tasks", s.addTaskHandler)
			r.Delete("/columns/{columnId}/tasks/{taskId}", s.deleteTaskHandler)
			r.Put("/tasks/{taskId}", s.updateTaskHandler)
			r.Post("/tasks/{taskId}/move", s.moveTaskHandler)

			r.Post("/drag/start", s.dragStartHandler)
			r.Post("/drag/drop", s.dropHandler)
		})
	})

	return r
}

func (s *Server) HelloWorldHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Hello World from KanFlow!"})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthStats := s.health.Health()
	if status, ok := healthStats["status"]; ok && status == "down" {
		respondWithJSON(w, http.StatusServiceUnavailable, healthStats)
		return
	}
	respondWithJSON(w, http.StatusOK, healthStats)
}

// validationMessager lets a request type replace the per-field message with
// a single one of its own.
type validationMessager interface {
	ValidationMessage() string
}

// decodeJSON reads the request body into dst and validates it. On failure
// the error response has already been written and false is returned.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		if errors.As(err, &syntaxError) {
			msg := fmt.Sprintf("Request body contains badly-formed JSON (at position %d)", syntaxError.Offset)
			respondWithError(w, http.StatusBadRequest, msg)
		} else if errors.Is(err, io.ErrUnexpectedEOF) {
			msg := "Request body contains badly-formed JSON"
			respondWithError(w, http.StatusBadRequest, msg)
		} else if errors.As(err, &unmarshalTypeError) {
			msg := fmt.Sprintf("Request body contains an invalid value for the %q field (at position %d)", unmarshalTypeError.Field, unmarshalTypeError.Offset)
			respondWithError(w, http.StatusBadRequest, msg)
		} else if strings.HasPrefix(err.Error(), "json: unknown field ") {
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			msg := fmt.Sprintf("Request body contains unknown field %s", fieldName)
			respondWithError(w, http.StatusBadRequest, msg)
		} else if errors.Is(err, io.EOF) {
			msg := "Request body must not be empty"
			respondWithError(w, http.StatusBadRequest, msg)
		} else {
			log.WithError(err).WithField("path", r.URL.Path).Error("decode request")
			respondWithError(w, http.StatusInternalServerError, "Error processing request")
		}
		return false
	}

	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			msg := fmt.Sprintf("Field %q is required", verrs[0].Field())
			if m, ok := dst.(validationMessager); ok {
				msg = m.ValidationMessage()
			}
			respondWithError(w, http.StatusBadRequest, msg)
			return false
		}
		log.WithError(err).WithField("path", r.URL.Path).Error("validate request")
		respondWithError(w, http.StatusInternalServerError, "Error processing request")
		return false
	}
	return true
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).Error("marshal JSON response")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal server error preparing response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
