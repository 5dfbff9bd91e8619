package server

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/ByteBlast1/KanFlow/internal/domain"
	"github.com/ByteBlast1/KanFlow/internal/service"
)

const sessionCookie = "session"

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	user, err := s.auth.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			respondWithError(w, http.StatusConflict, err.Error())
		} else {
			log.WithError(err).Error("register user")
			respondWithError(w, http.StatusInternalServerError, "Failed to register user")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, user)
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	res, err := s.auth.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, err.Error())
		} else {
			log.WithError(err).Error("login")
			respondWithError(w, http.StatusInternalServerError, "Failed to log in")
		}
		return
	}

	s.setSessionCookie(w, res.Session)
	respondWithJSON(w, http.StatusOK, res.User)
}

func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.auth.Logout(r.Context(), c.Value)
	}
	s.clearSessionCookie(w)
	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) sessionHandler(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, service.ErrSessionNotFound.Error())
		return
	}

	user, err := s.auth.Session(r.Context(), c.Value)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			respondWithError(w, http.StatusUnauthorized, err.Error())
		} else {
			log.WithError(err).Error("load session")
			respondWithError(w, http.StatusInternalServerError, "Failed to load session")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, user)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, sess domain.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(s.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.Production(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.Production(),
		SameSite: http.SameSiteLaxMode,
	})
}
