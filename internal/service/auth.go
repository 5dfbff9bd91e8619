package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/ByteBlast1/KanFlow/internal/domain"
	"github.com/ByteBlast1/KanFlow/internal/repository"
	"github.com/ByteBlast1/KanFlow/internal/seed"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ValidationMessage is the error returned when a required field is missing.
func (RegisterRequest) ValidationMessage() string {
	return "Name, email, and password are required"
}

func (LoginRequest) ValidationMessage() string {
	return "Email and password are required"
}

type LoginResult struct {
	Session domain.Session
	User    domain.User
}

// AuthService is the mock authentication layer. Sessions are not tied to
// any board data.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) bool
	Session(ctx context.Context, sessionID string) (*domain.User, error)
}

type authService struct {
	users    repository.UserRepository
	sessions *SessionStore
	cost     int

	// serializes the email check and insert in Register
	registerMu sync.Mutex
}

func NewAuthService(users repository.UserRepository, sessions *SessionStore, bcryptCost int) AuthService {
	return &authService{users: users, sessions: sessions, cost: bcryptCost}
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	s.registerMu.Lock()
	defer s.registerMu.Unlock()

	_, err := s.users.FindByEmail(req.Email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("look up user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.users.Create(req.Name, req.Email, string(hash))
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	log.WithField("user_id", user.ID).Info("user registered")
	return &user, nil
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	sess := s.sessions.Create(user.ID)
	return &LoginResult{Session: sess, User: user}, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) bool {
	return s.sessions.Delete(sessionID)
}

func (s *authService) Session(ctx context.Context, sessionID string) (*domain.User, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	user, err := s.users.FindByID(sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("look up session user: %w", err)
	}
	return &user, nil
}

// SeedUsers registers the seed accounts, skipping any that already exist.
func SeedUsers(ctx context.Context, auth AuthService, users []seed.User) error {
	for _, u := range users {
		_, err := auth.Register(ctx, RegisterRequest{Name: u.Name, Email: u.Email, Password: u.Password})
		if err != nil && !errors.Is(err, ErrEmailTaken) {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
	}
	return nil
}
