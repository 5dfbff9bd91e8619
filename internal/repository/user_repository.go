package repository

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ByteBlast1/KanFlow/internal/domain"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the user table operations needed by auth.
type UserRepository interface {
	Create(name, email, passwordHash string) (domain.User, error)
	FindByEmail(email string) (domain.User, error)
	FindByID(id string) (domain.User, error)
}

// memoryUserRepository is the in-process user table. It is seeded once at
// startup and lost on restart.
type memoryUserRepository struct {
	mu    sync.RWMutex
	users []domain.User
	now   func() time.Time
}

func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{now: time.Now}
}

func (r *memoryUserRepository) Create(name, email, passwordHash string) (domain.User, error) {
	user := domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    r.now().UTC(),
	}
	r.mu.Lock()
	r.users = append(r.users, user)
	r.mu.Unlock()
	return user, nil
}

func (r *memoryUserRepository) FindByEmail(email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, ErrUserNotFound
}

func (r *memoryUserRepository) FindByID(id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, ErrUserNotFound
}
