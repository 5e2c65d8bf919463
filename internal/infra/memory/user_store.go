package memory

import (
	"context"
	"strings"
	"sync"

	"elearning-quiz-service/internal/domain"
)

// UserStore is an in-memory identity store.
type UserStore struct {
	mu    sync.RWMutex
	seq   int64
	users map[int64]domain.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[int64]domain.User)}
}

func (s *UserStore) FindByUsername(_ context.Context, username string) (domain.User, error) {
	return s.find(func(u domain.User) bool { return u.Username == username })
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (domain.User, error) {
	return s.find(func(u domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (s *UserStore) find(match func(domain.User) bool) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if match(u) {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (s *UserStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username || strings.EqualFold(u.Email, user.Email) {
			return domain.ErrDuplicate
		}
	}
	s.seq++
	user.ID = s.seq
	s.users[user.ID] = *user
	return nil
}

func (s *UserStore) Update(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	s.users[user.ID] = *user
	return nil
}
