package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jobtrack/jobtrack/internal/domain"
)

type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users: make(map[string]domain.User),
	}
}

func (s *MemoryUserStore) Create(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailTakenLocked(user.Email, "") {
		return ErrEmailTaken
	}
	s.users[user.ID] = user
	return nil
}

func (s *MemoryUserStore) Get(_ context.Context, id string) (domain.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	return user, ok, nil
}

func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (domain.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return user, true, nil
		}
	}
	return domain.User{}, false, nil
}

func (s *MemoryUserStore) Update(_ context.Context, user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return domain.User{}, ErrUserNotFound
	}
	if s.emailTakenLocked(user.Email, user.ID) {
		return domain.User{}, ErrEmailTaken
	}
	user.UpdatedAt = time.Now().UTC()
	s.users[user.ID] = user
	return user, nil
}

func (s *MemoryUserStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

func (s *MemoryUserStore) emailTakenLocked(email, excludeID string) bool {
	for _, existing := range s.users {
		if existing.ID != excludeID && strings.EqualFold(existing.Email, email) {
			return true
		}
	}
	return false
}
