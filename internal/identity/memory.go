package identity

import (
	"context"
	"sync"
)

// MemoryUserStore keeps users in process memory, for tests and the
// memory backend.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[string]User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]User)}
}

func (s *MemoryUserStore) CreateUser(_ context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Username]; ok {
		return ErrDuplicateUser
	}
	s.users[u.Username] = u
	return nil
}

func (s *MemoryUserStore) GetUser(_ context.Context, username string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return User{}, ErrUnknownUser
	}
	return u, nil
}

func (s *MemoryUserStore) SetRewardClaimed(_ context.Context, username string, claimed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return ErrUnknownUser
	}
	u.RewardClaimed = claimed
	s.users[username] = u
	return nil
}
