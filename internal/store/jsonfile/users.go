package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"moneta/internal/identity"
)

type userRecord struct {
	Username      string `json:"username"`
	PasswordHash  []byte `json:"password_hash"`
	RewardClaimed bool   `json:"reward_claimed"`
}

// UserStore keeps the user collection in a JSON file next to the
// ledger file, matching the original's shared local storage. Corrupt
// payloads load as an empty collection.
type UserStore struct {
	mu    sync.Mutex
	path  string
	users map[string]identity.User
}

func OpenUsers(path string) (*UserStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	s := &UserStore{path: path, users: make(map[string]identity.User)}
	s.load()
	return s, nil
}

func (s *UserStore) load() {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var recs []userRecord
	if err := json.Unmarshal(raw, &recs); err != nil {
		slog.Warn("Corrupt user payload, starting empty", "path", s.path, "error", err)
		return
	}
	for _, r := range recs {
		s.users[r.Username] = identity.User{
			Username:      r.Username,
			PasswordHash:  r.PasswordHash,
			RewardClaimed: r.RewardClaimed,
		}
	}
}

func (s *UserStore) persist() error {
	recs := make([]userRecord, 0, len(s.users))
	for _, u := range s.users {
		recs = append(recs, userRecord{Username: u.Username, PasswordHash: u.PasswordHash, RewardClaimed: u.RewardClaimed})
	}
	raw, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("marshal users: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0600); err != nil {
		return fmt.Errorf("write user file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace user file: %w", err)
	}
	return nil
}

func (s *UserStore) CreateUser(_ context.Context, u identity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Username]; ok {
		return identity.ErrDuplicateUser
	}
	s.users[u.Username] = u
	if err := s.persist(); err != nil {
		delete(s.users, u.Username)
		return err
	}
	return nil
}

func (s *UserStore) GetUser(_ context.Context, username string) (identity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return identity.User{}, identity.ErrUnknownUser
	}
	return u, nil
}

func (s *UserStore) SetRewardClaimed(_ context.Context, username string, claimed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return identity.ErrUnknownUser
	}
	prev := u.RewardClaimed
	u.RewardClaimed = claimed
	s.users[username] = u
	if err := s.persist(); err != nil {
		u.RewardClaimed = prev
		s.users[username] = u
		return err
	}
	return nil
}
