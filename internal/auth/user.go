// Package auth issues and verifies bearer tokens for dashboard users.
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrUserNotFound is returned by stores when no user has the email.
var ErrUserNotFound = errors.New("user not found")

// User is a dashboard account. Password is never serialized.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"-"`
}

// Store looks up users.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
}

// DemoUsers are the accounts available out of the box.
func DemoUsers() []User {
	return []User{
		{ID: 1, Email: "admin@example.com", Name: "Admin User", Role: "admin", Password: "password123"},
		{ID: 2, Email: "user@example.com", Name: "Normal User", Role: "user", Password: "userpass"},
	}
}

// MemoryStore keeps users in a map keyed by lowercase email.
type MemoryStore struct {
	mu    sync.RWMutex
	users []User
	index map[string]int
}

func NewMemoryStore(users ...User) *MemoryStore {
	s := &MemoryStore{index: map[string]int{}}
	for _, u := range users {
		s.Add(u)
	}
	return s
}

// Add inserts u, replacing any user with the same email.
func (s *MemoryStore) Add(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := normalizeEmail(u.Email)
	if i, ok := s.index[key]; ok {
		s.users[i] = u
		return
	}
	s.index[key] = len(s.users)
	s.users = append(s.users, u)
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[normalizeEmail(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := s.users[i]
	return &u, nil
}

func (s *MemoryStore) List(context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]User(nil), s.users...), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
