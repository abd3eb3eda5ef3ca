// Package user provides the in-memory user registry for Color Clash.
//
// Users are identified by uuid and keyed case-insensitively by username.
// There is no password and no session token: a "login" simply resolves a
// username back to its user record, which is all the game needs.
package user

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
	ErrInvalidName   = errors.New("username must be between 3 and 20 characters")
)

// User is a registered player
type User struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	IsOnline  bool      `json:"isOnline"`
}

// snapshot copies the user so callers can read and encode it outside
// the registry lock; SetOnline mutates the stored record in place.
func (u *User) snapshot() *User {
	cp := *u
	return &cp
}

// Registry is a thread-safe in-memory user store
type Registry struct {
	users map[string]*User
	mu    sync.RWMutex
}

// NewRegistry creates an empty user registry
func NewRegistry() *Registry {
	return &Registry{
		users: make(map[string]*User),
	}
}

// Register creates a new user. Usernames are trimmed, must be 3-20
// characters, and are unique ignoring case.
func (r *Registry) Register(username string) (*User, error) {
	name := strings.TrimSpace(username)
	if len(name) < 3 || len(name) > 20 {
		return nil, ErrInvalidName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findByUsername(name) != nil {
		return nil, ErrUsernameTaken
	}

	u := &User{
		UserID:    uuid.NewString(),
		Username:  name,
		CreatedAt: time.Now(),
	}
	r.users[u.UserID] = u
	return u.snapshot(), nil
}

// Login resolves a username back to its user record
func (r *Registry) Login(username string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u := r.findByUsername(strings.TrimSpace(username))
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u.snapshot(), nil
}

// Get retrieves a user by ID
func (r *Registry) Get(userID string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, exists := r.users[userID]
	if !exists {
		return nil, ErrUserNotFound
	}
	return u.snapshot(), nil
}

// SetOnline updates a user's online flag, reporting whether the user exists
func (r *Registry) SetOnline(userID string, online bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, exists := r.users[userID]
	if !exists {
		return false
	}
	u.IsOnline = online
	return true
}

// List returns all registered users
func (r *Registry) List() []*User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*User, 0, len(r.users))
	for _, u := range r.users {
		result = append(result, u.snapshot())
	}
	return result
}

// findByUsername scans for a username ignoring case; callers hold r.mu
func (r *Registry) findByUsername(name string) *User {
	lower := strings.ToLower(name)
	for _, u := range r.users {
		if strings.ToLower(u.Username) == lower {
			return u
		}
	}
	return nil
}
