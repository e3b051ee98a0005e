// ABOUTME: Credential state shared by the API client and its callers
// ABOUTME: Holds the bearer token and last-known user snapshot behind one lock

package session

import "sync"

// User is the last-known profile snapshot returned by the backend.
// It is a display cache only; the backend enforces all authorization.
type User struct {
	ID              int64  `json:"userId,omitempty"`
	Email           string `json:"email,omitempty"`
	Nickname        string `json:"nickname,omitempty"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}

// Normalize fills ProfileImageURL from the legacy userProfileUrl field some
// backend versions return instead.
func (u *User) Normalize(legacyURL string) {
	if u.ProfileImageURL == "" {
		u.ProfileImageURL = legacyURL
	}
}

// Snapshot is a consistent copy of the credential state.
type Snapshot struct {
	AccessToken string `json:"accessToken,omitempty"`
	User        *User  `json:"currentUser,omitempty"`
}

// Session is the process-wide credential state. The zero value is an
// empty, ready-to-use session.
type Session struct {
	mu    sync.RWMutex
	token string
	user  *User
}

// New creates a session seeded from a snapshot (e.g. one loaded from disk).
func New(snap Snapshot) *Session {
	s := &Session{}
	s.Set(snap.AccessToken, snap.User)
	return s
}

// Token returns the current bearer token, or "" when absent.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken replaces the bearer token and leaves the user snapshot alone.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// User returns a copy of the current user, or nil when absent.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.user)
}

// SetUser replaces the user snapshot.
func (s *Session) SetUser(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = copyUser(u)
}

// Set replaces both fields at once.
func (s *Session) Set(token string, u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = copyUser(u)
}

// Clear drops the token and the user together.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
}

// Authenticated reports whether a bearer token is held. The token may
// still be expired server-side.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Snapshot returns a consistent copy of both fields.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{AccessToken: s.token, User: copyUser(s.user)}
}

func copyUser(u *User) *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
