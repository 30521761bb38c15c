package board

import (
	"context"
	"sync"

	"github.com/konstanta-tech/tracker/internal/client"
	"github.com/konstanta-tech/tracker/internal/models"
	"github.com/konstanta-tech/tracker/internal/permission"
)

type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*client.AuthResponse, error)
	Me(ctx context.Context) (*models.User, error)
	SetToken(token string)
}

// Session is the signed-in user and the permission checks derived from the
// user's role. A session without a user may do nothing.
type Session struct {
	api AuthAPI

	mu    sync.RWMutex
	user  *models.User
	token string
}

func NewSession(api AuthAPI) *Session {
	return &Session{api: api}
}

func (s *Session) Login(ctx context.Context, email, password string) (*models.User, error) {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	user := resp.User
	s.mu.Lock()
	s.user = &user
	s.token = resp.AccessToken
	s.mu.Unlock()
	return &user, nil
}

// Restore resumes a session from a saved token, checking it with the server.
func (s *Session) Restore(ctx context.Context, token string) (*models.User, error) {
	s.api.SetToken(token)
	user, err := s.api.Me(ctx)
	if err != nil {
		s.Logout()
		return nil, err
	}
	s.mu.Lock()
	s.user = user
	s.token = token
	s.mu.Unlock()
	return user, nil
}

func (s *Session) Logout() {
	s.api.SetToken("")
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Role
}

func (s *Session) Can(p permission.Permission) bool {
	return permission.Has(s.role(), p)
}

func (s *Session) CanAll(ps ...permission.Permission) bool {
	return permission.HasAll(s.role(), ps...)
}

func (s *Session) CanAny(ps ...permission.Permission) bool {
	return permission.HasAny(s.role(), ps...)
}
