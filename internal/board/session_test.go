package board

import (
	"context"
	"testing"

	"github.com/konstanta-tech/tracker/internal/client"
	"github.com/konstanta-tech/tracker/internal/models"
	"github.com/konstanta-tech/tracker/internal/permission"
)

type fakeAuthAPI struct {
	token string
	users map[string]models.User
}

func (f *fakeAuthAPI) Login(_ context.Context, email, password string) (*client.AuthResponse, error) {
	u, ok := f.users[email]
	if !ok || password != "secret1" {
		return nil, &client.APIError{StatusCode: 400, Message: "invalid email or password"}
	}
	f.token = "tok-" + u.Role
	return &client.AuthResponse{User: u, AccessToken: f.token}, nil
}

func (f *fakeAuthAPI) Me(context.Context) (*models.User, error) {
	for _, u := range f.users {
		if "tok-"+u.Role == f.token {
			return &u, nil
		}
	}
	return nil, &client.APIError{StatusCode: 403, Message: "invalid token"}
}

func (f *fakeAuthAPI) SetToken(token string) { f.token = token }

func newFakeAuth() *fakeAuthAPI {
	return &fakeAuthAPI{users: map[string]models.User{
		"dev@example.com":   {ID: 2, Email: "dev@example.com", Role: permission.Developer},
		"admin@example.com": {ID: 1, Email: "admin@example.com", Role: permission.Admin},
	}}
}

func TestSession_AnonymousCannotDoAnything(t *testing.T) {
	s := NewSession(newFakeAuth())
	if s.User() != nil {
		t.Error("new session should have no user")
	}
	if s.Can(permission.ViewTasks) || s.CanAny(permission.ViewTasks, permission.Comment) {
		t.Error("anonymous session should have no permissions")
	}
}

func TestSession_LoginAndPermissions(t *testing.T) {
	s := NewSession(newFakeAuth())

	if _, err := s.Login(context.Background(), "dev@example.com", "wrong"); client.StatusCode(err) != 400 {
		t.Fatalf("Login() error = %v", err)
	}

	user, err := s.Login(context.Background(), "dev@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.Role != permission.Developer || s.Token() != "tok-developer" {
		t.Errorf("user = %+v token = %q", user, s.Token())
	}

	if !s.Can(permission.CreateTask) {
		t.Error("developer should create tasks")
	}
	if s.Can(permission.DeleteTask) {
		t.Error("developer should not delete tasks")
	}
	if !s.CanAll(permission.ViewTasks, permission.Comment) {
		t.Error("developer should view and comment")
	}
	if s.CanAll(permission.ViewTasks, permission.ManageUsers) {
		t.Error("CanAll should need every permission")
	}

	s.Logout()
	if s.User() != nil || s.Can(permission.ViewTasks) {
		t.Error("logout should clear the user")
	}
}

func TestSession_Restore(t *testing.T) {
	api := newFakeAuth()
	s := NewSession(api)

	user, err := s.Restore(context.Background(), "tok-admin")
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if user.ID != 1 || !s.Can(permission.ManageUsers) {
		t.Errorf("restored user = %+v", user)
	}

	if _, err := s.Restore(context.Background(), "stale"); err == nil {
		t.Fatal("expected error for stale token")
	}
	if api.token != "" {
		t.Errorf("failed restore should clear the client token, got %q", api.token)
	}
}
