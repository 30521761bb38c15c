package board

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/konstanta-tech/tracker/internal/client"
	"github.com/konstanta-tech/tracker/internal/models"
)

type ProjectAPI interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	CreateProject(ctx context.Context, in client.ProjectInput) (*models.Project, error)
	UpdateProject(ctx context.Context, id uint, patch client.ProjectPatch) (*models.Project, error)
	DeleteProject(ctx context.Context, id uint) error
}

type UserAPI interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id uint, patch client.UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, id uint) error
}

type CommentAPI interface {
	ListComments(ctx context.Context, taskID uint) ([]models.Comment, error)
	CreateComment(ctx context.Context, in client.CommentInput) (*models.Comment, error)
	UpdateComment(ctx context.Context, id uint, patch client.CommentPatch) (*models.Comment, error)
	DeleteComment(ctx context.Context, id uint) error
}

// errState is the error string and logger shared by the stores.
type errState struct {
	log zerolog.Logger
	mu  sync.RWMutex
	err string
}

func (e *errState) set(msg string, err error) {
	e.mu.Lock()
	e.err = err.Error()
	e.mu.Unlock()
	e.log.Error().Err(err).Msg(msg)
}

func (e *errState) clear() {
	e.mu.Lock()
	e.err = ""
	e.mu.Unlock()
}

// Err is the message of the last failed operation.
func (e *errState) Err() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.err
}

type ProjectStore struct {
	errState
	api ProjectAPI

	mu       sync.RWMutex
	projects []models.Project
}

func NewProjectStore(api ProjectAPI, log zerolog.Logger) *ProjectStore {
	return &ProjectStore{errState: errState{log: log}, api: api, projects: []models.Project{}}
}

func (s *ProjectStore) Fetch(ctx context.Context) {
	projects, err := s.api.ListProjects(ctx)
	if err != nil {
		s.set("fetch projects failed", err)
		return
	}
	s.mu.Lock()
	s.projects = append([]models.Project{}, projects...)
	s.mu.Unlock()
	s.clear()
}

func (s *ProjectStore) Create(ctx context.Context, in client.ProjectInput) (*models.Project, error) {
	project, err := s.api.CreateProject(ctx, in)
	if err != nil {
		s.set("create project failed", err)
		return nil, err
	}
	s.mu.Lock()
	s.projects = append(s.projects, *project)
	s.mu.Unlock()
	s.clear()
	return project, nil
}

func (s *ProjectStore) Update(ctx context.Context, id uint, patch client.ProjectPatch) (*models.Project, error) {
	project, err := s.api.UpdateProject(ctx, id, patch)
	if err != nil {
		s.set("update project failed", err)
		return nil, err
	}
	s.mu.Lock()
	for i := range s.projects {
		if s.projects[i].ID == id {
			s.projects[i] = *project
		}
	}
	s.mu.Unlock()
	s.clear()
	return project, nil
}

// Delete removes the project. Its tasks are gone on the server too, so
// callers holding a TaskStore should Fetch it again.
func (s *ProjectStore) Delete(ctx context.Context, id uint) error {
	if err := s.api.DeleteProject(ctx, id); err != nil {
		s.set("delete project failed", err)
		return err
	}
	s.mu.Lock()
	kept := s.projects[:0]
	for _, p := range s.projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.projects = kept
	s.mu.Unlock()
	s.clear()
	return nil
}

func (s *ProjectStore) Projects() []models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Project{}, s.projects...)
}

func (s *ProjectStore) Get(id uint) (models.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.projects {
		if p.ID == id {
			return p, true
		}
	}
	return models.Project{}, false
}

type UserStore struct {
	errState
	api UserAPI

	mu    sync.RWMutex
	users []models.User
}

func NewUserStore(api UserAPI, log zerolog.Logger) *UserStore {
	return &UserStore{errState: errState{log: log}, api: api, users: []models.User{}}
}

func (s *UserStore) Fetch(ctx context.Context) {
	users, err := s.api.ListUsers(ctx)
	if err != nil {
		s.set("fetch users failed", err)
		return
	}
	s.mu.Lock()
	s.users = append([]models.User{}, users...)
	s.mu.Unlock()
	s.clear()
}

func (s *UserStore) Update(ctx context.Context, id uint, patch client.UserPatch) (*models.User, error) {
	user, err := s.api.UpdateUser(ctx, id, patch)
	if err != nil {
		s.set("update user failed", err)
		return nil, err
	}
	s.mu.Lock()
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i] = *user
		}
	}
	s.mu.Unlock()
	s.clear()
	return user, nil
}

func (s *UserStore) Delete(ctx context.Context, id uint) error {
	if err := s.api.DeleteUser(ctx, id); err != nil {
		s.set("delete user failed", err)
		return err
	}
	s.mu.Lock()
	kept := s.users[:0]
	for _, u := range s.users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	s.users = kept
	s.mu.Unlock()
	s.clear()
	return nil
}

func (s *UserStore) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.User{}, s.users...)
}

// Name returns the display name of id, or "" when unknown.
func (s *UserStore) Name(id uint) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u.Name
		}
	}
	return ""
}

// CommentStore caches comments per task.
type CommentStore struct {
	errState
	api CommentAPI

	mu     sync.RWMutex
	byTask map[uint][]models.Comment
}

func NewCommentStore(api CommentAPI, log zerolog.Logger) *CommentStore {
	return &CommentStore{errState: errState{log: log}, api: api, byTask: map[uint][]models.Comment{}}
}

func (s *CommentStore) Fetch(ctx context.Context, taskID uint) {
	comments, err := s.api.ListComments(ctx, taskID)
	if err != nil {
		s.set("fetch comments failed", err)
		return
	}
	s.mu.Lock()
	s.byTask[taskID] = append([]models.Comment{}, comments...)
	s.mu.Unlock()
	s.clear()
}

func (s *CommentStore) Create(ctx context.Context, in client.CommentInput) (*models.Comment, error) {
	comment, err := s.api.CreateComment(ctx, in)
	if err != nil {
		s.set("create comment failed", err)
		return nil, err
	}
	s.mu.Lock()
	s.byTask[comment.TaskID] = append(s.byTask[comment.TaskID], *comment)
	s.mu.Unlock()
	s.clear()
	return comment, nil
}

func (s *CommentStore) Update(ctx context.Context, id uint, patch client.CommentPatch) (*models.Comment, error) {
	comment, err := s.api.UpdateComment(ctx, id, patch)
	if err != nil {
		s.set("update comment failed", err)
		return nil, err
	}
	s.mu.Lock()
	list := s.byTask[comment.TaskID]
	for i := range list {
		if list[i].ID == id {
			list[i] = *comment
		}
	}
	s.mu.Unlock()
	s.clear()
	return comment, nil
}

func (s *CommentStore) Delete(ctx context.Context, id uint) error {
	if err := s.api.DeleteComment(ctx, id); err != nil {
		s.set("delete comment failed", err)
		return err
	}
	s.mu.Lock()
	for taskID, list := range s.byTask {
		kept := list[:0]
		for _, c := range list {
			if c.ID != id {
				kept = append(kept, c)
			}
		}
		s.byTask[taskID] = kept
	}
	s.mu.Unlock()
	s.clear()
	return nil
}

// Comments returns the cached comments of a task in server order.
func (s *CommentStore) Comments(taskID uint) []models.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Comment{}, s.byTask[taskID]...)
}
