package client

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/konstanta-tech/tracker/internal/models"
)

// AuthResponse is returned by Login and Register.
type AuthResponse struct {
	User        models.User `json:"user"`
	AccessToken string      `json:"accessToken"`
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type UserPatch struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *string `json:"role,omitempty"`
	Password *string `json:"password,omitempty"`
}

type ProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	TeamMembers []uint `json:"teamMembers,omitempty"`
}

type ProjectPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	TeamMembers *[]uint `json:"teamMembers,omitempty"`
}

// TaskQuery mirrors the server-side filters of GET /tasks.
type TaskQuery struct {
	Status     string
	Priority   string
	AssignedTo *uint
	ProjectID  *uint
	Search     string
}

func (q TaskQuery) values() url.Values {
	v := url.Values{}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Priority != "" {
		v.Set("priority", q.Priority)
	}
	if q.AssignedTo != nil {
		v.Set("assignedTo", strconv.FormatUint(uint64(*q.AssignedTo), 10))
	}
	if q.ProjectID != nil {
		v.Set("projectId", strconv.FormatUint(uint64(*q.ProjectID), 10))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	return v
}

type AttachmentInput struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Size    int64  `json:"size"`
	Type    string `json:"type,omitempty"`
	Content string `json:"content,omitempty"`
}

type TaskInput struct {
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Status      string            `json:"status,omitempty"`
	Priority    string            `json:"priority,omitempty"`
	AssignedTo  *uint             `json:"assignedTo,omitempty"`
	ProjectID   uint              `json:"projectId"`
	Deadline    *time.Time        `json:"deadline,omitempty"`
	Position    *int              `json:"position,omitempty"`
	Attachments []AttachmentInput `json:"attachments,omitempty"`
}

// TaskPatch is a partial update. AssignedTo and Deadline are left out of the
// body when unset and sent as null by models.Null.
type TaskPatch struct {
	Title       *string                    `json:"title,omitempty"`
	Description *string                    `json:"description,omitempty"`
	Status      *string                    `json:"status,omitempty"`
	Priority    *string                    `json:"priority,omitempty"`
	AssignedTo  models.Optional[uint]      `json:"assignedTo,omitzero"`
	ProjectID   *uint                      `json:"projectId,omitempty"`
	Deadline    models.Optional[time.Time] `json:"deadline,omitzero"`
	Position    *int                       `json:"position,omitempty"`
	Completed   *bool                      `json:"completed,omitempty"`
}

type CommentInput struct {
	TaskID      uint              `json:"taskId"`
	Text        string            `json:"text"`
	Attachments []AttachmentInput `json:"attachments,omitempty"`
}

type CommentPatch struct {
	Text        *string            `json:"text,omitempty"`
	Attachments *[]AttachmentInput `json:"attachments,omitempty"`
}

// Login signs in and keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, "POST", "/login", nil, map[string]string{"email": email, "password": password}, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.AccessToken)
	return &resp, nil
}

// Register creates an account. The client token is kept, so an administrator
// session stays signed in as itself.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, "POST", "/users", nil, in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, "GET", "/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	return users, c.do(ctx, "GET", "/users", nil, nil, &users)
}

func (c *Client) UpdateUser(ctx context.Context, id uint, patch UserPatch) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, "PATCH", idPath("/users", id), nil, patch, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) DeleteUser(ctx context.Context, id uint) error {
	return c.do(ctx, "DELETE", idPath("/users", id), nil, nil, nil)
}

func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	return projects, c.do(ctx, "GET", "/projects", nil, nil, &projects)
}

func (c *Client) CreateProject(ctx context.Context, in ProjectInput) (*models.Project, error) {
	var project models.Project
	if err := c.do(ctx, "POST", "/projects", nil, in, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) UpdateProject(ctx context.Context, id uint, patch ProjectPatch) (*models.Project, error) {
	var project models.Project
	if err := c.do(ctx, "PATCH", idPath("/projects", id), nil, patch, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) DeleteProject(ctx context.Context, id uint) error {
	return c.do(ctx, "DELETE", idPath("/projects", id), nil, nil, nil)
}

func (c *Client) ListTasks(ctx context.Context, q TaskQuery) ([]models.Task, error) {
	var tasks []models.Task
	return tasks, c.do(ctx, "GET", "/tasks", q.values(), nil, &tasks)
}

func (c *Client) GetTask(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, "GET", idPath("/tasks", id), nil, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) CreateTask(ctx context.Context, in TaskInput) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, "POST", "/tasks", nil, in, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id uint, patch TaskPatch) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, "PATCH", idPath("/tasks", id), nil, patch, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// MoveTask asks the server to place the task and renumber in one transaction.
func (c *Client) MoveTask(ctx context.Context, id uint, status string, position int) (*models.Task, error) {
	var task models.Task
	body := map[string]interface{}{"status": status, "position": position}
	if err := c.do(ctx, "POST", idPath("/tasks", id)+"/move", nil, body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id uint) error {
	return c.do(ctx, "DELETE", idPath("/tasks", id), nil, nil, nil)
}

// ListComments returns the comments of a task; zero lists all comments.
func (c *Client) ListComments(ctx context.Context, taskID uint) ([]models.Comment, error) {
	q := url.Values{}
	if taskID != 0 {
		q.Set("taskId", strconv.FormatUint(uint64(taskID), 10))
	}
	var comments []models.Comment
	return comments, c.do(ctx, "GET", "/comments", q, nil, &comments)
}

func (c *Client) CreateComment(ctx context.Context, in CommentInput) (*models.Comment, error) {
	var comment models.Comment
	if err := c.do(ctx, "POST", "/comments", nil, in, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (c *Client) UpdateComment(ctx context.Context, id uint, patch CommentPatch) (*models.Comment, error) {
	var comment models.Comment
	if err := c.do(ctx, "PATCH", idPath("/comments", id), nil, patch, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (c *Client) DeleteComment(ctx context.Context, id uint) error {
	return c.do(ctx, "DELETE", idPath("/comments", id), nil, nil, nil)
}
