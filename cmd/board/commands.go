package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/konstanta-tech/tracker/internal/board"
	"github.com/konstanta-tech/tracker/internal/client"
	"github.com/konstanta-tech/tracker/internal/models"
	"github.com/konstanta-tech/tracker/internal/permission"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("TRACKER_PASSWORD")
			}
			ctx, cancel := a.context()
			defer cancel()
			user, err := a.session.Login(ctx, email, password)
			if err != nil {
				return err
			}
			if err := a.saveToken(a.session.Token()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (%s)\n", user.Name, user.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (or TRACKER_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.Logout()
			if err := os.Remove(a.tokenFile); err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user and what they may do",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context()
			defer cancel()
			if err := a.restore(ctx); err != nil {
				return err
			}
			u := a.session.User()
			perms := make([]string, 0)
			for _, p := range permission.For(u.Role) {
				perms = append(perms, string(p))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> %s\n%s\n", u.Name, u.Email, u.Role, strings.Join(perms, ", "))
			return nil
		},
	}
}

// filterFlags binds the shared task filter flags.
type filterFlags struct {
	search   string
	status   string
	priority string
	assignee uint
	project  uint
	sortBy   string
	order    string
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "match title or description")
	cmd.Flags().StringVar(&f.status, "status", "", "todo, in-progress or done")
	cmd.Flags().StringVar(&f.priority, "priority", "", "low, medium or high")
	cmd.Flags().UintVar(&f.assignee, "assignee", 0, "assigned user id")
	cmd.Flags().UintVar(&f.project, "project", 0, "project id")
	cmd.Flags().StringVar(&f.sortBy, "sort", "", "deadline, priority, status or createdAt")
	cmd.Flags().StringVar(&f.order, "order", "asc", "asc or desc")
}

func (f *filterFlags) filters() board.Filters {
	out := board.Filters{
		Search:   f.search,
		Status:   f.status,
		Priority: f.priority,
		SortBy:   board.SortField(f.sortBy),
		Order:    board.SortOrder(f.order),
	}
	if f.assignee != 0 {
		id := f.assignee
		out.AssignedTo = &id
	}
	if f.project != 0 {
		id := f.project
		out.ProjectID = &id
	}
	return out
}

// load restores the session and fetches the tasks and users for display.
func (a *app) load(f board.Filters) error {
	ctx, cancel := a.context()
	defer cancel()
	if err := a.restore(ctx); err != nil {
		return err
	}
	if !a.session.Can(permission.ViewTasks) {
		return errors.New("you may not view tasks")
	}
	a.tasks.SetFilters(f)
	a.tasks.Fetch(ctx)
	if msg := a.tasks.Err(); msg != "" {
		return errors.New(msg)
	}
	a.users.Fetch(ctx)
	return nil
}

func newShowCmd(a *app) *cobra.Command {
	var ff filterFlags
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Render the board",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(ff.filters()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderBoard(a.tasks.Board(), a.users.Name))
			return nil
		},
	}
	ff.bind(cmd)
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var ff filterFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks with filters and sorting",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(ff.filters()); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderList(a.tasks.Visible(), a.users.Name))
			return nil
		},
	}
	ff.bind(cmd)
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	var in client.TaskInput
	var assignee uint
	var deadline string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context()
			defer cancel()
			if err := a.restore(ctx); err != nil {
				return err
			}
			if !a.session.Can(permission.CreateTask) {
				return errors.New("you may not create tasks")
			}
			in.Title = strings.Join(args, " ")
			if assignee != 0 {
				if !a.session.Can(permission.AssignTask) {
					return errors.New("you may not assign tasks")
				}
				in.AssignedTo = &assignee
			}
			if deadline != "" {
				d, err := time.Parse("2006-01-02", deadline)
				if err != nil {
					return fmt.Errorf("deadline: %w", err)
				}
				in.Deadline = &d
			}
			task, err := a.tasks.Create(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created #%d in %s\n", task.ID, task.Status)
			return nil
		},
	}
	cmd.Flags().UintVar(&in.ProjectID, "project", 0, "project id")
	cmd.Flags().StringVarP(&in.Description, "description", "d", "", "description")
	cmd.Flags().StringVar(&in.Status, "status", models.TaskStatusTodo, "initial column")
	cmd.Flags().StringVar(&in.Priority, "priority", models.PriorityMedium, "low, medium or high")
	cmd.Flags().UintVar(&assignee, "assignee", 0, "assigned user id")
	cmd.Flags().StringVar(&deadline, "deadline", "", "due date, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newMoveCmd(a *app) *cobra.Command {
	var atomic bool
	cmd := &cobra.Command{
		Use:   "move <task-id> <status> [position]",
		Short: "Move a task to a column; position defaults to the end",
		Long: "Move a task to a column; position defaults to the end.\n\n" +
			"By default the board renumbers locally and saves every shifted task.\n" +
			"With --atomic the server renumbers both columns in one transaction.",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			position := int(^uint(0) >> 1)
			if len(args) == 3 {
				if position, err = strconv.Atoi(args[2]); err != nil {
					return fmt.Errorf("invalid position %q", args[2])
				}
			}
			if err := a.load(board.Filters{}); err != nil {
				return err
			}
			if !a.session.Can(permission.EditTask) {
				return errors.New("you may not edit tasks")
			}

			ctx, cancel := a.context()
			defer cancel()
			move := a.tasks.Move
			if atomic {
				move = a.tasks.MoveAtomic
			}
			if err := move(ctx, id, args[1], position); err != nil {
				return err
			}
			task, _ := a.tasks.Get(id)
			fmt.Fprintf(cmd.OutOrStdout(), "#%d is now %s #%d\n", id, task.Status, task.Position)
			return nil
		},
	}
	cmd.Flags().BoolVar(&atomic, "atomic", false, "let the server place the task in one transaction")
	return cmd
}

func newAssignCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <task-id> <user-id|none>",
		Short: "Assign or unassign a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			patch := client.TaskPatch{AssignedTo: models.Null[uint]()}
			if args[1] != "none" {
				userID, err := parseID(args[1])
				if err != nil {
					return err
				}
				patch.AssignedTo = models.Some(userID)
			}
			if err := a.load(board.Filters{}); err != nil {
				return err
			}
			if !a.session.Can(permission.AssignTask) {
				return errors.New("you may not assign tasks")
			}

			ctx, cancel := a.context()
			defer cancel()
			if _, err := a.tasks.Update(ctx, id, patch); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "#%d updated\n", id)
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task and its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := a.context()
			defer cancel()
			if err := a.restore(ctx); err != nil {
				return err
			}
			if !a.session.Can(permission.DeleteTask) {
				return errors.New("only administrators can delete tasks")
			}
			return a.tasks.Delete(ctx, id)
		},
	}
}

func newCommentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <task-id> [text]",
		Short: "Show the comments of a task, or add one",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := a.context()
			defer cancel()
			if err := a.restore(ctx); err != nil {
				return err
			}

			if len(args) > 1 {
				if !a.session.Can(permission.Comment) {
					return errors.New("you may not comment")
				}
				in := client.CommentInput{TaskID: taskID, Text: strings.Join(args[1:], " ")}
				if _, err := a.comments.Create(ctx, in); err != nil {
					return err
				}
			}

			a.comments.Fetch(ctx, taskID)
			if msg := a.comments.Err(); msg != "" {
				return errors.New(msg)
			}
			a.users.Fetch(ctx)
			fmt.Fprint(cmd.OutOrStdout(), renderComments(a.comments.Comments(taskID), a.users.Name))
			return nil
		},
	}
}

func newProjectsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context()
			defer cancel()
			if err := a.restore(ctx); err != nil {
				return err
			}
			a.projects.Fetch(ctx)
			if msg := a.projects.Err(); msg != "" {
				return errors.New(msg)
			}
			for _, p := range a.projects.Projects() {
				fmt.Fprintf(cmd.OutOrStdout(), "#%-4d %-30s %-10s %d members\n", p.ID, p.Name, p.Status, len(p.TeamMembers))
			}
			return nil
		},
	}
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(id), nil
}
