// Command board is a terminal client for the tracker API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/konstanta-tech/tracker/internal/board"
	"github.com/konstanta-tech/tracker/internal/client"
	"github.com/konstanta-tech/tracker/pkg/logger"
)

type app struct {
	serverURL string
	tokenFile string
	timeout   time.Duration

	api      *client.Client
	session  *board.Session
	tasks    *board.TaskStore
	projects *board.ProjectStore
	users    *board.UserStore
	comments *board.CommentStore
}

func main() {
	_ = godotenv.Load()

	// Store errors are already returned to the user; logs are opt-in and go to stderr.
	lvl, err := zerolog.ParseLevel(os.Getenv("BOARD_LOG_LEVEL"))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.Disabled
	}
	logger.SetOutput(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}, lvl)

	if err := newRootCmd(&app{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "board",
		Short:         "Terminal client for the task tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.init()
		},
	}

	home, _ := os.UserHomeDir()
	root.PersistentFlags().StringVar(&a.serverURL, "server", envOr("TRACKER_URL", "http://localhost:3000"), "tracker API base URL")
	root.PersistentFlags().StringVar(&a.tokenFile, "token-file", envOr("TRACKER_TOKEN_FILE", filepath.Join(home, ".tracker_token")), "where the access token is kept")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 15*time.Second, "timeout for each command")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newShowCmd(a),
		newListCmd(a),
		newAddCmd(a),
		newMoveCmd(a),
		newAssignCmd(a),
		newDeleteCmd(a),
		newCommentCmd(a),
		newProjectsCmd(a),
	)
	return root
}

func (a *app) init() {
	a.api = client.New(a.serverURL)
	log := logger.Component("board")
	a.session = board.NewSession(a.api)
	a.tasks = board.NewTaskStore(a.api, log)
	a.projects = board.NewProjectStore(a.api, log)
	a.users = board.NewUserStore(a.api, log)
	a.comments = board.NewCommentStore(a.api, log)
}

func (a *app) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), a.timeout)
}

// restore signs in with the saved token.
func (a *app) restore(ctx context.Context) error {
	data, err := os.ReadFile(a.tokenFile)
	if errors.Is(err, os.ErrNotExist) {
		return errors.New("not logged in, run `board login` first")
	}
	if err != nil {
		return err
	}
	if _, err := a.session.Restore(ctx, strings.TrimSpace(string(data))); err != nil {
		return fmt.Errorf("session expired, log in again: %w", err)
	}
	return nil
}

func (a *app) saveToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(a.tokenFile), 0700); err != nil {
		return err
	}
	return os.WriteFile(a.tokenFile, []byte(token+"\n"), 0600)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
