// Package cli implements taskctl, the terminal client for the task tracker.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tasktracker/internal/client"
)

const defaultServer = "http://localhost:8080"

type state struct {
	server      string
	sessionPath string

	session *Session
	api     *client.Client
}

func NewRootCommand() *cobra.Command {
	st := &state{}

	rootCmd := &cobra.Command{
		Use:           "taskctl",
		Short:         "taskctl - terminal client for the task tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.load()
		},
	}

	rootCmd.PersistentFlags().StringVar(&st.server, "server", os.Getenv("TASKCTL_SERVER"), "API base URL (default "+defaultServer+")")
	rootCmd.PersistentFlags().StringVar(&st.sessionPath, "session", DefaultSessionPath(), "session file")

	rootCmd.AddCommand(
		newRegisterCmd(st),
		newLoginCmd(st),
		newLogoutCmd(st),
		newWhoamiCmd(st),
		newProfileCmd(st),
		newTasksCmd(st),
		newActivityCmd(st),
	)
	return rootCmd
}

// Execute runs taskctl and returns the process exit code.
func Execute(ctx context.Context) int {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", describe(err))
		return 1
	}
	return 0
}

func (st *state) load() error {
	session, err := LoadSession(st.sessionPath)
	if err != nil {
		return err
	}
	if st.server != "" {
		session.Server = st.server
	}
	if session.Server == "" {
		session.Server = defaultServer
	}
	st.session = session
	st.api = client.New(session.Server, client.WithToken(session.Token))
	return nil
}

func (st *state) requireLogin() error {
	if st.session.Token == "" {
		return errors.New("not logged in, run `taskctl login` first")
	}
	return nil
}

func (st *state) remember(result *client.AuthResult) error {
	st.session.Token = result.Token
	st.session.UserID = result.User.ID
	st.session.Username = result.User.Username
	return st.session.Save(st.sessionPath)
}

func describe(err error) string {
	if client.IsUnauthorized(err) {
		return err.Error() + "; log in again with `taskctl login`"
	}
	return err.Error()
}
