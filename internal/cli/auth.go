package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"tasktracker/internal/client"
)

func newRegisterCmd(st *state) *cobra.Command {
	var username, email string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := promptPassword(cmd, "Password: ")
			if err != nil {
				return err
			}
			result, err := st.api.Register(cmd.Context(), client.RegisterRequest{
				Username: username,
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}
			if err := st.remember(result); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s.\n", result.User.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "username (3-30 letters, digits or underscores)")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLoginCmd(st *state) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := promptPassword(cmd, "Password: ")
			if err != nil {
				return err
			}
			result, err := st.api.Login(cmd.Context(), client.LoginRequest{Email: email, Password: password})
			if err != nil {
				return err
			}
			if err := st.remember(result); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s.\n", result.User.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session token and forget it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if st.session.Token == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
				return nil
			}
			err := st.api.Logout(cmd.Context())
			st.session.Clear()
			if saveErr := st.session.Save(st.sessionPath); saveErr != nil {
				return saveErr
			}
			if err != nil && !client.IsUnauthorized(err) {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := st.requireLogin(); err != nil {
				return err
			}
			me, err := st.api.Me(cmd.Context())
			if err != nil {
				return err
			}
			return renderUser(cmd.OutOrStdout(), me)
		},
	}
}

func newProfileCmd(st *state) *cobra.Command {
	var username, email string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Change username or email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := st.requireLogin(); err != nil {
				return err
			}
			var update client.ProfileUpdate
			if cmd.Flags().Changed("username") {
				update.Username = &username
			}
			if cmd.Flags().Changed("email") {
				update.Email = &email
			}
			if update.Username == nil && update.Email == nil {
				return fmt.Errorf("nothing to change, pass --username or --email")
			}

			user, err := st.api.UpdateProfile(cmd.Context(), update)
			if err != nil {
				return err
			}
			st.session.Username = user.Username
			if err := st.session.Save(st.sessionPath); err != nil {
				return err
			}
			return renderUser(cmd.OutOrStdout(), user)
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "new username")
	cmd.Flags().StringVar(&email, "email", "", "new email address")
	return cmd
}
