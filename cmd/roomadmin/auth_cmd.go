package main

import (
	"errors"
	"fmt"

	"roomadmin/internal/auth"

	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login --access-token <token>",
		Short: "Store an access token for later commands",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if token == "" {
				return errors.New("--access-token is required")
			}
			cred, err := a.session.Login(cmd.Context(), token)
			if err != nil {
				return err
			}
			if a.cfg.Auth.Store == "memory" {
				fmt.Fprintln(cmd.ErrOrStderr(), "Credential store is memory: the token lasts only for this process. Set AUTH_STORE=redis to keep it.")
			}
			if cred.ExpiresAt.IsZero() {
				fmt.Fprintln(cmd.OutOrStdout(), "Logged in.")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in until %s.\n", cred.ExpiresAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "access-token", "", "bearer token issued by the backend")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the stored access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.session.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a usable access token is stored",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cred, err := a.session.Credential(cmd.Context())
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), auth.Message(err))
				return nil
			}
			if cred.ExpiresAt.IsZero() {
				fmt.Fprintln(cmd.OutOrStdout(), "Logged in (no expiry).")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in until %s.\n", cred.ExpiresAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}
