package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"carol/internal/ipc"
)

func newRegisterCommand(ctx *commandContext) *cobra.Command {
	var email string
	var password string
	var displayName string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a local account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(email) == "" || password == "" {
				return errors.New("--email and --password are required")
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Register(ipc.RegisterRequest{
					Email:       email,
					Password:    password,
					DisplayName: displayName,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Registered and signed in as %s\n", resp.Email)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	cmd.Flags().StringVarP(&displayName, "name", "n", "", "Display name shown on greetings")
	return cmd
}

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(email) == "" || password == "" {
				return errors.New("--email and --password are required")
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Login(ipc.LoginRequest{Email: email, Password: password})
				if err != nil {
					return err
				}
				name := resp.DisplayName
				if name == "" {
					name = resp.Email
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", name)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	return cmd
}

func newLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out of the active session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.Logout(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
				return nil
			})
		},
	}
}

func newWhoamiCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the active session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Whoami()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !resp.SignedIn {
					fmt.Fprintln(out, "Not signed in")
					return nil
				}
				if resp.DisplayName != "" {
					fmt.Fprintf(out, "%s <%s>\n", resp.DisplayName, resp.Email)
				} else {
					fmt.Fprintln(out, resp.Email)
				}
				return nil
			})
		},
	}
}
