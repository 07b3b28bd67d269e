// ABOUTME: Account commands: login, logout, register, whoami and status
// ABOUTME: Passwords are read from a flag or prompted for on stdin

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/docreview/internal/api"
	"github.com/2389/docreview/internal/notify"
	"github.com/2389/docreview/internal/session"
	"github.com/2389/docreview/internal/views"
)

func promptPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	pw := strings.TrimRight(line, "\r\n")
	if pw == "" {
		return "", errors.New("password is required")
	}
	return pw, nil
}

func newLoginCmd(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and store the access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				pw, err := promptPassword(cmd)
				if err != nil {
					return err
				}
				password = pw
			}
			creds := session.Credentials{Username: args[0], Password: password}
			if err := a.service.Login(cmd.Context(), creds); err != nil {
				return err
			}
			u := a.session.User()
			if u == nil {
				return errors.New("logged in but the profile could not be loaded")
			}
			notify.Success(a.notifier, "Logged in as "+u.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.service.Logout(cmd.Context()); err != nil {
				return err
			}
			notify.Success(a.notifier, "Logged out")
			return nil
		},
	}
}

func newRegisterCmd(a *app) *cobra.Command {
	var req api.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Username = args[0]
			if req.Password == "" {
				pw, err := promptPassword(cmd)
				if err != nil {
					return err
				}
				req.Password = pw
			}
			u, err := a.service.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			notify.Success(a.notifier, fmt.Sprintf("Registered %s, you can log in now", u.Username))
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "email address (required)")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&req.FullName, "full-name", "", "display name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			a.service.FetchCurrentUser(cmd.Context())
			u := a.session.User()
			if u == nil {
				return errNotLoggedIn
			}
			views.RenderUser(cmd.OutOrStdout(), u)
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration, login state and backend reachability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			green := color.New(color.FgGreen)
			red := color.New(color.FgRed)

			cfgPath := a.cfg.Path
			if cfgPath == "" {
				cfgPath = "(defaults)"
			}
			fmt.Fprintf(out, "Config:    %s\n", cfgPath)
			fmt.Fprintf(out, "Backend:   %s\n", a.cfg.Server.BaseURL)
			fmt.Fprintf(out, "Storage:   %s %s\n", a.cfg.Storage.Driver, a.cfg.Storage.Path)
			fmt.Fprintf(out, "Timeouts:  %s standard, %s long-running\n", a.cfg.Timeouts.Standard, a.cfg.Timeouts.LongRunning)

			if !a.session.IsAuthenticated() {
				fmt.Fprint(out, "Session:   ")
				red.Fprintln(out, "not logged in")
			} else {
				a.service.FetchCurrentUser(cmd.Context())
				fmt.Fprint(out, "Session:   ")
				if u := a.session.User(); u != nil {
					green.Fprintf(out, "logged in as %s", u.Username)
				} else {
					red.Fprint(out, "token rejected")
				}
				if claims, err := a.session.Claims(); err == nil && !claims.ExpiresAt.IsZero() {
					fmt.Fprintf(out, " (expires %s)", claims.ExpiresAt.Local().Format(time.RFC3339))
				}
				fmt.Fprintln(out)
			}

			live, err := a.api.Health.Check(cmd.Context())
			fmt.Fprint(out, "Health:    ")
			if err != nil {
				red.Fprintln(out, "unreachable")
				return nil
			}
			green.Fprintf(out, "%s", live.Status)
			fmt.Fprintf(out, " (mode %s)\n", live.Mode)
			return nil
		},
	}
}
