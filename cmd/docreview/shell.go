// ABOUTME: shell and routes commands
// ABOUTME: shell runs the interactive route-driven session until EOF or interrupt

package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/2389/docreview/internal/router"
	"github.com/2389/docreview/internal/shell"
)

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Restore the profile for a token stored by an earlier run.
			a.service.FetchCurrentUser(ctx)

			sh := shell.New(shell.Options{
				API:      a.api,
				Service:  a.service,
				Router:   a.router,
				Notifier: a.notifier,
				In:       cmd.InOrStdin(),
				Out:      cmd.OutOrStdout(),
			})
			return sh.Run(ctx)
		},
	}
}

func newRoutesCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "routes",
		Short:       "List the navigable routes",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"bootstrap": "none"},
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := newTabWriter(cmd.OutOrStdout())
			fmt.Fprintln(tw, "PATH\tNAME\tLOGIN\tTITLE")
			for _, r := range router.Table {
				login := "no"
				if r.RequiresAuth {
					login = "yes"
				}
				title := r.Title
				if r.Redirect != "" {
					title = "-> " + r.Redirect
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Path, r.Name, login, title)
			}
			return tw.Flush()
		},
	}
}
