// ABOUTME: Administration commands: audit logs, review rules, AI health and the online editor
// ABOUTME: Exports stream CSV from the backend; export-url prints the authenticated download link

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/2389/docreview/internal/api"
	"github.com/2389/docreview/internal/notify"
	"github.com/2389/docreview/internal/views"
)

func newAuditCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Query, summarize and export audit logs",
	}

	var q api.AuditLogQuery
	list := &cobra.Command{
		Use:   "list",
		Short: "List audit log entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			page, err := a.api.AuditLogs.List(cmd.Context(), q)
			if err != nil {
				return err
			}
			views.RenderAuditPage(cmd.OutOrStdout(), page)
			return nil
		},
	}
	lf := list.Flags()
	lf.IntVar(&q.Page, "page", 1, "page number")
	lf.IntVar(&q.PageSize, "page-size", 20, "entries per page")
	lf.StringVar(&q.Action, "action", "", "filter by action")
	lf.StringVar(&q.ResourceType, "resource", "", "filter by resource type")
	lf.Int64Var(&q.UserID, "user", 0, "filter by user id")
	lf.StringVar(&q.StartDate, "from", "", "start date (YYYY-MM-DD)")
	lf.StringVar(&q.EndDate, "to", "", "end date (YYYY-MM-DD)")
	lf.StringVar(&q.Keyword, "keyword", "", "search keyword")

	var days int
	stats := &cobra.Command{
		Use:   "stats",
		Short: "Summarize recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			s, err := a.api.AuditLogs.Stats(cmd.Context(), days)
			if err != nil {
				return err
			}
			views.RenderAuditStats(cmd.OutOrStdout(), s)
			return nil
		},
	}
	stats.Flags().IntVar(&days, "days", 7, "number of days to include")

	get := &cobra.Command{
		Use:   "get <log-id>",
		Short: "Show one audit log entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.requireLogin(); err != nil {
				return err
			}
			e, err := a.api.AuditLogs.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			views.RenderAuditEntry(cmd.OutOrStdout(), e)
			return nil
		},
	}

	var (
		eq     api.ExportQuery
		output string
	)
	exportFlags := func(c *cobra.Command) {
		c.Flags().StringVar(&eq.Action, "action", "", "filter by action")
		c.Flags().StringVar(&eq.ResourceType, "resource", "", "filter by resource type")
		c.Flags().StringVar(&eq.StartDate, "from", "", "start date (YYYY-MM-DD)")
		c.Flags().StringVar(&eq.EndDate, "to", "", "end date (YYYY-MM-DD)")
	}
	exportURL := &cobra.Command{
		Use:   "export-url",
		Short: "Print the CSV export link for the given filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), a.api.AuditLogs.ExportURL(eq))
			return nil
		},
	}
	exportFlags(exportURL)

	export := &cobra.Command{
		Use:   "export",
		Short: "Download audit logs as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			w, done, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			n, err := a.api.AuditLogs.Export(cmd.Context(), eq, w)
			if cerr := done(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			if output != "" && output != "-" {
				notify.Success(a.notifier, fmt.Sprintf("Saved %s to %s", views.HumanSize(n), output))
			}
			return nil
		},
	}
	exportFlags(export)
	export.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")

	cmd.AddCommand(list, stats, get, exportURL, export)
	return cmd
}

func newRulesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and toggle the local review rules",
	}

	simple := func(use, short string, run func(cmd *cobra.Command) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.requireLogin(); err != nil {
					return err
				}
				return run(cmd)
			},
		}
	}
	toggle := func(use string, enabled bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <rule-id>",
			Short: "Mark a rule " + use + "d",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.requireLogin(); err != nil {
					return err
				}
				msg, err := a.api.Rules.Toggle(cmd.Context(), args[0], enabled)
				if err != nil {
					return err
				}
				notify.Success(a.notifier, msg.Message)
				return nil
			},
		}
	}

	cmd.AddCommand(
		simple("list", "List rules and whether they are enabled", func(cmd *cobra.Command) error {
			l, err := a.api.Rules.List(cmd.Context())
			if err != nil {
				return err
			}
			views.RenderRules(cmd.OutOrStdout(), l)
			return nil
		}),
		simple("performance", "Show rule execution timings", func(cmd *cobra.Command) error {
			p, err := a.api.Rules.Performance(cmd.Context())
			if err != nil {
				return err
			}
			views.RenderRulePerformance(cmd.OutOrStdout(), p)
			return nil
		}),
		simple("statistics", "Show rule counts by category", func(cmd *cobra.Command) error {
			s, err := a.api.Rules.Statistics(cmd.Context())
			if err != nil {
				return err
			}
			views.RenderRuleStatistics(cmd.OutOrStdout(), s)
			return nil
		}),
		simple("reload", "Reload the rule configuration on the server", func(cmd *cobra.Command) error {
			msg, err := a.api.Rules.Reload(cmd.Context())
			if err != nil {
				return err
			}
			notify.Success(a.notifier, msg.Message)
			return nil
		}),
		toggle("enable", true),
		toggle("disable", false),
	)
	return cmd
}

func newHealthCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show AI service health and fallback statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			var (
				st    *api.HealthStatus
				stats *api.FallbackStats
			)
			ctx := notify.WithDedupe(cmd.Context(), notify.NewDedupe(time.Minute, 0))
			var g errgroup.Group
			g.Go(func() (err error) {
				st, err = a.api.Health.Status(ctx)
				return err
			})
			g.Go(func() (err error) {
				stats, err = a.api.Health.FallbackStats(ctx)
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}
			views.RenderHealth(cmd.OutOrStdout(), st, stats)
			return nil
		},
	}

	check := &cobra.Command{
		Use:   "check",
		Short: "Ask the backend for a liveness check",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			live, err := a.api.Health.Check(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Status:     %s\n", live.Status)
			if live.Mode != "" {
				fmt.Fprintf(out, "Mode:       %s\n", live.Mode)
			}
			if live.AIService != "" {
				fmt.Fprintf(out, "AI service: %s\n", live.AIService)
			}
			if live.Message != "" {
				fmt.Fprintf(out, "Message:    %s\n", live.Message)
			}
			return nil
		},
	}
	cmd.AddCommand(check)
	return cmd
}

func newEditorCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "editor",
		Short: "Online editor configuration",
	}

	var (
		fileID, documentID int64
		mode               string
	)
	config := &cobra.Command{
		Use:   "config",
		Short: "Fetch the editor configuration for a file or document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.EditorConfigRequest{Mode: mode}
			switch {
			case fileID > 0:
				req.FileID = &fileID
			case documentID > 0:
				req.DocumentID = &documentID
			default:
				return fmt.Errorf("one of --file or --document is required")
			}
			if err := a.requireLogin(); err != nil {
				return err
			}
			m, err := a.api.Editor.Config(cmd.Context(), req)
			if err != nil {
				return err
			}
			views.RenderMap(cmd.OutOrStdout(), "Editor configuration", m)
			return nil
		},
	}
	config.Flags().Int64Var(&fileID, "file", 0, "file id")
	config.Flags().Int64Var(&documentID, "document", 0, "document id")
	config.Flags().StringVar(&mode, "mode", api.EditorView, "view or edit")
	config.MarkFlagsMutuallyExclusive("file", "document")

	health := &cobra.Command{
		Use:   "health",
		Short: "Check the editor service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.api.Editor.Health(cmd.Context())
			if err != nil {
				return err
			}
			views.RenderMap(cmd.OutOrStdout(), "Editor service", m)
			return nil
		},
	}

	cmd.AddCommand(config, health)
	return cmd
}
