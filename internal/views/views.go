// ABOUTME: Route-driven view loader: fetches what a route's view needs and renders it
// ABOUTME: The dashboard loads its panels concurrently and renders whatever arrived

package views

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/2389/docreview/internal/api"
	"github.com/2389/docreview/internal/notify"
	"github.com/2389/docreview/internal/router"
	"github.com/2389/docreview/internal/session"
)

// fanOutWindow bounds how long a concurrent load suppresses a repeated notification.
const fanOutWindow = time.Minute

// Views renders routes to a writer.
type Views struct {
	api     *api.Client
	session *session.Session
	out     io.Writer
}

func New(client *api.Client, s *session.Session, out io.Writer) *Views {
	return &Views{api: client, session: s, out: out}
}

// Show loads and renders the view for loc.
func (v *Views) Show(ctx context.Context, loc router.Location) error {
	switch loc.Route.View {
	case router.ViewLogin:
		heading(v.out, "Log in")
		fmt.Fprintln(v.out, "  Use: login <username>")
		fmt.Fprintln(v.out)
		return nil
	case router.ViewRegister:
		heading(v.out, "Register")
		fmt.Fprintln(v.out, "  Use: register <username> <email>")
		fmt.Fprintln(v.out)
		return nil
	case router.ViewDashboard:
		return v.Dashboard(ctx)
	case router.ViewFiles:
		files, err := v.api.Files.List(ctx, 0, 20)
		if err != nil {
			return err
		}
		RenderFiles(v.out, files)
		return nil
	case router.ViewReview:
		id, err := paramID(loc, "fileId")
		if err != nil {
			return err
		}
		preview, err := v.api.Files.Preview(ctx, id)
		if err != nil {
			return err
		}
		RenderFilePreview(v.out, preview)
		fmt.Fprintf(v.out, "  Use: review %d\n\n", id)
		return nil
	case router.ViewGenerate:
		ts, err := v.api.Templates.List(ctx, "", 0, 50)
		if err != nil {
			return err
		}
		RenderTemplates(v.out, ts)
		fmt.Fprintln(v.out, "  Use: generate <template-id> <prompt>")
		fmt.Fprintln(v.out)
		return nil
	case router.ViewDocuments:
		docs, err := v.api.Documents.List(ctx, 0, 20)
		if err != nil {
			return err
		}
		RenderDocuments(v.out, docs)
		return nil
	case router.ViewDocumentEdit:
		id, err := paramID(loc, "id")
		if err != nil {
			return err
		}
		d, err := v.api.Documents.Get(ctx, id)
		if err != nil {
			return err
		}
		RenderDocument(v.out, d)
		vs, err := v.api.Versions.List(ctx, id)
		if err != nil {
			return err
		}
		RenderVersions(v.out, vs)
		return nil
	case router.ViewTemplates:
		ts, err := v.api.Templates.List(ctx, "", 0, 50)
		if err != nil {
			return err
		}
		RenderTemplates(v.out, ts)
		return nil
	case router.ViewAuditLogs:
		page, err := v.api.AuditLogs.List(ctx, api.AuditLogQuery{Page: 1, PageSize: 20})
		if err != nil {
			return err
		}
		RenderAuditPage(v.out, page)
		return nil
	case router.ViewSystemHealth:
		return v.Health(ctx)
	case router.ViewRulesManagement:
		rules, err := v.api.Rules.List(ctx)
		if err != nil {
			return err
		}
		RenderRules(v.out, rules)
		return nil
	default:
		return fmt.Errorf("no view for %q", loc.Route.View)
	}
}

func paramID(loc router.Location, name string) (int64, error) {
	id, err := strconv.ParseInt(loc.Params[name], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, loc.Params[name])
	}
	return id, nil
}

// Dashboard shows the user, recent files and documents, AI health and weekly activity.
// Panels load concurrently; a failed panel is skipped and the first error is returned.
// Panels failing the same way show one notification.
func (v *Views) Dashboard(ctx context.Context) error {
	ctx = notify.WithDedupe(ctx, notify.NewDedupe(fanOutWindow, 0))
	var (
		files  []api.File
		docs   []api.Document
		health *api.HealthStatus
		stats  *api.AuditStats
	)

	var g errgroup.Group
	g.Go(func() (err error) {
		files, err = v.api.Files.List(ctx, 0, 5)
		return err
	})
	g.Go(func() (err error) {
		docs, err = v.api.Documents.List(ctx, 0, 5)
		return err
	})
	g.Go(func() (err error) {
		health, err = v.api.Health.Status(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats, err = v.api.AuditLogs.Stats(ctx, 7)
		return err
	})
	err := g.Wait()

	if u := v.session.User(); u != nil {
		heading(v.out, "Welcome, "+u.Username)
	}
	if health != nil {
		RenderHealth(v.out, health, nil)
	}
	if files != nil {
		RenderFiles(v.out, files)
	}
	if docs != nil {
		RenderDocuments(v.out, docs)
	}
	if stats != nil {
		RenderAuditStats(v.out, stats)
	}
	return err
}

// Health shows AI service status and fallback statistics, fetched concurrently.
func (v *Views) Health(ctx context.Context) error {
	var (
		st    *api.HealthStatus
		stats *api.FallbackStats
	)
	var g errgroup.Group
	g.Go(func() (err error) {
		st, err = v.api.Health.Status(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats, err = v.api.Health.FallbackStats(ctx)
		return err
	})
	if err := g.Wait(); err != nil && st == nil {
		return err
	}
	RenderHealth(v.out, st, stats)
	return nil
}
