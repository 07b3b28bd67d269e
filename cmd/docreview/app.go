// ABOUTME: Client bootstrap shared by every command
// ABOUTME: Loads config, opens token storage and wires session, router, notifier and HTTP clients

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/docreview/internal/api"
	"github.com/2389/docreview/internal/config"
	"github.com/2389/docreview/internal/httpclient"
	"github.com/2389/docreview/internal/logging"
	"github.com/2389/docreview/internal/notify"
	"github.com/2389/docreview/internal/router"
	"github.com/2389/docreview/internal/session"
	"github.com/2389/docreview/internal/storage"
)

type rootFlags struct {
	configPath string
	baseURL    string
	logLevel   string
	noColor    bool
}

// app holds everything a command needs once bootstrap has run.
type app struct {
	flags rootFlags

	cfg      *config.Config
	logger   *slog.Logger
	closers  []io.Closer
	session  *session.Session
	service  *session.Service
	router   *router.Router
	notifier notify.Notifier
	standard *httpclient.Client
	long     *httpclient.Client
	api      *api.Client
}

var errNotLoggedIn = errors.New("not logged in (run: docreview login <username>)")

func (a *app) setup(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load(config.ResolvePath(a.flags.configPath))
	if err != nil {
		return err
	}
	if a.flags.baseURL != "" {
		cfg.Server.BaseURL = a.flags.baseURL
	}
	if a.flags.logLevel != "" {
		cfg.Logging.Level = a.flags.logLevel
	}
	if a.flags.noColor {
		cfg.Output.Color = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	if !cfg.Output.Color {
		color.NoColor = true
	}

	logger, logCloser := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	a.closers = append(a.closers, logCloser)
	a.logger = logger
	slog.SetDefault(logger)

	store, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("opening token storage: %w", err)
	}
	a.closers = append(a.closers, store)

	a.session = session.New(store, logger)
	if err := a.session.Init(ctx); err != nil {
		return err
	}
	a.router = router.New(a.session, logger)
	a.notifier = notify.NewConsole(cmd.ErrOrStderr())

	presenter := &httpclient.Presenter{
		Session:   a.session,
		Navigator: a.router,
		Notifier:  a.notifier,
		Logger:    logger,
	}
	a.standard, err = httpclient.New(httpclient.Options{
		BaseURL:  cfg.Server.BaseURL,
		Timeout:  cfg.Timeouts.Standard,
		Tokens:   a.session,
		Failures: presenter,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	a.long, err = httpclient.New(httpclient.Options{
		BaseURL:  cfg.Server.BaseURL,
		Timeout:  cfg.Timeouts.LongRunning,
		Tokens:   a.session,
		Failures: presenter,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	a.api = api.New(a.standard, a.long)
	a.service = session.NewService(a.session, a.api.Auth, logger)

	logger.Debug("client ready",
		"config", cfg.Path,
		"base_url", cfg.Server.BaseURL,
		"storage", cfg.Storage.Driver,
		"authenticated", a.session.IsAuthenticated(),
	)
	return nil
}

// requireLogin stops commands that cannot succeed without a token.
func (a *app) requireLogin() error {
	if !a.session.IsAuthenticated() {
		return errNotLoggedIn
	}
	return nil
}

func (a *app) close() {
	if a.standard != nil {
		a.standard.CloseIdleConnections()
	}
	if a.long != nil {
		a.long.CloseIdleConnections()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && a.logger != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseVersion(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid version number %q", s)
	}
	return n, nil
}

// openOutput returns path for writing, or stdout when path is "" or "-".
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return f, f.Close, nil
}

func readContentFile(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}
