// ABOUTME: Interactive shell that navigates client routes and runs document actions
// ABOUTME: Reads one command per line; API failures are already notified and are not repeated

package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/2389/docreview/internal/api"
	"github.com/2389/docreview/internal/httpclient"
	"github.com/2389/docreview/internal/notify"
	"github.com/2389/docreview/internal/router"
	"github.com/2389/docreview/internal/session"
	"github.com/2389/docreview/internal/views"
)

// Shell is the interactive loop.
type Shell struct {
	api      *api.Client
	service  *session.Service
	router   *router.Router
	views    *views.Views
	notifier notify.Notifier
	in       io.Reader
	out      io.Writer

	lines <-chan string
	errs  <-chan error
}

// Options wires a Shell.
type Options struct {
	API      *api.Client
	Service  *session.Service
	Router   *router.Router
	Notifier notify.Notifier
	In       io.Reader
	Out      io.Writer
}

func New(opts Options) *Shell {
	n := opts.Notifier
	if n == nil {
		n = notify.Discard
	}
	return &Shell{
		api:      opts.API,
		service:  opts.Service,
		router:   opts.Router,
		views:    views.New(opts.API, opts.Service.Session(), opts.Out),
		notifier: n,
		in:       opts.In,
		out:      opts.Out,
	}
}

// scan feeds input lines to lines until the input ends or ctx is done.
func scan(ctx context.Context, in io.Reader, lines chan<- string, errs chan<- error) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
	if err := scanner.Err(); err != nil {
		errs <- err
	} else {
		errs <- io.EOF
	}
}

// errQuit ends the loop.
var errQuit = errors.New("quit")

// Run reads commands until EOF, quit, or ctx is done.
// Run must not be called concurrently.
func (s *Shell) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines := make(chan string)
	errs := make(chan error, 1)
	s.lines, s.errs = lines, errs
	go scan(ctx, s.in, lines, errs)

	fmt.Fprintln(s.out, "Type help for commands. quit or Ctrl+D to leave.")
	s.navigate(ctx, router.PathRoot)

	for {
		fmt.Fprintf(s.out, "%s> ", color.CyanString(s.router.Current().Path))

		var input string
		select {
		case <-ctx.Done():
			return nil
		case err := <-s.errs:
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out)
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		case input = <-s.lines:
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if err := s.Exec(ctx, input); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			s.report(err)
		}
	}
}

// report shows errors the HTTP client has not already surfaced.
func (s *Shell) report(err error) {
	var herr *httpclient.Error
	if errors.As(err, &herr) {
		return
	}
	notify.Error(s.notifier, err.Error())
}

// readLine takes the next input line, used for follow-up prompts.
func (s *Shell) readLine(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-s.errs:
		return "", err
	case line := <-s.lines:
		return strings.TrimSpace(line), nil
	}
}

func (s *Shell) navigate(ctx context.Context, path string) {
	loc, err := s.router.Navigate(path)
	if err != nil {
		s.report(err)
		return
	}
	if err := s.views.Show(ctx, loc); err != nil {
		s.report(err)
	}
}

// Exec runs a single command line.
func (s *Shell) Exec(ctx context.Context, input string) error {
	fields := strings.Fields(input)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "quit", "exit", "q":
		return errQuit
	case "help", "?":
		s.printHelp()
	case "go", "cd", "open":
		if len(args) != 1 {
			return errors.New("usage: go <path>")
		}
		s.navigate(ctx, args[0])
	case "refresh", "r":
		s.navigate(ctx, s.router.Current().Path)
	case "back":
		loc, ok, err := s.router.Back()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(s.out, "No history.")
			return nil
		}
		return s.views.Show(ctx, loc)
	case "routes":
		s.printRoutes()
	case "login":
		return s.login(ctx, args)
	case "logout":
		if err := s.service.Logout(ctx); err != nil {
			return err
		}
		notify.Success(s.notifier, "Logged out")
		s.navigate(ctx, router.PathLogin)
	case "register":
		return s.register(ctx, args)
	case "whoami":
		u := s.service.Session().User()
		if u == nil {
			fmt.Fprintln(s.out, "Not logged in.")
			return nil
		}
		views.RenderUser(s.out, u)
	case "upload":
		return s.upload(ctx, args)
	case "review":
		id, err := intArg(args, "review <file-id>")
		if err != nil {
			return err
		}
		res, err := s.api.Documents.Review(ctx, id)
		if err != nil {
			return err
		}
		views.RenderReview(s.out, res)
	case "generate":
		if len(args) < 2 {
			return errors.New("usage: generate <template-id> <prompt>")
		}
		tid, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid template id %q", args[0])
		}
		doc, err := s.api.Documents.Generate(ctx, api.GenerateRequest{TemplateID: tid, Prompt: strings.Join(args[1:], " ")})
		if err != nil {
			return err
		}
		notify.Success(s.notifier, fmt.Sprintf("Generated document %d", doc.ID))
		views.RenderDocument(s.out, doc)
	case "delete":
		id, err := intArg(args, "delete <file-id>")
		if err != nil {
			return err
		}
		msg, err := s.api.Files.Delete(ctx, id)
		if err != nil {
			return err
		}
		notify.Success(s.notifier, msg.Message)
	case "toggle":
		if len(args) != 2 || (args[1] != "on" && args[1] != "off") {
			return errors.New("usage: toggle <rule-id> on|off")
		}
		msg, err := s.api.Rules.Toggle(ctx, args[0], args[1] == "on")
		if err != nil {
			return err
		}
		notify.Success(s.notifier, msg.Message)
	default:
		if strings.HasPrefix(cmd, "/") {
			s.navigate(ctx, cmd)
			return nil
		}
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return nil
}

func intArg(args []string, usage string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New("usage: " + usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

func (s *Shell) login(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("usage: login <username> [password]")
	}
	creds := session.Credentials{Username: args[0]}
	if len(args) == 2 {
		creds.Password = args[1]
	} else {
		pw, err := s.readLine(ctx, "Password: ")
		if err != nil {
			return err
		}
		creds.Password = pw
	}
	if err := s.service.Login(ctx, creds); err != nil {
		return err
	}
	if !s.service.Session().IsAuthenticated() {
		return errors.New("login succeeded but the profile could not be loaded")
	}
	notify.Success(s.notifier, "Welcome, "+creds.Username)
	s.navigate(ctx, router.PathRoot)
	return nil
}

func (s *Shell) register(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return errors.New("usage: register <username> <email> [password]")
	}
	req := api.RegisterRequest{Username: args[0], Email: args[1]}
	if len(args) == 3 {
		req.Password = args[2]
	} else {
		pw, err := s.readLine(ctx, "Password: ")
		if err != nil {
			return err
		}
		req.Password = pw
	}
	if _, err := s.service.Register(ctx, req); err != nil {
		return err
	}
	notify.Success(s.notifier, "Registered, you can log in now")
	s.navigate(ctx, router.PathLogin)
	return nil
}

func (s *Shell) upload(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: upload <path>")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	file, err := s.api.Files.Upload(ctx, filepath.Base(args[0]), f)
	if err != nil {
		return err
	}
	notify.Success(s.notifier, fmt.Sprintf("Uploaded %s as file %d", file.FileName, file.ID))
	return nil
}

func (s *Shell) printRoutes() {
	for _, r := range router.Table {
		lock := " "
		if r.RequiresAuth {
			lock = "*"
		}
		fmt.Fprintf(s.out, "  %s %-22s %s\n", lock, r.Path, r.Title)
	}
	fmt.Fprintln(s.out, "  (* requires login)")
}

func (s *Shell) printHelp() {
	yellow := color.New(color.FgYellow)
	yellow.Fprintln(s.out, "Navigation:")
	fmt.Fprintln(s.out, "  go <path>                 Open a route (or type the path directly)")
	fmt.Fprintln(s.out, "  back                      Return to the previous route")
	fmt.Fprintln(s.out, "  refresh                   Reload the current route")
	fmt.Fprintln(s.out, "  routes                    List routes")
	yellow.Fprintln(s.out, "Account:")
	fmt.Fprintln(s.out, "  login <user> [password]   Log in")
	fmt.Fprintln(s.out, "  register <user> <email>   Create an account")
	fmt.Fprintln(s.out, "  logout                    Log out")
	fmt.Fprintln(s.out, "  whoami                    Show the current user")
	yellow.Fprintln(s.out, "Documents:")
	fmt.Fprintln(s.out, "  upload <path>             Upload a file")
	fmt.Fprintln(s.out, "  delete <file-id>          Delete a file")
	fmt.Fprintln(s.out, "  review <file-id>          Review a file")
	fmt.Fprintln(s.out, "  generate <tpl-id> <text>  Generate a document from a template")
	fmt.Fprintln(s.out, "  toggle <rule-id> on|off   Enable or disable a review rule")
	fmt.Fprintln(s.out, "  quit                      Leave the shell")
}
