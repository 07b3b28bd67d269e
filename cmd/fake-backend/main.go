// ABOUTME: Local stand-in for the document review backend, for manual and end-to-end testing
// ABOUTME: Usage: fake-backend [-addr :8000] [-user demo -password demo123] [-ai-down] [-ai-delay 2s]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/2389/docreview/internal/fakebackend"
	"github.com/2389/docreview/internal/logging"
)

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	secret := flag.String("secret", "", "JWT signing secret (built-in development secret when empty)")
	user := flag.String("user", "demo", "seed user name (empty to skip)")
	password := flag.String("password", "demo123", "seed user password")
	aiDown := flag.Bool("ai-down", false, "start with the AI service unavailable (fallback mode)")
	aiDelay := flag.Duration("ai-delay", 0, "simulated latency for review and generate")
	rateLimit := flag.Int("rate-limit", 0, "review/generate requests per IP per minute (0 = unlimited)")
	publicURL := flag.String("public-url", "", "base URL used in preview and download links")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	if err := run(*addr, *secret, *user, *password, *aiDown, *aiDelay, *rateLimit, *publicURL, *logLevel); err != nil {
		log.Fatal(err)
	}
}

func run(addr, secret, user, password string, aiDown bool, aiDelay time.Duration, rateLimit int, publicURL, logLevel string) error {
	logger, closer := logging.New(logging.Options{Level: logLevel})
	defer closer.Close()

	backend := fakebackend.New(fakebackend.Options{
		Secret:      []byte(secret),
		Logger:      logger,
		AIRateLimit: rateLimit,
		AIDelay:     aiDelay,
		PublicURL:   publicURL,
	})
	if user != "" {
		if _, err := backend.AddUser(user, password); err != nil {
			return fmt.Errorf("seeding user: %w", err)
		}
		logger.Info("seeded user", "username", user)
	}
	if aiDown {
		backend.SetAIAvailable(false)
		logger.Warn("AI service marked unavailable, reviews use local rules")
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           backend.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("fake backend listening", "addr", addr, "api", fakebackend.APIPrefix)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	return srv.Shutdown(shutdownCtx)
}
