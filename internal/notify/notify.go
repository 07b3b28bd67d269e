// ABOUTME: User-visible notifications, the terminal stand-in for UI toasts
// ABOUTME: Console writes colored one-line messages; Recorder captures them for tests

// Package notify delivers fire-and-forget user notifications.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// Level is the severity of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notifier shows short messages to the user.
type Notifier interface {
	Notify(level Level, message string)
}

// Error is a shorthand for n.Notify(LevelError, msg).
func Error(n Notifier, msg string) { n.Notify(LevelError, msg) }

// Success is a shorthand for n.Notify(LevelSuccess, msg).
func Success(n Notifier, msg string) { n.Notify(LevelSuccess, msg) }

// Warning is a shorthand for n.Notify(LevelWarning, msg).
func Warning(n Notifier, msg string) { n.Notify(LevelWarning, msg) }

// Info is a shorthand for n.Notify(LevelInfo, msg).
func Info(n Notifier, msg string) { n.Notify(LevelInfo, msg) }

// Console prints notifications to a writer, usually stderr.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Notify(level Level, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var prefix string
	switch level {
	case LevelSuccess:
		prefix = color.GreenString("✓")
	case LevelWarning:
		prefix = color.YellowString("!")
	case LevelError:
		prefix = color.New(color.FgRed, color.Bold).Sprint("✗")
	default:
		prefix = color.CyanString("•")
	}
	fmt.Fprintf(c.w, "%s %s\n", prefix, message)
}

// Notification is a recorded message.
type Notification struct {
	Level   Level
	Message string
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Notify(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Notification{Level: level, Message: message})
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}

// Discard drops every notification.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(Level, string) {}
