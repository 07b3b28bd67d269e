// ABOUTME: Tests for console and recording notifiers
// ABOUTME: Checks message formatting and capture order

package notify

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestConsole_WritesOneLinePerNotification(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	var buf bytes.Buffer
	c := NewConsole(&buf)

	Error(c, "Request failed")
	Success(c, "Uploaded")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, "✗ Request failed", lines[0])
	assert.Equal(t, "✓ Uploaded", lines[1])
}

func TestRecorder_KeepsOrder(t *testing.T) {
	var r Recorder
	Info(&r, "one")
	Warning(&r, "two")

	got := r.All()
	assert.Equal(t, []Notification{
		{Level: LevelInfo, Message: "one"},
		{Level: LevelWarning, Message: "two"},
	}, got)

	r.Reset()
	assert.Empty(t, r.All())
}
