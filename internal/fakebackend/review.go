// ABOUTME: Local rule engine used for reviews plus the simulated AI service health monitor
// ABOUTME: When the AI service is marked down, reviews fall back to rules and report it

package fakebackend

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/2389/docreview/internal/api"
)

type healthState struct {
	healthy              bool
	consecutiveFailures  int
	consecutiveSuccesses int
	lastCheck            time.Time
	lastFailure          time.Time
	totalChecks          int
	totalFailures        int
	fallbackEvents       int
	fallbackStarted      time.Time
	fallbackTotal        time.Duration
}

func newHealthState() healthState {
	return healthState{healthy: true}
}

// SetAIAvailable marks the simulated AI service up or down.
func (s *Server) SetAIAvailable(up bool) {
	s.healthMu.Lock()
	defer s.healthMu.Unlock()
	h := &s.health
	now := time.Now()
	if h.healthy && !up {
		h.fallbackEvents++
		h.fallbackStarted = now
	}
	if !h.healthy && up && !h.fallbackStarted.IsZero() {
		h.fallbackTotal += now.Sub(h.fallbackStarted)
		h.fallbackStarted = time.Time{}
	}
	h.healthy = up
}

// checkAI records one health probe and reports whether the AI service is usable.
func (s *Server) checkAI() bool {
	s.healthMu.Lock()
	defer s.healthMu.Unlock()
	h := &s.health
	now := time.Now()
	h.totalChecks++
	h.lastCheck = now
	if h.healthy {
		h.consecutiveSuccesses++
		h.consecutiveFailures = 0
		return true
	}
	h.totalFailures++
	h.consecutiveFailures++
	h.consecutiveSuccesses = 0
	h.lastFailure = now
	return false
}

func (s *Server) healthStatus() api.HealthStatus {
	s.healthMu.Lock()
	defer s.healthMu.Unlock()
	h := s.health
	st := api.HealthStatus{
		Mode:                 "normal",
		AIServiceHealthy:     h.healthy,
		ConsecutiveFailures:  h.consecutiveFailures,
		ConsecutiveSuccesses: h.consecutiveSuccesses,
		LastCheckTime:        api.Timestamp{Time: h.lastCheck},
		LastFailureTime:      api.Timestamp{Time: h.lastFailure},
	}
	if !h.healthy {
		st.Mode = "fallback"
		recovery := estimatedRecovery
		st.EstimatedRecovery = &recovery
	}
	return st
}

// estimatedRecovery is the advertised wait, in seconds, while in fallback.
const estimatedRecovery = 300

func (s *Server) fallbackStats() api.FallbackStats {
	s.healthMu.Lock()
	defer s.healthMu.Unlock()
	h := s.health
	st := api.FallbackStats{
		TotalChecks:           h.totalChecks,
		TotalFailures:         h.totalFailures,
		TotalFallbackEvents:   h.fallbackEvents,
		TotalFallbackDuration: h.fallbackTotal.Seconds(),
		UptimeRate:            1,
	}
	if h.totalChecks > 0 {
		st.FailureRate = float64(h.totalFailures) / float64(h.totalChecks)
		st.UptimeRate = 1 - st.FailureRate
	}
	if !h.healthy && !h.fallbackStarted.IsZero() {
		d := int(time.Since(h.fallbackStarted).Seconds())
		st.CurrentFallbackDuration = &d
	}
	return st
}

// runRules applies every enabled rule to text and records timings.
func (s *Server) runRules(text string) []api.ReviewIssue {
	s.store.mu.Lock()
	rules := make([]api.Rule, len(s.store.rules))
	copy(rules, s.store.rules)
	s.store.mu.Unlock()

	issues := []api.ReviewIssue{}
	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}
		start := time.Now()
		found := applyRule(rule, text)
		s.recordTiming(rule, time.Since(start))
		issues = append(issues, found...)
	}
	return issues
}

func (s *Server) recordTiming(rule api.Rule, d time.Duration) {
	secs := d.Seconds()
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	p, ok := s.store.perf[rule.ID]
	if !ok {
		p = &api.RulePerformance{RuleID: rule.ID, RuleName: rule.Name, MinTime: secs}
		s.store.perf[rule.ID] = p
	}
	p.ExecutionCount++
	p.TotalTime += secs
	p.AverageTime = p.TotalTime / float64(p.ExecutionCount)
	p.MaxTime = max(p.MaxTime, secs)
	p.MinTime = min(p.MinTime, secs)
}

func issueLevel(r api.Rule) string {
	if r.Critical {
		return "error"
	}
	return "warning"
}

func applyRule(rule api.Rule, text string) []api.ReviewIssue {
	issue := func(desc, suggestion string, pos map[string]any) api.ReviewIssue {
		return api.ReviewIssue{
			Type:        rule.Category,
			Level:       issueLevel(rule),
			Position:    pos,
			Description: desc,
			Suggestion:  suggestion,
			Reference:   rule.ID,
		}
	}

	switch rule.Kind() {
	case "structure":
		first, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
		if strings.TrimSpace(first) == "" {
			return []api.ReviewIssue{issue("Document has no title", "Add a title on the first line", map[string]any{"line": 1})}
		}
	case "length":
		n := utf8.RuneCountInString(strings.TrimSpace(text))
		if rule.MinLength != nil && n < *rule.MinLength {
			return []api.ReviewIssue{issue(fmt.Sprintf("Document is too short (%d characters, minimum %d)", n, *rule.MinLength), "Expand the content", nil)}
		}
		if rule.MaxLength != nil && n > *rule.MaxLength {
			return []api.ReviewIssue{issue(fmt.Sprintf("Document is too long (%d characters, maximum %d)", n, *rule.MaxLength), "Split or shorten the content", nil)}
		}
	case "keyword":
		var out []api.ReviewIssue
		lower := strings.ToLower(text)
		for _, kw := range rule.Keywords {
			if i := strings.Index(lower, strings.ToLower(kw)); i >= 0 {
				out = append(out, issue(fmt.Sprintf("Sensitive word %q found", kw), "Remove or rephrase it", map[string]any{"offset": i}))
			}
		}
		return out
	case "pattern":
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil
		}
		var out []api.ReviewIssue
		for _, loc := range re.FindAllStringIndex(text, 5) {
			out = append(out, issue(rule.Description, "", map[string]any{"offset": loc[0], "text": text[loc[0]:loc[1]]}))
		}
		return out
	}
	return nil
}
