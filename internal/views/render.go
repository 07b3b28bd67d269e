// ABOUTME: Renderers turning API results into terminal text
// ABOUTME: Used by one-shot CLI commands and by the interactive shell

package views

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/2389/docreview/internal/api"
)

func RenderUser(w io.Writer, u *api.User) {
	heading(w, "Current user")
	fmt.Fprintf(w, "  Username:  %s\n", u.Username)
	fmt.Fprintf(w, "  Email:     %s\n", u.Email)
	if u.FullName != "" {
		fmt.Fprintf(w, "  Name:      %s\n", u.FullName)
	}
	fmt.Fprintf(w, "  ID:        %d\n", u.ID)
	fmt.Fprintf(w, "  Active:    %s\n\n", yesNo(u.IsActive))
}

func RenderFiles(w io.Writer, files []api.File) {
	heading(w, "Files")
	if len(files) == 0 {
		empty(w, "files")
		return
	}
	tw := newTable(w, "ID", "NAME", "TYPE", "SIZE", "STATUS", "UPLOADED")
	for _, f := range files {
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%s\t%s\n", f.ID, Truncate(f.FileName, 36), f.FileType, HumanSize(f.FileSize), f.Status, when(f.CreatedAt))
	}
	tw.Flush()
	fmt.Fprintln(w)
}

func RenderFilePreview(w io.Writer, p *api.FilePreview) {
	heading(w, "Preview: "+p.FileName)
	fmt.Fprintf(w, "  Type:     %s (%s)\n", p.FileType, p.PreviewType)
	fmt.Fprintf(w, "  File:     %s\n", p.FileURL)
	if p.PreviewURL != "" {
		fmt.Fprintf(w, "  Preview:  %s\n", p.PreviewURL)
	} else {
		dim.Fprintln(w, "  Online preview is not available for this file type")
	}
	fmt.Fprintln(w)
}

// RenderReview prints review findings grouped by level, errors first.
func RenderReview(w io.Writer, r *api.ReviewResult) {
	heading(w, fmt.Sprintf("Review of document %d", r.DocumentID))
	if r.FallbackMode {
		yellow.Fprintf(w, "  ! %s\n", r.FallbackNotice)
		if r.EstimatedRecovery != nil {
			yellow.Fprintf(w, "    Estimated recovery in %d seconds\n", *r.EstimatedRecovery)
		}
		fmt.Fprintln(w)
	}
	if r.Summary != "" {
		fmt.Fprintf(w, "  %s\n\n", r.Summary)
	}
	if len(r.Errors) == 0 {
		green.Fprintln(w, "  ✓ No issues found")
		fmt.Fprintln(w)
		return
	}

	issues := append([]api.ReviewIssue(nil), r.Errors...)
	rank := map[string]int{"error": 0, "critical": 0, "warning": 1}
	sort.SliceStable(issues, func(i, j int) bool {
		ri, ok := rank[issues[i].Level]
		if !ok {
			ri = 2
		}
		rj, ok := rank[issues[j].Level]
		if !ok {
			rj = 2
		}
		return ri < rj
	})
	for i, is := range issues {
		levelColor(is.Level).Fprintf(w, "  %d. [%s] ", i+1, is.Level)
		fmt.Fprintf(w, "%s\n", is.Description)
		if is.Type != "" {
			dim.Fprintf(w, "     type: %s", is.Type)
			if is.Reference != "" {
				dim.Fprintf(w, "  rule: %s", is.Reference)
			}
			fmt.Fprintln(w)
		}
		if is.Suggestion != "" {
			fmt.Fprintf(w, "     → %s\n", is.Suggestion)
		}
	}
	fmt.Fprintln(w)
}

func RenderDocuments(w io.Writer, docs []api.Document) {
	heading(w, "Documents")
	if len(docs) == 0 {
		empty(w, "documents")
		return
	}
	tw := newTable(w, "ID", "TITLE", "TYPE", "STATUS", "CLASSIFICATION", "CREATED")
	for _, d := range docs {
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%s\t%s\n", d.ID, Truncate(d.Title, 40), d.DocumentType, d.Status, d.Classification, when(d.CreatedAt))
	}
	tw.Flush()
	fmt.Fprintln(w)
}

func RenderDocument(w io.Writer, d *api.Document) {
	heading(w, d.Title)
	fmt.Fprintf(w, "  ID: %d   Type: %s   Status: %s   Classification: %s\n\n", d.ID, d.DocumentType, d.Status, d.Classification)
	for _, line := range strings.Split(d.Content, "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}
	fmt.Fprintln(w)
}

func RenderClassifications(w io.Writer, cs []api.Classification) {
	heading(w, "Classifications")
	tw := newTable(w, "VALUE", "LABEL")
	for _, c := range cs {
		fmt.Fprintf(tw, "  %s\t%s\n", c.Value, c.Label)
	}
	tw.Flush()
	fmt.Fprintln(w)
}

func RenderTemplates(w io.Writer, ts []api.Template) {
	heading(w, "Templates")
	if len(ts) == 0 {
		empty(w, "templates")
		return
	}
	tw := newTable(w, "ID", "NAME", "TYPE", "VERSION", "ACTIVE", "CREATED")
	for _, t := range ts {
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%d\t%s\t%s\n", t.ID, Truncate(t.Name, 32), t.DocumentType, t.Version, yesNo(t.IsActive), when(t.CreatedAt))
	}
	tw.Flush()
	fmt.Fprintln(w)
}

func RenderVersions(w io.Writer, vs []api.Version) {
	heading(w, "Versions")
	if len(vs) == 0 {
		empty(w, "versions")
		return
	}
	tw := newTable(w, "VERSION", "ID", "DESCRIPTION", "ROLLBACK", "CREATED")
	for _, v := range vs {
		rb := "-"
		if v.RollbackFromVersion != nil {
			rb = fmt.Sprintf("from v%d", *v.RollbackFromVersion)
		}
		fmt.Fprintf(tw, "  v%d\t%d\t%s\t%s\t%s\n", v.VersionNumber, v.ID, Truncate(v.ChangeDescription, 40), rb, when(v.CreatedAt))
	}
	tw.Flush()
	fmt.Fprintln(w)
}

func RenderCompare(w io.Writer, c *api.CompareResult) {
	heading(w, "Comparison ("+c.CompareType+")")
	fmt.Fprintf(w, "  %s\n\n", c.Summary)
	for _, h := range c.Highlights {
		switch h["type"] {
		case "added":
			green.Fprintf(w, "  + %s\n", h["text"])
		case "removed":
			red.Fprintf(w, "  - %s\n", h["text"])
		default:
			fmt.Fprintf(w, "    %s\n", h["text"])
		}
	}
	fmt.Fprintln(w)
}

func RenderAuditPage(w io.Writer, p *api.AuditLogPage) {
	heading(w, fmt.Sprintf("Audit logs (page %d, %d total)", p.Page, p.Total))
	if len(p.Items) == 0 {
		empty(w, "entries")
		return
	}
	tw := newTable(w, "ID", "TIME", "USER", "ACTION", "RESOURCE", "IP")
	for _, e := range p.Items {
		res := e.ResourceType
		if e.ResourceID != nil {
			res = fmt.Sprintf("%s #%d", res, *e.ResourceID)
		}
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%s\t%s\n", e.ID, when(e.CreatedAt), e.Username, e.Action, res, e.IPAddress)
	}
	tw.Flush()
	fmt.Fprintln(w)
}

func RenderAuditEntry(w io.Writer, e *api.AuditLogEntry) {
	heading(w, fmt.Sprintf("Audit entry %d", e.ID))
	fmt.Fprintf(w, "  Time:      %s\n", when(e.CreatedAt))
	fmt.Fprintf(w, "  User:      %s (%d)\n", e.Username, e.UserID)
	fmt.Fprintf(w, "  Action:    %s\n", e.Action)
	fmt.Fprintf(w, "  Resource:  %s\n", e.ResourceType)
	fmt.Fprintf(w, "  IP:        %s\n", e.IPAddress)
	fmt.Fprintf(w, "  Agent:     %s\n", e.UserAgent)
	for _, k := range sortedKeys(e.Details) {
		fmt.Fprintf(w, "  %s: %v\n", k, e.Details[k])
	}
	fmt.Fprintln(w)
}

func RenderAuditStats(w io.Writer, s *api.AuditStats) {
	heading(w, fmt.Sprintf("Activity (%d events)", s.TotalCount))
	renderCounts(w, "By action", s.ActionStats)
	renderCounts(w, "By resource", s.ResourceStats)
}

func renderCounts(w io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	yellow.Fprintf(w, "  %s\n", title)
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		fmt.Fprintf(w, "    %-16s %d\n", k, counts[k])
	}
	fmt.Fprintln(w)
}

func RenderRules(w io.Writer, l *api.RuleList) {
	heading(w, fmt.Sprintf("Rules (%d enabled, %d disabled)", l.EnabledRules, l.DisabledRules))
	if len(l.Rules) == 0 {
		empty(w, "rules")
		return
	}
	tw := newTable(w, "ID", "NAME", "TYPE", "CATEGORY", "PRIORITY", "ENABLED")
	for _, r := range l.Rules {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%d\t%s\n", r.ID, Truncate(r.Name, 30), r.Kind(), r.Category, r.Priority, yesNo(r.Enabled))
	}
	tw.Flush()
	fmt.Fprintln(w)
}

func RenderRulePerformance(w io.Writer, p *api.PerformanceReport) {
	heading(w, fmt.Sprintf("Rule performance (%d validations)", p.TotalValidations))
	if len(p.RuleMetrics) == 0 {
		empty(w, "measurements")
		return
	}
	tw := newTable(w, "RULE", "RUNS", "AVG", "MAX", "SLOW")
	for _, m := range p.RuleMetrics {
		fmt.Fprintf(tw, "  %s\t%d\t%s\t%s\t%s\n", m.RuleID, m.ExecutionCount, seconds(m.AverageTime), seconds(m.MaxTime), yesNo(m.IsSlow))
	}
	tw.Flush()
	fmt.Fprintln(w)
}

func RenderRuleStatistics(w io.Writer, s *api.RuleStatistics) {
	heading(w, fmt.Sprintf("Rule statistics (%d total)", s.TotalRules))
	fmt.Fprintf(w, "  Enabled: %d   Disabled: %d\n\n", s.EnabledRules, s.DisabledRules)
	cats := make([]string, 0, len(s.RulesByCategory))
	for c := range s.RulesByCategory {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	tw := newTable(w, "CATEGORY", "TOTAL", "ENABLED")
	for _, c := range cats {
		fmt.Fprintf(tw, "  %s\t%d\t%d\n", c, s.RulesByCategory[c]["total"], s.RulesByCategory[c]["enabled"])
	}
	tw.Flush()
	fmt.Fprintln(w)
}

// RenderHealth prints the AI service state. stats may be nil.
func RenderHealth(w io.Writer, st *api.HealthStatus, stats *api.FallbackStats) {
	heading(w, "System health")
	if st.AIServiceHealthy {
		green.Fprintf(w, "  ● AI service healthy (mode: %s)\n", st.Mode)
	} else {
		red.Fprintf(w, "  ● AI service unavailable (mode: %s)\n", st.Mode)
		if st.EstimatedRecovery != nil {
			fmt.Fprintf(w, "    Estimated recovery in %d seconds\n", *st.EstimatedRecovery)
		}
	}
	fmt.Fprintf(w, "  Consecutive failures: %d   successes: %d\n", st.ConsecutiveFailures, st.ConsecutiveSuccesses)
	fmt.Fprintf(w, "  Last check: %s   Last failure: %s\n", when(st.LastCheckTime), when(st.LastFailureTime))
	if stats != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  Checks: %d   Failures: %d   Fallback events: %d\n", stats.TotalChecks, stats.TotalFailures, stats.TotalFallbackEvents)
		fmt.Fprintf(w, "  Uptime: %.1f%%   Failure rate: %.1f%%\n", stats.UptimeRate*100, stats.FailureRate*100)
	}
	fmt.Fprintln(w)
}

// RenderMap prints an opaque JSON object as sorted key/value lines.
func RenderMap(w io.Writer, title string, m map[string]any) {
	heading(w, title)
	renderMap(w, m, "  ")
	fmt.Fprintln(w)
}

func renderMap(w io.Writer, m map[string]any, indent string) {
	for _, k := range sortedKeys(m) {
		if sub, ok := m[k].(map[string]any); ok {
			fmt.Fprintf(w, "%s%s:\n", indent, k)
			renderMap(w, sub, indent+"  ")
			continue
		}
		fmt.Fprintf(w, "%s%s: %v\n", indent, k, m[k])
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RenderConversation prints the generation dialogue, one message per entry.
func RenderConversation(w io.Writer, h *api.ConversationHistory) {
	heading(w, "Conversation")
	if len(h.Messages) == 0 {
		empty(w, "messages")
		return
	}
	for _, m := range h.Messages {
		role, _ := m["role"].(string)
		content, _ := m["content"].(string)
		switch role {
		case "user":
			yellow.Fprintf(w, "  you: ")
		case "assistant":
			green.Fprintf(w, "  ai:  ")
		default:
			fmt.Fprintf(w, "  %s: ", role)
		}
		fmt.Fprintln(w, content)
	}
	fmt.Fprintln(w)
}
