// ABOUTME: Audit log handlers of the fake backend: filtered paging, stats, export and lookup
// ABOUTME: Export writes CSV with the same filters as the list minus paging

package fakebackend

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/2389/docreview/internal/api"
)

const dateLayout = "2006-01-02"

type auditFilter struct {
	action       string
	resourceType string
	userID       int64
	start, end   time.Time
	keyword      string
}

func parseAuditFilter(r *http.Request) auditFilter {
	q := r.URL.Query()
	f := auditFilter{
		action:       q.Get("action"),
		resourceType: q.Get("resource_type"),
		keyword:      strings.ToLower(q.Get("keyword")),
	}
	if id, err := strconv.ParseInt(q.Get("user_id"), 10, 64); err == nil {
		f.userID = id
	}
	if t, err := time.Parse(dateLayout, q.Get("start_date")); err == nil {
		f.start = t
	}
	if t, err := time.Parse(dateLayout, q.Get("end_date")); err == nil {
		f.end = t.Add(24 * time.Hour)
	}
	return f
}

func (f auditFilter) match(e api.AuditLogEntry) bool {
	if f.action != "" && e.Action != f.action {
		return false
	}
	if f.resourceType != "" && e.ResourceType != f.resourceType {
		return false
	}
	if f.userID != 0 && e.UserID != f.userID {
		return false
	}
	if !f.start.IsZero() && e.CreatedAt.Before(f.start) {
		return false
	}
	if !f.end.IsZero() && !e.CreatedAt.Before(f.end) {
		return false
	}
	if f.keyword != "" {
		details, _ := json.Marshal(e.Details)
		hay := strings.ToLower(e.Username + " " + e.Action + " " + e.ResourceType + " " + string(details))
		if !strings.Contains(hay, f.keyword) {
			return false
		}
	}
	return true
}

// auditEntries returns matching entries, newest first.
func (s *Server) auditEntries(f auditFilter) []api.AuditLogEntry {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	out := []api.AuditLogEntry{}
	for i := len(s.store.audit) - 1; i >= 0; i-- {
		if e := s.store.audit[i]; f.match(e) {
			out = append(out, e)
		}
	}
	return out
}

func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	page := max(queryInt(r, "page", 1), 1)
	size := queryInt(r, "page_size", 20)
	if size < 1 || size > 100 {
		size = 20
	}
	entries := s.auditEntries(parseAuditFilter(r))
	writeJSON(w, http.StatusOK, api.AuditLogPage{
		Total:    len(entries),
		Items:    paginate(entries, (page-1)*size, size),
		Page:     page,
		PageSize: size,
	})
}

func (s *Server) handleAuditStats(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 7)
	if days < 1 {
		days = 7
	}
	since := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
	entries := s.auditEntries(auditFilter{start: since})

	stats := api.AuditStats{
		TotalCount:     len(entries),
		ActionStats:    map[string]int{},
		ResourceStats:  map[string]int{},
		RecentActivity: []map[string]any{},
	}
	perDay := map[string]int{}
	for _, e := range entries {
		stats.ActionStats[e.Action]++
		if e.ResourceType != "" {
			stats.ResourceStats[e.ResourceType]++
		}
		perDay[e.CreatedAt.UTC().Format(dateLayout)]++
	}
	daysSeen := make([]string, 0, len(perDay))
	for d := range perDay {
		daysSeen = append(daysSeen, d)
	}
	sort.Strings(daysSeen)
	for _, d := range daysSeen {
		stats.RecentActivity = append(stats.RecentActivity, map[string]any{"date": d, "count": perDay[d]})
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAuditExport(w http.ResponseWriter, r *http.Request) {
	entries := s.auditEntries(parseAuditFilter(r))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="audit_logs.csv"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "username", "action", "resource_type", "resource_id", "ip_address", "created_at"})
	for _, e := range entries {
		rid := ""
		if e.ResourceID != nil {
			rid = strconv.FormatInt(*e.ResourceID, 10)
		}
		_ = cw.Write([]string{
			strconv.FormatInt(e.ID, 10),
			e.Username,
			e.Action,
			e.ResourceType,
			rid,
			e.IPAddress,
			e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	cw.Flush()
}

func (s *Server) handleGetAudit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	for _, e := range s.store.audit {
		if e.ID == id {
			writeJSON(w, http.StatusOK, e)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Audit log not found")
}
