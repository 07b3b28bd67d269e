// ABOUTME: Rule administration, health and editor integration handlers of the fake backend
// ABOUTME: Rule changes live in memory until reload restores the defaults

package fakebackend

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/2389/docreview/internal/api"
)

// slowRuleSeconds marks rules slower than this on average.
const slowRuleSeconds = 0.1

func (s *Server) handleListRules(w http.ResponseWriter, _ *http.Request) {
	s.store.mu.Lock()
	rules := append([]api.Rule{}, s.store.rules...)
	s.store.mu.Unlock()

	out := api.RuleList{TotalRules: len(rules), Rules: rules}
	for _, r := range rules {
		if r.Enabled {
			out.EnabledRules++
		} else {
			out.DisabledRules++
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRulePerformance(w http.ResponseWriter, _ *http.Request) {
	s.store.mu.Lock()
	report := api.PerformanceReport{RuleMetrics: []api.RulePerformance{}, SlowRules: []map[string]any{}}
	for _, p := range s.store.perf {
		m := *p
		m.IsSlow = m.AverageTime > slowRuleSeconds
		report.RuleMetrics = append(report.RuleMetrics, m)
		report.TotalValidations += m.ExecutionCount
		report.TotalExecutionTime += m.TotalTime
		if m.IsSlow {
			report.SlowRules = append(report.SlowRules, map[string]any{"rule_id": m.RuleID, "average_time": m.AverageTime})
		}
	}
	s.store.mu.Unlock()

	sort.Slice(report.RuleMetrics, func(i, j int) bool { return report.RuleMetrics[i].RuleID < report.RuleMetrics[j].RuleID })
	if report.TotalValidations > 0 {
		report.AverageExecutionTime = report.TotalExecutionTime / float64(report.TotalValidations)
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleRuleStatistics(w http.ResponseWriter, _ *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	st := api.RuleStatistics{
		TotalRules:      len(s.store.rules),
		RulesByCategory: map[string]map[string]int{},
		ConfigInfo:      map[string]any{"source": "built-in"},
	}
	for _, r := range s.store.rules {
		cat, ok := st.RulesByCategory[r.Category]
		if !ok {
			cat = map[string]int{"total": 0, "enabled": 0}
			st.RulesByCategory[r.Category] = cat
		}
		cat["total"]++
		if r.Enabled {
			cat["enabled"]++
			st.EnabledRules++
		} else {
			st.DisabledRules++
		}
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleToggleRule(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "id")
	var req struct {
		Enabled *bool `json:"enabled" validate:"required"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	s.store.mu.Lock()
	found := false
	for i := range s.store.rules {
		if s.store.rules[i].ID == ruleID {
			s.store.rules[i].Enabled = *req.Enabled
			found = true
		}
	}
	s.store.mu.Unlock()
	if !found {
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("Rule %s not found", ruleID))
		return
	}

	state := "disabled"
	if *req.Enabled {
		state = "enabled"
	}
	s.audit(r, currentUser(r), "toggle", "rule", nil, map[string]any{"rule_id": ruleID, "enabled": *req.Enabled})
	ok := true
	writeJSON(w, http.StatusOK, api.Message{Message: fmt.Sprintf("Rule %s %s", ruleID, state), Success: &ok})
}

func (s *Server) handleReloadRules(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	s.store.rules = defaultRules()
	s.store.mu.Unlock()

	s.audit(r, currentUser(r), "reload", "rule", nil, nil)
	ok := true
	writeJSON(w, http.StatusOK, api.Message{Message: "Rules reloaded", Success: &ok})
}

func (s *Server) handleHealthStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.healthStatus())
}

func (s *Server) handleFallbackStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.fallbackStats())
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	st := s.healthStatus()
	live := api.Liveness{Status: "healthy", Mode: st.Mode, AIService: "available"}
	if !st.AIServiceHealthy {
		live.Status = "degraded"
		live.AIService = "unavailable"
		live.Message = "Running in fallback mode"
	}
	writeJSON(w, http.StatusOK, live)
}

func (s *Server) handleEditorConfig(w http.ResponseWriter, r *http.Request) {
	var req api.EditorConfigRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Mode == "" {
		req.Mode = api.EditorView
	}
	u := currentUser(r)

	var title, url, fileType, key string
	switch {
	case req.FileID != nil:
		f, ok := s.store.file(u.ID, *req.FileID)
		if !ok {
			writeDetail(w, http.StatusNotFound, "File not found")
			return
		}
		title, fileType = f.FileName, f.FileType
		url = s.publicURL(r, fmt.Sprintf("/files/%d/download", f.ID))
		key = f.storedName
	case req.DocumentID != nil:
		d, ok := s.store.document(u.ID, *req.DocumentID)
		if !ok {
			writeDetail(w, http.StatusNotFound, "Document not found")
			return
		}
		title, fileType = d.Title, "docx"
		url = s.publicURL(r, fmt.Sprintf("/documents/%d/download", d.ID))
		key = fmt.Sprintf("document-%d", d.ID)
	default:
		writeDetail(w, http.StatusBadRequest, "file_id or document_id is required")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"document": map[string]any{
			"fileType": fileType,
			"key":      key,
			"title":    title,
			"url":      url,
		},
		"documentType": "word",
		"editorConfig": map[string]any{
			"mode": req.Mode,
			"user": map[string]any{"id": fmt.Sprint(u.ID), "name": u.Username},
		},
	})
}

func (s *Server) handleEditorHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "service": "onlyoffice", "available": false})
}
