// ABOUTME: Template handlers of the fake backend
// ABOUTME: Templates are shared between users

package fakebackend

import (
	"net/http"
	"sort"

	"github.com/2389/docreview/internal/api"
)

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req api.TemplateCreate
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Structure == nil {
		req.Structure = map[string]any{}
	}
	if req.Fields == nil {
		req.Fields = map[string]any{}
	}

	s.store.mu.Lock()
	t := &storedTemplate{
		Template: api.Template{
			ID:           s.store.id("template"),
			Name:         req.Name,
			DocumentType: req.DocumentType,
			Structure:    req.Structure,
			Fields:       req.Fields,
			IsActive:     true,
			Version:      1,
			CreatedAt:    api.Now(),
		},
		contentTemplate: req.ContentTemplate,
	}
	s.store.templates[t.ID] = t
	s.store.mu.Unlock()

	s.audit(r, currentUser(r), "create", "template", &t.ID, map[string]any{"name": t.Name})
	writeJSON(w, http.StatusOK, t.Template)
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	docType := r.URL.Query().Get("document_type")

	s.store.mu.Lock()
	out := []api.Template{}
	for _, t := range s.store.templates {
		if !t.IsActive || (docType != "" && t.DocumentType != docType) {
			continue
		}
		out = append(out, t.Template)
	}
	s.store.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, paginate(out, queryInt(r, "skip", 0), queryInt(r, "limit", 50)))
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s.store.mu.Lock()
	t, ok := s.store.templates[id]
	s.store.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, "Template not found")
		return
	}
	writeJSON(w, http.StatusOK, t.Template)
}
