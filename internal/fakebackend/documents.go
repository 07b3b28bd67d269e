// ABOUTME: Document handlers of the fake backend: review, generate, edit, classify, export
// ABOUTME: Also keeps the per-session generation conversation

package fakebackend

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/2389/docreview/internal/api"
)

var classifications = []api.Classification{
	{Value: "public", Label: "Public", Color: "green"},
	{Value: "internal", Label: "Internal", Color: "blue"},
	{Value: "confidential", Label: "Confidential", Color: "orange"},
	{Value: "secret", Label: "Secret", Color: "red"},
}

func validClassification(v string) bool {
	for _, c := range classifications {
		if c.Value == v {
			return true
		}
	}
	return false
}

// simulateAI waits AIDelay unless the request is cancelled first.
func (s *Server) simulateAI(r *http.Request) bool {
	if s.opts.AIDelay <= 0 {
		return true
	}
	t := time.NewTimer(s.opts.AIDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-r.Context().Done():
		return false
	}
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FileID int64 `json:"file_id" validate:"required"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}
	u := currentUser(r)
	f, ok := s.store.file(u.ID, req.FileID)
	if !ok {
		writeDetail(w, http.StatusNotFound, "File not found")
		return
	}
	if !s.simulateAI(r) {
		return
	}

	aiUp := s.checkAI()
	text := string(f.content)
	issues := s.runRules(text)

	s.store.mu.Lock()
	doc := &storedDocument{
		Document: api.Document{
			ID:             s.store.id("document"),
			Title:          f.FileName,
			Content:        text,
			DocumentType:   "review",
			Status:         "reviewed",
			Classification: "internal",
			AIAnnotations:  map[string]any{"issue_count": len(issues)},
			CreatedAt:      api.Now(),
		},
		ownerID: u.ID,
		fileID:  f.ID,
	}
	s.store.documents[doc.ID] = doc
	s.store.addVersion(doc.ID, text, "Initial review", nil)
	f.Status = "reviewed"
	s.store.mu.Unlock()

	result := api.ReviewResult{
		DocumentID: doc.ID,
		Errors:     issues,
		Summary:    fmt.Sprintf("Review completed: %d issues found", len(issues)),
	}
	if !aiUp {
		recovery := estimatedRecovery
		result.FallbackMode = true
		result.FallbackNotice = "AI service unavailable, the document was checked with local rules only"
		result.EstimatedRecovery = &recovery
	}
	s.audit(r, u, "review", "document", &doc.ID, map[string]any{"file_id": f.ID, "issues": len(issues), "fallback": !aiUp})
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req api.GenerateRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	u := currentUser(r)

	s.store.mu.Lock()
	tmpl, ok := s.store.templates[req.TemplateID]
	s.store.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, "Template not found")
		return
	}
	if !s.simulateAI(r) {
		return
	}
	if !s.checkAI() {
		writeDetail(w, http.StatusServiceUnavailable, "AI service is unavailable, document generation is temporarily disabled")
		return
	}

	var refs []string
	for _, id := range req.FileReferences {
		if f, ok := s.store.file(u.ID, id); ok {
			refs = append(refs, f.FileName)
		}
	}

	title := tmpl.Name + ": " + truncate(req.Prompt, 40)
	var body strings.Builder
	fmt.Fprintf(&body, "# %s\n\n", title)
	body.WriteString(strings.ReplaceAll(tmpl.contentTemplate, "{{prompt}}", req.Prompt))
	if len(refs) > 0 {
		fmt.Fprintf(&body, "\n\nReferences: %s\n", strings.Join(refs, ", "))
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	s.store.mu.Lock()
	doc := &storedDocument{
		Document: api.Document{
			ID:             s.store.id("document"),
			Title:          title,
			Content:        body.String(),
			DocumentType:   tmpl.DocumentType,
			Status:         "draft",
			Classification: "internal",
			AIAnnotations:  map[string]any{"template_id": tmpl.ID, "session_id": sessionID},
			CreatedAt:      api.Now(),
		},
		ownerID: u.ID,
	}
	s.store.documents[doc.ID] = doc
	s.store.addVersion(doc.ID, doc.Content, "Generated", nil)
	conv, ok := s.store.conversations[sessionID]
	if !ok {
		conv = &conversation{createdAt: time.Now()}
		s.store.conversations[sessionID] = conv
	}
	now := api.Now()
	conv.messages = append(conv.messages,
		map[string]any{"role": "user", "content": req.Prompt, "timestamp": now},
		map[string]any{"role": "assistant", "content": fmt.Sprintf("Generated document %d", doc.ID), "timestamp": now},
	)
	s.store.mu.Unlock()

	s.audit(r, u, "generate", "document", &doc.ID, map[string]any{"template_id": tmpl.ID})
	writeJSON(w, http.StatusOK, doc.Document)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs := s.store.userDocuments(currentUser(r).ID)
	writeJSON(w, http.StatusOK, paginate(docs, queryInt(r, "skip", 0), queryInt(r, "limit", 20)))
}

func (s *Server) lookupDocument(w http.ResponseWriter, r *http.Request) (*storedDocument, bool) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return nil, false
	}
	d, ok := s.store.document(currentUser(r).ID, id)
	if !ok {
		writeDetail(w, http.StatusNotFound, "Document not found")
		return nil, false
	}
	return d, true
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookupDocument(w, r)
	if !ok {
		return
	}
	s.store.mu.Lock()
	out := d.Document
	s.store.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookupDocument(w, r)
	if !ok {
		return
	}
	var upd api.DocumentUpdate
	if !s.decodeBody(w, r, &upd) {
		return
	}
	if upd.Classification != nil && !validClassification(*upd.Classification) {
		writeDetail(w, http.StatusBadRequest, "Invalid classification")
		return
	}

	s.store.mu.Lock()
	if upd.Title != nil {
		d.Title = *upd.Title
	}
	if upd.Status != nil {
		d.Status = *upd.Status
	}
	if upd.Classification != nil {
		d.Classification = *upd.Classification
	}
	if upd.Content != nil && *upd.Content != d.Content {
		d.Content = *upd.Content
		desc := upd.ChangeDescription
		if desc == "" {
			desc = "Edited"
		}
		s.store.addVersion(d.ID, d.Content, desc, nil)
	}
	out := d.Document
	s.store.mu.Unlock()

	s.audit(r, currentUser(r), "update", "document", &out.ID, nil)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateClassification(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookupDocument(w, r)
	if !ok {
		return
	}
	var req struct {
		Classification string `json:"classification" validate:"required"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}
	if !validClassification(req.Classification) {
		writeDetail(w, http.StatusBadRequest, "Invalid classification")
		return
	}
	s.store.mu.Lock()
	d.Classification = req.Classification
	id := d.ID
	s.store.mu.Unlock()

	s.audit(r, currentUser(r), "classify", "document", &id, map[string]any{"classification": req.Classification})
	writeJSON(w, http.StatusOK, api.ClassificationResult{
		Success:        true,
		Message:        "Classification updated",
		Classification: req.Classification,
	})
}

func (s *Server) handleClassifications(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"classifications": classifications})
}

func (s *Server) handleDocumentPreview(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookupDocument(w, r)
	if !ok {
		return
	}
	fileURL := s.publicURL(r, fmt.Sprintf("/documents/%d/download", d.ID))
	writeJSON(w, http.StatusOK, api.DocumentPreview{
		PreviewURL:  fileURL + "?format=pdf",
		FileURL:     fileURL,
		ServiceType: "direct",
		DocumentID:  d.ID,
	})
}

func (s *Server) handleDocumentDownload(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookupDocument(w, r)
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "docx"
	}
	contentType, ok := map[string]string{
		"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"pdf":  "application/pdf",
	}[format]
	if !ok {
		writeDetail(w, http.StatusBadRequest, "Unsupported format: "+format)
		return
	}

	s.store.mu.Lock()
	title, content := d.Title, d.Content
	s.store.mu.Unlock()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", title+"."+format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(content))
}

func (s *Server) handleConversationHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	limit := queryInt(r, "limit", 0)

	s.store.mu.Lock()
	conv, ok := s.store.conversations[sessionID]
	var msgs []map[string]any
	var created time.Time
	if ok {
		msgs = append(msgs, conv.messages...)
		created = conv.createdAt
	}
	s.store.mu.Unlock()

	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	if msgs == nil {
		msgs = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, api.ConversationHistory{
		Messages: msgs,
		SessionInfo: map[string]any{
			"session_id":    sessionID,
			"exists":        ok,
			"message_count": len(msgs),
			"created_at":    api.Timestamp{Time: created},
		},
	})
}

func (s *Server) handleClearConversation(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	s.store.mu.Lock()
	delete(s.store.conversations, sessionID)
	s.store.mu.Unlock()
	writeJSON(w, http.StatusOK, api.Message{Message: "Conversation cleared"})
}

func (s *Server) handleConversationInfo(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	s.store.mu.Lock()
	conv, ok := s.store.conversations[sessionID]
	info := map[string]any{"session_id": sessionID, "exists": ok, "message_count": 0}
	if ok {
		info["message_count"] = len(conv.messages)
		info["created_at"] = api.Timestamp{Time: conv.createdAt}
	}
	s.store.mu.Unlock()
	writeJSON(w, http.StatusOK, info)
}
