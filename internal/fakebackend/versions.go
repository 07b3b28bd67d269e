// ABOUTME: Version history handlers of the fake backend: create, list, compare, rollback
// ABOUTME: Text comparison is line based

package fakebackend

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/2389/docreview/internal/api"
)

func (s *Server) handleCreateVersion(w http.ResponseWriter, r *http.Request) {
	var req api.VersionCreate
	if !s.decodeBody(w, r, &req) {
		return
	}
	u := currentUser(r)
	d, ok := s.store.document(u.ID, req.DocumentID)
	if !ok {
		writeDetail(w, http.StatusNotFound, "Document not found")
		return
	}
	s.store.mu.Lock()
	v := s.store.addVersion(d.ID, req.Content, req.ChangeDescription, nil)
	d.Content = req.Content
	s.store.mu.Unlock()

	s.audit(r, u, "create", "version", &v.ID, map[string]any{"document_id": d.ID, "version_number": v.VersionNumber})
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleListVersions(w http.ResponseWriter, r *http.Request) {
	docID, ok := pathID(w, r, "documentID")
	if !ok {
		return
	}
	if _, ok := s.store.document(currentUser(r).ID, docID); !ok {
		writeDetail(w, http.StatusNotFound, "Document not found")
		return
	}
	s.store.mu.Lock()
	out := append([]api.Version{}, s.store.versions[docID]...)
	s.store.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].VersionNumber > out[j].VersionNumber })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	owner := currentUser(r).ID
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	for docID, versions := range s.store.versions {
		if d, ok := s.store.documents[docID]; !ok || d.ownerID != owner {
			continue
		}
		for _, v := range versions {
			if v.ID == id {
				writeJSON(w, http.StatusOK, v)
				return
			}
		}
	}
	writeDetail(w, http.StatusNotFound, "Version not found")
}

// versionByNumber must be called with mu held.
func (s *Server) versionByNumber(docID int64, n int) (api.Version, bool) {
	for _, v := range s.store.versions[docID] {
		if v.VersionNumber == n {
			return v, true
		}
	}
	return api.Version{}, false
}

func (s *Server) handleCompareVersions(w http.ResponseWriter, r *http.Request) {
	var req api.CompareRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.CompareType == "" {
		req.CompareType = api.CompareFull
	}
	switch req.CompareType {
	case api.CompareFull, api.CompareText, api.CompareFields:
	default:
		writeDetail(w, http.StatusBadRequest, "Invalid compare_type: "+req.CompareType)
		return
	}
	if _, ok := s.store.document(currentUser(r).ID, req.DocumentID); !ok {
		writeDetail(w, http.StatusNotFound, "Document not found")
		return
	}

	s.store.mu.Lock()
	v1, ok1 := s.versionByNumber(req.DocumentID, req.Version1)
	v2, ok2 := s.versionByNumber(req.DocumentID, req.Version2)
	s.store.mu.Unlock()
	if !ok1 || !ok2 {
		writeDetail(w, http.StatusNotFound, "Version not found")
		return
	}

	added, removed := lineDelta(v1.Content, v2.Content)
	res := api.CompareResult{
		Version1:    map[string]any{"version_number": v1.VersionNumber, "created_at": v1.CreatedAt},
		Version2:    map[string]any{"version_number": v2.VersionNumber, "created_at": v2.CreatedAt},
		CompareType: req.CompareType,
		Metadata: map[string]any{
			"document_id":  req.DocumentID,
			"length_delta": len(v2.Content) - len(v1.Content),
		},
		Summary:    fmt.Sprintf("%d lines added, %d lines removed", len(added), len(removed)),
		Highlights: []map[string]string{},
		ComparedAt: time.Now().UTC().Format(time.RFC3339),
	}
	for _, l := range added {
		res.Highlights = append(res.Highlights, map[string]string{"type": "added", "text": l})
	}
	for _, l := range removed {
		res.Highlights = append(res.Highlights, map[string]string{"type": "removed", "text": l})
	}
	if req.CompareType != api.CompareFields {
		res.TextDiff = map[string]any{
			"unified": cmp.Diff(splitLines(v1.Content), splitLines(v2.Content)),
			"added":   len(added),
			"removed": len(removed),
		}
	}
	if req.CompareType != api.CompareText {
		res.FieldsDiff = map[string]any{
			"change_description": map[string]string{"old": v1.ChangeDescription, "new": v2.ChangeDescription},
		}
	}
	writeJSON(w, http.StatusOK, res)
}

func splitLines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}

// lineDelta returns lines present only in b (added) and only in a (removed).
func lineDelta(a, b string) (added, removed []string) {
	count := map[string]int{}
	for _, l := range splitLines(a) {
		count[l]++
	}
	for _, l := range splitLines(b) {
		if count[l] > 0 {
			count[l]--
			continue
		}
		added = append(added, l)
	}
	seen := map[string]int{}
	for _, l := range splitLines(b) {
		seen[l]++
	}
	for _, l := range splitLines(a) {
		if seen[l] > 0 {
			seen[l]--
			continue
		}
		removed = append(removed, l)
	}
	return added, removed
}

func (s *Server) handleRollback(w http.ResponseWriter, r *http.Request) {
	var req api.RollbackRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	u := currentUser(r)
	d, ok := s.store.document(u.ID, req.DocumentID)
	if !ok {
		writeDetail(w, http.StatusNotFound, "Document not found")
		return
	}

	s.store.mu.Lock()
	target, ok := s.versionByNumber(d.ID, req.TargetVersion)
	if !ok {
		s.store.mu.Unlock()
		writeDetail(w, http.StatusNotFound, "Version not found")
		return
	}
	desc := req.RollbackReason
	if desc == "" {
		desc = fmt.Sprintf("Rollback to version %d", target.VersionNumber)
	}
	from := target.VersionNumber
	v := s.store.addVersion(d.ID, target.Content, desc, &from)
	d.Content = target.Content
	s.store.mu.Unlock()

	s.audit(r, u, "rollback", "document", &d.ID, map[string]any{"target_version": from})
	writeJSON(w, http.StatusOK, v)
}
