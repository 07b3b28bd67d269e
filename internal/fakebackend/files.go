// ABOUTME: File upload, listing, preview, download and delete handlers of the fake backend
// ABOUTME: Uploaded bytes are kept in memory under a generated storage name

package fakebackend

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/2389/docreview/internal/api"
)

const maxUploadSize = 10 << 20

var allowedExtensions = map[string]bool{
	"docx": true, "doc": true, "pdf": true, "txt": true, "md": true,
}

var directPreview = map[string]bool{"pdf": true, "txt": true, "md": true}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid upload")
		return
	}
	part, header, err := r.FormFile("file")
	if err != nil {
		writeValidation(w, []validationIssue{{Loc: []string{"body", "file"}, Msg: "field required", Type: "value_error.missing"}})
		return
	}
	defer part.Close()

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	if !allowedExtensions[ext] {
		writeDetail(w, http.StatusBadRequest, fmt.Sprintf("Unsupported file type: %s", ext))
		return
	}
	content, err := io.ReadAll(io.LimitReader(part, maxUploadSize+1))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Could not read upload")
		return
	}
	if len(content) > maxUploadSize {
		writeDetail(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}

	u := currentUser(r)
	s.store.mu.Lock()
	f := &storedFile{
		File: api.File{
			ID:        s.store.id("file"),
			FileName:  header.Filename,
			FileType:  ext,
			FileSize:  int64(len(content)),
			Status:    "uploaded",
			CreatedAt: api.Now(),
		},
		ownerID:    u.ID,
		storedName: uuid.NewString() + "." + ext,
		content:    content,
	}
	s.store.files[f.ID] = f
	s.store.mu.Unlock()

	s.audit(r, u, "upload", "file", &f.ID, map[string]any{"file_name": f.FileName, "file_size": f.FileSize})
	writeJSON(w, http.StatusOK, f.File)
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files := s.store.userFiles(currentUser(r).ID)
	writeJSON(w, http.StatusOK, paginate(files, queryInt(r, "skip", 0), queryInt(r, "limit", 20)))
}

func (s *Server) handleFilePreview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	f, ok := s.store.file(currentUser(r).ID, id)
	if !ok {
		writeDetail(w, http.StatusNotFound, "File not found")
		return
	}

	fileURL := s.publicURL(r, fmt.Sprintf("/files/%d/download", f.ID))
	preview := api.FilePreview{
		FileURL:     fileURL,
		PreviewType: "unsupported",
		FileType:    f.FileType,
		FileName:    f.FileName,
	}
	if directPreview[f.FileType] {
		preview.PreviewType = "direct"
		preview.PreviewURL = fileURL
	}
	writeJSON(w, http.StatusOK, preview)
}

func (s *Server) handleFileDownload(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	f, ok := s.store.file(currentUser(r).ID, id)
	if !ok {
		writeDetail(w, http.StatusNotFound, "File not found")
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.FileName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(f.content)
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	u := currentUser(r)
	if _, ok := s.store.file(u.ID, id); !ok {
		writeDetail(w, http.StatusNotFound, "File not found")
		return
	}
	s.store.mu.Lock()
	delete(s.store.files, id)
	s.store.mu.Unlock()

	s.audit(r, u, "delete", "file", &id, nil)
	writeJSON(w, http.StatusOK, api.Message{Message: "File deleted successfully"})
}
