// ABOUTME: Documents resource: AI review and generation, listing, editing and classification
// ABOUTME: Review and generate run on the long-running client because they wait on the AI service

package api

import (
	"context"
	"io"
	"net/url"
	"strconv"
)

// Document is a generated or reviewed document.
type Document struct {
	ID             int64          `json:"id"`
	Title          string         `json:"title"`
	Content        string         `json:"content"`
	DocumentType   string         `json:"document_type"`
	Status         string         `json:"status"`
	Classification string         `json:"classification,omitempty"`
	AIAnnotations  map[string]any `json:"ai_annotations,omitempty"`
	PreviewURL     string         `json:"preview_url,omitempty"`
	CreatedAt      Timestamp      `json:"created_at"`
}

// ReviewIssue is one problem found by the reviewer.
// Reference is the id of the rule that produced it, when a local rule did.
type ReviewIssue struct {
	Type        string         `json:"type"`
	Level       string         `json:"level"`
	Position    map[string]any `json:"position,omitempty"`
	Description string         `json:"description"`
	Suggestion  string         `json:"suggestion,omitempty"`
	Reference   string         `json:"reference,omitempty"`
}

// ReviewResult is returned by POST /documents/review.
// FallbackMode is set when the AI service was unavailable and local rules were used.
type ReviewResult struct {
	DocumentID        int64         `json:"document_id"`
	Errors            []ReviewIssue `json:"errors"`
	Summary           string        `json:"summary"`
	FallbackMode      bool          `json:"fallback_mode,omitempty"`
	FallbackNotice    string        `json:"fallback_notice,omitempty"`
	EstimatedRecovery *int          `json:"estimated_recovery,omitempty"`
}

// GenerateRequest is the body of POST /documents/generate.
type GenerateRequest struct {
	TemplateID     int64            `json:"template_id" validate:"required"`
	Prompt         string           `json:"prompt" validate:"required"`
	Context        []map[string]any `json:"context,omitempty"`
	SessionID      string           `json:"session_id,omitempty"`
	FileReferences []int64          `json:"file_references,omitempty"`
}

// DocumentUpdate is the body of PUT /documents/{id}. Nil fields are left unchanged.
type DocumentUpdate struct {
	Content           *string        `json:"content,omitempty"`
	StructuredContent map[string]any `json:"structured_content,omitempty"`
	Title             *string        `json:"title,omitempty"`
	Status            *string        `json:"status,omitempty"`
	Classification    *string        `json:"classification,omitempty"`
	ChangeDescription string         `json:"change_description,omitempty"`
}

// Classification is a selectable security level.
type Classification struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// ClassificationResult is returned after changing a document's classification.
type ClassificationResult struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	Classification string `json:"classification"`
}

// DocumentPreview points at a rendered preview of a document.
type DocumentPreview struct {
	PreviewURL  string `json:"preview_url,omitempty"`
	FileURL     string `json:"file_url"`
	ServiceType string `json:"service_type"`
	DocumentID  int64  `json:"document_id"`
}

type DocumentsAPI struct {
	c    requester
	long requester
}

// Review runs AI review over an uploaded file.
func (d *DocumentsAPI) Review(ctx context.Context, fileID int64) (*ReviewResult, error) {
	var out ReviewResult
	body := map[string]int64{"file_id": fileID}
	if err := d.long.Post(ctx, "/documents/review", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Generate produces a new document from a template and prompt.
func (d *DocumentsAPI) Generate(ctx context.Context, req GenerateRequest) (*Document, error) {
	var out Document
	if err := d.long.Post(ctx, "/documents/generate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *DocumentsAPI) List(ctx context.Context, skip, limit int) ([]Document, error) {
	var out []Document
	if err := d.c.Get(ctx, "/documents/list", pageQuery(skip, limit), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *DocumentsAPI) Get(ctx context.Context, documentID int64) (*Document, error) {
	var out Document
	if err := d.c.Get(ctx, idPath("/documents", documentID, ""), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *DocumentsAPI) Update(ctx context.Context, documentID int64, update DocumentUpdate) (*Document, error) {
	var out Document
	if err := d.c.Put(ctx, idPath("/documents", documentID, ""), update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *DocumentsAPI) UpdateClassification(ctx context.Context, documentID int64, classification string) (*ClassificationResult, error) {
	var out ClassificationResult
	body := map[string]string{"classification": classification}
	if err := d.c.Put(ctx, idPath("/documents", documentID, "/classification"), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Classifications lists the available security levels.
func (d *DocumentsAPI) Classifications(ctx context.Context) ([]Classification, error) {
	var out struct {
		Classifications []Classification `json:"classifications"`
	}
	if err := d.c.Get(ctx, "/documents/classifications", nil, &out); err != nil {
		return nil, err
	}
	return out.Classifications, nil
}

func (d *DocumentsAPI) Preview(ctx context.Context, documentID int64) (*DocumentPreview, error) {
	var out DocumentPreview
	if err := d.c.Get(ctx, idPath("/documents", documentID, "/preview"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Download streams the document export in the given format ("docx" or "pdf") into w.
func (d *DocumentsAPI) Download(ctx context.Context, documentID int64, format string, w io.Writer) (int64, error) {
	var q url.Values
	if format != "" {
		q = url.Values{"format": {format}}
	}
	return d.c.Download(ctx, idPath("/documents", documentID, "/download"), q, w)
}

// ConversationHistory is the generation dialogue kept per session.
type ConversationHistory struct {
	Messages    []map[string]any `json:"messages"`
	SessionInfo map[string]any   `json:"session_info"`
}

// ConversationHistory returns the generation dialogue. limit <= 0 means all messages.
func (d *DocumentsAPI) ConversationHistory(ctx context.Context, sessionID string, limit int) (*ConversationHistory, error) {
	q := url.Values{}
	if sessionID != "" {
		q.Set("session_id", sessionID)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out ConversationHistory
	if err := d.c.Get(ctx, "/documents/conversation/history", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *DocumentsAPI) ClearConversation(ctx context.Context, sessionID string) (*Message, error) {
	q := url.Values{}
	if sessionID != "" {
		q.Set("session_id", sessionID)
	}
	var out Message
	if err := d.c.Delete(ctx, "/documents/conversation/clear", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *DocumentsAPI) ConversationInfo(ctx context.Context, sessionID string) (map[string]any, error) {
	q := url.Values{}
	if sessionID != "" {
		q.Set("session_id", sessionID)
	}
	var out map[string]any
	if err := d.c.Get(ctx, "/documents/conversation/info", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}
