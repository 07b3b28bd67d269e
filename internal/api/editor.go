// ABOUTME: Editor integration resource for the ONLYOFFICE document server
// ABOUTME: Fetches editor configuration for a file or document and checks server health

package api

import (
	"context"
)

// Editor modes.
const (
	EditorView = "view"
	EditorEdit = "edit"
)

// EditorConfigRequest selects what to open. Exactly one of FileID or DocumentID should be set.
type EditorConfigRequest struct {
	FileID     *int64 `json:"file_id,omitempty"`
	DocumentID *int64 `json:"document_id,omitempty"`
	Mode       string `json:"mode"`
}

type EditorAPI struct {
	c requester
}

// Config returns the editor configuration blob. mode defaults to view.
func (e *EditorAPI) Config(ctx context.Context, req EditorConfigRequest) (map[string]any, error) {
	if req.Mode == "" {
		req.Mode = EditorView
	}
	var out map[string]any
	if err := e.c.Post(ctx, "/onlyoffice/config", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *EditorAPI) Health(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := e.c.Get(ctx, "/onlyoffice/health", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
