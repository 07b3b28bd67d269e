// ABOUTME: Templates resource: create, list filtered by document type, and fetch by id
// ABOUTME: Listing defaults to skip=0, limit=50 like the backend

package api

import (
	"context"
	"net/url"
	"strconv"
)

// Template is a document template.
type Template struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	DocumentType string         `json:"document_type"`
	Structure    map[string]any `json:"structure"`
	Fields       map[string]any `json:"fields"`
	IsActive     bool           `json:"is_active"`
	Version      int            `json:"version"`
	CreatedAt    Timestamp      `json:"created_at"`
}

// TemplateCreate is the body of POST /templates/create.
type TemplateCreate struct {
	Name            string         `json:"name" yaml:"name" validate:"required"`
	DocumentType    string         `json:"document_type" yaml:"document_type" validate:"required"`
	Structure       map[string]any `json:"structure" yaml:"structure"`
	ContentTemplate string         `json:"content_template" yaml:"content_template" validate:"required"`
	Fields          map[string]any `json:"fields" yaml:"fields"`
}

type TemplatesAPI struct {
	c requester
}

func (t *TemplatesAPI) Create(ctx context.Context, req TemplateCreate) (*Template, error) {
	var out Template
	if err := t.c.Post(ctx, "/templates/create", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns templates, optionally filtered by document type. An empty documentType lists all.
func (t *TemplatesAPI) List(ctx context.Context, documentType string, skip, limit int) ([]Template, error) {
	q := url.Values{
		"skip":  {strconv.Itoa(skip)},
		"limit": {strconv.Itoa(limit)},
	}
	if documentType != "" {
		q.Set("document_type", documentType)
	}
	var out []Template
	if err := t.c.Get(ctx, "/templates/list", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *TemplatesAPI) Get(ctx context.Context, templateID int64) (*Template, error) {
	var out Template
	if err := t.c.Get(ctx, idPath("/templates", templateID, ""), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
