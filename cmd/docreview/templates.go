// ABOUTME: Template commands: list, show and create from a YAML definition
// ABOUTME: Definitions are validated locally before they are sent

package main

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/2389/docreview/internal/api"
	"github.com/2389/docreview/internal/notify"
	"github.com/2389/docreview/internal/views"
)

func newTemplatesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List, show and create document templates",
	}

	var (
		docType     string
		skip, limit int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List active templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ts, err := a.api.Templates.List(cmd.Context(), docType, skip, limit)
			if err != nil {
				return err
			}
			views.RenderTemplates(cmd.OutOrStdout(), ts)
			return nil
		},
	}
	list.Flags().StringVar(&docType, "type", "", "only templates for this document type")
	list.Flags().IntVar(&skip, "skip", 0, "number of templates to skip")
	list.Flags().IntVar(&limit, "limit", 50, "maximum number of templates")

	get := &cobra.Command{
		Use:   "get <template-id>",
		Short: "Show a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.requireLogin(); err != nil {
				return err
			}
			t, err := a.api.Templates.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			views.RenderTemplates(cmd.OutOrStdout(), []api.Template{*t})
			if len(t.Fields) > 0 {
				views.RenderMap(cmd.OutOrStdout(), "Fields", t.Fields)
			}
			if len(t.Structure) > 0 {
				views.RenderMap(cmd.OutOrStdout(), "Structure", t.Structure)
			}
			return nil
		},
	}

	create := &cobra.Command{
		Use:   "create <definition.yaml>",
		Short: "Create a template from a YAML definition",
		Long: "The definition has the keys name, document_type, content_template and\n" +
			"optionally structure and fields.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := loadTemplateDefinition(args[0])
			if err != nil {
				return err
			}
			if err := a.requireLogin(); err != nil {
				return err
			}
			t, err := a.api.Templates.Create(cmd.Context(), *req)
			if err != nil {
				return err
			}
			notify.Success(a.notifier, fmt.Sprintf("Created template %d (%s)", t.ID, t.Name))
			return nil
		},
	}

	cmd.AddCommand(list, get, create)
	return cmd
}

func loadTemplateDefinition(path string) (*api.TemplateCreate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template definition: %w", err)
	}
	var req api.TemplateCreate
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parsing template definition: %w", err)
	}
	if err := validator.New().Struct(req); err != nil {
		return nil, fmt.Errorf("invalid template definition: %w", err)
	}
	return &req, nil
}
