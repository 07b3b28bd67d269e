// ABOUTME: Document commands: list, show, update, classification, preview, export and conversation
// ABOUTME: html renders a document locally through the markdown page renderer

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/2389/docreview/internal/api"
	"github.com/2389/docreview/internal/notify"
	"github.com/2389/docreview/internal/views"
)

func newDocumentsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "documents",
		Aliases: []string{"docs"},
		Short:   "Work with reviewed and generated documents",
	}

	// idCmd builds a subcommand taking a single document id.
	idCmd := func(use, short string, run func(cmd *cobra.Command, id int64) error) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <document-id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if err := a.requireLogin(); err != nil {
					return err
				}
				return run(cmd, id)
			},
		}
	}

	var skip, limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			docs, err := a.api.Documents.List(cmd.Context(), skip, limit)
			if err != nil {
				return err
			}
			views.RenderDocuments(cmd.OutOrStdout(), docs)
			return nil
		},
	}
	list.Flags().IntVar(&skip, "skip", 0, "number of documents to skip")
	list.Flags().IntVar(&limit, "limit", 20, "maximum number of documents")

	get := idCmd("get", "Show a document", func(cmd *cobra.Command, id int64) error {
		d, err := a.api.Documents.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		views.RenderDocument(cmd.OutOrStdout(), d)
		return nil
	})

	var (
		title, contentFile, status, message string
	)
	update := idCmd("update", "Update a document; content changes create a new version", func(cmd *cobra.Command, id int64) error {
		var u api.DocumentUpdate
		if cmd.Flags().Changed("title") {
			u.Title = &title
		}
		if cmd.Flags().Changed("status") {
			u.Status = &status
		}
		if contentFile != "" {
			content, err := readContentFile(contentFile)
			if err != nil {
				return err
			}
			u.Content = &content
		}
		if u.Title == nil && u.Status == nil && u.Content == nil {
			return fmt.Errorf("nothing to update (use --title, --status or --content)")
		}
		u.ChangeDescription = message
		d, err := a.api.Documents.Update(cmd.Context(), id, u)
		if err != nil {
			return err
		}
		notify.Success(a.notifier, fmt.Sprintf("Updated document %d", d.ID))
		views.RenderDocument(cmd.OutOrStdout(), d)
		return nil
	})
	update.Flags().StringVar(&title, "title", "", "new title")
	update.Flags().StringVar(&status, "status", "", "new status")
	update.Flags().StringVar(&contentFile, "content", "", "read new content from this file (- for stdin)")
	update.Flags().StringVarP(&message, "message", "m", "", "change description recorded on the version")

	classify := &cobra.Command{
		Use:   "classify <document-id> <level>",
		Short: "Set a document's security classification",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.requireLogin(); err != nil {
				return err
			}
			res, err := a.api.Documents.UpdateClassification(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			notify.Success(a.notifier, res.Message)
			return nil
		},
	}

	classifications := &cobra.Command{
		Use:   "classifications",
		Short: "List the available security classifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			cs, err := a.api.Documents.Classifications(cmd.Context())
			if err != nil {
				return err
			}
			views.RenderClassifications(cmd.OutOrStdout(), cs)
			return nil
		},
	}

	preview := idCmd("preview", "Show the preview location of a document", func(cmd *cobra.Command, id int64) error {
		p, err := a.api.Documents.Preview(cmd.Context(), id)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Document:  %d\n", p.DocumentID)
		fmt.Fprintf(out, "Service:   %s\n", p.ServiceType)
		fmt.Fprintf(out, "File URL:  %s\n", p.FileURL)
		if p.PreviewURL != "" {
			fmt.Fprintf(out, "Preview:   %s\n", p.PreviewURL)
		}
		return nil
	})

	var format, output string
	download := idCmd("download", "Export a document as docx or pdf", func(cmd *cobra.Command, id int64) error {
		w, done, err := openOutput(cmd, output)
		if err != nil {
			return err
		}
		n, err := a.api.Documents.Download(cmd.Context(), id, format, w)
		if cerr := done(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		if output != "" && output != "-" {
			notify.Success(a.notifier, fmt.Sprintf("Saved %s to %s", views.HumanSize(n), output))
		}
		return nil
	})
	download.Flags().StringVar(&format, "format", "docx", "export format: docx or pdf")
	download.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")

	var htmlOutput string
	html := idCmd("html", "Render a document as a standalone HTML page", func(cmd *cobra.Command, id int64) error {
		d, err := a.api.Documents.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		w, done, err := openOutput(cmd, htmlOutput)
		if err != nil {
			return err
		}
		err = views.RenderHTML(w, d)
		if cerr := done(); err == nil {
			err = cerr
		}
		return err
	})
	html.Flags().StringVarP(&htmlOutput, "output", "o", "", "write to this file instead of stdout")

	cmd.AddCommand(list, get, update, classify, classifications, preview, download, html, newConversationCmd(a))
	return cmd
}

func newConversationCmd(a *app) *cobra.Command {
	var (
		sessionID string
		limit     int
		clearAll  bool
		info      bool
	)
	cmd := &cobra.Command{
		Use:   "conversation",
		Short: "Show or clear the generation conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx := cmd.Context()
			switch {
			case clearAll:
				msg, err := a.api.Documents.ClearConversation(ctx, sessionID)
				if err != nil {
					return err
				}
				notify.Success(a.notifier, msg.Message)
			case info:
				m, err := a.api.Documents.ConversationInfo(ctx, sessionID)
				if err != nil {
					return err
				}
				views.RenderMap(cmd.OutOrStdout(), "Conversation", m)
			default:
				h, err := a.api.Documents.ConversationHistory(ctx, sessionID, limit)
				if err != nil {
					return err
				}
				views.RenderConversation(cmd.OutOrStdout(), h)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "conversation session id (default: the current session)")
	cmd.Flags().IntVar(&limit, "limit", 0, "show only the last N messages")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "clear the conversation")
	cmd.Flags().BoolVar(&info, "info", false, "show session information only")
	cmd.MarkFlagsMutuallyExclusive("clear", "info")
	return cmd
}
