// ABOUTME: File commands plus the AI-bound review and generate actions
// ABOUTME: Review and generate use the long-running client timeout

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/2389/docreview/internal/api"
	"github.com/2389/docreview/internal/notify"
	"github.com/2389/docreview/internal/views"
)

func newFilesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Upload, list, preview, download and delete files",
	}

	var skip, limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List uploaded files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			files, err := a.api.Files.List(cmd.Context(), skip, limit)
			if err != nil {
				return err
			}
			views.RenderFiles(cmd.OutOrStdout(), files)
			return nil
		},
	}
	list.Flags().IntVar(&skip, "skip", 0, "number of files to skip")
	list.Flags().IntVar(&limit, "limit", 20, "maximum number of files")

	upload := &cobra.Command{
		Use:   "upload <path>...",
		Short: "Upload one or more files (.docx .doc .pdf .txt .md)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			for _, path := range args {
				if err := uploadOne(cmd, a, path); err != nil {
					return err
				}
			}
			return nil
		},
	}

	preview := &cobra.Command{
		Use:   "preview <file-id>",
		Short: "Show how a file can be previewed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.requireLogin(); err != nil {
				return err
			}
			p, err := a.api.Files.Preview(cmd.Context(), id)
			if err != nil {
				return err
			}
			views.RenderFilePreview(cmd.OutOrStdout(), p)
			return nil
		},
	}

	var output string
	download := &cobra.Command{
		Use:   "download <file-id>",
		Short: "Download a file's raw content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.requireLogin(); err != nil {
				return err
			}
			w, done, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			n, err := a.api.Files.Download(cmd.Context(), id, w)
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
		},
	}
	download.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")

	del := &cobra.Command{
		Use:   "delete <file-id>",
		Short: "Delete a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.requireLogin(); err != nil {
				return err
			}
			msg, err := a.api.Files.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			notify.Success(a.notifier, msg.Message)
			return nil
		},
	}

	cmd.AddCommand(list, upload, preview, download, del)
	return cmd
}

func uploadOne(cmd *cobra.Command, a *app, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	file, err := a.api.Files.Upload(cmd.Context(), filepath.Base(path), f)
	if err != nil {
		return err
	}
	notify.Success(a.notifier, fmt.Sprintf("Uploaded %s as file %d", file.FileName, file.ID))
	return nil
}

func newReviewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "review <file-id>",
		Short: "Review an uploaded file against the enabled rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.requireLogin(); err != nil {
				return err
			}
			res, err := a.api.Documents.Review(cmd.Context(), id)
			if err != nil {
				return err
			}
			views.RenderReview(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func newGenerateCmd(a *app) *cobra.Command {
	var (
		req   api.GenerateRequest
		files []int64
	)
	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Generate a document from a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			req.Prompt = args[0]
			req.FileReferences = files
			doc, err := a.api.Documents.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}
			notify.Success(a.notifier, fmt.Sprintf("Generated document %d", doc.ID))
			views.RenderDocument(cmd.OutOrStdout(), doc)
			return nil
		},
	}
	cmd.Flags().Int64VarP(&req.TemplateID, "template", "t", 0, "template id (required)")
	cmd.Flags().StringVar(&req.SessionID, "session", "", "conversation session id to continue")
	cmd.Flags().Int64SliceVar(&files, "file", nil, "uploaded file ids to use as references")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}
