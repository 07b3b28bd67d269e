// ABOUTME: Version commands: list, show, snapshot, compare and rollback
// ABOUTME: Version numbers are per document; version ids are global

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/2389/docreview/internal/api"
	"github.com/2389/docreview/internal/notify"
	"github.com/2389/docreview/internal/views"
)

func newVersionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "versions",
		Short: "Inspect, compare and roll back document versions",
	}

	list := &cobra.Command{
		Use:   "list <document-id>",
		Short: "List the versions of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.requireLogin(); err != nil {
				return err
			}
			vs, err := a.api.Versions.List(cmd.Context(), id)
			if err != nil {
				return err
			}
			views.RenderVersions(cmd.OutOrStdout(), vs)
			return nil
		},
	}

	get := &cobra.Command{
		Use:   "get <version-id>",
		Short: "Print the content of a version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.requireLogin(); err != nil {
				return err
			}
			v, err := a.api.Versions.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			views.RenderVersions(cmd.OutOrStdout(), []api.Version{*v})
			fmt.Fprintln(cmd.OutOrStdout(), v.Content)
			return nil
		},
	}

	var contentFile, message string
	create := &cobra.Command{
		Use:   "create <document-id>",
		Short: "Snapshot new content as a version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			content, err := readContentFile(contentFile)
			if err != nil {
				return err
			}
			if err := a.requireLogin(); err != nil {
				return err
			}
			v, err := a.api.Versions.Create(cmd.Context(), api.VersionCreate{
				DocumentID:        id,
				Content:           content,
				ChangeDescription: message,
			})
			if err != nil {
				return err
			}
			notify.Success(a.notifier, fmt.Sprintf("Created version %d of document %d", v.VersionNumber, id))
			return nil
		},
	}
	create.Flags().StringVar(&contentFile, "content", "", "file holding the new content (- for stdin)")
	create.Flags().StringVarP(&message, "message", "m", "", "change description")
	_ = create.MarkFlagRequired("content")

	var compareType string
	compare := &cobra.Command{
		Use:   "compare <document-id> <version1> <version2>",
		Short: "Compare two versions of a document",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			v1, err := parseVersion(args[1])
			if err != nil {
				return err
			}
			v2, err := parseVersion(args[2])
			if err != nil {
				return err
			}
			if err := a.requireLogin(); err != nil {
				return err
			}
			res, err := a.api.Versions.Compare(cmd.Context(), api.CompareRequest{
				DocumentID:  id,
				Version1:    v1,
				Version2:    v2,
				CompareType: compareType,
			})
			if err != nil {
				return err
			}
			views.RenderCompare(cmd.OutOrStdout(), res)
			return nil
		},
	}
	compare.Flags().StringVar(&compareType, "type", api.CompareFull, "comparison type: full, text or fields")

	var reason string
	rollback := &cobra.Command{
		Use:   "rollback <document-id> <version>",
		Short: "Restore a document to an earlier version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			target, err := parseVersion(args[1])
			if err != nil {
				return err
			}
			if err := a.requireLogin(); err != nil {
				return err
			}
			v, err := a.api.Versions.Rollback(cmd.Context(), api.RollbackRequest{
				DocumentID:     id,
				TargetVersion:  target,
				RollbackReason: reason,
			})
			if err != nil {
				return err
			}
			notify.Success(a.notifier, fmt.Sprintf("Rolled back document %d to version %d (now version %d)", id, target, v.VersionNumber))
			return nil
		},
	}
	rollback.Flags().StringVar(&reason, "reason", "", "why the rollback is done")

	cmd.AddCommand(list, get, create, compare, rollback)
	return cmd
}
