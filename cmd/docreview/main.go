// ABOUTME: docreview command-line client for the document review backend
// ABOUTME: Builds the cobra command tree and maps failures to a red error line and exit code 1

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/docreview/internal/httpclient"
)

const banner = `
     _                            _
  __| | ___   ___ _ __ _____   _(_) _____      __
 / _' |/ _ \ / __| '__/ _ \ \ / / |/ _ \ \ /\ / /
| (_| | (_) | (__| | |  __/\ V /| |  __/\ V  V /
 \__,_|\___/ \___|_|  \___| \_/ |_|\___| \_/\_/
`

func main() {
	a := &app{}
	root := newRootCmd(a)
	err := root.Execute()
	a.close()
	if err != nil {
		// Request failures were already shown by the notifier.
		var herr *httpclient.Error
		if !errors.As(err, &herr) {
			color.Red("Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "docreview",
		Short: "Review, generate and manage documents",
		Long: "docreview talks to the document review backend: upload files, run reviews,\n" +
			"generate documents from templates and administer rules and audit logs.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations["bootstrap"] == "none" {
				return nil
			}
			return a.setup(cmd.Context(), cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cyan := color.New(color.FgCyan)
			cyan.Fprint(cmd.OutOrStdout(), banner)
			fmt.Fprintln(cmd.OutOrStdout())
			return cmd.Help()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	f := root.PersistentFlags()
	f.StringVar(&a.flags.configPath, "config", "", "config file (default $DOCREVIEW_CONFIG or <user config dir>/docreview/config.yaml)")
	f.StringVar(&a.flags.baseURL, "base-url", "", "backend API base URL")
	f.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.BoolVar(&a.flags.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newRegisterCmd(a),
		newWhoamiCmd(a),
		newStatusCmd(a),
		newFilesCmd(a),
		newReviewCmd(a),
		newGenerateCmd(a),
		newDocumentsCmd(a),
		newTemplatesCmd(a),
		newVersionsCmd(a),
		newAuditCmd(a),
		newRulesCmd(a),
		newHealthCmd(a),
		newEditorCmd(a),
		newShellCmd(a),
		newRoutesCmd(),
	)
	return root
}
