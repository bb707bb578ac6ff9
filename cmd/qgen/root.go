package main

import (
	"fmt"

	"qgen/internal/appversion"

	"github.com/spf13/cobra"
)

// newRootCmd creates the root qgen command with all subcommands attached.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "qgen",
		Short:         "Compliance questionnaire generation client",
		Long:          "qgen drives AI-assisted questionnaire generation against a compliance backend.\nIt supports an interactive criteria interview and direct batch generation.",
		Version:       fmt.Sprintf("qgen %s", appversion.String()),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("{{.Version}}\n")

	cmd.AddCommand(
		newLoginCmd(),
		newGenerateCmd(),
		newSessionCmd(),
		newSessionsCmd(),
		newShowCmd(),
		newExportCmd(),
	)

	return cmd
}
