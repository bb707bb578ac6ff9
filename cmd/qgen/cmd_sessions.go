package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// sessionsConfig holds configuration for the sessions command.
type sessionsConfig struct {
	project    string
	assessment string
	local      bool
}

// newSessionsCmd creates the "qgen sessions" subcommand.
func newSessionsCmd() *cobra.Command {
	var cfg sessionsConfig

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List generation sessions",
		Long:  "Lists questionnaire generation sessions from the backend,\nor from the local cache with --local.",
		RunE: func(cmd *cobra.Command, args []string) error {
			appCfg, paths, client, cleanup, err := loadClientEnv()
			if err != nil {
				return err
			}
			defer cleanup()

			project := cfg.project
			if project == "" {
				project = appCfg.ProjectID
			}

			if cfg.local {
				store, err := openCache(paths)
				if err != nil {
					return fmt.Errorf("open cache: %w", err)
				}
				defer store.Close()

				sessions, err := store.List(cmd.Context(), project)
				if err != nil {
					return err
				}
				if len(sessions) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no cached sessions")
					return nil
				}
				for _, s := range sessions {
					printSessionRow(cmd.OutOrStdout(), s)
				}
				return nil
			}

			if project == "" {
				return fmt.Errorf("--project is required (or set project_id in %s)", paths.ConfigPath)
			}
			sessions, err := client.ListSessions(cmd.Context(), project, cfg.assessment)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
				return nil
			}
			for _, s := range sessions {
				printSessionRow(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.project, "project", "", "project id")
	cmd.Flags().StringVar(&cfg.assessment, "assessment", "", "assessment id")
	cmd.Flags().BoolVar(&cfg.local, "local", false, "list the local cache instead of the backend")

	return cmd
}
