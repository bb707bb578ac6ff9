package main

import (
	"fmt"

	"qgen/pkg/generator"
	"qgen/pkg/protocol"

	"github.com/spf13/cobra"
)

// sessionConfig holds configuration for the session command.
type sessionConfig struct {
	project    string
	assessment string
	jsonOut    bool
	noCache    bool
}

// newSessionCmd creates the "qgen session" subcommand.
func newSessionCmd() *cobra.Command {
	var cfg sessionConfig

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Generate a questionnaire through an interactive interview",
		Long:  "Starts a conversational session in which the backend agent asks about\nyour compliance posture, then generates a questionnaire from your answers.",
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
			if project == "" {
				return fmt.Errorf("--project is required (or set project_id in %s)", paths.ConfigPath)
			}
			assessment := cfg.assessment
			if assessment == "" {
				assessment = appCfg.AssessmentID
			}

			m := generator.New(client)
			defer m.Close()
			r := newRunner(m, cmd.OutOrStdout(), cmd.InOrStdin())

			m.StartSession(protocol.GenerateQuestionRequest{
				ProjectID:    project,
				AssessmentID: assessment,
			})
			result, err := r.wait(cmd.Context())
			if err != nil {
				return err
			}

			if !cfg.noCache {
				cacheResult(cmd, paths, result, project, assessment)
			}

			if cfg.jsonOut {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			printQuestionnaire(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.project, "project", "", "project id")
	cmd.Flags().StringVar(&cfg.assessment, "assessment", "", "assessment id")
	cmd.Flags().BoolVar(&cfg.jsonOut, "json", false, "print the raw questionnaire as JSON")
	cmd.Flags().BoolVar(&cfg.noCache, "no-cache", false, "skip writing the result to the local cache")

	return cmd
}
