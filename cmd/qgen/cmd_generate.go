package main

import (
	"fmt"
	"slices"
	"strings"

	"qgen/pkg/generator"
	"qgen/pkg/protocol"

	"github.com/spf13/cobra"
)

// generateConfig holds configuration for the generate command.
type generateConfig struct {
	project    string
	assessment string
	maturity   string
	depth      string
	domains    []string
	concerns   string
	skip       string
	perControl int
	jsonOut    bool
	noCache    bool
}

// newGenerateCmd creates the "qgen generate" subcommand.
func newGenerateCmd() *cobra.Command {
	var cfg generateConfig

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a questionnaire from explicit criteria",
		Long: "Runs batch generation against the streaming endpoint with the given\ncriteria and prints the resulting questionnaire.\n\n" +
			"Valid maturity levels: " + strings.Join(protocol.MaturityLevels(), ", ") + "\n" +
			"Valid question depths: " + strings.Join(protocol.QuestionDepths(), ", "),
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := cfg.criteria()
			if err != nil {
				return err
			}

			appCfg, paths, client, cleanup, err := loadClientEnv()
			if err != nil {
				return err
			}
			defer cleanup()
			if criteria.ProjectID == "" {
				criteria.ProjectID = appCfg.ProjectID
			}
			if criteria.ProjectID == "" {
				return fmt.Errorf("--project is required (or set project_id in %s)", paths.ConfigPath)
			}
			if criteria.AssessmentID == "" {
				criteria.AssessmentID = appCfg.AssessmentID
			}

			m := generator.New(client)
			defer m.Close()
			r := newRunner(m, cmd.OutOrStdout(), cmd.InOrStdin())

			m.GenerateWithCriteria(criteria)
			result, err := r.wait(cmd.Context())
			if err != nil {
				return err
			}

			if !cfg.noCache {
				cacheResult(cmd, paths, result, criteria.ProjectID, criteria.AssessmentID)
			}

			if cfg.jsonOut {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			printQuestionnaire(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.project, "project", "", "project id")
	cmd.Flags().StringVar(&cfg.assessment, "assessment", "", "assessment id")
	cmd.Flags().StringVar(&cfg.maturity, "maturity", protocol.MaturityFirstAssessment, "security program maturity level")
	cmd.Flags().StringVar(&cfg.depth, "depth", protocol.DepthBalanced, "question depth")
	cmd.Flags().StringSliceVar(&cfg.domains, "domains", nil, "priority control domains (comma separated)")
	cmd.Flags().StringVar(&cfg.concerns, "concerns", "", "free-text compliance concerns")
	cmd.Flags().StringVar(&cfg.skip, "skip", "", "controls to skip")
	cmd.Flags().IntVar(&cfg.perControl, "questions-per-control", 0, "questions per control (2, 3, or 5)")
	cmd.Flags().BoolVar(&cfg.jsonOut, "json", false, "print the raw questionnaire as JSON")
	cmd.Flags().BoolVar(&cfg.noCache, "no-cache", false, "skip writing the result to the local cache")

	return cmd
}

// criteria validates the flags and builds the request body.
func (c *generateConfig) criteria() (protocol.CriteriaRequest, error) {
	if !slices.Contains(protocol.MaturityLevels(), c.maturity) {
		return protocol.CriteriaRequest{}, fmt.Errorf("invalid maturity level %q (valid: %s)",
			c.maturity, strings.Join(protocol.MaturityLevels(), ", "))
	}
	if !slices.Contains(protocol.QuestionDepths(), c.depth) {
		return protocol.CriteriaRequest{}, fmt.Errorf("invalid question depth %q (valid: %s)",
			c.depth, strings.Join(protocol.QuestionDepths(), ", "))
	}
	if c.perControl != 0 && c.perControl != 2 && c.perControl != 3 && c.perControl != 5 {
		return protocol.CriteriaRequest{}, fmt.Errorf("invalid questions-per-control %d (valid: 2, 3, 5)", c.perControl)
	}

	domains := c.domains
	if domains == nil {
		domains = []string{}
	}
	return protocol.CriteriaRequest{
		ProjectID:           c.project,
		AssessmentID:        c.assessment,
		MaturityLevel:       c.maturity,
		QuestionDepth:       c.depth,
		PriorityDomains:     domains,
		ComplianceConcerns:  c.concerns,
		ControlsToSkip:      c.skip,
		QuestionsPerControl: c.perControl,
	}, nil
}

// cacheResult stores a completed questionnaire locally. Cache failures
// are reported but never fail the command; the result is already printed.
func cacheResult(cmd *cobra.Command, paths *Paths, result *protocol.QuestionnaireComplete, projectID, assessmentID string) {
	store, err := openCache(paths)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: open cache: %v\n", err)
		return
	}
	defer store.Close()
	if err := store.Put(cmd.Context(), result, projectID, assessmentID); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: cache questionnaire: %v\n", err)
	}
}
