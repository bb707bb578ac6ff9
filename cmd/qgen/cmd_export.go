package main

import (
	"fmt"
	"os"

	"qgen/pkg/protocol"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// exportDoc is the YAML shape written by "qgen export". It flattens the
// wire types into something reviewers can read and diff.
type exportDoc struct {
	SessionID        string          `yaml:"session_id"`
	TotalControls    int             `yaml:"total_controls"`
	TotalQuestions   int             `yaml:"total_questions"`
	GenerationTimeMs int64           `yaml:"generation_time_ms"`
	CriteriaSummary  string          `yaml:"criteria_summary,omitempty"`
	Controls         []exportControl `yaml:"controls"`
}

type exportControl struct {
	ID        string           `yaml:"id"`
	Title     string           `yaml:"title"`
	Framework string           `yaml:"framework"`
	Questions []exportQuestion `yaml:"questions"`
}

type exportQuestion struct {
	ID       string `yaml:"id"`
	Question string `yaml:"question"`
	Category string `yaml:"category"`
	Priority string `yaml:"priority"`
	Evidence string `yaml:"evidence,omitempty"`
	Guidance string `yaml:"guidance,omitempty"`
}

// newExportCmd creates the "qgen export" subcommand.
func newExportCmd() *cobra.Command {
	var (
		remote bool
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Export a questionnaire as YAML",
		Long:  "Writes one questionnaire as YAML to stdout or --out.\nThe local cache is tried first; --remote forces a backend fetch.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := loadQuestionnaire(cmd.Context(), args[0], remote)
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(buildExportDoc(result))
			if err != nil {
				return fmt.Errorf("encode questionnaire: %w", err)
			}

			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", args[0], out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "fetch from the backend even if cached locally")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")

	return cmd
}

// buildExportDoc maps a completed questionnaire onto the export shape.
func buildExportDoc(result *protocol.QuestionnaireComplete) exportDoc {
	doc := exportDoc{
		SessionID:        result.SessionID,
		TotalControls:    result.TotalControls,
		TotalQuestions:   result.TotalQuestions,
		GenerationTimeMs: result.GenerationTimeMs,
		CriteriaSummary:  result.CriteriaSummary,
		Controls:         make([]exportControl, 0, len(result.Controls)),
	}
	for _, control := range result.Controls {
		ec := exportControl{
			ID:        control.ControlID,
			Title:     control.ControlTitle,
			Framework: control.Framework,
			Questions: make([]exportQuestion, 0, len(control.Questions)),
		}
		for _, q := range control.Questions {
			ec.Questions = append(ec.Questions, exportQuestion{
				ID:       q.ID,
				Question: q.Question,
				Category: q.Category,
				Priority: q.Priority,
				Evidence: q.ExpectedEvidence,
				Guidance: q.GuidanceNotes,
			})
		}
		doc.Controls = append(doc.Controls, ec)
	}
	return doc
}
