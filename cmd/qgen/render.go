package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"qgen/pkg/protocol"
)

// printQuestionnaire writes a completed questionnaire in a readable
// layout: a summary line, then each control with its questions.
func printQuestionnaire(w io.Writer, result *protocol.QuestionnaireComplete) {
	printSummary(w, result)
	for _, control := range result.Controls {
		fmt.Fprintf(w, "\n%s — %s (%s)\n", control.ControlID, control.ControlTitle, control.Framework)
		for i, q := range control.Questions {
			fmt.Fprintf(w, "  %d. [%s/%s] %s\n", i+1, q.Category, q.Priority, q.Question)
			if q.ExpectedEvidence != "" {
				fmt.Fprintf(w, "     evidence: %s\n", q.ExpectedEvidence)
			}
			if q.GuidanceNotes != "" {
				fmt.Fprintf(w, "     guidance: %s\n", q.GuidanceNotes)
			}
		}
	}
}

// printSummary writes the one-line result header.
func printSummary(w io.Writer, result *protocol.QuestionnaireComplete) {
	elapsed := time.Duration(result.GenerationTimeMs) * time.Millisecond
	fmt.Fprintf(w, "session %s: %d questions across %d controls in %s\n",
		result.SessionID, result.TotalQuestions, result.TotalControls, elapsed.Round(100*time.Millisecond))
	if result.CriteriaSummary != "" {
		fmt.Fprintf(w, "criteria: %s\n", result.CriteriaSummary)
	}
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printSessionRow writes one session-listing row.
func printSessionRow(w io.Writer, s protocol.SessionSummary) {
	fmt.Fprintf(w, "%-36s  %-10s  %4d questions  %3d controls  %s\n",
		s.ID, s.Status, s.TotalQuestions, s.TotalControls, s.CreatedAt)
}
