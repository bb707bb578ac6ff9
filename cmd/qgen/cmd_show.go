package main

import (
	"context"
	"errors"
	"fmt"

	"qgen/pkg/protocol"
	"qgen/pkg/sessionstore"

	"github.com/spf13/cobra"
)

// newShowCmd creates the "qgen show" subcommand.
func newShowCmd() *cobra.Command {
	var (
		remote  bool
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show a generated questionnaire",
		Long:  "Displays one questionnaire by session id.\nThe local cache is tried first; --remote forces a backend fetch.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := loadQuestionnaire(cmd.Context(), args[0], remote)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			printQuestionnaire(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "fetch from the backend even if cached locally")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the raw questionnaire as JSON")

	return cmd
}

// loadQuestionnaire resolves a session id to a completed questionnaire,
// preferring the local cache and falling back to the backend.
func loadQuestionnaire(ctx context.Context, sessionID string, remote bool) (*protocol.QuestionnaireComplete, error) {
	paths, err := ResolvePaths()
	if err != nil {
		return nil, fmt.Errorf("resolve paths: %w", err)
	}

	if !remote {
		if result, err := loadCached(ctx, paths, sessionID); err == nil {
			return result, nil
		} else if !errors.Is(err, sessionstore.ErrNotFound) {
			return nil, err
		}
	}

	cfg, err := LoadConfig(paths.ConfigPath)
	if err != nil {
		return nil, err
	}
	client, cleanup := newBackendClient(cfg, paths)
	defer cleanup()

	detail, err := client.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return questionnaireFromDetail(detail), nil
}

// loadCached reads one questionnaire from the local cache.
func loadCached(ctx context.Context, paths *Paths, sessionID string) (*protocol.QuestionnaireComplete, error) {
	store, err := openCache(paths)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()
	return store.Get(ctx, sessionID)
}

// questionnaireFromDetail converts a backend session row to the
// completed-questionnaire shape the render layer understands.
func questionnaireFromDetail(detail *protocol.SessionDetail) *protocol.QuestionnaireComplete {
	result := &protocol.QuestionnaireComplete{
		SessionID:        detail.ID,
		Controls:         detail.GeneratedQuestions,
		TotalControls:    detail.TotalControls,
		TotalQuestions:   detail.TotalQuestions,
		GenerationTimeMs: detail.GenerationTimeMs,
	}
	if detail.AgentCriteria != nil {
		result.CriteriaSummary = detail.AgentCriteria.Summary
	}
	return result
}
