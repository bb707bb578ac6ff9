// Package main implements the qgen-dash live generation dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"qgen/pkg/auth"
	"qgen/pkg/backend"
	"qgen/pkg/generator"
	"qgen/pkg/protocol"
)

func main() {
	var (
		project    = flag.String("project", "", "project id")
		assessment = flag.String("assessment", "", "assessment id")
		maturity   = flag.String("maturity", protocol.MaturityFirstAssessment, "security program maturity level")
		depth      = flag.String("depth", protocol.DepthBalanced, "question depth")
		domains    = flag.String("domains", "", "comma-separated priority domains")
		robot      = flag.Bool("robot", false, "print JSON state snapshots instead of the TUI")
	)
	flag.Parse()

	if *project == "" {
		fmt.Fprintln(os.Stderr, "qgen-dash: -project is required")
		os.Exit(2)
	}

	criteria := protocol.CriteriaRequest{
		ProjectID:       *project,
		AssessmentID:    *assessment,
		MaturityLevel:   *maturity,
		QuestionDepth:   *depth,
		PriorityDomains: splitDomains(*domains),
	}

	client, cleanup := buildClient()
	defer cleanup()

	m := generator.New(client)
	defer m.Close()

	if *robot {
		if err := runRobot(context.Background(), m, criteria, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "qgen-dash: %v\n", err)
			os.Exit(1)
		}
		return
	}

	p := tea.NewProgram(newModel(m, criteria), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running dashboard: %v\n", err)
		os.Exit(1)
	}
}

// buildClient assembles the backend client from the environment.
// QGEN_TOKEN wins over the credentials file.
func buildClient() (*backend.Client, func()) {
	baseURL := os.Getenv("QGEN_BACKEND_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}

	if tok := os.Getenv("QGEN_TOKEN"); tok != "" {
		return backend.New(baseURL, backend.StaticToken(tok)), func() {}
	}

	src := auth.NewFileSource(credentialsPath())
	return backend.New(baseURL, src), src.Close
}

// credentialsPath resolves the credentials file the qgen CLI writes.
func credentialsPath() string {
	if v := os.Getenv("QGEN_CREDENTIALS_PATH"); v != "" {
		return v
	}
	home := os.Getenv("QGEN_HOME")
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		home = userHome + "/.qgen"
	}
	return home + "/credentials.json"
}

// splitDomains parses the -domains flag value.
func splitDomains(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
