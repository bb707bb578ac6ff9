package main

import (
	"fmt"
	"strings"

	"qgen/pkg/generator"
)

// AgentsTableModel holds the worker table state.
type AgentsTableModel struct {
	agents []generator.AgentStatus
}

// NewAgentsTableModel creates a new agents table model.
func NewAgentsTableModel(agents []generator.AgentStatus) AgentsTableModel {
	return AgentsTableModel{agents: agents}
}

// View renders the agents table.
func (a AgentsTableModel) View(theme Theme, styles Styles) string {
	if len(a.agents) == 0 {
		return styles.Muted.Render("Waiting for workers...")
	}
	return a.renderTable(theme, styles)
}

// renderTable renders the full table with headers and rows.
func (a AgentsTableModel) renderTable(theme Theme, styles Styles) string {
	var sb strings.Builder

	headers := []string{"Worker", "Status", "Controls", "Questions"}
	widths := []int{16, 12, 12, 12}

	headerParts := make([]string, 0, len(headers))
	for i, header := range headers {
		headerParts = append(headerParts, styles.TableHead.Width(widths[i]).Render(header))
	}
	sb.WriteString(strings.Join(headerParts, " "))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("─", 60))
	sb.WriteString("\n")

	for _, agent := range a.agents {
		sb.WriteString(a.renderRow(agent, widths, theme, styles))
		sb.WriteString("\n")
	}

	return sb.String()
}

// renderRow renders a single worker row.
func (a AgentsTableModel) renderRow(agent generator.AgentStatus, widths []int, theme Theme, styles Styles) string {
	controls := "-"
	if agent.ControlsAssigned > 0 || agent.ControlsDone > 0 {
		controls = fmt.Sprintf("%d/%d", agent.ControlsDone, agent.ControlsAssigned)
	}
	questions := "-"
	if agent.QuestionsGenerated > 0 {
		questions = fmt.Sprintf("%d", agent.QuestionsGenerated)
	}

	cells := []string{
		styles.TableCol.Width(widths[0]).Render(truncate(agent.Label, widths[0])),
		styles.TableCol.Width(widths[1]).Render(a.renderStatusBadge(agent, styles)),
		styles.TableCol.Width(widths[2]).Render(controls),
		styles.TableCol.Width(widths[3]).Render(questions),
	}
	return strings.Join(cells, " ")
}

// renderStatusBadge colors the worker status.
func (a AgentsTableModel) renderStatusBadge(agent generator.AgentStatus, styles Styles) string {
	switch agent.Status {
	case generator.AgentComplete:
		return styles.StatusOK.Render("● done")
	case generator.AgentFailed:
		return styles.StatusErr.Render("● failed")
	default:
		return styles.Muted.Render("● working")
	}
}

// truncate shortens s to max characters with an ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
