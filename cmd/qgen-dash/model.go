package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"qgen/pkg/generator"
	"qgen/pkg/protocol"
)

// snapshotMsg carries a machine state change into the Bubble Tea loop.
type snapshotMsg generator.Snapshot

// Model is the Bubble Tea model for the qgen dashboard.
type Model struct {
	machine  *generator.Machine
	criteria protocol.CriteriaRequest
	snaps    chan generator.Snapshot

	snapshot generator.Snapshot
	spin     spinner.Model
	bar      progress.Model
	answer   textinput.Model

	width  int
	height int
}

// newModel creates a dashboard model for one generation run.
func newModel(m *generator.Machine, criteria protocol.CriteriaRequest) Model {
	snaps := make(chan generator.Snapshot, 64)
	m.OnChange(func(s generator.Snapshot) { snaps <- s })

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	answer := textinput.New()
	answer.Placeholder = "type an answer and press enter"
	answer.CharLimit = 500

	return Model{
		machine:  m,
		criteria: criteria,
		snaps:    snaps,
		snapshot: m.Snapshot(),
		spin:     sp,
		bar:      progress.New(progress.WithDefaultGradient()),
		answer:   answer,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.startCmd(), m.waitSnapshot())
}

// startCmd kicks off the streaming generation.
func (m Model) startCmd() tea.Cmd {
	return func() tea.Msg {
		m.machine.GenerateWithCriteria(m.criteria)
		return nil
	}
}

// waitSnapshot blocks for the next machine state change.
func (m Model) waitSnapshot() tea.Cmd {
	snaps := m.snaps
	return func() tea.Msg {
		return snapshotMsg(<-snaps)
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(msg.Width-10, 60)

	case snapshotMsg:
		m.snapshot = generator.Snapshot(msg)
		if m.snapshot.State == generator.StateConversing {
			m.answer.Focus()
		}
		return m, m.waitSnapshot()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleKeyPress processes keyboard input. While a question is pending,
// printable keys go to the answer input and enter submits it.
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.snapshot.State == generator.StateConversing {
		if key == "enter" {
			answer := strings.TrimSpace(m.answer.Value())
			if answer != "" {
				m.machine.SubmitAnswer(answer)
				m.answer.SetValue("")
				m.answer.Blur()
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.answer, cmd = m.answer.Update(msg)
		return m, cmd
	}

	if key == "q" || key == "esc" {
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	theme := DefaultTheme()
	styles := DefaultStyles(theme)

	header := styles.Title.Render("qgen generation") + "  " + m.renderStatus(styles)

	var body string
	switch m.snapshot.State {
	case generator.StateConversing:
		body = m.renderQuestion(styles)
	case generator.StateComplete:
		body = m.renderResult(styles)
	case generator.StateError:
		body = styles.StatusErr.Render(fmt.Sprintf("error: %v", m.snapshot.Err)) +
			"\n\n" + styles.Muted.Render("press q to exit")
	default:
		body = m.renderProgress(theme, styles)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, "", body)
}

// renderStatus renders the state badge for the header line.
func (m Model) renderStatus(styles Styles) string {
	switch m.snapshot.State {
	case generator.StateComplete:
		return styles.StatusOK.Render("complete")
	case generator.StateError:
		return styles.StatusErr.Render("failed")
	case generator.StateIdle:
		return styles.Muted.Render("idle")
	default:
		return m.spin.View() + string(m.snapshot.State)
	}
}

// renderProgress renders the streaming view: progress bar plus the
// per-worker table.
func (m Model) renderProgress(theme Theme, styles Styles) string {
	var parts []string

	if pr := m.snapshot.Progress; pr != nil {
		parts = append(parts,
			m.bar.ViewAs(progressPercent(pr)),
			styles.Muted.Render(fmt.Sprintf("batch %d/%d  controls %d/%d",
				pr.Batch, pr.Total, pr.ControlsDone, pr.TotalControls)))
	} else {
		parts = append(parts, styles.Muted.Render("starting generation..."))
	}

	parts = append(parts, "", NewAgentsTableModel(m.snapshot.Agents).View(theme, styles))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderQuestion renders the pending conversational question with the
// answer input.
func (m Model) renderQuestion(styles Styles) string {
	q := m.snapshot.Question
	if q == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(q.Question)
	if q.Context != "" {
		sb.WriteString("\n")
		sb.WriteString(styles.Muted.Render(q.Context))
	}
	for i, opt := range q.Options {
		sb.WriteString(fmt.Sprintf("\n  %d) %s", i+1, opt))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		styles.QuestionBx.Render(sb.String()),
		"",
		m.answer.View())
}

// renderResult renders the completion summary.
func (m Model) renderResult(styles Styles) string {
	res := m.snapshot.Result
	if res == nil {
		return ""
	}
	summary := fmt.Sprintf("%d questions across %d controls (session %s)",
		res.TotalQuestions, res.TotalControls, res.SessionID)
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.StatusOK.Render(summary),
		styles.Muted.Render("press q to exit"))
}

// progressPercent maps a progress frame onto a 0..1 completion ratio.
func progressPercent(pr *protocol.ProgressFrame) float64 {
	if pr.TotalControls > 0 {
		return float64(pr.ControlsDone) / float64(pr.TotalControls)
	}
	if pr.Total > 0 {
		return float64(pr.Batch) / float64(pr.Total)
	}
	return 0
}
