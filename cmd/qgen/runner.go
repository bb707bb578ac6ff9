package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"qgen/pkg/generator"
	"qgen/pkg/protocol"

	"github.com/mattn/go-isatty"
)

// progressPrinter renders streaming generation progress. On a terminal
// it rewrites one status line in place; on a pipe it prints a plain line
// whenever the counts move.
type progressPrinter struct {
	w    io.Writer
	tty  bool
	last string
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &progressPrinter{w: w, tty: tty}
}

func (p *progressPrinter) update(snap generator.Snapshot) {
	if snap.Progress == nil {
		return
	}
	line := formatProgress(snap)
	if line == p.last {
		return
	}
	p.last = line

	if p.tty {
		fmt.Fprintf(p.w, "\r\033[K%s", line)
		return
	}
	fmt.Fprintln(p.w, line)
}

// finish terminates the in-place status line so later output starts on a
// fresh line.
func (p *progressPrinter) finish() {
	if p.tty && p.last != "" {
		fmt.Fprintln(p.w)
	}
}

func formatProgress(snap generator.Snapshot) string {
	pr := snap.Progress
	var b strings.Builder
	fmt.Fprintf(&b, "batch %d/%d  controls %d/%d", pr.Batch, pr.Total, pr.ControlsDone, pr.TotalControls)
	if pr.TotalAgents > 0 {
		fmt.Fprintf(&b, "  agents %d/%d", pr.AgentsComplete, pr.TotalAgents)
	}
	done := 0
	for _, a := range snap.Agents {
		if a.Status != generator.AgentWorking {
			done++
		}
	}
	if len(snap.Agents) > 0 && done != pr.AgentsComplete {
		fmt.Fprintf(&b, " (%d reported)", done)
	}
	return b.String()
}

// runner drives one generation machine to a terminal state on behalf of
// a CLI command, answering questions from in when the backend converses.
type runner struct {
	machine *generator.Machine
	snaps   chan generator.Snapshot
	out     io.Writer
	in      *bufio.Reader
}

func newRunner(m *generator.Machine, out io.Writer, in io.Reader) *runner {
	r := &runner{
		machine: m,
		snaps:   make(chan generator.Snapshot, 64),
		out:     out,
		in:      bufio.NewReader(in),
	}
	m.OnChange(func(s generator.Snapshot) { r.snaps <- s })
	return r
}

// wait consumes snapshots until the machine completes or fails. Pending
// questions are printed and answered from the runner's input.
func (r *runner) wait(ctx context.Context) (*protocol.QuestionnaireComplete, error) {
	progress := newProgressPrinter(r.out)
	defer progress.finish()

	for {
		select {
		case <-ctx.Done():
			r.machine.Close()
			return nil, ctx.Err()

		case snap := <-r.snaps:
			switch snap.State {
			case generator.StateConversing:
				progress.finish()
				answer, err := r.ask(snap.Question)
				if err != nil {
					r.machine.Close()
					return nil, err
				}
				r.machine.SubmitAnswer(answer)

			case generator.StateGenerating:
				progress.update(snap)

			case generator.StateComplete:
				return snap.Result, nil

			case generator.StateError:
				return nil, snap.Err
			}
		}
	}
}

// ask prints the agent's question and reads one answer line.
func (r *runner) ask(q *protocol.AgentQuestion) (string, error) {
	fmt.Fprintf(r.out, "\n%s\n", q.Question)
	if q.Context != "" {
		fmt.Fprintf(r.out, "  (%s)\n", q.Context)
	}
	for i, opt := range q.Options {
		fmt.Fprintf(r.out, "  %d) %s\n", i+1, opt)
	}
	fmt.Fprint(r.out, "> ")

	line, err := r.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read answer: %w", err)
	}
	answer := strings.TrimSpace(line)

	// A bare option number selects from the list.
	if len(q.Options) > 0 {
		var idx int
		if _, convErr := fmt.Sscanf(answer, "%d", &idx); convErr == nil && idx >= 1 && idx <= len(q.Options) {
			return q.Options[idx-1], nil
		}
	}
	return answer, nil
}
