package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"qgen/pkg/generator"
	"qgen/pkg/protocol"
)

// robotSnapshot is the machine-readable state line printed in -robot mode.
type robotSnapshot struct {
	State     string                          `json:"state"`
	SessionID string                          `json:"session_id,omitempty"`
	Progress  *protocol.ProgressFrame         `json:"progress,omitempty"`
	Agents    []robotAgent                    `json:"agents,omitempty"`
	Result    *protocol.QuestionnaireComplete `json:"result,omitempty"`
	Error     string                          `json:"error,omitempty"`
}

// robotAgent is one worker row in the JSON output.
type robotAgent struct {
	ID        int    `json:"id"`
	Label     string `json:"label"`
	Status    string `json:"status"`
	Assigned  int    `json:"controls_assigned"`
	Done      int    `json:"controls_done"`
	Questions int    `json:"questions_generated"`
}

// runRobot runs one streaming generation and prints every state change
// as a JSON line, for scripts and other programs driving the dashboard.
func runRobot(ctx context.Context, m *generator.Machine, criteria protocol.CriteriaRequest, w io.Writer) error {
	snaps := make(chan generator.Snapshot, 64)
	m.OnChange(func(s generator.Snapshot) { snaps <- s })

	m.GenerateWithCriteria(criteria)

	enc := json.NewEncoder(w)
	for {
		select {
		case <-ctx.Done():
			m.Close()
			return ctx.Err()

		case snap := <-snaps:
			if err := enc.Encode(buildRobotSnapshot(snap)); err != nil {
				return fmt.Errorf("encode snapshot: %w", err)
			}
			switch snap.State {
			case generator.StateComplete:
				return nil
			case generator.StateError:
				return snap.Err
			}
		}
	}
}

// buildRobotSnapshot flattens a machine snapshot for JSON output.
func buildRobotSnapshot(snap generator.Snapshot) robotSnapshot {
	out := robotSnapshot{
		State:     string(snap.State),
		SessionID: snap.SessionID,
		Progress:  snap.Progress,
		Result:    snap.Result,
	}
	for _, a := range snap.Agents {
		out.Agents = append(out.Agents, robotAgent{
			ID:        a.ID,
			Label:     a.Label,
			Status:    string(a.Status),
			Assigned:  a.ControlsAssigned,
			Done:      a.ControlsDone,
			Questions: a.QuestionsGenerated,
		})
	}
	if snap.Err != nil {
		out.Error = snap.Err.Error()
	}
	return out
}
