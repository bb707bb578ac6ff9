package generator

import (
	"fmt"
	"sort"

	"qgen/pkg/protocol"
)

// AgentState is one backend worker's lifecycle phase.
type AgentState string

// Worker states. Complete and failed are terminal: once reached, a
// worker is never moved back to working.
const (
	AgentWorking  AgentState = "working"
	AgentComplete AgentState = "complete"
	AgentFailed   AgentState = "failed"
)

// AgentStatus is the observable state of one parallel backend worker.
type AgentStatus struct {
	ID                 int
	Label              string
	ControlsAssigned   int
	ControlsDone       int
	QuestionsGenerated int
	Status             AgentState
}

// agentPanel tracks per-worker status for one streaming run. Before the
// worker count is known, completions land in a small map; the first
// progress frame that reveals the count seeds a fixed slice indexed by
// worker id. The panel is rebuilt from scratch for every run.
type agentPanel struct {
	byID   []AgentStatus
	early  map[int]AgentStatus
	seeded bool
}

// reset discards all worker state.
func (p *agentPanel) reset() {
	p.byID = nil
	p.early = nil
	p.seeded = false
}

// seedFrom lays out the panel from the first progress frame that
// carries a worker count with zero completions, so consumers can render
// all workers before any of them finishes. Later progress frames never
// re-seed; completed workers stay completed.
func (p *agentPanel) seedFrom(f protocol.ProgressFrame) {
	if p.seeded || f.TotalAgents <= 0 || f.AgentsComplete != 0 {
		return
	}
	p.seeded = true
	p.byID = make([]AgentStatus, f.TotalAgents)

	// The backend spreads controls across workers one bucket each, with
	// the remainder going to the earliest workers.
	base, extra := 0, 0
	if f.TotalControls > 0 {
		base = f.TotalControls / f.TotalAgents
		extra = f.TotalControls % f.TotalAgents
	}
	for i := range p.byID {
		assigned := base
		if i < extra {
			assigned++
		}
		p.byID[i] = AgentStatus{
			ID:               i,
			Label:            fmt.Sprintf("Agent %d", i+1),
			ControlsAssigned: assigned,
			Status:           AgentWorking,
		}
	}

	// Fold in any completions that arrived before the seed.
	for id, st := range p.early {
		if id >= 0 && id < len(p.byID) {
			p.byID[id] = st
		}
	}
	p.early = nil
}

// complete applies an agent_complete frame. Terminal transitions are
// one-way; a worker already complete or failed keeps its first outcome.
func (p *agentPanel) complete(f protocol.AgentCompleteFrame) {
	status := AgentComplete
	if f.Error != "" {
		status = AgentFailed
	}
	st := AgentStatus{
		ID:                 f.AgentID,
		Label:              f.AgentLabel,
		ControlsDone:       f.ControlsGenerated,
		QuestionsGenerated: f.QuestionsGenerated,
		Status:             status,
	}
	if st.Label == "" {
		st.Label = fmt.Sprintf("Agent %d", f.AgentID+1)
	}

	if p.seeded {
		if f.AgentID < 0 || f.AgentID >= len(p.byID) {
			return
		}
		prev := p.byID[f.AgentID]
		if prev.Status != AgentWorking {
			return
		}
		st.ControlsAssigned = prev.ControlsAssigned
		p.byID[f.AgentID] = st
		return
	}

	if p.early == nil {
		p.early = make(map[int]AgentStatus)
	}
	if prev, ok := p.early[f.AgentID]; ok && prev.Status != AgentWorking {
		return
	}
	p.early[f.AgentID] = st
}

// snapshot returns the workers ordered by id.
func (p *agentPanel) snapshot() []AgentStatus {
	if p.seeded {
		out := make([]AgentStatus, len(p.byID))
		copy(out, p.byID)
		return out
	}
	if len(p.early) == 0 {
		return nil
	}
	out := make([]AgentStatus, 0, len(p.early))
	for _, st := range p.early {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
