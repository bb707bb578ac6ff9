package generator

import (
	"context"
	"fmt"

	"qgen/pkg/protocol"
)

// runAgentCall performs one conversational round trip (session start or
// answer submission) and applies the outcome. It runs on its own
// goroutine; a superseded call observes its context as cancelled and
// abandons the result silently.
func (m *Machine) runAgentCall(ctx context.Context, epoch uint64, path string, body any) {
	raw, err := m.transport.PostRaw(ctx, path, body)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		m.failOp(epoch, fmt.Errorf("agent call %s: %w", path, err))
		return
	}

	resp, err := protocol.DecodeAgentResponse(raw)
	if err != nil {
		m.failOp(epoch, err)
		return
	}
	m.applyAgentResponse(epoch, resp)
}

// applyAgentResponse folds a decoded conversational response into the
// machine: another question resumes conversing, a complete payload
// terminates the session, and a generation redirect hands off to the
// streaming flow with the criteria the agent gathered.
func (m *Machine) applyAgentResponse(epoch uint64, resp *protocol.AgentResponse) {
	m.mu.Lock()
	if m.closed || epoch != m.epoch {
		m.mu.Unlock()
		return
	}

	switch {
	case resp.Question != nil:
		m.sessionID = resp.Question.SessionID
		m.question = resp.Question
		m.state = StateConversing
		fire := m.emitLocked(m.snapshotLocked())
		m.mu.Unlock()
		fire()

	case resp.Complete != nil:
		m.sessionID = resp.Complete.SessionID
		m.result = resp.Complete
		m.question = nil
		m.progress = nil
		m.state = StateComplete
		m.cancel = nil
		fire := m.emitLocked(m.snapshotLocked())
		m.mu.Unlock()
		fire()

	case resp.Redirect != nil:
		// The agent finished its interview and wants batch generation.
		// Transition straight into the streaming flow with its criteria.
		m.sessionID = resp.Redirect.SessionID
		ctx, next := m.beginLocked()
		m.resetDerivedLocked(false)
		m.state = StateGenerating
		criteria := resp.Redirect.Criteria
		fire := m.emitLocked(m.snapshotLocked())
		m.mu.Unlock()
		fire()
		go m.runStream(ctx, next, criteria)

	default:
		m.failLocked(&protocol.ProtocolError{Detail: "empty agent response"})
		fire := m.emitLocked(m.snapshotLocked())
		m.mu.Unlock()
		fire()
	}
}

// failOp records an operation failure, unless the operation has been
// superseded in the meantime.
func (m *Machine) failOp(epoch uint64, err error) {
	m.mu.Lock()
	if m.closed || epoch != m.epoch {
		m.mu.Unlock()
		return
	}
	m.failLocked(err)
	fire := m.emitLocked(m.snapshotLocked())
	m.mu.Unlock()
	fire()
}
