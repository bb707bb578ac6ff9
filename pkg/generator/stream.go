package generator

import (
	"context"
	"errors"
	"fmt"
	"io"

	"qgen/pkg/protocol"
	"qgen/pkg/sse"
)

// runStream opens the criteria streaming endpoint and folds its frames
// until a terminal frame, stream exhaustion, or supersession.
func (m *Machine) runStream(ctx context.Context, epoch uint64, criteria protocol.CriteriaRequest) {
	if criteria.PriorityDomains == nil {
		criteria.PriorityDomains = []string{}
	}

	body, err := m.transport.PostStream(ctx, protocol.PathCriteriaStream, criteria)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		m.failOp(epoch, fmt.Errorf("open generation stream: %w", err))
		return
	}
	defer body.Close()

	r := sse.NewReader(body)
	for {
		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			m.finishStream(epoch)
			return
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			m.failOp(epoch, fmt.Errorf("read generation stream: %w", err))
			return
		}

		frame, err := protocol.DecodeFrame(ev.Name, ev.Data)
		if err != nil {
			m.failOp(epoch, err)
			return
		}
		if terminal := m.applyFrame(epoch, frame); terminal {
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// applyFrame folds one decoded frame into the machine. It reports true
// when the frame was terminal (complete or error) or the operation has
// been superseded, so the stream loop stops consuming.
func (m *Machine) applyFrame(epoch uint64, frame protocol.Frame) bool {
	m.mu.Lock()
	if m.closed || epoch != m.epoch {
		m.mu.Unlock()
		return true
	}

	switch f := frame.(type) {
	case protocol.ProgressFrame:
		// Snapshots replace wholesale; nothing is merged.
		p := f
		m.progress = &p
		m.panel.seedFrom(f)

	case protocol.AgentCompleteFrame:
		m.panel.complete(f)

	case protocol.CompleteFrame:
		res := f.Result
		m.result = &res
		m.sessionID = res.SessionID
		m.progress = nil
		m.state = StateComplete
		m.cancel = nil
		fire := m.emitLocked(m.snapshotLocked())
		m.mu.Unlock()
		fire()
		return true

	case protocol.ErrorFrame:
		m.failLocked(&protocol.StreamError{Message: f.Message})
		fire := m.emitLocked(m.snapshotLocked())
		m.mu.Unlock()
		fire()
		return true

	default:
		// Unknown event names are forward-compatibility, not failures.
		m.mu.Unlock()
		return false
	}

	fire := m.emitLocked(m.snapshotLocked())
	m.mu.Unlock()
	fire()
	return false
}

// finishStream handles a stream that ended without a terminal frame.
// That leaves the caller with no result and no error, so it is surfaced
// as a protocol violation rather than silently staying in generating.
func (m *Machine) finishStream(epoch uint64) {
	m.mu.Lock()
	if m.closed || epoch != m.epoch || m.state != StateGenerating {
		m.mu.Unlock()
		return
	}
	m.failLocked(&protocol.ProtocolError{Detail: "stream ended before completion"})
	fire := m.emitLocked(m.snapshotLocked())
	m.mu.Unlock()
	fire()
}
