// Package generator implements the client-side orchestration of
// questionnaire generation. A Machine drives two backend protocols —
// the request/response conversational flow and the SSE streaming batch
// flow — and folds both into one observable lifecycle:
//
//	idle → starting → conversing ⇄ generating → complete
//
// with error reachable from any non-terminal state. At most one logical
// operation is in flight per Machine; starting a new one supersedes the
// previous one, whose late result is discarded without touching state.
package generator

import (
	"context"
	"io"
	"sync"

	"qgen/pkg/protocol"
)

// State is the machine's observable lifecycle phase.
type State string

// Machine states.
const (
	StateIdle       State = "idle"
	StateStarting   State = "starting"
	StateConversing State = "conversing"
	StateGenerating State = "generating"
	StateComplete   State = "complete"
	StateError      State = "error"
)

// Transport is the slice of the backend client the machine needs.
// *backend.Client satisfies it.
type Transport interface {
	PostRaw(ctx context.Context, path string, body any) ([]byte, error)
	PostStream(ctx context.Context, path string, body any) (io.ReadCloser, error)
}

// Snapshot is an immutable copy of the machine's observable state.
// Result is non-nil exactly in StateComplete; Err is non-nil exactly in
// StateError; Question is non-nil only in StateConversing.
type Snapshot struct {
	State     State
	SessionID string
	Question  *protocol.AgentQuestion
	Answered  []protocol.QAEntry
	Progress  *protocol.ProgressFrame
	Agents    []AgentStatus
	Result    *protocol.QuestionnaireComplete
	Err       error
}

// Machine is the single source of truth for one generation workflow.
// All methods are safe for concurrent use and none of them block on
// network I/O; progress is observed via Snapshot or the OnChange hook.
type Machine struct {
	transport Transport

	emits sync.WaitGroup

	mu        sync.Mutex
	epoch     uint64
	cancel    context.CancelFunc
	closed    bool
	state     State
	sessionID string
	question  *protocol.AgentQuestion
	answered  []protocol.QAEntry
	progress  *protocol.ProgressFrame
	panel     agentPanel
	result    *protocol.QuestionnaireComplete
	err       error
	lastScope *protocol.GenerateQuestionRequest
	onChange  func(Snapshot)
}

// New creates an idle Machine over the given transport.
func New(transport Transport) *Machine {
	return &Machine{transport: transport, state: StateIdle}
}

// OnChange registers a hook invoked after every applied state
// transition with a snapshot of the new state. The hook is called
// outside the machine's lock and must not block for long; superseded
// (cancelled) operations never trigger it.
func (m *Machine) OnChange(fn func(Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// Snapshot returns a copy of the current observable state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// StartSession begins a new conversational session for the given scope.
// All prior history, results, and errors are cleared and any in-flight
// operation is superseded.
func (m *Machine) StartSession(scope protocol.GenerateQuestionRequest) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	ctx, epoch := m.beginLocked()
	m.resetDerivedLocked(true)
	m.state = StateStarting
	m.lastScope = &scope
	fire := m.emitLocked(m.snapshotLocked())
	m.mu.Unlock()

	fire()
	go m.runAgentCall(ctx, epoch, protocol.PathGenerateQuestion, scope)
}

// SubmitAnswer answers the pending conversational question. The entry
// is appended to history immediately and the machine moves to
// generating while the backend works out the next step. Calling without
// a pending question or a known session is a silent no-op.
func (m *Machine) SubmitAnswer(answer string) {
	m.mu.Lock()
	if m.closed || m.state != StateConversing || m.question == nil || m.sessionID == "" {
		m.mu.Unlock()
		return
	}
	q := m.question
	m.answered = append(m.answered, protocol.QAEntry{
		Question: q.Question,
		Context:  q.Context,
		Options:  q.Options,
		Answer:   answer,
	})
	m.question = nil
	m.state = StateGenerating
	ctx, epoch := m.beginLocked()
	body := protocol.RespondRequest{SessionID: m.sessionID, Answer: answer}
	fire := m.emitLocked(m.snapshotLocked())
	m.mu.Unlock()

	fire()
	go m.runAgentCall(ctx, epoch, protocol.PathRespond, body)
}

// GenerateWithCriteria starts a streaming batch generation. Progress,
// result, error, and the worker panel are rebuilt from scratch; answered
// history from a preceding conversation is kept.
func (m *Machine) GenerateWithCriteria(criteria protocol.CriteriaRequest) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	ctx, epoch := m.beginLocked()
	m.resetDerivedLocked(false)
	m.state = StateGenerating
	fire := m.emitLocked(m.snapshotLocked())
	m.mu.Unlock()

	fire()
	go m.runStream(ctx, epoch, criteria)
}

// Retry replays the last StartSession scope. It is valid only in the
// error state; criteria runs are retried by calling GenerateWithCriteria
// again. Anything else is a silent no-op.
func (m *Machine) Retry() {
	m.mu.Lock()
	if m.closed || m.state != StateError || m.lastScope == nil {
		m.mu.Unlock()
		return
	}
	scope := *m.lastScope
	ctx, epoch := m.beginLocked()
	m.resetDerivedLocked(true)
	m.state = StateStarting
	m.lastScope = &scope
	fire := m.emitLocked(m.snapshotLocked())
	m.mu.Unlock()

	fire()
	go m.runAgentCall(ctx, epoch, protocol.PathGenerateQuestion, scope)
}

// Reset cancels any in-flight operation and returns the machine to idle
// with all derived state cleared.
func (m *Machine) Reset() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.supersedeLocked()
	m.resetDerivedLocked(true)
	m.state = StateIdle
	m.lastScope = nil
	fire := m.emitLocked(m.snapshotLocked())
	m.mu.Unlock()

	fire()
}

// Close cancels any outstanding operation and permanently stops the
// machine. It blocks until any callback already running has returned,
// so no callback fires after Close returns and consumers can tear down
// safely without leaking an open stream. Close must not be called from
// inside the OnChange hook.
func (m *Machine) Close() {
	m.mu.Lock()
	m.closed = true
	m.onChange = nil
	m.supersedeLocked()
	m.mu.Unlock()

	m.emits.Wait()
}

// beginLocked supersedes the current operation and opens a new one.
// The returned context is cancelled when a later operation begins, and
// the epoch must still match at apply time for a result to be accepted.
func (m *Machine) beginLocked() (context.Context, uint64) {
	m.supersedeLocked()
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.epoch++
	return ctx, m.epoch
}

// supersedeLocked cancels the in-flight operation, if any.
func (m *Machine) supersedeLocked() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// resetDerivedLocked clears result, error, progress, and the worker
// panel. When history is true the session id, pending question, and
// answered history are cleared as well.
func (m *Machine) resetDerivedLocked(history bool) {
	m.result = nil
	m.err = nil
	m.progress = nil
	m.panel.reset()
	if history {
		m.sessionID = ""
		m.question = nil
		m.answered = nil
	}
}

// failLocked moves the machine into the error state.
func (m *Machine) failLocked(err error) {
	m.state = StateError
	m.err = err
	m.question = nil
	m.progress = nil
	m.result = nil
}

// snapshotLocked builds a defensive copy of the observable state.
func (m *Machine) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:     m.state,
		SessionID: m.sessionID,
		Result:    m.result,
		Err:       m.err,
		Progress:  m.progress,
		Agents:    m.panel.snapshot(),
	}
	if m.question != nil {
		q := *m.question
		snap.Question = &q
	}
	if len(m.answered) > 0 {
		snap.Answered = make([]protocol.QAEntry, len(m.answered))
		copy(snap.Answered, m.answered)
	}
	return snap
}

// emitLocked captures the change hook while the lock is held and
// registers the dispatch so Close can wait for it. The returned
// function invokes the hook and must be called after the lock is
// released.
func (m *Machine) emitLocked(snap Snapshot) func() {
	cb := m.onChange
	if cb == nil {
		return func() {}
	}
	m.emits.Add(1)
	return func() {
		defer m.emits.Done()
		cb(snap)
	}
}
