package protocol

import (
	"encoding/json"
	"fmt"
)

// SSE event names emitted by the streaming generation endpoint.
const (
	EventProgress      = "progress"
	EventAgentComplete = "agent_complete"
	EventComplete      = "complete"
	EventError         = "error"
)

// Frame is a decoded SSE frame from the streaming generation endpoint.
// It is a closed set: ProgressFrame, AgentCompleteFrame, CompleteFrame,
// ErrorFrame, or UnknownFrame for event names this client does not know.
// Folding code switches on the concrete type instead of comparing event
// name strings at every site.
type Frame interface {
	frame()
}

// ProgressFrame reports aggregate generation progress. Each frame is a
// complete snapshot; consumers replace prior progress wholesale.
type ProgressFrame struct {
	Batch          int    `json:"batch"`
	Total          int    `json:"total"`
	ControlsDone   int    `json:"controls_done"`
	TotalControls  int    `json:"total_controls"`
	AgentID        *int   `json:"agent_id,omitempty"`
	AgentLabel     string `json:"agent_label,omitempty"`
	AgentsComplete int    `json:"agents_complete"`
	TotalAgents    int    `json:"total_agents"`
}

// AgentCompleteFrame reports that one backend worker finished its bucket.
type AgentCompleteFrame struct {
	AgentID            int    `json:"agent_id"`
	AgentLabel         string `json:"agent_label"`
	ControlsGenerated  int    `json:"controls_generated"`
	QuestionsGenerated int    `json:"questions_generated"`
	Error              string `json:"error,omitempty"`
}

// CompleteFrame carries the final questionnaire.
type CompleteFrame struct {
	Result QuestionnaireComplete
}

// ErrorFrame carries a backend-reported stream failure.
type ErrorFrame struct {
	Message string
}

// UnknownFrame preserves frames with event names this client does not
// recognize, including frames whose data line had no preceding event
// line. Consumers skip these; they are not errors.
type UnknownFrame struct {
	Event string
	Data  json.RawMessage
}

func (ProgressFrame) frame()      {}
func (AgentCompleteFrame) frame() {}
func (CompleteFrame) frame()      {}
func (ErrorFrame) frame()         {}
func (UnknownFrame) frame()       {}

// DecodeFrame turns a raw (event, data) pair into a typed Frame.
// Unrecognized event names decode to UnknownFrame; a recognized event
// with an undecodable payload is a ProtocolError.
func DecodeFrame(event string, data []byte) (Frame, error) {
	switch event {
	case EventProgress:
		var p ProgressFrame
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, &ProtocolError{Detail: fmt.Sprintf("bad progress frame: %v", err)}
		}
		return p, nil

	case EventAgentComplete:
		var a AgentCompleteFrame
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, &ProtocolError{Detail: fmt.Sprintf("bad agent_complete frame: %v", err)}
		}
		return a, nil

	case EventComplete:
		var c QuestionnaireComplete
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, &ProtocolError{Detail: fmt.Sprintf("bad complete frame: %v", err)}
		}
		return CompleteFrame{Result: c}, nil

	case EventError:
		var e struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, &ProtocolError{Detail: fmt.Sprintf("bad error frame: %v", err)}
		}
		if e.Error == "" {
			e.Error = "generation failed"
		}
		return ErrorFrame{Message: e.Error}, nil

	default:
		return UnknownFrame{Event: event, Data: json.RawMessage(data)}, nil
	}
}
