package protocol_test

import (
	"errors"
	"testing"

	"qgen/pkg/protocol"
)

func TestDecodeFrame(t *testing.T) {
	t.Run("progress", func(t *testing.T) {
		data := []byte(`{"batch":2,"total":4,"controls_done":10,"total_controls":40,"agent_id":1,"agent_label":"Agent 2","agents_complete":2,"total_agents":4}`)
		frame, err := protocol.DecodeFrame(protocol.EventProgress, data)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		p, ok := frame.(protocol.ProgressFrame)
		if !ok {
			t.Fatalf("expected ProgressFrame, got %T", frame)
		}
		if p.Batch != 2 || p.Total != 4 || p.ControlsDone != 10 || p.TotalControls != 40 {
			t.Errorf("unexpected progress fields: %+v", p)
		}
		if p.AgentID == nil || *p.AgentID != 1 {
			t.Errorf("expected agent_id 1, got %v", p.AgentID)
		}
		if p.AgentLabel != "Agent 2" {
			t.Errorf("expected agent label, got %q", p.AgentLabel)
		}
		if p.AgentsComplete != 2 || p.TotalAgents != 4 {
			t.Errorf("unexpected agent counts: %+v", p)
		}
	})

	t.Run("progress without agent_id", func(t *testing.T) {
		frame, err := protocol.DecodeFrame(protocol.EventProgress, []byte(`{"batch":0,"total":4}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p := frame.(protocol.ProgressFrame); p.AgentID != nil {
			t.Errorf("expected nil agent_id, got %d", *p.AgentID)
		}
	})

	t.Run("agent_complete", func(t *testing.T) {
		data := []byte(`{"agent_id":3,"agent_label":"Agent 4","controls_generated":12,"questions_generated":36}`)
		frame, err := protocol.DecodeFrame(protocol.EventAgentComplete, data)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		a, ok := frame.(protocol.AgentCompleteFrame)
		if !ok {
			t.Fatalf("expected AgentCompleteFrame, got %T", frame)
		}
		if a.AgentID != 3 || a.AgentLabel != "Agent 4" {
			t.Errorf("unexpected identity: %+v", a)
		}
		if a.ControlsGenerated != 12 || a.QuestionsGenerated != 36 {
			t.Errorf("unexpected counts: %+v", a)
		}
	})

	t.Run("complete", func(t *testing.T) {
		data := []byte(`{"session_id":"s1","controls":[],"total_controls":0,"total_questions":5,"generation_time_ms":1234}`)
		frame, err := protocol.DecodeFrame(protocol.EventComplete, data)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		c, ok := frame.(protocol.CompleteFrame)
		if !ok {
			t.Fatalf("expected CompleteFrame, got %T", frame)
		}
		if c.Result.SessionID != "s1" || c.Result.TotalQuestions != 5 {
			t.Errorf("unexpected result: %+v", c.Result)
		}
	})

	t.Run("error with message", func(t *testing.T) {
		frame, err := protocol.DecodeFrame(protocol.EventError, []byte(`{"error":"Agent processing timed out"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		e := frame.(protocol.ErrorFrame)
		if e.Message != "Agent processing timed out" {
			t.Errorf("unexpected message %q", e.Message)
		}
	})

	t.Run("error without message falls back", func(t *testing.T) {
		frame, err := protocol.DecodeFrame(protocol.EventError, []byte(`{}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if e := frame.(protocol.ErrorFrame); e.Message == "" {
			t.Error("expected fallback message, got empty")
		}
	})

	t.Run("unknown event name", func(t *testing.T) {
		frame, err := protocol.DecodeFrame("heartbeat", []byte(`{"ts":1}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		u, ok := frame.(protocol.UnknownFrame)
		if !ok {
			t.Fatalf("expected UnknownFrame, got %T", frame)
		}
		if u.Event != "heartbeat" {
			t.Errorf("expected event heartbeat, got %q", u.Event)
		}
	})

	t.Run("empty event name", func(t *testing.T) {
		frame, err := protocol.DecodeFrame("", []byte(`{}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := frame.(protocol.UnknownFrame); !ok {
			t.Fatalf("expected UnknownFrame, got %T", frame)
		}
	})

	t.Run("known event with bad payload", func(t *testing.T) {
		_, err := protocol.DecodeFrame(protocol.EventProgress, []byte(`not json`))
		var perr *protocol.ProtocolError
		if !errors.As(err, &perr) {
			t.Fatalf("expected ProtocolError, got %v", err)
		}
	})
}
