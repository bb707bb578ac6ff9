package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"qgen/pkg/generator"
	"qgen/pkg/protocol"
)

// streamTransport serves a canned SSE body for the criteria endpoint.
type streamTransport struct {
	body string
}

func (s streamTransport) PostRaw(ctx context.Context, path string, body any) ([]byte, error) {
	return nil, io.ErrUnexpectedEOF
}

func (s streamTransport) PostStream(ctx context.Context, path string, body any) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(s.body)), nil
}

func TestRunRobot_EmitsStateLines(t *testing.T) {
	transport := streamTransport{body: "event: progress\n" +
		`data: {"batch":0,"total":1,"controls_done":0,"total_controls":2,"agents_complete":0,"total_agents":1}` + "\n" +
		"event: agent_complete\n" +
		`data: {"agent_id":0,"agent_label":"Agent 1","controls_generated":2,"questions_generated":6}` + "\n" +
		"event: complete\n" +
		`data: {"session_id":"rb-1","controls":[],"total_controls":2,"total_questions":6,"generation_time_ms":80}` + "\n"}

	m := generator.New(transport)
	defer m.Close()

	var buf bytes.Buffer
	err := runRobot(context.Background(), m, protocol.CriteriaRequest{ProjectID: "p1"}, &buf)
	if err != nil {
		t.Fatalf("runRobot: %v", err)
	}

	var lines []robotSnapshot
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var snap robotSnapshot
		if err := json.Unmarshal(scanner.Bytes(), &snap); err != nil {
			t.Fatalf("bad JSON line %q: %v", scanner.Text(), err)
		}
		lines = append(lines, snap)
	}

	if len(lines) < 2 {
		t.Fatalf("expected several state lines, got %d", len(lines))
	}
	last := lines[len(lines)-1]
	if last.State != string(generator.StateComplete) {
		t.Errorf("expected final complete line, got %+v", last)
	}
	if last.Result == nil || last.Result.SessionID != "rb-1" {
		t.Errorf("expected result in final line, got %+v", last.Result)
	}

	var sawAgents bool
	for _, line := range lines {
		for _, a := range line.Agents {
			if a.Label == "Agent 1" && a.Status == string(generator.AgentComplete) {
				sawAgents = true
			}
		}
	}
	if !sawAgents {
		t.Error("expected a line reporting the completed worker")
	}
}

func TestRunRobot_SurfacesStreamError(t *testing.T) {
	transport := streamTransport{body: "event: error\n" +
		`data: {"error":"quota exhausted"}` + "\n"}

	m := generator.New(transport)
	defer m.Close()

	var buf bytes.Buffer
	err := runRobot(context.Background(), m, protocol.CriteriaRequest{ProjectID: "p1"}, &buf)
	if err == nil || !strings.Contains(err.Error(), "quota exhausted") {
		t.Fatalf("expected stream error, got %v", err)
	}
	if !strings.Contains(buf.String(), `"state":"error"`) {
		t.Errorf("expected error line in output, got:\n%s", buf.String())
	}
}
