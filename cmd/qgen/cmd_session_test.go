package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"qgen/pkg/protocol"
)

func TestSessionCmd_InterviewToCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case protocol.PathGenerateQuestion:
			var req protocol.GenerateQuestionRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProjectID != "p1" {
				t.Errorf("unexpected start request: %+v (%v)", req, err)
			}
			w.Write([]byte(`{"type":"question","session_id":"conv-1","question":"How mature is your program?","options":["First assessment","Mature"]}`))

		case protocol.PathRespond:
			var req protocol.RespondRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode respond: %v", err)
			}
			if req.SessionID != "conv-1" || req.Answer != "First assessment" {
				t.Errorf("unexpected respond body: %+v", req)
			}
			w.Write([]byte(`{"type":"complete","session_id":"conv-1","controls":[],"total_controls":0,"total_questions":6,"generation_time_ms":300}`))

		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	t.Setenv("QGEN_HOME", t.TempDir())
	t.Setenv("QGEN_CONFIG_PATH", "")
	t.Setenv("QGEN_CACHE_DB", "")
	t.Setenv("QGEN_BACKEND_URL", srv.URL)
	t.Setenv("QGEN_TOKEN", "test-token")

	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	// Answering with the option number selects from the list.
	root.SetIn(strings.NewReader("1\n"))
	root.SetArgs([]string{"session", "--project", "p1"})

	if err := root.Execute(); err != nil {
		t.Fatalf("session failed: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "How mature is your program?") {
		t.Errorf("expected question printed, got:\n%s", got)
	}
	if !strings.Contains(got, "1) First assessment") {
		t.Errorf("expected options printed, got:\n%s", got)
	}
	if !strings.Contains(got, "session conv-1: 6 questions") {
		t.Errorf("expected summary, got:\n%s", got)
	}
}

func TestSessionCmd_RedirectsToStreaming(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case protocol.PathGenerateQuestion:
			w.Write([]byte(`{"type":"question","session_id":"conv-2","question":"Ready?"}`))
		case protocol.PathRespond:
			w.Write([]byte(`{"type":"generation_redirect","session_id":"conv-2","criteria":{"project_id":"p1","maturity_level":"developing","question_depth":"balanced","priority_domains":[]}}`))
		case protocol.PathCriteriaStream:
			w.Header().Set("Content-Type", "text/event-stream")
			w.Write([]byte("event: complete\n" +
				`data: {"session_id":"conv-2","controls":[],"total_controls":1,"total_questions":3,"generation_time_ms":150}` + "\n"))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	t.Setenv("QGEN_HOME", t.TempDir())
	t.Setenv("QGEN_CONFIG_PATH", "")
	t.Setenv("QGEN_CACHE_DB", "")
	t.Setenv("QGEN_BACKEND_URL", srv.URL)
	t.Setenv("QGEN_TOKEN", "test-token")

	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetIn(strings.NewReader("yes\n"))
	root.SetArgs([]string{"session", "--project", "p1"})

	if err := root.Execute(); err != nil {
		t.Fatalf("session failed: %v", err)
	}
	if !strings.Contains(buf.String(), "session conv-2: 3 questions") {
		t.Errorf("expected summary after redirect, got:\n%s", buf.String())
	}
}

func TestSessionCmd_RequiresProject(t *testing.T) {
	t.Setenv("QGEN_HOME", t.TempDir())
	t.Setenv("QGEN_CONFIG_PATH", "")

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"session"})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "--project") {
		t.Fatalf("expected missing-project error, got %v", err)
	}
}
