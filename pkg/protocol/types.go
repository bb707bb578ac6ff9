// Package protocol defines the wire types exchanged with the questionnaire
// generation backend: request bodies, the tagged response union of the
// conversational endpoints, the SSE frame payloads of the streaming
// endpoint, and the typed errors surfaced by the client.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Maturity level values accepted by the backend's criteria endpoints.
const (
	MaturityFirstAssessment     = "first_assessment"
	MaturityEarlyStage          = "early_stage"
	MaturityDeveloping          = "developing"
	MaturityRecurringAssessment = "recurring_assessment"
	MaturityMature              = "mature"
)

// Question depth values accepted by the backend's criteria endpoints.
const (
	DepthHighLevelOverview = "high_level_overview"
	DepthBalanced          = "balanced"
	DepthDetailedTechnical = "detailed_technical"
)

// MaturityLevels lists the valid maturity_level values in backend order.
func MaturityLevels() []string {
	return []string{
		MaturityFirstAssessment,
		MaturityEarlyStage,
		MaturityDeveloping,
		MaturityRecurringAssessment,
		MaturityMature,
	}
}

// QuestionDepths lists the valid question_depth values in backend order.
func QuestionDepths() []string {
	return []string{
		DepthHighLevelOverview,
		DepthBalanced,
		DepthDetailedTechnical,
	}
}

// GenerateQuestionRequest starts a conversational questionnaire session.
type GenerateQuestionRequest struct {
	ProjectID    string `json:"project_id"`
	AssessmentID string `json:"assessment_id,omitempty"`
}

// RespondRequest continues a session by answering the agent's question.
type RespondRequest struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

// CriteriaRequest holds structured criteria for batch generation.
// PriorityDomains is always serialized, even when empty, because the
// backend schema marks the field required.
type CriteriaRequest struct {
	ProjectID           string   `json:"project_id"`
	AssessmentID        string   `json:"assessment_id,omitempty"`
	MaturityLevel       string   `json:"maturity_level"`
	QuestionDepth       string   `json:"question_depth"`
	PriorityDomains     []string `json:"priority_domains"`
	ComplianceConcerns  string   `json:"compliance_concerns,omitempty"`
	ControlsToSkip      string   `json:"controls_to_skip,omitempty"`
	QuestionsPerControl int      `json:"questions_per_control,omitempty"`
}

// AgentQuestion is one pending question from the conversational agent.
type AgentQuestion struct {
	SessionID string   `json:"session_id"`
	Question  string   `json:"question"`
	Context   string   `json:"context,omitempty"`
	Options   []string `json:"options,omitempty"`
}

// QAEntry records one answered question. Entries are append-only; a
// session's history is never mutated after the answer is submitted.
type QAEntry struct {
	Question string   `json:"question"`
	Context  string   `json:"context,omitempty"`
	Options  []string `json:"options,omitempty"`
	Answer   string   `json:"answer"`
}

// GeneratedQuestion is a single generated compliance question.
type GeneratedQuestion struct {
	ID               string `json:"id"`
	Question         string `json:"question"`
	Category         string `json:"category"`
	Priority         string `json:"priority"`
	ExpectedEvidence string `json:"expected_evidence,omitempty"`
	GuidanceNotes    string `json:"guidance_notes,omitempty"`
}

// ControlQuestions groups the questions generated for one framework control.
type ControlQuestions struct {
	ControlID    string              `json:"control_id"`
	ControlTitle string              `json:"control_title"`
	Framework    string              `json:"framework"`
	Questions    []GeneratedQuestion `json:"questions"`
}

// QuestionnaireComplete is the terminal payload of a generation session.
type QuestionnaireComplete struct {
	SessionID        string             `json:"session_id"`
	Controls         []ControlQuestions `json:"controls"`
	TotalControls    int                `json:"total_controls"`
	TotalQuestions   int                `json:"total_questions"`
	GenerationTimeMs int64              `json:"generation_time_ms"`
	CriteriaSummary  string             `json:"criteria_summary,omitempty"`
}

// GenerationRedirect is returned when the conversational agent has
// gathered enough criteria and hands off to batch generation. The client
// re-issues the gathered criteria against the streaming endpoint.
type GenerationRedirect struct {
	SessionID string          `json:"session_id"`
	Criteria  CriteriaRequest `json:"criteria"`
}

// Backend endpoint paths.
const (
	PathGenerateQuestion = "/questionnaire/generate-question"
	PathRespond          = "/questionnaire/respond"
	PathCriteriaStream   = "/questionnaire/generate-with-criteria-stream"
	PathSessions         = "/questionnaire/sessions"
)

// SessionSummary is one row of the backend's session-listing endpoint.
type SessionSummary struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	TotalQuestions int    `json:"total_questions"`
	TotalControls  int    `json:"total_controls"`
	CreatedAt      string `json:"created_at"`
	AssessmentID   string `json:"assessment_id,omitempty"`
}

// SessionDetail is the backend's full session row, as returned by the
// session-detail endpoint. GeneratedQuestions mirrors the stored
// controls JSON; AgentCriteria carries the human-readable summary.
type SessionDetail struct {
	ID                 string             `json:"id"`
	ProjectID          string             `json:"project_id"`
	AssessmentID       string             `json:"assessment_id,omitempty"`
	Status             string             `json:"status"`
	GeneratedQuestions []ControlQuestions `json:"generated_questions"`
	TotalControls      int                `json:"total_controls"`
	TotalQuestions     int                `json:"total_questions"`
	GenerationTimeMs   int64              `json:"generation_time_ms"`
	CreatedAt          string             `json:"created_at,omitempty"`
	CompletedAt        string             `json:"completed_at,omitempty"`
	AgentCriteria      *AgentCriteria     `json:"agent_criteria,omitempty"`
}

// AgentCriteria is the stored criteria summary of a session row.
type AgentCriteria struct {
	Summary string `json:"summary,omitempty"`
}

// Response type tags used by the conversational endpoints.
const (
	TypeQuestion           = "question"
	TypeComplete           = "complete"
	TypeGenerationRedirect = "generation_redirect"
)

// AgentResponse is the decoded union of the conversational endpoints.
// Exactly one of Question, Complete, Redirect is non-nil.
type AgentResponse struct {
	SessionID string
	Question  *AgentQuestion
	Complete  *QuestionnaireComplete
	Redirect  *GenerationRedirect
}

// DecodeAgentResponse decodes a conversational endpoint response body,
// dispatching on its "type" tag. A body whose tag is missing or unknown
// yields a ProtocolError rather than a silently empty response, so a
// malformed backend reply cannot leave the caller stuck.
func DecodeAgentResponse(data []byte) (*AgentResponse, error) {
	var tag struct {
		Type      string `json:"type"`
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, &ProtocolError{Detail: fmt.Sprintf("undecodable response: %v", err)}
	}

	switch tag.Type {
	case TypeQuestion:
		var q AgentQuestion
		if err := json.Unmarshal(data, &q); err != nil {
			return nil, &ProtocolError{Detail: fmt.Sprintf("bad question payload: %v", err)}
		}
		return &AgentResponse{SessionID: q.SessionID, Question: &q}, nil

	case TypeComplete:
		var c QuestionnaireComplete
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, &ProtocolError{Detail: fmt.Sprintf("bad complete payload: %v", err)}
		}
		return &AgentResponse{SessionID: c.SessionID, Complete: &c}, nil

	case TypeGenerationRedirect:
		var r GenerationRedirect
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, &ProtocolError{Detail: fmt.Sprintf("bad redirect payload: %v", err)}
		}
		return &AgentResponse{SessionID: r.SessionID, Redirect: &r}, nil

	default:
		return nil, &ProtocolError{Detail: fmt.Sprintf("unknown response type %q", tag.Type)}
	}
}
