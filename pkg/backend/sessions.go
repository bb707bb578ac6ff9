package backend

import (
	"context"
	"fmt"
	"net/url"

	"qgen/pkg/protocol"
)

// ListSessions fetches the questionnaire sessions recorded for a project,
// optionally filtered by assessment. Plain REST read; session resumption
// is not part of the generation state machine.
func (c *Client) ListSessions(ctx context.Context, projectID, assessmentID string) ([]protocol.SessionSummary, error) {
	q := url.Values{}
	q.Set("project_id", projectID)
	if assessmentID != "" {
		q.Set("assessment_id", assessmentID)
	}

	var sessions []protocol.SessionSummary
	if err := c.Get(ctx, protocol.PathSessions+"?"+q.Encode(), &sessions); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// GetSession fetches one full session row, including generated questions.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*protocol.SessionDetail, error) {
	var detail protocol.SessionDetail
	path := protocol.PathSessions + "/" + url.PathEscape(sessionID)
	if err := c.Get(ctx, path, &detail); err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	return &detail, nil
}
