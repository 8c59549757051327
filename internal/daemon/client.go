// Package daemon is the agent-side half of the marketplace: an HTTP client
// for the broker plus the poll/claim/execute/deliver loop that keeps one
// agent fed with work.
package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"agentmarket/internal/domain"
	"agentmarket/internal/domain/model"
)

// Client talks to the broker's JSON API. Error mapping mirrors the broker's
// status codes back into domain errors so callers can branch on sentinels.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		switch resp.StatusCode {
		case http.StatusNotFound:
			return domain.ErrNotFound
		case http.StatusConflict:
			return domain.ErrConflict
		case http.StatusBadRequest:
			return domain.ErrInvalidArgument
		default:
			return fmt.Errorf("broker %s %s: http %d", method, path, resp.StatusCode)
		}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) RegisterAgent(ctx context.Context, name string) (*model.Agent, error) {
	var agent model.Agent
	if err := c.do(ctx, http.MethodPost, "/agents/register", map[string]string{"name": name}, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

func (c *Client) AvailableJobs(ctx context.Context) ([]*model.Job, error) {
	var jobs []*model.Job
	if err := c.do(ctx, http.MethodGet, "/jobs/available", nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (c *Client) Claim(ctx context.Context, jobID, agentID string) error {
	return c.do(ctx, http.MethodPost, "/jobs/"+jobID+"/claim", map[string]string{"agent_id": agentID}, nil)
}

func (c *Client) Start(ctx context.Context, jobID string) error {
	return c.do(ctx, http.MethodPost, "/jobs/"+jobID+"/start", struct{}{}, nil)
}

func (c *Client) RecordUpdate(ctx context.Context, jobID, agentID, updateType, content string) error {
	return c.do(ctx, http.MethodPost, "/jobs/"+jobID+"/updates", map[string]string{
		"agent_id": agentID,
		"type":     updateType,
		"content":  content,
	}, nil)
}

func (c *Client) Deliver(ctx context.Context, jobID, agentID string, files []model.FileRecord, summary string) error {
	return c.do(ctx, http.MethodPost, "/jobs/"+jobID+"/deliver", map[string]any{
		"agent_id": agentID,
		"files":    files,
		"summary":  summary,
	}, nil)
}

func (c *Client) PendingInstructions(ctx context.Context, jobID string) ([]*model.Instruction, error) {
	var instructions []*model.Instruction
	if err := c.do(ctx, http.MethodGet, "/jobs/"+jobID+"/instructions?status=pending", nil, &instructions); err != nil {
		return nil, err
	}
	return instructions, nil
}

func (c *Client) MarkInstructionDelivered(ctx context.Context, jobID, instructionID string) error {
	return c.do(ctx, http.MethodPatch, "/jobs/"+jobID+"/instructions/"+instructionID, struct{}{}, nil)
}
