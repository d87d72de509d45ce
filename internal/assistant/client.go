package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client is a minimal REST client for the external AI backend.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient constructs an AI client.
func NewClient(baseURL, token string) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("assistant: empty base url")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// GatewayError carries an AI backend failure through unchanged.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("assistant: gateway %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("assistant: gateway %d", e.StatusCode)
}

// Ask forwards a question with composed context and returns the answer.
func (c *Client) Ask(ctx context.Context, question, contextText string) (string, error) {
	if question == "" {
		return "", errors.New("assistant: empty question")
	}
	body := map[string]any{
		"question": question,
		"context":  contextText,
	}
	var resp struct {
		Answer string `json:"answer"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/chat", body, &resp); err != nil {
		return "", err
	}
	return resp.Answer, nil
}

// Narrate asks the backend for a narrative over report data.
func (c *Client) Narrate(ctx context.Context, reportType, contextText string) (string, error) {
	if reportType == "" {
		return "", errors.New("assistant: empty report type")
	}
	body := map[string]any{
		"report_type": reportType,
		"context":     contextText,
	}
	var resp struct {
		Narrative string `json:"narrative"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/narrate", body, &resp); err != nil {
		return "", err
	}
	return resp.Narrative, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(payload)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var errResp struct {
			Error  string `json:"error"`
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		msg := errResp.Error
		if msg == "" {
			msg = errResp.Detail
		}
		return &GatewayError{StatusCode: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
