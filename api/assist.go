package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// The companion deployment serves the login-gated micro tools: a
// condition-aware chat plus task breakdown, text simplification and
// time estimation. Only the client surface lives here; its screens
// are a separate frontend.

// Login exchanges credentials for an access token via the OAuth2
// password form at POST /api/login. On success the token is stored in
// the injected AuthContext, if any.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/login", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeError(resp)
	}

	var token TokenResponse
	if err := decodeJSON(resp, &token); err != nil {
		return nil, err
	}
	if c.auth != nil {
		c.auth.SetToken(token.AccessToken, token.Username)
	}
	return &token, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, username, password string) error {
	body := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{username, password}
	return c.postJSON(ctx, "/api/register", body, nil)
}

// Logout drops the stored credentials. Purely client-side; the token
// simply expires server-side.
func (c *Client) Logout() {
	if c.auth != nil {
		c.auth.Clear()
	}
}

// AssistChat asks the companion chat one question. conditionContext
// flavors the answer ("general", "adhd", "dyslexia", "autism").
func (c *Client) AssistChat(ctx context.Context, query, conditionContext string) (string, error) {
	if conditionContext == "" {
		conditionContext = "general"
	}
	body := struct {
		Query            string `json:"query"`
		ConditionContext string `json:"condition_context"`
	}{query, conditionContext}

	var out struct {
		Response string `json:"response"`
	}
	if err := c.postJSON(ctx, "/api/chat", body, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

// BreakdownTask splits a task description into small actionable steps.
func (c *Client) BreakdownTask(ctx context.Context, task string) ([]string, error) {
	body := struct {
		TaskDescription string `json:"task_description"`
	}{task}

	var out struct {
		Steps []string `json:"steps"`
	}
	if err := c.postJSON(ctx, "/api/breakdown-task", body, &out); err != nil {
		return nil, err
	}
	return out.Steps, nil
}

// SimplifyText rewrites text for easier reading.
func (c *Client) SimplifyText(ctx context.Context, text string) (string, error) {
	body := struct {
		Text string `json:"text"`
	}{text}

	var out struct {
		SimplifiedText string `json:"simplified_text"`
	}
	if err := c.postJSON(ctx, "/api/simplify-text", body, &out); err != nil {
		return "", err
	}
	return out.SimplifiedText, nil
}

// EstimateTime returns a realistic time estimate for a task.
func (c *Client) EstimateTime(ctx context.Context, task string) (string, error) {
	body := struct {
		TaskDescription string `json:"task_description"`
	}{task}

	var out struct {
		Estimation string `json:"estimation"`
	}
	if err := c.postJSON(ctx, "/api/time-estimator", body, &out); err != nil {
		return "", err
	}
	return out.Estimation, nil
}
