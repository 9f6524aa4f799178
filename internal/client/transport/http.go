package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/levelquest/sessiongate/internal/client/flow"
	"github.com/levelquest/sessiongate/internal/client/models"
	"github.com/levelquest/sessiongate/internal/common"
	"github.com/levelquest/sessiongate/internal/logging"
)

const defaultRequestTimeout = 12 * time.Second

// HTTPClient talks JSON to the auth backend.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	log     logging.Logger
}

// NewHTTPClient builds a client for the given base URL (e.g.
// "https://api.levelquest.io/api"). A trailing slash is tolerated.
func NewHTTPClient(baseURL string, timeout time.Duration, log logging.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// errorBody is the shape of non-2xx payloads.
type errorBody struct {
	Message         string `json:"message"`
	Error           string `json:"error"`
	PendingApproval bool   `json:"pendingApproval"`
}

func (b errorBody) text() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}

// do performs one JSON round-trip. body and out may be nil. The returned
// error follows the shared taxonomy; out is only populated on 2xx.
func (c *HTTPClient) do(ctx context.Context, method, path, accessToken string, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s %s request: %w", method, path, err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if accessToken != "" {
		req.Header.Set(common.AuthHeaderName, common.AuthSchemePrefix+accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			// Drain so the connection can be reused.
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
		}
		return nil

	case resp.StatusCode == http.StatusUnauthorized:
		return common.ErrUnauthorized

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		if eb.PendingApproval {
			return &PendingApprovalError{Message: eb.text()}
		}
		msg := eb.text()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &ValidationError{StatusCode: resp.StatusCode, Message: msg}

	default:
		c.log.Warn(ctx, "server error", "method", method, "path", path, "status", resp.StatusCode)
		return fmt.Errorf("%w: status %d", common.ErrUnavailable, resp.StatusCode)
	}
}

func (c *HTTPClient) Login(ctx context.Context, email, password string, rememberMe bool) (*AuthResponse, error) {
	req := struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		RememberMe bool   `json:"rememberMe"`
	}{Email: email, Password: password, RememberMe: rememberMe}

	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", req, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" || resp.User == nil {
		return nil, fmt.Errorf("login response missing token or user")
	}
	return &resp, nil
}

// Register creates an account. Immediate-approval deployments answer with a
// full AuthResponse; approval-gated ones answer with pendingApproval, which
// surfaces as *PendingApprovalError.
func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp struct {
		AuthResponse
		PendingApproval bool   `json:"pendingApproval"`
		Message         string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", req, &resp); err != nil {
		return nil, err
	}
	// Some deployments answer 200 with the pending flag instead of 4xx.
	if resp.PendingApproval {
		return nil, &PendingApprovalError{Message: resp.Message}
	}
	if resp.Token == "" || resp.User == nil {
		return nil, fmt.Errorf("register response missing token or user")
	}
	return &resp.AuthResponse, nil
}

func (c *HTTPClient) Me(ctx context.Context, accessToken string) (*models.User, error) {
	var resp struct {
		Success *bool        `json:"success,omitempty"`
		User    *models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", accessToken, nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("me response missing user")
	}
	return resp.User, nil
}

func (c *HTTPClient) Refresh(ctx context.Context, accessToken, refreshToken string) (string, error) {
	req := struct {
		RefreshToken string `json:"refreshToken"`
	}{RefreshToken: refreshToken}

	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", accessToken, req, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("refresh response missing token")
	}
	return resp.Token, nil
}

func (c *HTTPClient) AcceptPolicy(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/accept-policy", accessToken, nil, nil)
}

func (c *HTTPClient) SelectMode(ctx context.Context, accessToken string, mode models.Mode) error {
	req := struct {
		Mode models.Mode `json:"mode"`
	}{Mode: mode}
	return c.do(ctx, http.MethodPost, "/auth/select-mode", accessToken, req, nil)
}

func (c *HTTPClient) FlowStatus(ctx context.Context, accessToken string) (flow.Status, error) {
	var resp struct {
		FlowStatus *flow.Status `json:"flowStatus"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/flow-status", accessToken, nil, &resp); err != nil {
		return flow.Status{}, err
	}
	if resp.FlowStatus == nil {
		return flow.Status{}, fmt.Errorf("flow-status response missing flowStatus")
	}
	return *resp.FlowStatus, nil
}

func (c *HTTPClient) CompleteAvatarSetup(ctx context.Context, accessToken, avatarURL string) error {
	req := struct {
		AvatarURL string `json:"avatarUrl"`
	}{AvatarURL: avatarURL}
	return c.do(ctx, http.MethodPost, "/avatar/complete-setup", accessToken, req, nil)
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, accessToken string, patch ProfilePatch) error {
	return c.do(ctx, http.MethodPut, "/auth/profile", accessToken, patch, nil)
}
