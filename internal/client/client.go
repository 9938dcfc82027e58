package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/horlapookie/supportsite/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var ErrUnauthorized = errors.New("unauthorized")

type verifyResponse struct {
	Authenticated bool   `json:"authenticated"`
	Token         string `json:"token,omitempty"`
	Error         string `json:"error,omitempty"`
}

type createdResponse struct {
	Success bool `json:"success"`
	ID      int  `json:"id"`
}

// Client talks to the support backend on behalf of an administrator. It
// holds the session token issued on a successful passkey verification and
// attaches it to privileged requests. Any 401 drops the held token, so a
// stale session never gets retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      TokenStore
}

func NewClient(baseURL string, store TokenStore) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   10 * time.Second,
		},
		store: store,
	}
}

func (c *Client) IsAuthenticated() bool {
	return c.store.Get() != ""
}

// Verify exchanges the passkey for a session token and stores it on
// success. A rejected passkey returns ok == false and leaves any held
// token untouched.
func (c *Client) Verify(ctx context.Context, passkey string) (ok bool, err error) {
	body, err := json.Marshal(map[string]string{"passkey": passkey})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(
		ctx, "POST", c.baseURL+"/admin/verify", bytes.NewReader(body),
	)
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", pkg.ContentType.JSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("verify request: %w", err)
	}
	defer resp.Body.Close()

	var verifyResp verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&verifyResp); err != nil {
		return false, fmt.Errorf("decode verify response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !verifyResp.Authenticated {
		log.Tracef("verify rejected: %s", verifyResp.Error)
		return false, nil
	}
	if verifyResp.Token == "" {
		return false, errors.New("authenticated but no token in response")
	}

	c.store.Set(verifyResp.Token)
	return true, nil
}

// Upload publishes new admin content. Returns the created upload id.
func (c *Client) Upload(ctx context.Context, uploadType, title, url, description string) (int, error) {
	body, err := json.Marshal(map[string]string{
		"type":        uploadType,
		"title":       title,
		"url":         url,
		"description": description,
	})
	if err != nil {
		return 0, err
	}

	respBody, err := c.doAuthorized(ctx, "POST", "/admin/upload", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}

	var created createdResponse
	if err := json.Unmarshal(respBody, &created); err != nil {
		return 0, fmt.Errorf("decode upload response: %w", err)
	}
	return created.ID, nil
}

// ResolveComplaint marks the given complaint resolved.
func (c *Client) ResolveComplaint(ctx context.Context, id int) error {
	_, err := c.doAuthorized(ctx, "PATCH", fmt.Sprintf("/complaints/%d/resolve", id), nil)
	return err
}

func (c *Client) doAuthorized(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", pkg.ContentType.JSON)

	// no held token means the request goes out bare and the server answers
	// with a 401, same as with a stale token
	if token := c.store.Get(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// session over, expired or revoked - drop the token and make the
		// caller verify again
		log.Tracef("%s %s unauthorized, clearing held token", method, path)
		c.store.Clear()
		return nil, ErrUnauthorized
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, respBody)
	}

	return respBody, nil
}
