// Package client talks to the quest JSON API the way the browser page does:
// same routes, same headers, same anti-forgery token handling.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/quests/internal/model"
)

const tokenHeader = "X-CSRF-Token"

var (
	// ErrTransport wraps failures to reach the server at all.
	ErrTransport = errors.New("transport failure")
	// ErrNotOK reports a 2xx toggle response without {"status":"ok"}.
	ErrNotOK = errors.New("server did not acknowledge the change")
)

// HTTPError is a non-2xx response that is not a validation failure.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http status %d", e.Status)
	}
	return fmt.Sprintf("http status %d: %s", e.Status, e.Message)
}

// ValidationError carries field messages from a 422 create or update.
type ValidationError struct {
	Fields model.ValidationErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d error(s)", e.Fields.Count())
}

// QuestForm is the creation dialog's form data.
type QuestForm struct {
	Name        string
	Description string
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is safe for concurrent use. It keeps the session cookie in a jar
// and remembers the latest anti-forgery token the server handed out.
type Client struct {
	base       *url.URL
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	return &Client{
		base: base,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Jar:     jar,
		},
	}, nil
}

// Token returns the most recent anti-forgery token seen from the server.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) url(path string) string {
	return c.base.String() + path
}

func questPath(id int64) string {
	return "/quests/" + strconv.FormatInt(id, 10)
}

// List fetches all quests, newest first. It also primes the session and
// token for later writes.
func (c *Client) List(ctx context.Context) ([]model.Quest, error) {
	var quests []model.Quest
	if err := c.getJSON(ctx, "/quests", &quests); err != nil {
		return nil, err
	}
	return quests, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*model.Quest, error) {
	var q model.Quest
	if err := c.getJSON(ctx, questPath(id), &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// Create posts form data to /quests. A 422 comes back as *ValidationError.
func (c *Client) Create(ctx context.Context, token string, form QuestForm) (*model.Quest, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("quest[name]", form.Name)
	mw.WriteField("quest[description]", form.Description)
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("encode form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/quests", &body, token)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeFailure(resp)
	}
	var q model.Quest
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		return nil, fmt.Errorf("decode quest: %w", err)
	}
	return &q, nil
}

type statusBody struct {
	Quest struct {
		Status bool `json:"status"`
	} `json:"quest"`
}

// SetStatus sends the completion flag and expects {"status":"ok"} back.
func (c *Client) SetStatus(ctx context.Context, token string, id int64, status bool) error {
	var payload statusBody
	payload.Quest.Status = status
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode status: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPatch, questPath(id), bytes.NewReader(data), token)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeFailure(resp)
	}
	var ack struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil || ack.Status != "ok" {
		return ErrNotOK
	}
	return nil
}

// Delete removes a quest. Any 2xx is success.
func (c *Client) Delete(ctx context.Context, token string, id int64) error {
	req, err := c.newRequest(ctx, http.MethodDelete, questPath(id), nil, token)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{Status: resp.StatusCode}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeFailure(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, token string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if method != http.MethodGet {
		if token == "" {
			token = c.Token()
		}
		req.Header.Set(tokenHeader, token)
	}
	return req, nil
}

// do sends the request and records any token the server returns.
// Cancellation stays detectable with errors.Is(err, context.Canceled).
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if t := resp.Header.Get(tokenHeader); t != "" {
		c.mu.Lock()
		c.token = t
		c.mu.Unlock()
	}
	return resp, nil
}

// decodeFailure turns a non-2xx response into *ValidationError when it
// carries field messages, otherwise *HTTPError.
func decodeFailure(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode == http.StatusUnprocessableEntity {
		var fields model.ValidationErrors
		if err := json.Unmarshal(data, &fields); err == nil && !fields.Empty() {
			return &ValidationError{Fields: fields}
		}
	}

	var body struct {
		Error string `json:"error"`
	}
	json.Unmarshal(data, &body)
	return &HTTPError{Status: resp.StatusCode, Message: body.Error}
}
