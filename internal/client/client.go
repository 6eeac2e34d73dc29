package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"Yui-Editor/studio/internal/config"
	"Yui-Editor/studio/internal/interfaces"
)

// Envelope status codes used by the backend
const (
	StatusFail = 0
	StatusOK   = 1
)

// Endpoint names, relative to the base URL
const (
	endpointInitProject   = "init_project"
	endpointListProjects  = "list_projects"
	endpointRemoveProject = "remove_project"
	endpointRemoveByID    = "remove_project_by_id"
	endpointGetResources  = "get_res"
	endpointUpload        = "upload"
	endpointUploadFiles   = "upload_files"
	endpointRemoveRes     = "remove_res"
	endpointRenameRes     = "rename_res"
	endpointGetChapters   = "engine/get_chapters"
	endpointAddChapter    = "engine/add_chapter"
	endpointRemoveChapter = "engine/remove_chapter"
	endpointGetFrameIDs   = "engine/get_frame_ids"
	endpointGetFrameNames = "engine/get_frame_names"
	endpointAppendFrame   = "engine/append_frame"
	endpointRemoveFrame   = "engine/remove_frame"
	endpointGetFrame      = "engine/get_frame"
	endpointModifyFrame   = "engine/modify_frame"
	endpointCommit        = "engine/commit"
	endpointMeta          = "engine/meta"
	endpointGetStruct     = "engine/get_struct"
)

// Client talks to the authoring backend. It holds no per-call state and is
// safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *log.Logger
}

var _ interfaces.StoryClient = (*Client)(nil)

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets where failures are logged
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client for the backend at cfg.BaseURL
func New(cfg config.ClientConfig, opts ...Option) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = config.DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:   base,
		userAgent: cfg.UserAgent,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized base address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// envelope is the response shape shared by every endpoint
type envelope struct {
	Status  int             `json:"status"`
	Msg     string          `json:"msg"`
	Content json.RawMessage `json:"content"`
}

// request describes one round trip
type request struct {
	op          string
	method      string
	endpoint    string
	params      Params
	body        io.Reader
	contentType string
}

// do performs the request and decodes the envelope
func (c *Client) do(ctx context.Context, r request) (*envelope, error) {
	url, err := BuildURL(c.baseURL, r.endpoint, r.params)
	if err != nil {
		return nil, err
	}

	method := r.method
	if method == "" {
		method = http.MethodPost
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, r.body)
	if err != nil {
		return nil, &NetworkError{Op: r.op, URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	if r.contentType != "" {
		httpReq.Header.Set("Content-Type", r.contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Op: r.op, URL: url, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: r.op, URL: url, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServerError{Op: r.op, HTTPStatus: resp.StatusCode, Msg: strings.TrimSpace(string(data))}
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &NetworkError{Op: r.op, URL: url, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return &env, nil
}

// content performs the request, requires a successful status and decodes
// the content field into out
func (c *Client) content(ctx context.Context, r request, out any) error {
	env, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	if env.Status != StatusOK {
		return &ServerError{Op: r.op, Status: env.Status, Msg: env.Msg}
	}
	if len(env.Content) == 0 || string(env.Content) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Content, out); err != nil {
		return &NetworkError{Op: r.op, URL: r.endpoint, Err: fmt.Errorf("failed to decode content: %w", err)}
	}
	return nil
}

// status performs the request and maps the envelope status to a bool
func (c *Client) status(ctx context.Context, r request) (bool, error) {
	env, err := c.do(ctx, r)
	if err != nil {
		return false, err
	}
	if env.Status != StatusOK {
		return false, &ServerError{Op: r.op, Status: env.Status, Msg: env.Msg}
	}
	return true, nil
}

// fail logs err and hands it back
func (c *Client) fail(op string, err error) error {
	c.logger.Printf("[Client] %s failed: %v", op, err)
	return err
}

func jsonBody(v any) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return bytes.NewReader(data), nil
}
