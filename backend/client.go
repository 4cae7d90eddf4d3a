// Package backend is the resource client for the XpertAI REST backend. It is
// the only data layer in the app: both the public site and the admin console
// read and write through it. The backend owns persistence, validation, and
// authorization; this client just moves JSON and multipart bodies.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// APIError is a non-2xx backend response. Message carries the response
// body's "error" field when present, else a generic fallback.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: %s (%d)", e.Message, e.Status)
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}

// Client issues requests against named REST resources. A Client is built
// once per app; per-request auth comes from WithToken, which returns a
// token-bound view sharing the same transport and cookie jar. There is no
// module-scoped default header to mutate.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New creates a Client for the backend at baseURL. The underlying transport
// carries a cookie jar so backend session cookies (the chat flow depends on
// them) ride along automatically.
func New(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
	}
}

// WithToken returns a copy of the client that sends the given bearer token
// on every request. An empty token returns an unauthenticated view.
func (c *Client) WithToken(token string) *Client {
	cc := *c
	cc.token = token
	return &cc
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) resourceURL(resource string, id ...int) string {
	u := c.baseURL + "/api/" + strings.Trim(resource, "/") + "/"
	for _, n := range id {
		u += strconv.Itoa(n) + "/"
	}
	return u
}

func (c *Client) do(ctx context.Context, method, rawurl string, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, rawurl, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err // transport failures propagate untouched
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", rawurl, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	msg := "request failed"
	var body struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if json.Unmarshal(raw, &body) == nil {
		if body.Error != "" {
			msg = body.Error
		} else if body.Detail != "" {
			msg = body.Detail
		}
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

// List fetches a whole collection into out.
func (c *Client) List(ctx context.Context, resource string, out any) error {
	return c.do(ctx, http.MethodGet, c.resourceURL(resource), "", nil, out)
}

// Get fetches a single record by id into out.
func (c *Client) Get(ctx context.Context, resource string, id int, out any) error {
	return c.do(ctx, http.MethodGet, c.resourceURL(resource, id), "", nil, out)
}

// GetOne fetches an unkeyed singleton resource into out.
func (c *Client) GetOne(ctx context.Context, resource string, out any) error {
	return c.do(ctx, http.MethodGet, c.resourceURL(resource), "", nil, out)
}

// Create POSTs a multipart form to the resource's collection endpoint.
func (c *Client) Create(ctx context.Context, resource string, form *Form, out any) error {
	ct, body, err := form.Encode()
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, c.resourceURL(resource), ct, body, out)
}

// Update PUTs a multipart form to the record endpoint. The backend expects
// the full representation; there is no partial-patch support on PUT.
func (c *Client) Update(ctx context.Context, resource string, id int, form *Form, out any) error {
	ct, body, err := form.Encode()
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, c.resourceURL(resource, id), ct, body, out)
}

// Remove DELETEs a record. No response body is expected.
func (c *Client) Remove(ctx context.Context, resource string, id int) error {
	return c.do(ctx, http.MethodDelete, c.resourceURL(resource, id), "", nil, nil)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, c.baseURL+path, "application/json", bytes.NewReader(raw), out)
}

// SystemStatus reports whether the backend has a superuser yet. Callers
// fail open to login mode when this errors.
func (c *Client) SystemStatus(ctx context.Context) (SystemStatus, error) {
	var st SystemStatus
	err := c.do(ctx, http.MethodGet, c.baseURL+"/api/system/status/", "", nil, &st)
	return st, err
}

// Login exchanges credentials for an auth session.
func (c *Client) Login(ctx context.Context, username, password string) (AuthSession, error) {
	var sess AuthSession
	err := c.postJSON(ctx, "/api/auth/login/", map[string]string{
		"username": username,
		"password": password,
	}, &sess)
	return sess, err
}

// SetupRequest creates the first superuser during first-run setup.
type SetupRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// SetupAdmin completes first-run setup and returns the resulting session.
func (c *Client) SetupAdmin(ctx context.Context, req SetupRequest) (AuthSession, error) {
	var sess AuthSession
	err := c.postJSON(ctx, "/api/auth/setup/", req, &sess)
	return sess, err
}

// UpdateTicketStatus mutates a support ticket's status alone, via its
// dedicated partial-update endpoint.
func (c *Client) UpdateTicketStatus(ctx context.Context, id int, status TicketStatus) error {
	return c.postJSON(ctx, "/api/support_tickets/"+strconv.Itoa(id)+"/status/", map[string]string{
		"status": string(status),
	}, nil)
}

// ShareApplicationByEmail instructs the backend to email the application's
// export file to the recipient. The attachment never leaves the backend.
func (c *Client) ShareApplicationByEmail(ctx context.Context, id int, recipient string) error {
	return c.postJSON(ctx, "/api/job_applications/"+strconv.Itoa(id)+"/share_email/", map[string]string{
		"recipient": recipient,
	}, nil)
}

// Export URL builders for backend-generated files. The admin console links
// straight to these; the browser performs the download.

func (c *Client) ApplicationsCSVURL() string {
	return c.baseURL + "/api/job_applications/export/csv/"
}

func (c *Client) ResumesZipURL() string {
	return c.baseURL + "/api/job_applications/export/resumes/"
}

func (c *Client) ApplicationCSVURL(id int) string {
	return c.baseURL + "/api/job_applications/" + strconv.Itoa(id) + "/export/"
}

// FileURL resolves a backend-relative upload path to an absolute URL.
func (c *Client) FileURL(p string) string {
	if p == "" {
		return ""
	}
	if u, err := url.Parse(p); err == nil && u.IsAbs() {
		return p
	}
	return c.baseURL + "/" + strings.TrimLeft(p, "/")
}

// ChatMessage advances the server-held chat conversation one field. Both
// fields are nil on the opening "begin" signal. Conversation identity is
// cookie affinity, so callers that need per-visitor isolation must use a
// ChatSession rather than the shared client.
func (c *Client) ChatMessage(ctx context.Context, currentField, answer *string) (ChatReply, error) {
	var reply ChatReply
	err := c.postJSON(ctx, "/api/chat/", map[string]*string{
		"current_field": currentField,
		"answer":        answer,
	}, &reply)
	return reply, err
}

// ChatSession is a chat client with its own cookie jar, giving each site
// visitor an isolated server-side conversation.
type ChatSession struct {
	client *Client
}

// NewChatSession returns a chat client with a fresh cookie jar.
func (c *Client) NewChatSession() *ChatSession {
	jar, _ := cookiejar.New(nil)
	cc := *c
	cc.http = &http.Client{Jar: jar, Timeout: c.http.Timeout}
	return &ChatSession{client: &cc}
}

// Message forwards one chat exchange over the session's jar.
func (s *ChatSession) Message(ctx context.Context, currentField, answer *string) (ChatReply, error) {
	return s.client.ChatMessage(ctx, currentField, answer)
}
