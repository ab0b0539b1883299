// Package client talks to the todo HTTP API and keeps the state a UI needs
// in sync with it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "http://localhost:3000/todo"
	DefaultTimeout = 5 * time.Second
)

type Todo struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// API is the subset of server calls the hook relies on.
type API interface {
	List(ctx context.Context) ([]Todo, error)
	Create(ctx context.Context, title string) error
	Update(ctx context.Context, id int, title string) error
	Delete(ctx context.Context, id int) error
	Toggle(ctx context.Context, id int) error
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method  string
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, e.Message)
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Method:  method,
			Path:    path,
			Code:    resp.StatusCode,
			Message: errorMessage(resp.Body),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// errorMessage pulls "message" out of an error body, which the server sends
// either as a string or a list of strings.
func errorMessage(r io.Reader) string {
	var body struct {
		Message json.RawMessage `json:"message"`
	}
	raw, err := io.ReadAll(io.LimitReader(r, 1<<16))
	if err != nil || json.Unmarshal(raw, &body) != nil || len(body.Message) == 0 {
		return strings.TrimSpace(string(raw))
	}

	var s string
	if json.Unmarshal(body.Message, &s) == nil {
		return s
	}
	var list []string
	if json.Unmarshal(body.Message, &list) == nil {
		return strings.Join(list, "; ")
	}
	return string(body.Message)
}

// List returns every todo. The server answers 404 for an empty table, which
// is reported here as an empty list.
func (c *HTTPClient) List(ctx context.Context) ([]Todo, error) {
	var todos []Todo
	err := c.do(ctx, http.MethodGet, "", nil, &todos)
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return []Todo{}, nil
	}
	if err != nil {
		return nil, err
	}
	return todos, nil
}

func (c *HTTPClient) Create(ctx context.Context, title string) error {
	return c.do(ctx, http.MethodPost, "", map[string]string{"title": title}, nil)
}

func (c *HTTPClient) Update(ctx context.Context, id int, title string) error {
	return c.do(ctx, http.MethodPut, "/"+strconv.Itoa(id), map[string]string{"title": title}, nil)
}

func (c *HTTPClient) Delete(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/"+strconv.Itoa(id), nil, nil)
}

func (c *HTTPClient) Toggle(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodPatch, "/"+strconv.Itoa(id)+"/complete", nil, nil)
}
