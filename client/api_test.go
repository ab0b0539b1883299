package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

func newTestServer(t *testing.T, status int, body string) (*HTTPClient, func() []recordedRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: string(b)})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	recorded := func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), reqs...)
	}
	return NewHTTPClient(srv.URL+"/todo/", time.Second), recorded
}

func TestHTTPClientRoutes(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		call     func(c *HTTPClient) error
		method   string
		path     string
		wantBody map[string]string
	}{
		{"create", func(c *HTTPClient) error { return c.Create(ctx, "Buy milk") }, http.MethodPost, "/todo", map[string]string{"title": "Buy milk"}},
		{"update", func(c *HTTPClient) error { return c.Update(ctx, 4, "Walk dog") }, http.MethodPut, "/todo/4", map[string]string{"title": "Walk dog"}},
		{"delete", func(c *HTTPClient) error { return c.Delete(ctx, 4) }, http.MethodDelete, "/todo/4", nil},
		{"toggle", func(c *HTTPClient) error { return c.Toggle(ctx, 4) }, http.MethodPatch, "/todo/4/complete", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, recorded := newTestServer(t, http.StatusOK, `{}`)
			if err := tt.call(c); err != nil {
				t.Fatalf("call: %v", err)
			}
			reqs := recorded()
			if len(reqs) != 1 {
				t.Fatalf("requests: got %d, want 1", len(reqs))
			}
			got := reqs[0]
			if got.Method != tt.method || got.Path != tt.path {
				t.Errorf("request: got %s %s, want %s %s", got.Method, got.Path, tt.method, tt.path)
			}
			if tt.wantBody != nil {
				var body map[string]string
				if err := json.Unmarshal([]byte(got.Body), &body); err != nil {
					t.Fatalf("body %q: %v", got.Body, err)
				}
				if body["title"] != tt.wantBody["title"] {
					t.Errorf("body: got %v, want %v", body, tt.wantBody)
				}
			}
		})
	}
}

func TestHTTPClientList(t *testing.T) {
	c, _ := newTestServer(t, http.StatusOK, `[{"id":1,"title":"Buy milk","completed":true}]`)
	todos, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(todos) != 1 || todos[0] != (Todo{ID: 1, Title: "Buy milk", Completed: true}) {
		t.Errorf("List: got %+v", todos)
	}
}

func TestHTTPClientListNotFoundIsEmpty(t *testing.T) {
	c, _ := newTestServer(t, http.StatusNotFound, `{"statusCode":404,"message":"No todos found in the database.","error":"Not Found"}`)
	todos, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if todos == nil || len(todos) != 0 {
		t.Errorf("List: got %#v, want empty non-nil slice", todos)
	}
}

func TestHTTPClientStatusError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"string message", http.StatusBadRequest, `{"statusCode":400,"message":"Title cannot be empty.","error":"Bad Request"}`, "Title cannot be empty."},
		{"list message", http.StatusBadRequest, `{"statusCode":400,"message":["title: a","completed: b"],"error":"Bad Request"}`, "title: a; completed: b"},
		{"plain body", http.StatusInternalServerError, `boom`, "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestServer(t, tt.status, tt.body)
			err := c.Create(context.Background(), "x")
			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("err: got %v, want *StatusError", err)
			}
			if se.Code != tt.status || se.Message != tt.message {
				t.Errorf("StatusError: got %d %q, want %d %q", se.Code, se.Message, tt.status, tt.message)
			}
		})
	}
}

func TestHookAgainstHTTPClient(t *testing.T) {
	c, recorded := newTestServer(t, http.StatusOK, `[]`)
	h := NewHook(c, quietLogger())
	h.SetAddText("Buy milk")
	if err := h.Add(context.Background()); err != nil {
		t.Fatalf("Add: %v", err)
	}
	reqs := recorded()
	if len(reqs) != 2 || reqs[0].Method != http.MethodPost || reqs[1].Method != http.MethodGet {
		t.Errorf("requests: got %+v, want POST then GET", reqs)
	}
}
