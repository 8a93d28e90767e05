package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dori/taskflow/internal/model"
	"github.com/dori/taskflow/internal/store"
)

var fixedNow = time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)

func due(s string) *model.Date {
	d := model.MustParseDate(s)
	return &d
}

func newTestServer(t *testing.T) (*httptest.Server, *store.Memory) {
	t.Helper()
	n := 0
	mem := store.NewMemory(store.Seed{
		Categories: model.DefaultCategories(),
		Tasks: []model.Task{
			{ID: "1", Title: "Report", Category: "Work", Priority: model.PriorityHigh, DueDate: due("2024-03-10")},
			{ID: "2", Title: "Gym", Category: "Health", Priority: model.PriorityMedium, DueDate: due("2024-03-08")},
			{ID: "3", Title: "Groceries", Category: "Shopping", Priority: model.PriorityLow, Notes: "coffee", Completed: true},
		},
	},
		store.WithLatency(store.Latency{}),
		store.WithClock(func() time.Time { return fixedNow }),
		store.WithIDGenerator(func() string { n++; return fmt.Sprintf("new-%d", n) }),
	)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(NewServer(mem, WithLogger(logger), WithClock(func() time.Time { return fixedNow })))
	t.Cleanup(srv.Close)
	return srv, mem
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(ClientConfig{BaseURL: baseURL})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func TestServerErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"missing task", http.MethodGet, "/api/tasks/nope", "", http.StatusNotFound},
		{"toggle missing", http.MethodPost, "/api/tasks/nope/toggle", "", http.StatusNotFound},
		{"delete missing", http.MethodDelete, "/api/tasks/nope", "", http.StatusNotFound},
		{"bad filter", http.MethodGet, "/api/tasks?filter=someday", "", http.StatusBadRequest},
		{"bad json", http.MethodPost, "/api/tasks", "{", http.StatusBadRequest},
		{"empty title", http.MethodPost, "/api/tasks", `{"title":"  "}`, http.StatusBadRequest},
		{"bad priority", http.MethodPatch, "/api/tasks/1", `{"priority":"Urgent"}`, http.StatusBadRequest},
		{"wrong method", http.MethodPut, "/api/tasks/1", `{}`, http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}
}

func TestErrorBodyIsJSON(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/tasks/nope")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "task not found" {
		t.Errorf("error = %q", body.Error)
	}
}

func TestUnmatchedRequestsGetJSONErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		status int
		want   string
	}{
		{"unknown path", http.MethodGet, "/api/nothing", http.StatusNotFound, "not found"},
		{"outside api", http.MethodGet, "/", http.StatusNotFound, "not found"},
		{"wrong method", http.MethodPut, "/api/tasks/1", http.StatusMethodNotAllowed, "method not allowed"},
		{"wrong method on collection", http.MethodDelete, "/api/tasks", http.StatusMethodNotAllowed, "method not allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, nil)
			if err != nil {
				t.Fatal(err)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
			var body errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error != tt.want {
				t.Errorf("error = %q, want %q", body.Error, tt.want)
			}
		})
	}
}

func TestListTasksCombinesSearchAndFilter(t *testing.T) {
	srv, mem := newTestServer(t)
	ctx := context.Background()
	if _, err := mem.Create(ctx, model.Task{Title: "Report draft", Category: "Work", Priority: model.PriorityLow}); err != nil {
		t.Fatal(err)
	}
	if _, err := mem.ToggleComplete(ctx, "new-1"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"q=report", []string{"1", "new-1"}},
		{"q=report&filter=pending", []string{"1"}},
		{"q=report&filter=completed", []string{"new-1"}},
		{"q=report&filter=overdue", []string{}},
		{"filter=completed", []string{"3", "new-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/api/tasks?" + tt.query)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()

			var tasks []model.Task
			if err := json.NewDecoder(resp.Body).Decode(&tasks); err != nil {
				t.Fatal(err)
			}
			got := make([]string, 0, len(tasks))
			for _, task := range tasks {
				got = append(got, task.ID)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("ids = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestViewEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/view?filter=pending")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var view viewResponse
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatal(err)
	}
	if len(view.Tasks) != 2 || view.Tasks[0].ID != "1" {
		t.Errorf("tasks = %+v", view.Tasks)
	}
	if view.Counts["all"] != 3 || view.Counts["overdue"] != 1 || view.Counts["completed"] != 1 {
		t.Errorf("counts = %v", view.Counts)
	}
	if view.Total != 3 || view.Completed != 1 {
		t.Errorf("total = %d completed = %d", view.Total, view.Completed)
	}
}

func TestClientRoundTrip(t *testing.T) {
	srv, mem := newTestServer(t)
	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	all, err := c.GetAll(ctx)
	if err != nil || len(all) != 3 {
		t.Fatalf("GetAll = %d, %v", len(all), err)
	}
	if all[0].DueDate == nil || all[0].DueDate.String() != "2024-03-10" {
		t.Errorf("due date lost: %v", all[0].DueDate)
	}

	created, err := c.Create(ctx, model.Task{Title: "Call mom", Category: "Personal", Priority: model.PriorityLow})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID != "new-1" || created.Completed {
		t.Errorf("created = %+v", created)
	}

	title := "Call mum"
	updated, err := c.Update(ctx, created.ID, model.TaskPatch{Title: &title})
	if err != nil || updated.Title != title {
		t.Fatalf("Update = %+v, %v", updated, err)
	}

	toggled, err := c.ToggleComplete(ctx, created.ID)
	if err != nil || !toggled.Completed {
		t.Fatalf("Toggle = %+v, %v", toggled, err)
	}

	removed, err := c.BulkDelete(ctx, []string{"1", "missing"})
	if err != nil || removed != 1 {
		t.Fatalf("BulkDelete = %d, %v", removed, err)
	}

	if err := c.Delete(ctx, "2"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	remaining, _ := mem.GetAll(ctx)
	if len(remaining) != 2 {
		t.Errorf("server store has %d tasks", len(remaining))
	}
}

func TestClientNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	task, err := c.GetByID(ctx, "nope")
	if task != nil || err != nil {
		t.Errorf("GetByID(missing) = %v, %v", task, err)
	}
	if _, err := c.ToggleComplete(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("toggle err = %v", err)
	}
	if err := c.Delete(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("delete err = %v", err)
	}
}

func TestClientRouteMissIsNotTaskNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	if _, err := c.GetAll(ctx); err == nil || errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetAll err = %v, want a status error", err)
	}
	if _, err := c.Categories(ctx); err == nil || errors.Is(err, store.ErrNotFound) {
		t.Errorf("Categories err = %v, want a status error", err)
	}
	task, err := c.GetByID(ctx, "1")
	var statusErr *StatusError
	if task != nil || !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("GetByID = %v, %v, want a 404 status error", task, err)
	}
	if err := c.Delete(ctx, "1"); errors.Is(err, store.ErrNotFound) {
		t.Errorf("Delete err = %v, want a status error", err)
	}
}

func TestClientUnknownAPIPathIsNotTaskNotFound(t *testing.T) {
	// a JSON 404 from our own server for a route it does not have
	srv, _ := newTestServer(t)
	c := newTestClient(t, srv.URL+"/v2")

	task, err := c.GetByID(context.Background(), "1")
	if task != nil || err == nil || errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetByID = %v, %v, want a status error", task, err)
	}
}

func TestClientQueries(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	found, err := c.Search(ctx, "COFFEE")
	if err != nil || len(found) != 1 || found[0].ID != "3" {
		t.Errorf("Search = %+v, %v", found, err)
	}

	overdue, err := c.GetByFilter(ctx, model.FilterOverdue)
	if err != nil || len(overdue) != 1 || overdue[0].ID != "2" {
		t.Errorf("overdue = %+v, %v", overdue, err)
	}

	categories, err := c.Categories(ctx)
	if err != nil || len(categories) != 4 {
		t.Errorf("categories = %+v, %v", categories, err)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			respondWithError(w, http.StatusServiceUnavailable, "warming up")
			return
		}
		respondWithJSON(w, http.StatusOK, []model.Task{{ID: "1", Title: "ok"}})
	}))
	defer srv.Close()

	c, err := NewClient(ClientConfig{BaseURL: srv.URL, Retries: 3})
	if err != nil {
		t.Fatal(err)
	}
	tasks, err := c.GetAll(context.Background())
	if err != nil || len(tasks) != 1 {
		t.Fatalf("GetAll = %v, %v", tasks, err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestClientDoesNotRetryMalformedBody(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":`))
	}))
	defer srv.Close()

	c, err := NewClient(ClientConfig{BaseURL: srv.URL, Retries: 3})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetAll(context.Background()); err == nil {
		t.Fatal("expected a decode error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestTransportErrorsAreTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	c, err := NewClient(ClientConfig{BaseURL: baseURL, Retries: 1})
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.GetAll(context.Background())
	if err == nil {
		t.Fatal("expected a transport error")
	}
	if !isTransient(err) {
		t.Errorf("isTransient(%v) = false, want true", err)
	}
}

func TestClientDoesNotRetryWrites(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		respondWithError(w, http.StatusInternalServerError, "boom")
	}))
	defer srv.Close()

	c, err := NewClient(ClientConfig{BaseURL: srv.URL, Retries: 3})
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Create(context.Background(), model.Task{Title: "x"})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Message != "boom" {
		t.Fatalf("err = %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}
