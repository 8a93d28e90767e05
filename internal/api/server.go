// Package api exposes a task store over a small JSON REST interface and
// provides a client that implements the same store contract over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/dori/taskflow/internal/model"
	"github.com/dori/taskflow/internal/store"
	"github.com/dori/taskflow/internal/taskview"
)

// Server serves a TaskStore over HTTP
type Server struct {
	store  store.TaskStore
	logger *slog.Logger
	now    func() time.Time
	router *mux.Router
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the request logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithClock sets the clock used to resolve "today" for the view endpoint
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer creates a server and registers its routes
func NewServer(ts store.TaskStore, opts ...Option) *Server {
	s := &Server{
		store:  ts,
		logger: slog.Default(),
		now:    time.Now,
		router: mux.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := s.router
	r.HandleFunc("/api/tasks", s.listTasks).Methods(http.MethodGet)
	r.HandleFunc("/api/tasks", s.createTask).Methods(http.MethodPost)
	r.HandleFunc("/api/tasks/bulk-delete", s.bulkDelete).Methods(http.MethodPost)
	r.HandleFunc("/api/tasks/{id}", s.getTask).Methods(http.MethodGet)
	r.HandleFunc("/api/tasks/{id}", s.updateTask).Methods(http.MethodPatch)
	r.HandleFunc("/api/tasks/{id}", s.deleteTask).Methods(http.MethodDelete)
	r.HandleFunc("/api/tasks/{id}/toggle", s.toggleTask).Methods(http.MethodPost)
	r.HandleFunc("/api/categories", s.listCategories).Methods(http.MethodGet)
	r.HandleFunc("/api/view", s.view).Methods(http.MethodGet)
	r.Use(s.logRequests)

	// mux skips middleware for these, so they log on their own
	r.NotFoundHandler = s.logRequests(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondWithError(w, http.StatusNotFound, "not found")
	}))
	r.MethodNotAllowedHandler = s.logRequests(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
	}))

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// taskNotFound is the error message for a missing task, as opposed to a
// missing route
const taskNotFound = "task not found"

// errorResponse is the body of every non-2xx response
type errorResponse struct {
	Error string `json:"error"`
}

// bulkDeleteRequest is the body of POST /api/tasks/bulk-delete
type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// bulkDeleteResponse reports how many tasks were removed
type bulkDeleteResponse struct {
	Removed int `json:"removed"`
}

// viewResponse is the derived list plus its aggregates
type viewResponse struct {
	Tasks     []model.Task   `json:"tasks"`
	Counts    map[string]int `json:"counts"`
	Completed int            `json:"completed"`
	Total     int            `json:"total"`
	Progress  float64        `json:"progress"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, msg string) {
	respondWithJSON(w, code, errorResponse{Error: msg})
}

// respondWithStoreError maps store errors onto status codes
func (s *Server) respondWithStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, taskNotFound)
		return
	}
	s.logger.Error("store error", "method", r.Method, "path", r.URL.Path, "error", err)
	respondWithError(w, http.StatusInternalServerError, "internal error")
}

// listTasks applies ?q= and ?filter= together; the order is the store's
func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter, ok := model.ParseFilter(query.Get("filter"))
	if !ok {
		respondWithError(w, http.StatusBadRequest, "unknown filter "+query.Get("filter"))
		return
	}

	var tasks []model.Task
	var err error
	if q := query.Get("q"); q != "" {
		tasks, err = s.store.Search(r.Context(), q)
	} else {
		tasks, err = s.store.GetByFilter(r.Context(), filter)
	}
	if err != nil {
		s.respondWithStoreError(w, r, err)
		return
	}

	if query.Get("q") != "" && filter != model.FilterAll {
		today := model.DateOf(s.now())
		var matched []model.Task
		for _, t := range tasks {
			if filter.Matches(t, today) {
				matched = append(matched, t)
			}
		}
		tasks = matched
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	respondWithJSON(w, http.StatusOK, tasks)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.store.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondWithStoreError(w, r, err)
		return
	}
	if task == nil {
		respondWithError(w, http.StatusNotFound, taskNotFound)
		return
	}
	respondWithJSON(w, http.StatusOK, task)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var task model.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	task.Title = strings.TrimSpace(task.Title)
	if task.Title == "" {
		respondWithError(w, http.StatusBadRequest, "title is required")
		return
	}
	if task.Priority != "" && task.Priority.Weight() == 0 {
		respondWithError(w, http.StatusBadRequest, "unknown priority "+string(task.Priority))
		return
	}

	created, err := s.store.Create(r.Context(), task)
	if err != nil {
		s.respondWithStoreError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	var patch model.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		respondWithError(w, http.StatusBadRequest, "title must not be empty")
		return
	}
	if patch.Priority != nil && patch.Priority.Weight() == 0 {
		respondWithError(w, http.StatusBadRequest, "unknown priority "+string(*patch.Priority))
		return
	}

	updated, err := s.store.Update(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		s.respondWithStoreError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.respondWithStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) toggleTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.store.ToggleComplete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondWithStoreError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, task)
}

func (s *Server) bulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	removed, err := s.store.BulkDelete(r.Context(), req.IDs)
	if err != nil {
		s.respondWithStoreError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, bulkDeleteResponse{Removed: removed})
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.Categories(r.Context())
	if err != nil {
		s.respondWithStoreError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, categories)
}

// view returns the same derived list the TUI shows for the given state
func (s *Server) view(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter, ok := model.ParseFilter(query.Get("filter"))
	if !ok {
		respondWithError(w, http.StatusBadRequest, "unknown filter "+query.Get("filter"))
		return
	}

	tasks, err := s.store.GetAll(r.Context())
	if err != nil {
		s.respondWithStoreError(w, r, err)
		return
	}

	state := taskview.State{
		Filter:   filter,
		Category: query.Get("category"),
		Search:   query.Get("q"),
	}
	result := taskview.Derive(tasks, state, model.DateOf(s.now()))

	counts := make(map[string]int, len(result.Counts))
	for f, n := range result.Counts {
		counts[string(f)] = n
	}
	respondWithJSON(w, http.StatusOK, viewResponse{
		Tasks:     result.Tasks,
		Counts:    counts,
		Completed: result.Completed,
		Total:     result.Total,
		Progress:  result.Progress,
	})
}

// statusRecorder captures the response code for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
