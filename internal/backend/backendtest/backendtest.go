// Package backendtest runs an in-process fake of the push backend for tests.
package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/leetpush/internal/model"
)

const (
	// Token is the only bearer token the fake accepts.
	Token = "test-token"
	// Code is the only OAuth code the fake's login callback accepts.
	Code = "good-code"
	// Username is the account the fake logs in as.
	Username = "octocat"
)

// Server is a fake backend. Identical (repository, filename, code) pushes
// answer "Already pushed!"; anything else is stored and answers as created.
type Server struct {
	*httptest.Server

	mu           sync.Mutex
	files        map[string]string
	pushes       []model.PushRequest
	statsCalls   int
	pushStatus   int
	selectedRepo string
	lastPush     time.Time
	now          func() time.Time
}

func NewServer() *Server {
	s := &Server{
		files: make(map[string]string),
		now:   func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	}

	r := chi.NewRouter()
	r.Get("/login/github/callback", s.handleLogin)
	r.Get("/search", s.handleSearch)
	r.Get("/user/{username}", s.handleUser)
	r.Get("/ranking", s.handleRanking)
	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Post("/push-code", s.handlePush)
		r.Get("/stats", s.handleStats)
		r.Get("/me", s.handleMe)
		r.Get("/streak", s.handleStreak)
		r.Post("/save-repository", s.handleSaveRepository)
	})

	s.Server = httptest.NewServer(r)
	return s
}

// FailPushWith makes every later push answer status. Zero restores normal
// behaviour.
func (s *Server) FailPushWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushStatus = status
}

// Pushes returns every push request received, including rejected ones.
func (s *Server) Pushes() []model.PushRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.PushRequest(nil), s.pushes...)
}

func (s *Server) StatsCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statsCalls
}

func (s *Server) SelectedRepository() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedRepo
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+Token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid Token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	var req model.PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "bad body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushes = append(s.pushes, req)

	if s.pushStatus != 0 {
		writeJSON(w, s.pushStatus, map[string]string{"detail": "push failed"})
		return
	}

	key := req.SelectedRepo + "/" + req.Filename
	if prev, ok := s.files[key]; ok && prev == req.Code {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Already pushed!"})
		return
	}
	s.files[key] = req.Code
	s.lastPush = s.now()
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "uploaded to github!",
		"pushed_at": s.lastPush.Format("2006-01-02T15:04:05"),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statsCalls++
	writeJSON(w, http.StatusOK, s.statsLocked())
}

func (s *Server) statsLocked() model.Stats {
	stats := model.Stats{Username: Username, ByLanguage: map[string]int{}}
	for key := range s.files {
		stats.TotalSolved++
		if i := strings.LastIndex(key, "."); i >= 0 {
			stats.ByLanguage[key[i+1:]]++
		}
	}
	return stats
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	body := map[string]any{
		"username":      Username,
		"last_login":    s.now().Format("2006-01-02T15:04:05"),
		"last_push":     nil,
		"selected_repo": s.selectedRepo,
	}
	if !s.lastPush.IsZero() {
		body["last_push"] = s.lastPush.Format("2006-01-02T15:04:05")
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.Streak{Streak: 3, FrozenUsed: 1})
}

func (s *Server) handleSaveRepository(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Repository string `json:"repository"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Repository == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "repository is required"})
		return
	}
	s.mu.Lock()
	s.selectedRepo = body.Repository
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Repository saved"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("code") != Code {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "bad verification code"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "GitHub login successful",
		"token":      Token,
		"username":   Username,
		"last_push":  nil,
		"last_login": s.now().Format("2006-01-02T15:04:05.000000"),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("username")
	results := []model.SearchResult{}
	if strings.Contains(Username, q) {
		s.mu.Lock()
		results = append(results, model.SearchResult{Username: Username, TotalSolved: len(s.files)})
		s.mu.Unlock()
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "username") != Username {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "User not found"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.statsLocked())
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := s.statsLocked()
	writeJSON(w, http.StatusOK, map[string]any{"ranking": []model.RankingEntry{{
		Username:    Username,
		TotalSolved: stats.TotalSolved,
		ByLanguage:  stats.ByLanguage,
		TotalPoint:  stats.TotalSolved * 3,
	}}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
