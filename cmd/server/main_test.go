package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/learnflow/learnflow/internal/curriculum"
	"github.com/learnflow/learnflow/internal/platform/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080},
		Upstream: config.UpstreamConfig{
			CurriculumURL: "http://127.0.0.1:1",
			ProgressURL:   "http://127.0.0.1:1",
			QuizURL:       "http://127.0.0.1:1",
			AuthURL:       "http://127.0.0.1:1",
			Timeout:       time.Second,
		},
		Mastery:    config.MasteryConfig{Thresholds: "25,60,85"},
		Session:    config.SessionConfig{CacheTTL: time.Minute, CookieName: "better-auth.session_token"},
		Quiz:       config.QuizConfig{IdleTTL: time.Hour},
		Instructor: config.InstructorConfig{FeedEnabled: true, PollInterval: time.Minute},
		Log:        config.LogConfig{Level: "info", Format: "json"},
	}
}

func TestHealthEndpoints(t *testing.T) {
	a, err := newApp(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	defer a.close()

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "healthz returns 200",
			path:       "/healthz",
			wantStatus: http.StatusOK,
			wantBody:   "ok",
		},
		{
			name:       "readyz without optional stores returns 200",
			path:       "/readyz",
			wantStatus: http.StatusOK,
			wantBody:   "ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()

			a.handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body struct {
				Status string `json:"status"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode %q: %v", rec.Body.String(), err)
			}
			if body.Status != tt.wantBody {
				t.Errorf("status field = %q, want %q", body.Status, tt.wantBody)
			}
		})
	}
}

func TestNewApp_FeedToggle(t *testing.T) {
	cfg := testConfig()
	cfg.Instructor.FeedEnabled = false

	a, err := newApp(context.Background(), cfg)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	defer a.close()
	if a.feed != nil {
		t.Error("feed should be nil when disabled")
	}
}

func TestNewApp_BadThresholds(t *testing.T) {
	cfg := testConfig()
	cfg.Mastery.Thresholds = "90,60,30"

	if _, err := newApp(context.Background(), cfg); err == nil {
		t.Error("newApp() should reject unordered thresholds")
	}
}

func TestNewApp_LocalCurriculum(t *testing.T) {
	dir := t.TempDir()
	module := "id: mod-1\nname: Basics\norder: 1\ntopics: [variables]\nexercises_count: 4\n"
	if err := os.WriteFile(filepath.Join(dir, "basics.yaml"), []byte(module), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.CurriculumPath = dir
	a, err := newApp(context.Background(), cfg)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	defer a.close()

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/curriculum", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var modules []curriculum.Module
	if err := json.Unmarshal(rec.Body.Bytes(), &modules); err != nil {
		t.Fatal(err)
	}
	if len(modules) != 1 || modules[0].ID != "mod-1" {
		t.Errorf("modules = %+v", modules)
	}
}

func TestSweepInterval(t *testing.T) {
	tests := []struct {
		idle time.Duration
		want time.Duration
	}{
		{2 * time.Hour, 30 * time.Minute},
		{time.Minute, time.Minute},
	}
	for _, tt := range tests {
		if got := sweepInterval(tt.idle); got != tt.want {
			t.Errorf("sweepInterval(%v) = %v, want %v", tt.idle, got, tt.want)
		}
	}
}
