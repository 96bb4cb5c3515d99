package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/promptvault/promptvault/internal/config"
	"github.com/promptvault/promptvault/internal/prompts"
	"github.com/promptvault/promptvault/internal/svcctx"
	"github.com/promptvault/promptvault/internal/vault"
)

// newTestServer wires a full stack over a temp vault and temp config file and
// returns the server's handler.
func newTestServer(t *testing.T, configYAML string) http.Handler {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.NewManager(configPath)
	if err != nil {
		t.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	v, err := vault.NewOSVault(filepath.Join(dir, "vault"), logger)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { v.Close() })

	settings := prompts.NewConfigSettings(cfg)
	manager := prompts.NewManager(v, prompts.NewStore(), settings, logger)
	if err := manager.Initialize(t.Context()); err != nil {
		t.Fatal(err)
	}
	session := prompts.NewSession(manager, settings, logger)

	srv := New(Config{
		Services: &svcctx.Services{
			Settings: cfg,
			Prompts:  manager,
			Session:  session,
			Logger:   logger,
		},
		Logger: logger,
	})
	return srv.Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v (body: %s)", err, rec.Body.String())
	}
	return v
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestServer(t, "")
	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if resp := decode[HealthResponse](t, rec); resp.Status != "ok" {
		t.Errorf("unexpected body: %+v", resp)
	}
}

func TestPromptCRUD(t *testing.T) {
	h := newTestServer(t, "")

	t.Run("empty list", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/prompts", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("unexpected status %d", rec.Code)
		}
		resp := decode[PromptsListResponse](t, rec)
		if resp.Prompts == nil || len(resp.Prompts) != 0 {
			t.Errorf("expected empty array, got %+v", resp.Prompts)
		}
	})

	t.Run("create", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/prompts", PromptRequest{Title: "Research", Content: "Be thorough."})
		if rec.Code != http.StatusCreated {
			t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
		}
		created := decode[prompts.UserPrompt](t, rec)
		if created.Title != "Research" || created.CreatedMs == 0 {
			t.Errorf("unexpected prompt: %+v", created)
		}
	})

	t.Run("create duplicate is rejected", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/prompts", PromptRequest{Title: "research", Content: "x"})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("create invalid title is rejected", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/prompts", PromptRequest{Title: "a/b", Content: "x"})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/prompts", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("update", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPut, "/api/prompts/Research", PromptRequest{Title: "Research v2", Content: "updated"})
		if rec.Code != http.StatusOK {
			t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
		}
		updated := decode[prompts.UserPrompt](t, rec)
		if updated.Title != "Research v2" || updated.Content != "updated" {
			t.Errorf("unexpected prompt: %+v", updated)
		}
	})

	t.Run("update missing prompt", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPut, "/api/prompts/Nope", PromptRequest{Title: "Nope", Content: "x"})
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("duplicate", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/prompts/Research%20v2/duplicate", nil)
		if rec.Code != http.StatusCreated {
			t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
		}
		dup := decode[prompts.UserPrompt](t, rec)
		if dup.Title != "Research v2 (copy)" {
			t.Errorf("unexpected copy title: %q", dup.Title)
		}
	})

	t.Run("duplicate missing prompt", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/prompts/Nope/duplicate", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("delete", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodDelete, "/api/prompts/Research%20v2%20(copy)", nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("unexpected status %d", rec.Code)
		}

		list := decode[PromptsListResponse](t, doJSON(t, h, http.MethodGet, "/api/prompts", nil))
		for _, p := range list.Prompts {
			if p.Title == "Research v2 (copy)" {
				t.Error("deleted prompt still listed")
			}
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodDelete, "/api/prompts/Research%20v2%20(copy)", nil)
		if rec.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", rec.Code)
		}
	})
}

func TestSessionEndpoints(t *testing.T) {
	h := newTestServer(t, "")

	rec := doJSON(t, h, http.MethodPost, "/api/prompts", PromptRequest{Title: "A", Content: "a"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("setup failed: %d", rec.Code)
	}

	t.Run("select", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/session/select", SelectRequest{Title: "A"})
		if rec.Code != http.StatusNoContent {
			t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
		}

		sess := decode[SessionResponse](t, doJSON(t, h, http.MethodGet, "/api/session", nil))
		if sess.ID == "" {
			t.Error("session should have an identifier")
		}
		if sess.EffectiveTitle != "A" {
			t.Errorf("unexpected effective title: %q", sess.EffectiveTitle)
		}
		if sess.Prompt == nil || sess.Prompt.LastUsedMs == 0 {
			t.Errorf("selection should stamp last-used: %+v", sess.Prompt)
		}
	})

	t.Run("clear with empty title", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/session/select", SelectRequest{Title: ""})
		if rec.Code != http.StatusNoContent {
			t.Fatalf("unexpected status %d", rec.Code)
		}

		sess := decode[SessionResponse](t, doJSON(t, h, http.MethodGet, "/api/session", nil))
		if sess.EffectiveTitle != "" {
			t.Errorf("expected no effective title, got %q", sess.EffectiveTitle)
		}
	})
}

func TestModelParamsEndpoint(t *testing.T) {
	t.Run("no model selected", func(t *testing.T) {
		h := newTestServer(t, "")
		rec := doJSON(t, h, http.MethodGet, "/api/models/params", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("unexpected status %d", rec.Code)
		}
		resp := decode[ModelParamsResponse](t, rec)
		if resp.Model != "" {
			t.Errorf("expected no model, got %q", resp.Model)
		}
		if resp.Params.Temperature == nil {
			t.Error("expected default temperature")
		}
		if len(resp.Ranges) == 0 {
			t.Error("expected parameter ranges")
		}
	})

	t.Run("selected model", func(t *testing.T) {
		h := newTestServer(t, `
active_models:
  - name: gpt-4o
    provider: openai
    temperature: 0.3
selected_model: gpt-4o|openai
`)
		rec := doJSON(t, h, http.MethodGet, "/api/models/params", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
		}
		resp := decode[ModelParamsResponse](t, rec)
		if resp.Model != "gpt-4o|openai" {
			t.Errorf("unexpected model: %q", resp.Model)
		}
		if resp.Params.Temperature == nil || *resp.Params.Temperature != 0.3 {
			t.Errorf("unexpected temperature: %v", resp.Params.Temperature)
		}
		if len(resp.Supported) == 0 {
			t.Error("expected supported parameter list")
		}
	})
}
