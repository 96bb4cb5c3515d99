package server

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"

	"github.com/promptvault/promptvault/internal/modelparams"
	"github.com/promptvault/promptvault/internal/prompts"
	"github.com/promptvault/promptvault/internal/svcctx"
)

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/prompts", s.handleListPrompts)
	mux.HandleFunc("POST /api/prompts", s.handleCreatePrompt)
	mux.HandleFunc("PUT /api/prompts/{title}", s.handleUpdatePrompt)
	mux.HandleFunc("DELETE /api/prompts/{title}", s.handleDeletePrompt)
	mux.HandleFunc("POST /api/prompts/{title}/duplicate", s.handleDuplicatePrompt)

	mux.HandleFunc("GET /api/session", s.handleGetSession)
	mux.HandleFunc("POST /api/session/select", s.handleSelectPrompt)

	mux.HandleFunc("GET /api/models/params", s.handleModelParams)
}

// HealthResponse is the response for the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// PromptsListResponse contains all cached prompts.
type PromptsListResponse struct {
	Prompts []prompts.UserPrompt `json:"prompts"`
}

// PromptRequest is the request body for create and update operations.
type PromptRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// SessionResponse describes the session's effective prompt resolution.
type SessionResponse struct {
	ID             string             `json:"id"`
	EffectiveTitle string             `json:"effectiveTitle"`
	Prompt         *prompts.UserPrompt `json:"prompt,omitempty"`
}

// SelectRequest is the request body for selecting a session prompt.
// An empty title clears the session override.
type SelectRequest struct {
	Title string `json:"title"`
}

// ModelParamsResponse describes resolved parameters for the current model.
type ModelParamsResponse struct {
	Model     string                                `json:"model,omitempty"`
	Params    modelparams.Params                    `json:"params"`
	Ranges    map[modelparams.Param]modelparams.Range `json:"ranges"`
	Supported []modelparams.Param                   `json:"supported,omitempty"`
}

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleListPrompts(w http.ResponseWriter, r *http.Request) {
	manager := svcctx.PromptsFrom(r.Context())
	if manager == nil {
		writeError(w, http.StatusInternalServerError, "prompt manager not available")
		return
	}

	list := manager.List()
	if list == nil {
		list = []prompts.UserPrompt{}
	}
	writeJSON(w, http.StatusOK, PromptsListResponse{Prompts: list})
}

func (s *Server) handleCreatePrompt(w http.ResponseWriter, r *http.Request) {
	manager := svcctx.PromptsFrom(r.Context())
	if manager == nil {
		writeError(w, http.StatusInternalServerError, "prompt manager not available")
		return
	}

	var req PromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := manager.Create(r.Context(), prompts.UserPrompt{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdatePrompt(w http.ResponseWriter, r *http.Request) {
	manager := svcctx.PromptsFrom(r.Context())
	if manager == nil {
		writeError(w, http.StatusInternalServerError, "prompt manager not available")
		return
	}

	oldTitle := r.PathValue("title")
	if _, ok := manager.Get(oldTitle); !ok {
		writeError(w, http.StatusNotFound, "prompt not found")
		return
	}

	var req PromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := manager.Update(r.Context(), oldTitle, prompts.UserPrompt{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeletePrompt(w http.ResponseWriter, r *http.Request) {
	manager := svcctx.PromptsFrom(r.Context())
	if manager == nil {
		writeError(w, http.StatusInternalServerError, "prompt manager not available")
		return
	}

	if err := manager.Delete(r.Context(), r.PathValue("title")); err != nil {
		writeOpError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDuplicatePrompt(w http.ResponseWriter, r *http.Request) {
	manager := svcctx.PromptsFrom(r.Context())
	if manager == nil {
		writeError(w, http.StatusInternalServerError, "prompt manager not available")
		return
	}

	source, ok := manager.Get(r.PathValue("title"))
	if !ok {
		writeError(w, http.StatusNotFound, "prompt not found")
		return
	}

	created, err := manager.Duplicate(r.Context(), source)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session := svcctx.SessionFrom(r.Context())
	if session == nil {
		writeError(w, http.StatusInternalServerError, "session not available")
		return
	}

	resp := SessionResponse{
		ID:             session.ID(),
		EffectiveTitle: session.EffectiveTitle(),
	}
	if p, ok := session.EffectivePrompt(); ok {
		resp.Prompt = &p
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSelectPrompt(w http.ResponseWriter, r *http.Request) {
	session := svcctx.SessionFrom(r.Context())
	if session == nil {
		writeError(w, http.StatusInternalServerError, "session not available")
		return
	}

	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == "" {
		session.Clear()
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := session.Select(r.Context(), req.Title); err != nil {
		writeOpError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleModelParams(w http.ResponseWriter, r *http.Request) {
	settings := svcctx.SettingsFrom(r.Context())
	if settings == nil {
		writeError(w, http.StatusInternalServerError, "settings not available")
		return
	}

	params, model := modelparams.Current(settings.Get())
	resp := ModelParamsResponse{
		Params: params,
		Ranges: modelparams.Ranges,
	}
	if model != nil {
		resp.Model = model.Key()
		for param := range modelparams.Supported(modelparams.Provider(model.Provider)) {
			resp.Supported = append(resp.Supported, param)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeOpError maps a prompt operation error to an HTTP status: validation
// failures are client errors, missing files are 404, everything else is a
// storage failure.
func writeOpError(w http.ResponseWriter, err error) {
	switch {
	case prompts.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, fs.ErrNotExist):
		writeError(w, http.StatusNotFound, "prompt not found")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
