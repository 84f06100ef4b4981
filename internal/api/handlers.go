package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/consoleagent/consoleagent/internal/persona"
	"github.com/consoleagent/consoleagent/pkg/agent"
	"github.com/consoleagent/consoleagent/pkg/models"
)

// Handlers holds the gateway's dependencies.
type Handlers struct {
	Engine *agent.Engine
}

// NewHandlers creates the handler set for an engine.
func NewHandlers(e *agent.Engine) *Handlers {
	return &Handlers{Engine: e}
}

// CallRequest is the POST /api/v1/call body.
type CallRequest struct {
	Prompt  string              `json:"prompt"`
	Context any                 `json:"context,omitempty"`
	Options *models.CallOptions `json:"options,omitempty"`
}

// CallResponse wraps the result with a server-assigned request id.
type CallResponse struct {
	RequestID string             `json:"request_id"`
	Result    models.AgentResult `json:"result"`
}

// Call runs one agent request to completion and returns the normalized
// result. The result itself reports denials and failures; the HTTP status
// is 200 for any completed pipeline run.
func (h *Handlers) Call(w http.ResponseWriter, r *http.Request) {
	var req CallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Prompt == "" {
		respondError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	result := h.Engine.Call(r.Context(), req.Prompt, req.Context, req.Options)
	respondJSON(w, http.StatusOK, CallResponse{
		RequestID: uuid.New().String(),
		Result:    result,
	})
}

// ListPersonas returns every registered persona definition.
func (h *Handlers) ListPersonas(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, persona.All())
}

// BudgetStats returns the engine's current usage counters.
func (h *Handlers) BudgetStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.Engine.Stats())
}

// GetConfig returns a snapshot of the active configuration, with the API
// key masked.
func (h *Handlers) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.Engine.Config()
	if cfg.APIKey != "" {
		cfg.APIKey = "********"
	}
	respondJSON(w, http.StatusOK, cfg)
}

// UpdateConfig merges a partial update into the engine configuration.
func (h *Handlers) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var update agent.ConfigUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	h.Engine.Configure(update)

	cfg := h.Engine.Config()
	if cfg.APIKey != "" {
		cfg.APIKey = "********"
	}
	respondJSON(w, http.StatusOK, cfg)
}

// Health is the liveness endpoint.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ─── Response helpers ────────────────────────────────────────

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
