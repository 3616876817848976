package config

import (
	"encoding/json"
	"net/http"
)

type Response struct {
	ActiveProvider string   `json:"active_provider"`
	Available      []string `json:"available"`
}

type SwitchRequest struct {
	Provider string `json:"provider"`
}

// ProviderSwitcher is satisfied by *agent.Manager.
type ProviderSwitcher interface {
	GetActiveProvider() string
	Available() []string
	SetGlobalProvider(name string) error
}

// Handler holds dependencies for config endpoints
type Handler struct {
	agents ProviderSwitcher
}

// NewHandler creates a new config handler
func NewHandler(agents ProviderSwitcher) *Handler {
	return &Handler{agents: agents}
}

func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	h.writeState(w)
}

func (h *Handler) HandleSwitch(w http.ResponseWriter, r *http.Request) {
	var req SwitchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.agents.SetGlobalProvider(req.Provider); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.writeState(w)
}

func (h *Handler) writeState(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(Response{
		ActiveProvider: h.agents.GetActiveProvider(),
		Available:      h.agents.Available(),
	})
}
