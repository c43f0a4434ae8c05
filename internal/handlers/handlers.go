// Package handlers implements the HTTP endpoints of the webhook proxy.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"webhook-proxy/internal/common/logging"
	"webhook-proxy/internal/common/validation"
	"webhook-proxy/internal/dialogflow"
)

// TokenProvider supplies bearer tokens for the intent API.
type TokenProvider interface {
	GetValidAccessToken(ctx context.Context) (string, error)
	HasValidToken() bool
}

// IntentDetector forwards a user message to the conversational agent.
type IntentDetector interface {
	DetectIntent(ctx context.Context, accessToken, sessionID, userMessage, timeZone string) (*dialogflow.AgentReply, error)
}

// Handlers holds the dependencies shared by every endpoint.
type Handlers struct {
	tokens    TokenProvider
	intents   IntentDetector
	validator *validation.CentralizedValidator
	now       func() time.Time
}

// New creates the handlers backed by the given token provider and intent detector.
func New(tokens TokenProvider, intents IntentDetector) *Handlers {
	return &Handlers{
		tokens:    tokens,
		intents:   intents,
		validator: validation.NewCentralizedValidator(),
		now:       time.Now,
	}
}

// Root is a plain-text liveness probe.
// @Summary Liveness probe
// @Tags system
// @Produce plain
// @Success 200 {string} string "OK"
// @Router / [get]
func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Dialogflow CX webhook proxy is up. Send POST requests to /generic-webhook-endpoint.\n"))
}

// HealthCheck reports process health and whether a token is cached.
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":       "healthy",
		"timestamp":    h.now().UTC(),
		"token_cached": h.tokens.HasValidToken(),
	}

	h.sendJSONResponse(w, http.StatusOK, health)
}

func (h *Handlers) sendJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Error("Failed to encode JSON response", err)
	}
}

func (h *Handlers) sendJSONError(w http.ResponseWriter, status int, message, details string) {
	h.sendJSONResponse(w, status, ErrorResponse{Error: message, Details: details})
}
