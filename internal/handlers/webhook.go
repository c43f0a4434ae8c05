package handlers

import (
	"encoding/json"
	"net/http"

	"webhook-proxy/internal/common/errors"
	"webhook-proxy/internal/common/logging"
	"webhook-proxy/internal/common/validation"
)

// maxBodyBytes caps inbound webhook bodies.
const maxBodyBytes = 1 << 20

const (
	errInvalidParameters = "invalid parameters"
	detailsMissingFields = "sessionId and userMessage are required in the request body"
	errProcessingFailed  = "internal server error while processing the message"
)

// WebhookRequest is the inbound message.
type WebhookRequest struct {
	SessionID   string `json:"sessionId" validate:"required"`
	UserMessage string `json:"userMessage" validate:"required"`
	TimeZone    string `json:"timeZone,omitempty"`
}

// WebhookResponse carries the agent's reply text.
type WebhookResponse struct {
	Reply string `json:"reply"`
}

// ErrorResponse is the body of every 4xx/5xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// HandleGenericWebhook forwards a chat message to the agent and returns its reply.
// @Summary Forward a message to the conversational agent
// @Tags webhooks
// @Accept json
// @Produce json
// @Param payload body WebhookRequest true "Message and session"
// @Success 200 {object} WebhookResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /generic-webhook-endpoint [post]
func (h *Handlers) HandleGenericWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithContext(ctx)

	var req WebhookRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		logger.Warn("Rejected webhook request with unreadable body", logging.Err(err))
		h.sendJSONError(w, http.StatusBadRequest, errInvalidParameters, detailsMissingFields)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		logger.Warn("Rejected webhook request", logging.Any("fields", validation.FieldErrors(err)))
		h.sendJSONError(w, http.StatusBadRequest, errInvalidParameters, detailsMissingFields)
		return
	}

	logger = logger.WithFields(logging.String("session_id", req.SessionID))
	logger.Info("Webhook request received", logging.Int("message_length", len(req.UserMessage)))

	accessToken, err := h.tokens.GetValidAccessToken(ctx)
	if err != nil {
		h.sendProcessingError(w, logger, err)
		return
	}

	reply, err := h.intents.DetectIntent(ctx, accessToken, req.SessionID, req.UserMessage, req.TimeZone)
	if err != nil {
		h.sendProcessingError(w, logger, err)
		return
	}

	logger.Debug("Sending agent reply", logging.String("reply", reply.ResponseText))
	h.sendJSONResponse(w, http.StatusOK, WebhookResponse{Reply: reply.ResponseText})
}

func (h *Handlers) sendProcessingError(w http.ResponseWriter, logger logging.Logger, err error) {
	logger.Error("Failed to process webhook message", err, logging.String("error_type", string(errors.GetType(err))))
	h.sendJSONError(w, http.StatusInternalServerError, errProcessingFailed, errors.Message(err))
}
