// Package dialogflow is a minimal Dialogflow CX v3 client covering the
// sessions detectIntent call.
package dialogflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"webhook-proxy/internal/common/errors"
	commonhttp "webhook-proxy/internal/common/http"
	"webhook-proxy/internal/common/logging"
	"webhook-proxy/internal/metrics"
)

// ErrMsgCommunication is used when the provider gives no error message of its own.
const ErrMsgCommunication = "failed to communicate with Dialogflow CX"

// maxResponseBytes bounds how much of a detectIntent response is read.
const maxResponseBytes = 4 << 20

// Config identifies the agent and the defaults applied to every query.
type Config struct {
	ProjectID       string
	LocationID      string
	AgentID         string
	LanguageCode    string
	DefaultTimeZone string
	// BaseURL overrides the host derived from LocationID
	BaseURL    string
	HTTPClient *http.Client
}

// AgentReply is the outcome of one detectIntent call.
type AgentReply struct {
	// ResponseText is the only part surfaced to webhook callers
	ResponseText string
	ResponseID   string
	MatchType    string
	RawResponse  json.RawMessage
}

// Client calls detectIntent for a single configured agent.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
}

// NewClient validates cfg and returns a Client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ProjectID == "" || cfg.AgentID == "" {
		return nil, errors.ConfigError("dialogflow project and agent IDs are required")
	}
	if cfg.LocationID == "" {
		cfg.LocationID = "global"
	}
	if cfg.LanguageCode == "" {
		cfg.LanguageCode = "en-US"
	}
	if cfg.DefaultTimeZone == "" {
		cfg.DefaultTimeZone = "UTC"
	}

	c := &Client{
		cfg:        cfg,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: cfg.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = BaseURL(cfg.LocationID)
	}
	if c.httpClient == nil {
		c.httpClient = commonhttp.NewHTTPClientWithTimeout(30 * time.Second)
	}
	return c, nil
}

// BaseURL returns the regional API host for location.
func BaseURL(location string) string {
	loc := strings.TrimSpace(location)
	if loc == "" || loc == "global" {
		return "https://dialogflow.googleapis.com"
	}
	return fmt.Sprintf("https://%s-dialogflow.googleapis.com", loc)
}

// SessionPath returns the resource name of a session under the configured agent.
func (c *Client) SessionPath(sessionID string) string {
	return fmt.Sprintf("projects/%s/locations/%s/agents/%s/sessions/%s",
		c.cfg.ProjectID, c.cfg.LocationID, c.cfg.AgentID, url.PathEscape(sessionID))
}

// DetectIntent sends userMessage to the agent within sessionID. An empty
// timeZone is replaced by the configured default. Failures are returned as
// intent_detection errors whose message is the provider's error.message
// when the response carries one.
func (c *Client) DetectIntent(ctx context.Context, accessToken, sessionID, userMessage, timeZone string) (*AgentReply, error) {
	if timeZone == "" {
		timeZone = c.cfg.DefaultTimeZone
	}

	logger := logging.WithContext(ctx).WithFields(
		logging.String("session_id", sessionID),
		logging.String("time_zone", timeZone),
	)

	body, err := buildRequestBody(userMessage, c.cfg.LanguageCode, timeZone)
	if err != nil {
		return nil, errors.IntentDetectionError(ErrMsgCommunication, err)
	}

	endpoint := fmt.Sprintf("%s/v3/%s:detectIntent", c.baseURL, c.SessionPath(sessionID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.IntentDetectionError(ErrMsgCommunication, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	logger.Debug("Sending detectIntent request",
		logging.String("url", endpoint),
		logging.Int("token_length", len(accessToken)),
	)

	start := time.Now()
	reply, err := c.do(req)
	metrics.RecordIntentRequest(err, time.Since(start))
	if err != nil {
		logger.Error("detectIntent call failed", err)
		return nil, err
	}

	logger.Info("detectIntent succeeded",
		logging.String("response_id", reply.ResponseID),
		logging.String("match_type", reply.MatchType),
		logging.Duration("duration", time.Since(start)),
	)
	return reply, nil
}

func (c *Client) do(req *http.Request) (*AgentReply, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.IntentDetectionError(ErrMsgCommunication, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.IntentDetectionError(ErrMsgCommunication, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.IntentDetectionError(upstreamErrorMessage(data), fmt.Errorf("detectIntent returned status %d", resp.StatusCode)).
			WithCode(gjson.GetBytes(data, "error.status").String()).
			WithContext("status", resp.StatusCode)
	}
	if !gjson.ValidBytes(data) {
		return nil, errors.IntentDetectionError(ErrMsgCommunication, fmt.Errorf("detectIntent returned invalid JSON"))
	}

	return &AgentReply{
		ResponseText: ExtractResponseText(data),
		ResponseID:   gjson.GetBytes(data, "responseId").String(),
		MatchType:    gjson.GetBytes(data, "queryResult.match.matchType").String(),
		RawResponse:  json.RawMessage(data),
	}, nil
}

// buildRequestBody renders {queryInput:{text:{text},languageCode},queryParams:{timeZone}}.
func buildRequestBody(text, languageCode, timeZone string) ([]byte, error) {
	body := []byte(`{}`)
	var err error
	if body, err = sjson.SetBytes(body, "queryInput.text.text", text); err != nil {
		return nil, err
	}
	if body, err = sjson.SetBytes(body, "queryInput.languageCode", languageCode); err != nil {
		return nil, err
	}
	if body, err = sjson.SetBytes(body, "queryParams.timeZone", timeZone); err != nil {
		return nil, err
	}
	return body, nil
}

func upstreamErrorMessage(body []byte) string {
	if msg := gjson.GetBytes(body, "error.message").String(); msg != "" {
		return msg
	}
	return ErrMsgCommunication
}
