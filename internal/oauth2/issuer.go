package oauth2

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"webhook-proxy/internal/common/errors"
	commonhttp "webhook-proxy/internal/common/http"
	"webhook-proxy/internal/common/logging"
	"webhook-proxy/internal/metrics"
)

// JWTBearerGrantType is the grant_type for RFC 7523 assertions.
const JWTBearerGrantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"

// ErrMsgTokenAcquisition is the message carried by every token acquisition failure.
const ErrMsgTokenAcquisition = "failed to obtain access token from Google Cloud"

// TokenResponse represents an OAuth2 token response from the authorization server.
type TokenResponse struct {
	// AccessToken is the access token issued by the authorization server
	AccessToken string `json:"access_token"`
	// TokenType is the type of token issued (typically "Bearer")
	TokenType string `json:"token_type"`
	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int64 `json:"expires_in"`
}

// IssuerConfig configures an Issuer.
type IssuerConfig struct {
	// ClientEmail is the service account email, used as the assertion issuer
	ClientEmail string
	// PrivateKey is the PEM encoded RSA key of the service account
	PrivateKey string
	// TokenURI is the token endpoint and the assertion audience
	TokenURI string
	// Scope defaults to DialogflowScope
	Scope string
	// HTTPClient defaults to a client with a 30 second timeout
	HTTPClient *http.Client
	// Now defaults to time.Now
	Now func() time.Time
}

// Issuer hands out access tokens from its Cache and refreshes them through
// the JWT bearer exchange when the cache is empty or stale.
type Issuer struct {
	clientEmail string
	tokenURI    string
	scope       string
	key         *rsa.PrivateKey
	httpClient  *http.Client
	now         func() time.Time

	cache *Cache
	group singleflight.Group
}

// NewIssuer parses the private key and returns a ready Issuer.
func NewIssuer(cfg IssuerConfig) (*Issuer, error) {
	if cfg.ClientEmail == "" {
		return nil, errors.ConfigError("service account email is required")
	}
	if cfg.TokenURI == "" {
		return nil, errors.ConfigError("token URI is required")
	}

	key, err := ParsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, err
	}

	i := &Issuer{
		clientEmail: cfg.ClientEmail,
		tokenURI:    cfg.TokenURI,
		scope:       cfg.Scope,
		key:         key,
		httpClient:  cfg.HTTPClient,
		now:         cfg.Now,
		cache:       NewCache(),
	}
	if i.scope == "" {
		i.scope = DialogflowScope
	}
	if i.httpClient == nil {
		i.httpClient = commonhttp.NewHTTPClientWithTimeout(30 * time.Second)
	}
	if i.now == nil {
		i.now = time.Now
	}

	return i, nil
}

// GetValidAccessToken returns a cached token when one is valid, otherwise
// performs a single exchange shared by all concurrent callers. The exchange
// outlives the caller that started it and is bounded by the HTTP client
// timeout. On failure the cache is cleared and a token_acquisition error is
// returned.
func (i *Issuer) GetValidAccessToken(ctx context.Context) (string, error) {
	if token, ok := i.cache.Get(i.now()); ok {
		metrics.RecordTokenCacheHit()
		return token, nil
	}

	refreshCtx := context.WithoutCancel(ctx)
	ch := i.group.DoChan("access_token", func() (interface{}, error) {
		// A refresh that finished while this caller waited may have filled the slot.
		if token, ok := i.cache.Get(i.now()); ok {
			return token, nil
		}
		return i.refresh(refreshCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", errors.TokenAcquisitionError(ErrMsgTokenAcquisition, ctx.Err())
	}
}

// CachedToken returns the current cache slot.
func (i *Issuer) CachedToken() CachedToken {
	return i.cache.Snapshot()
}

// HasValidToken reports whether a token is cached and not yet stale.
func (i *Issuer) HasValidToken() bool {
	return i.cache.Snapshot().Valid(i.now())
}

func (i *Issuer) refresh(ctx context.Context) (string, error) {
	logger := logging.WithContext(ctx)
	logger.Info("Requesting new access token", logging.String("token_uri", i.tokenURI))

	issuedAt := i.now()
	claims := NewAssertionClaims(i.clientEmail, i.scope, i.tokenURI, issuedAt)

	assertion, err := SignAssertion(claims, i.key)
	if err != nil {
		i.cache.Reset()
		logger.Error("Failed to sign token assertion", err)
		return "", errors.TokenAcquisitionError(ErrMsgTokenAcquisition, err)
	}

	resp, err := i.requestToken(ctx, assertion)
	metrics.RecordTokenFetch(err)
	if err != nil {
		i.cache.Reset()
		logger.Error("Failed to obtain access token", err, logging.String("token_uri", i.tokenURI))
		return "", errors.TokenAcquisitionError(ErrMsgTokenAcquisition, err)
	}

	stored := i.cache.Store(resp.AccessToken, resp.ExpiresIn, issuedAt)
	logger.Info("Access token obtained",
		logging.Int64("expires_in", resp.ExpiresIn),
		logging.Time("expires_at", time.Unix(stored.ExpiresAt, 0).UTC()),
	)

	return resp.AccessToken, nil
}

// requestToken performs the assertion exchange at the token endpoint
func (i *Issuer) requestToken(ctx context.Context, assertion string) (*TokenResponse, error) {
	data := url.Values{}
	data.Set("grant_type", JWTBearerGrantType)
	data.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.tokenURI, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error       string `json:"error"`
			Description string `json:"error_description"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			return nil, fmt.Errorf("token request failed: %s - %s", errResp.Error, errResp.Description)
		}
		return nil, fmt.Errorf("token request failed with status %d", resp.StatusCode)
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("token response did not include an access_token")
	}

	return &tokenResp, nil
}
