package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultClientConfig(t *testing.T) {
	config := DefaultClientConfig()

	assert.Equal(t, 30*time.Second, config.Timeout)
	assert.Equal(t, 100, config.MaxIdleConns)
	assert.Equal(t, 10, config.MaxIdleConnsPerHost)
	assert.Equal(t, 90*time.Second, config.IdleConnTimeout)
	assert.Equal(t, "webhook-proxy/1.0", config.UserAgent)
	assert.Nil(t, config.Transport)
}

func TestOptions(t *testing.T) {
	config := DefaultClientConfig()

	WithTimeout(5 * time.Second)(&config)
	WithUserAgent("test-agent")(&config)

	assert.Equal(t, 5*time.Second, config.Timeout)
	assert.Equal(t, 10, config.MaxIdleConnsPerHost)
	assert.Equal(t, "test-agent", config.UserAgent)
	// Other fields should remain unchanged
	assert.Equal(t, 100, config.MaxIdleConns)
}

func TestNewHTTPClientWithTimeout(t *testing.T) {
	client := NewHTTPClientWithTimeout(7 * time.Second)
	assert.Equal(t, 7*time.Second, client.Timeout)
}

func TestNewHTTPClient_UserAgent(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	t.Run("sets default user agent", func(t *testing.T) {
		client := NewHTTPClient()
		resp, err := client.Get(server.URL)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, "webhook-proxy/1.0", got)
	})

	t.Run("keeps caller user agent", func(t *testing.T) {
		client := NewHTTPClient()
		req, err := http.NewRequest(http.MethodGet, server.URL, nil)
		require.NoError(t, err)
		req.Header.Set("User-Agent", "custom/2.0")

		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, "custom/2.0", got)
	})

	t.Run("custom transport without user agent", func(t *testing.T) {
		client := NewHTTPClient(WithTransport(http.DefaultTransport), WithUserAgent(""))
		assert.Equal(t, http.DefaultTransport, client.Transport)
	})
}
