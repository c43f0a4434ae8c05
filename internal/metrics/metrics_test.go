package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTokenFetch(t *testing.T) {
	successBefore := testutil.ToFloat64(tokenFetchesTotal.WithLabelValues(OutcomeSuccess))
	failureBefore := testutil.ToFloat64(tokenFetchesTotal.WithLabelValues(OutcomeFailure))

	RecordTokenFetch(nil)
	RecordTokenFetch(errors.New("boom"))
	RecordTokenFetch(errors.New("boom"))

	assert.Equal(t, successBefore+1, testutil.ToFloat64(tokenFetchesTotal.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, failureBefore+2, testutil.ToFloat64(tokenFetchesTotal.WithLabelValues(OutcomeFailure)))
}

func TestRecordTokenCacheHit(t *testing.T) {
	before := testutil.ToFloat64(tokenCacheHitsTotal)
	RecordTokenCacheHit()
	assert.Equal(t, before+1, testutil.ToFloat64(tokenCacheHitsTotal))
}

func TestRecordIntentRequest(t *testing.T) {
	before := testutil.ToFloat64(intentRequestsTotal.WithLabelValues(OutcomeFailure))
	RecordIntentRequest(errors.New("upstream"), 25*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(intentRequestsTotal.WithLabelValues(OutcomeFailure)))
}

func TestObserveHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/generic-webhook-endpoint", "200"))
	ObserveHTTPRequest("POST", "/generic-webhook-endpoint", "200", time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/generic-webhook-endpoint", "200")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics() // second call must not panic on duplicate registration

	RecordTokenFetch(nil)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "webhook_proxy_token_fetches_total")
}
