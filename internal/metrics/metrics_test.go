package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	Register()
	Register()

	before := testutil.ToFloat64(classifications.WithLabelValues("obese"))
	IncClassification("obese")
	IncClassification("obese")
	assert.Equal(t, before+2, testutil.ToFloat64(classifications.WithLabelValues("obese")))

	IncProfileRefresh("stale")
	assert.GreaterOrEqual(t, testutil.ToFloat64(profileRefreshes.WithLabelValues("stale")), 1.0)

	ObserveHTTP("/classify", http.StatusOK, 3*time.Millisecond)
	assert.GreaterOrEqual(t, testutil.ToFloat64(httpRequests.WithLabelValues("/classify", "200")), 1.0)
}
