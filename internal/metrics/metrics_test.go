package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordLogin(t *testing.T) {
	before := testutil.ToFloat64(loginsTotal.WithLabelValues("success"))
	RecordLogin("success")
	assert.Equal(t, before+1, testutil.ToFloat64(loginsTotal.WithLabelValues("success")))
}

func TestRecordGraphRequest_Outcome(t *testing.T) {
	ok := graphRequestsTotal.WithLabelValues("users", "list", "ok")
	failed := graphRequestsTotal.WithLabelValues("users", "list", "error")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	RecordGraphRequest("users", "list", nil)
	RecordGraphRequest("users", "list", errors.New("boom"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(failed))
}

func TestSetDependencyHealth(t *testing.T) {
	SetDependencyHealth("redis", false)
	assert.Equal(t, 0.0, testutil.ToFloat64(dependencyHealth.WithLabelValues("redis")))
	SetDependencyHealth("redis", true)
	assert.Equal(t, 1.0, testutil.ToFloat64(dependencyHealth.WithLabelValues("redis")))
}

func TestHandler_ExposesCounters(t *testing.T) {
	RecordForcedLogout()

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "admin_gateway_forced_logouts_total")
}
