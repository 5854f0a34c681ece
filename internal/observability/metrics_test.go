package observability

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordOperation("browse_all", 0.1, nil)
		m.RecordConnection("connected")
		m.RecordTransaction("createToken", errors.New("boom"))
		m.RecordConfirmation(3)
		m.RecordUpload(nil)
		m.RecordFetch(nil)
		m.RecordResolution(3, nil)
		m.RecordRPC("eth_call", 0.01, nil)
	})
}

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics("test")

	m.RecordOperation("mint_and_list", 0.5, nil)
	m.RecordOperation("mint_and_list", 0.5, errors.New("boom"))
	m.RecordTransaction("createToken", nil)
	m.RecordResolution(4, nil)
	m.RecordResolution(0, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("mint_and_list", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("mint_and_list", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransactionsTotal.WithLabelValues("createToken", "ok")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.ItemsResolved))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ResolutionFailures))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics("test")
	m.RecordUpload(nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "test_metadata_uploads_total")
}
