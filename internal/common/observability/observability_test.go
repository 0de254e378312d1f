package observability

import (
	"context"
	"strings"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservability_RecordRequest(t *testing.T) {
	reg := promclient.NewRegistry()
	obs := New("gateway-test", reg)
	defer obs.Shutdown()

	obs.RecordRequest(context.Background(), "http", "fraud-detection", 200, 15*time.Millisecond)
	obs.RecordRequest(context.Background(), "http", "fraud-detection", 502, 30*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	joined := strings.Join(names, ",")
	assert.Contains(t, joined, "requests")
	assert.Contains(t, joined, "duration")
}

func TestObservability_ZeroValue(t *testing.T) {
	var obs Observability
	assert.NotPanics(t, func() {
		obs.RecordRequest(context.Background(), "zeebe", "document-suggestion", 200, time.Millisecond)
		obs.Shutdown()
	})
}

func TestTracing_ShutdownNil(t *testing.T) {
	var tr *Tracing
	assert.NoError(t, tr.Shutdown())
}

func TestNewTracing(t *testing.T) {
	tr, err := NewTracing(TracingOptions{
		ServiceName:       "gateway-test",
		CollectorEndpoint: "http://127.0.0.1:1/api/traces",
		SampleRatio:       0,
	})
	require.NoError(t, err)
	assert.NoError(t, tr.Shutdown())
}
