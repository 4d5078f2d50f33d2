package obs_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-checkout/internal/obs"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := obs.NewLogger("json", "debug", &buf)
	logger.Debug().Str("sku", "ipd").Msg("scanned")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "debug", entry["level"])
	require.Equal(t, "ipd", entry["sku"])
	require.Equal(t, "scanned", entry["message"])
	require.Contains(t, entry, "time")
}

func TestNewLoggerLevelFallback(t *testing.T) {
	var buf bytes.Buffer
	logger := obs.NewLogger("json", "loud", &buf)
	logger.Debug().Msg("hidden")
	require.Zero(t, buf.Len())

	logger.Info().Msg("shown")
	require.Contains(t, buf.String(), "shown")
}

func TestNewLoggerConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := obs.NewLogger("console", "info", &buf)
	logger.Info().Str("checkout_id", "abc").Msg("checkout created")
	require.Contains(t, buf.String(), "checkout created")
	require.Contains(t, buf.String(), "checkout_id=abc")
}

func TestMetricsReuseRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := obs.NewMetrics("checkout", reg)
	second := obs.NewMetrics("checkout", reg)

	first.ObserveCreated(nil)
	second.ObserveCreated(errors.New("boom"))
	second.ObserveScan()
	second.ObserveScan()

	require.Equal(t, 1.0, testutil.ToFloat64(first.CheckoutsCreated.WithLabelValues("ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(first.CheckoutsCreated.WithLabelValues("rejected")))
	require.Equal(t, 2.0, testutil.ToFloat64(first.ItemsScanned))
}

func TestNilMetricsAreNoop(t *testing.T) {
	var m *obs.Metrics
	m.ObserveCreated(nil)
	m.ObserveScan()
}
