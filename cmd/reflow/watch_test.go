package main

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iw2rmb/reflow/format"
	"github.com/iw2rmb/reflow/internal/metrics"
)

func TestServeMetrics(t *testing.T) {
	reg := prom.NewRegistry()
	rec := metrics.NewRecorder(reg)
	rec.ObserveFormat(format.OpDocument, "gofmt", 1, time.Millisecond, nil)

	addr, stop, err := serveMetrics("127.0.0.1:0", reg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer stop()

	resp, err := http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "reflow_format_requests_total")
}

func TestServeMetrics_BadAddress(t *testing.T) {
	_, _, err := serveMetrics("not-an-address", prom.NewRegistry(), slog.Default())
	require.Error(t, err)
}
