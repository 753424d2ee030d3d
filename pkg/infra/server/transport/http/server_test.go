package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mwopts "github.com/kart-io/askwx/pkg/options/middleware"
	apierrors "github.com/kart-io/askwx/pkg/utils/errors"
	"github.com/kart-io/askwx/pkg/utils/json"
	"github.com/kart-io/askwx/pkg/utils/response"
)

func TestNoRouteReturnsEnvelope(t *testing.T) {
	s := NewServer(nil, nil, nil)

	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, apierrors.ErrNotFound.Code, resp.Code)
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, resp.RequestID, w.Header().Get("X-Request-ID"))
}

func TestMaxBodyBytes(t *testing.T) {
	opts := NewOptions()
	opts.MaxBodyBytes = 8
	s := NewServer(opts, nil, nil)
	s.Engine().POST("/echo", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestMetricsMiddlewareWired(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewServer(nil, nil, reg)
	require.NotNil(t, s.Metrics())

	s.Engine().GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	s.Engine().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "askwx_http_requests_total")

	disabled := mwopts.NewOptions()
	disabled.DisableMetrics = true
	assert.Nil(t, NewServer(nil, disabled, prometheus.NewRegistry()).Metrics())
}

func TestStartStop(t *testing.T) {
	opts := NewOptions()
	opts.Addr = "127.0.0.1:0"
	s := NewServer(opts, nil, nil)
	s.Engine().GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { _ = s.Stop(context.Background()) })

	resp, err := http.Get("http://" + s.Addr() + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Stop(context.Background()))
}
