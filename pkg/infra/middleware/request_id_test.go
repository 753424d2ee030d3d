package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	ctxlog "github.com/kart-io/askwx/pkg/infra/logger"
	"github.com/kart-io/askwx/pkg/infra/middleware/common"
	mwopts "github.com/kart-io/askwx/pkg/options/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(opts mwopts.RequestIDOptions, seen *string) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDWithOptions(opts))
	r.GET("/ping", func(c *gin.Context) {
		*seen = common.GetRequestID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestRequestIDGenerated(t *testing.T) {
	var seen string
	r := newEngine(*mwopts.NewRequestIDOptions(), &seen)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	got := w.Header().Get("X-Request-ID")
	assert.Len(t, got, 26)
	assert.Equal(t, got, seen)
}

func TestRequestIDPropagated(t *testing.T) {
	var seen string
	opts := mwopts.RequestIDOptions{Header: "X-Trace", GeneratorType: "hex"}
	r := newEngine(opts, &seen)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Trace", "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc", w.Header().Get("X-Trace"))
	assert.Equal(t, "abc", seen)
}

func TestRequestIDAddedToLogFields(t *testing.T) {
	var fields []interface{}
	r := gin.New()
	r.Use(RequestIDWithOptions(*mwopts.NewRequestIDOptions()))
	r.GET("/ping", func(c *gin.Context) {
		fields = ctxlog.GetContextFields(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-7")
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, []interface{}{"request_id", "req-7"}, fields)
}
