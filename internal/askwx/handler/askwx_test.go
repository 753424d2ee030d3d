package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/askwx/pkg/utils/errors"
	"github.com/kart-io/askwx/pkg/utils/json"
	"github.com/kart-io/askwx/pkg/utils/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeService struct {
	calls    int
	question string
	answer   string
	err      error
}

func (f *fakeService) Answer(_ context.Context, q string) (string, error) {
	f.calls++
	f.question = q
	return f.answer, f.err
}

func newRouter(svc *fakeService) *gin.Engine {
	h := NewAskHandler(svc)
	r := gin.New()
	r.POST("/askwx", h.Ask)
	r.POST("/v1/ask", h.AskV1)
	r.GET("/health", Health)
	return r
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAskLegacy(t *testing.T) {
	svc := &fakeService{answer: "Paris is the capital of France."}
	w := post(newRouter(svc), "/askwx", `{"question":"What is the capital of France?"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"answer":"Paris is the capital of France."}`, w.Body.String())
	assert.Equal(t, "What is the capital of France?", svc.question)
}

func TestAskLegacyEmptyQuestionIsValid(t *testing.T) {
	svc := &fakeService{answer: ""}
	w := post(newRouter(svc), "/askwx", `{"question":""}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"answer":""}`, w.Body.String())
	assert.Equal(t, 1, svc.calls)
}

func TestAskLegacyClientErrors(t *testing.T) {
	for name, body := range map[string]string{
		"missing field": `{}`,
		"null":          `{"question":null}`,
		"not a string":  `{"question":42}`,
		"not json":      `question=hi`,
	} {
		t.Run(name, func(t *testing.T) {
			svc := &fakeService{}
			w := post(newRouter(svc), "/askwx", body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var got map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, errors.ErrAskInvalidRequest.MessageEN, got["Error"])
			assert.Equal(t, 0, svc.calls)
		})
	}
}

func TestAskLegacyBackendErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{errors.ErrAskRetrieval, http.StatusBadGateway},
		{errors.ErrAskAuth, http.StatusInternalServerError},
		{errors.ErrAskGeneration, http.StatusBadGateway},
		{errors.ErrAskTimeout, http.StatusGatewayTimeout},
	}
	for _, tt := range tests {
		w := post(newRouter(&fakeService{err: tt.err}), "/askwx", `{"question":"q"}`)
		assert.Equal(t, tt.status, w.Code)

		var got map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, errors.FromError(tt.err).MessageEN, got["Error"])
	}
}

func TestAskV1(t *testing.T) {
	w := post(newRouter(&fakeService{answer: "Paris"}), "/v1/ask", `{"question":"q"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":0,"http_code":200,"message":"success","data":{"answer":"Paris"}}`, w.Body.String())

	w = post(newRouter(&fakeService{err: errors.ErrAskAuth}), "/v1/ask", `{"question":"q"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, errors.ErrAskAuth.Code, resp.Code)
	assert.Equal(t, "Issue obtaining access token. Check variables?", resp.Message)
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter(&fakeService{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
