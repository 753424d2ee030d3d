// Package handler provides HTTP handlers for the askwx service.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	"github.com/kart-io/version"

	"github.com/kart-io/askwx/internal/askwx/biz"
	"github.com/kart-io/askwx/internal/pkg/httputils"
	"github.com/kart-io/askwx/pkg/utils/errors"
)

// AskHandler handles question answering requests.
type AskHandler struct {
	service biz.Service
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(service biz.Service) *AskHandler {
	return &AskHandler{service: service}
}

// AskRequest 问答请求。question 必须存在且为字符串，空字符串是合法的问题。
type AskRequest struct {
	Question *string `json:"question" binding:"required"`
}

// AskResponse 问答响应数据。
type AskResponse struct {
	Answer string `json:"answer"`
}

func (h *AskHandler) answer(c *gin.Context) (string, error) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warnw("invalid ask request", "error", err.Error())
		return "", errors.ErrAskInvalidRequest.WithCause(err)
	}
	return h.service.Answer(c.Request.Context(), *req.Question)
}

// Ask answers a question using the original wire format:
// {"answer": "..."} on success, {"Error": "..."} on failure.
func (h *AskHandler) Ask(c *gin.Context) {
	answer, err := h.answer(c)
	httputils.WriteLegacy(c, err, answer)
}

// AskV1 answers a question wrapped in the standard response envelope.
func (h *AskHandler) AskV1(c *gin.Context) {
	answer, err := h.answer(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, AskResponse{Answer: answer})
}

// Health reports liveness and the build version.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": version.Get().GitVersion,
	})
}
