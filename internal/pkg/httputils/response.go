// Package httputils provides HTTP utility functions.
package httputils

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/askwx/pkg/utils/errors"
	"github.com/kart-io/askwx/pkg/utils/response"
)

// WriteResponse writes the response to the client.
// It handles both success and error cases, ensuring consistent response format.
func WriteResponse(c *gin.Context, err error, data interface{}) {
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, data)
}

// LegacyAnswer is the success body of the original /askwx endpoint.
type LegacyAnswer struct {
	Answer string `json:"answer"`
}

// LegacyError is the failure body of the original /askwx endpoint.
type LegacyError struct {
	Error string `json:"Error"`
}

// WriteLegacy writes {"answer": ...} on success and {"Error": message} on
// failure, with the HTTP status taken from the error code.
func WriteLegacy(c *gin.Context, err error, answer string) {
	if err != nil {
		e := errors.FromError(err)
		c.AbortWithStatusJSON(e.HTTPStatus(), LegacyError{Error: e.MessageEN})
		return
	}
	c.JSON(200, LegacyAnswer{Answer: answer})
}
