package response

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/askwx/pkg/infra/middleware/common"
	"github.com/kart-io/askwx/pkg/utils/errors"
)

// Fail writes err as an error envelope and aborts the handler chain.
func Fail(c *gin.Context, err error) {
	resp := Err(errors.FromError(err)).WithRequestID(common.GetRequestID(c.Request.Context()))
	defer Release(resp)
	c.AbortWithStatusJSON(resp.HTTPStatus(), resp)
}

// OK writes data in a success envelope.
func OK(c *gin.Context, data interface{}) {
	resp := Success(data).WithRequestID(common.GetRequestID(c.Request.Context()))
	defer Release(resp)
	c.JSON(resp.HTTPStatus(), resp)
}
