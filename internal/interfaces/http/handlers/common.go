// Package handlers implements the HTTP API surface.
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MarkSentinel/pkg/errors"
	"github.com/turtacn/MarkSentinel/pkg/types/common"
)

// writeAppError maps an application error onto its HTTP status. The body is
// a common.ErrorDetail, the same shape the SDK client decodes.
func writeAppError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	c.JSON(errors.HTTPStatusForCode(code), common.ErrorDetail{
		Code:    string(code),
		Message: err.Error(),
	})
}

// parsePagination extracts limit and offset query parameters.
func parsePagination(c *gin.Context) (limit, offset int) {
	limit = 20
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
