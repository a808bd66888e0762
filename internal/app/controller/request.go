package controller

import (
	"bytes"
	"encoding/json"
	"strconv"

	apperrors "github.com/eatsplorer/eatsplorer-backend/internal/errors"
	"github.com/eatsplorer/eatsplorer-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// FlexibleID accepts both 12 and "12"; the legacy front end sends either.
type FlexibleID uint

func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return err
	}
	*id = FlexibleID(n)
	return nil
}

// FlexibleInt accepts a JSON number or a numeric string. null and "" read as 0.
type FlexibleInt int

func (n *FlexibleInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	v, err := strconv.Atoi(num.String())
	if err != nil {
		return err
	}
	*n = FlexibleInt(v)
	return nil
}

// IDRequest is the {id} body of the legacy delete routes.
type IDRequest struct {
	ID FlexibleID `json:"id" binding:"required"`
}

// bindJSON binds the body into req and answers 400 when it does not fit.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Invalid request body", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.InvalidRequest, "Invalid request data")
		return false
	}
	return true
}

// respondInternal logs err and answers 500 with the generic message.
func respondInternal(c *gin.Context, msg string, err error, fields ...map[string]interface{}) {
	middleware.GetLoggerFromContext(c).Error(msg, err, fields...)
	apperrors.ParseAndRespond(c, err, "")
}

// countResponse keeps the legacy COUNT(*) row shape.
func countResponse(n int64) []gin.H {
	return []gin.H{{"count": n}}
}
