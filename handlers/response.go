package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/URVIL2512/Finance-Suite-sub001/config"
	"github.com/URVIL2512/Finance-Suite-sub001/utils"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

func statusFor(err error) int {
	switch {
	case utils.IsValidationError(err):
		return http.StatusBadRequest
	case utils.IsNotFound(err):
		return http.StatusNotFound
	case utils.IsConflictError(err):
		return http.StatusConflict
	case utils.IsDependencyError(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": ...}. Server errors are attached to the gin context for the
// error logger and answered with a generic message.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		config.LogError(config.GetLogger(), "handlers", c.FullPath(), c.Request.Method, map[string]string{"correlation_id": cid}, err)
		if status == http.StatusInternalServerError {
			c.AbortWithStatusJSON(status, gin.H{"error": "internal server error"})
			return
		}
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// bindJSON binds the body; an empty body is accepted when optional is set.
func bindJSON(c *gin.Context, obj any, optional bool) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	respondError(c, utils.NewValidationError("invalid request: %v", err))
	return false
}

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		respondError(c, utils.NewValidationError("invalid id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string) (*int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, utils.NewValidationError("%s must be a number", key)
	}
	return &v, nil
}

func queryDate(c *gin.Context, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return nil, utils.NewValidationError("%s must be a date like 2024-04-01", key)
	}
	return &t, nil
}

func queryBool(c *gin.Context, key string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, utils.NewValidationError("%s must be true or false", key)
	}
	return &v, nil
}

// paging reads limit and offset; both default to zero (no limit).
func paging(c *gin.Context) (limit int, offset int, err error) {
	l, err := queryInt(c, "limit")
	if err != nil {
		return 0, 0, err
	}
	o, err := queryInt(c, "offset")
	if err != nil {
		return 0, 0, err
	}
	if l != nil {
		if *l < 0 {
			return 0, 0, utils.NewValidationError("limit must not be negative")
		}
		limit = *l
	}
	if o != nil {
		if *o < 0 {
			return 0, 0, utils.NewValidationError("offset must not be negative")
		}
		offset = *o
	}
	return limit, offset, nil
}
