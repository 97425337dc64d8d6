package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/URVIL2512/Finance-Suite-sub001/utils"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seen struct {
	businessId    string
	userId        int
	userName      string
	correlationId string
}

func newRouter(record *seen, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CorrelationMiddleware())
	r.Use(extra...)
	r.GET("/api/ping", SessionMiddleware(), func(c *gin.Context) {
		ctx := c.Request.Context()
		record.businessId, _ = utils.GetBusinessIdFromContext(ctx)
		record.userId, _ = utils.GetUserIdFromContext(ctx)
		record.userName, _ = utils.GetUserNameFromContext(ctx)
		record.correlationId, _ = utils.GetCorrelationIdFromContext(ctx)
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestSessionMiddleware_ReadsGatewayHeaders(t *testing.T) {
	var got seen
	r := newRouter(&got)

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set(BusinessIdHeader, " biz-1 ")
	req.Header.Set(UserIdHeader, "42")
	req.Header.Set(UserNameHeader, "Asha")
	req.Header.Set(CorrelationHeader, "cid-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, seen{businessId: "biz-1", userId: 42, userName: "Asha", correlationId: "cid-123"}, got)
	assert.Equal(t, "cid-123", w.Header().Get(CorrelationHeader))
}

func TestSessionMiddleware_Rejections(t *testing.T) {
	var got seen
	r := newRouter(&got)

	cases := []struct {
		name    string
		headers map[string]string
	}{
		{name: "no business", headers: map[string]string{}},
		{name: "bad user id", headers: map[string]string{BusinessIdHeader: "biz-1", UserIdHeader: "abc"}},
		{name: "token without redis", headers: map[string]string{TokenHeader: "t-1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestCorrelationMiddleware_GeneratesId(t *testing.T) {
	var got seen
	r := newRouter(&got)

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set(BusinessIdHeader, "biz-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Len(t, got.correlationId, 36)
	assert.Equal(t, got.correlationId, w.Header().Get(CorrelationHeader))
}

func TestRateLimiter_PassesThroughWithoutRedis(t *testing.T) {
	var got seen
	limiter := NewRateLimiter(func() *redis.Client { return nil }, 1, time.Minute)
	r := newRouter(&got, limiter.RateLimitMiddleware)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
		req.Header.Set(BusinessIdHeader, "biz-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}
