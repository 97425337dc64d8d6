package middlewares

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/URVIL2512/Finance-Suite-sub001/config"
	"github.com/URVIL2512/Finance-Suite-sub001/utils"
	"github.com/gin-gonic/gin"
)

const (
	BusinessIdHeader = "X-Business-Id"
	UserIdHeader     = "X-User-Id"
	UserNameHeader   = "X-User-Name"
	TokenHeader      = "token"
)

var errUnauthorized = errors.New("unauthorized")

// Session is the value a login stores in redis under "Session:<token>".
type Session struct {
	BusinessId string `json:"business_id"`
	UserId     int    `json:"user_id"`
	UserName   string `json:"user_name"`
}

// SessionMiddleware puts the business and user on the request context.
// A token header is resolved through redis; without one the gateway headers are used.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := resolveSession(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		ctx := utils.SetBusinessIdInContext(c.Request.Context(), session.BusinessId)
		ctx = utils.SetUserIdInContext(ctx, session.UserId)
		if session.UserName != "" {
			ctx = utils.SetUserNameInContext(ctx, session.UserName)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func resolveSession(c *gin.Context) (*Session, error) {
	if token := c.GetHeader(TokenHeader); token != "" {
		return sessionFromRedis(c, token)
	}

	session := &Session{
		BusinessId: strings.TrimSpace(c.GetHeader(BusinessIdHeader)),
		UserName:   strings.TrimSpace(c.GetHeader(UserNameHeader)),
	}
	if session.BusinessId == "" {
		return nil, utils.ErrBusinessIdRequired
	}
	if v := strings.TrimSpace(c.GetHeader(UserIdHeader)); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id < 0 {
			return nil, errors.New("invalid user id")
		}
		session.UserId = id
	}
	return session, nil
}

func sessionFromRedis(c *gin.Context, token string) (*Session, error) {
	rdb := config.GetRedisDB()
	if rdb == nil {
		return nil, errUnauthorized
	}
	raw, err := rdb.Get(c.Request.Context(), "Session:"+token).Bytes()
	if err != nil {
		return nil, errUnauthorized
	}
	var session Session
	if err := json.Unmarshal(raw, &session); err != nil || session.BusinessId == "" {
		config.LogWarn(config.GetLogger(), "middlewares", "sessionFromRedis", "malformed session", nil, err)
		return nil, errUnauthorized
	}
	return &session, nil
}
