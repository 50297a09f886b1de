package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/rentivu/internal/interface/http"
	"github.com/oksasatya/rentivu/internal/interface/middleware"
)

// Limits guards the credential endpoints. A nil Redis client disables it.
type Limits struct {
	RDB          *redis.Client
	KeyPrefix    string
	AllowPrivate bool
}

func (l Limits) limiter(limit int, window time.Duration) gin.HandlerFunc {
	var allow middleware.AllowFunc
	if l.AllowPrivate {
		allow = middleware.AllowPrivateIP()
	}
	return middleware.RateLimit(l.RDB, limit, window, middleware.KeyByIPAndPath(l.KeyPrefix), allow)
}

type AuthModule struct {
	Handler *handlers.AuthHandler
	Limits  Limits
}

func NewAuthModule(h *handlers.AuthHandler, limits Limits) *AuthModule {
	return &AuthModule{Handler: h, Limits: limits}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	loginLimiter := m.Limits.limiter(10, time.Minute)
	registerLimiter := m.Limits.limiter(5, time.Minute)

	rg.GET("/auth/state", m.Handler.State)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.POST("/auth/logout", m.Handler.Logout)
	rg.POST("/auth/register", registerLimiter, m.Handler.Register)
}
