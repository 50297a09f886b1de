package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"
)

type DebugModule struct {
	Limits Limits
}

func NewDebugModule(limits Limits) *DebugModule { return &DebugModule{Limits: limits} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// expvar counters, rate-limited per IP
	rg.GET("/debug/vars", m.Limits.limiter(120, time.Minute), gin.WrapH(expvar.Handler()))
}
