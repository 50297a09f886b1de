package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/rentivu/config"
	"github.com/oksasatya/rentivu/internal/container"
	"github.com/oksasatya/rentivu/internal/infrastructure/catalog"
	"github.com/oksasatya/rentivu/internal/infrastructure/memory"
	"github.com/oksasatya/rentivu/pkg/validation"
)

func newEngine(t *testing.T, debug bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	cfg := config.Load()
	cfg.DebugMetricsEnabled = debug
	container.SetConfig(cfg)
	container.SetRedis(nil)
	container.SetStorage(memory.NewStore())
	cat, err := catalog.NewStatic()
	require.NoError(t, err)
	container.SetCatalog(cat)

	svc, err := container.BuildServices()
	require.NoError(t, err)
	container.SetServices(svc)

	engine := gin.New()
	reg := NewRegistry(engine, "")
	InitModules(reg)
	reg.RegisterAll()
	return engine
}

func routes(engine *gin.Engine) []string {
	var out []string
	for _, r := range engine.Routes() {
		out = append(out, r.Method+" "+r.Path)
	}
	return out
}

func TestInitModules_RegistersAPI(t *testing.T) {
	engine := newEngine(t, true)
	got := routes(engine)

	for _, want := range []string{
		"GET /api/auth/state",
		"POST /api/auth/login",
		"POST /api/auth/logout",
		"POST /api/auth/register",
		"GET /api/locations",
		"GET /api/rentals",
		"GET /api/rentals/:id",
		"GET /api/rentals/:id/reservations",
		"POST /api/rentals/:id/reservations",
		"GET /api/debug/vars",
	} {
		assert.Contains(t, got, want)
	}
}

func TestInitModules_DebugDisabled(t *testing.T) {
	engine := newEngine(t, false)
	assert.NotContains(t, routes(engine), "GET /api/debug/vars")
}

func TestRegistry_EndToEnd(t *testing.T) {
	engine := newEngine(t, true)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rentals?sort=price_asc", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []struct {
			Price float64 `json:"price"`
		} `json:"data"`
		Meta struct {
			PageSize int `json:"pageSize"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data)
	assert.LessOrEqual(t, len(body.Data), body.Meta.PageSize)
	for i := 1; i < len(body.Data); i++ {
		assert.LessOrEqual(t, body.Data[i-1].Price, body.Data[i].Price)
	}

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/debug/vars", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `"rentivu"`))
}

func TestRegistry_NoRoute(t *testing.T) {
	engine := newEngine(t, false)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "route not found")
}
