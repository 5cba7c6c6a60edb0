package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventapi/config"
	"eventapi/models/memstore"
	"eventapi/utils"
)

func TestBootstrapAdmin_CreatesOnce(t *testing.T) {
	ctx := context.Background()
	users := memstore.New().Repositories().Users
	cfg := config.AdminBootstrapConfig{Name: "Root", Email: "root@example.com", Password: "s3cretpw"}

	require.NoError(t, bootstrapAdmin(ctx, users, cfg, zerolog.Nop()))
	require.NoError(t, bootstrapAdmin(ctx, users, cfg, zerolog.Nop()))

	admin, err := users.GetByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)
	assert.True(t, utils.CheckPasswordHash("s3cretpw", admin.Password))
}

func TestNewEngine_CORSExposesTokenHeader(t *testing.T) {
	engine := newEngine(config.Config{}, zerolog.Nop())
	engine.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://example.test")
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Auth-Token")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestNewEngine_RecoversPanics(t *testing.T) {
	engine := newEngine(config.Config{}, zerolog.Nop())
	engine.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Internal Server Error"}`, w.Body.String())
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "eventapi dev\n", out.String())
}
