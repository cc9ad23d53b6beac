package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/advent-api/internal/middleware"
	"github.com/noah-isme/advent-api/internal/models"
	"github.com/noah-isme/advent-api/internal/service"
	"github.com/noah-isme/advent-api/pkg/config"
)

func newAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("changeme"), bcrypt.MinCost)
	require.NoError(t, err)
	svc := service.NewAuthService(
		config.AdminConfig{Username: "admin", PasswordHash: string(hash)},
		config.JWTConfig{Secret: "test-secret", Expiration: time.Hour},
		nil, nil,
	)
	return NewAuthHandler(svc)
}

func authTestContext(t *testing.T, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodPost, "/admin/login", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestAuthHandlerLogin(t *testing.T) {
	h := newAuthHandler(t)

	body, err := json.Marshal(models.LoginRequest{Username: "admin", Password: "changeme"})
	require.NoError(t, err)
	c, w := authTestContext(t, body)
	h.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.AccessToken)
}

func TestAuthHandlerLoginWrongPassword(t *testing.T) {
	h := newAuthHandler(t)

	body, err := json.Marshal(models.LoginRequest{Username: "admin", Password: "guess"})
	require.NoError(t, err)
	c, w := authTestContext(t, body)
	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerLoginMalformedBody(t *testing.T) {
	h := newAuthHandler(t)

	c, w := authTestContext(t, []byte("{broken"))
	h.Login(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerMe(t *testing.T) {
	h := newAuthHandler(t)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, "/admin/me", nil)
	require.NoError(t, err)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{Username: "admin", Role: "admin"})
	h.Me(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"admin"`)
}

func TestAuthHandlerMeWithoutClaims(t *testing.T) {
	h := newAuthHandler(t)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, "/admin/me", nil)
	require.NoError(t, err)
	c.Request = req
	h.Me(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
