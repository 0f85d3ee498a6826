package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yieldvest/backend/internal/models"
	"github.com/yieldvest/backend/internal/store"
	"github.com/yieldvest/backend/internal/utils"
)

func authRouter(st store.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(st)
	router := gin.New()
	router.POST("/api/auth/register", handler.Register)
	router.POST("/api/auth/login", handler.Login)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func seedReferrer(t *testing.T, st store.Store) *models.User {
	t.Helper()
	hash, err := utils.HashPassword("password")
	require.NoError(t, err)
	user := &models.User{
		Phone:        "9000000000",
		PasswordHash: hash,
		ReferralCode: "WELCOME1",
	}
	require.NoError(t, st.CreateUser(user))
	return user
}

func TestRegisterRequiresValidReferralCode(t *testing.T) {
	st := store.NewMemoryStore()
	router := authRouter(st)
	seedReferrer(t, st)

	w := postJSON(t, router, "/api/auth/register", gin.H{
		"phone":         "9111111111",
		"password":      "secret123",
		"referral_code": "NOPE",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid referral code")

	w = postJSON(t, router, "/api/auth/register", gin.H{
		"phone":    "9111111111",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterLinksReferrer(t *testing.T) {
	st := store.NewMemoryStore()
	router := authRouter(st)
	referrer := seedReferrer(t, st)

	w := postJSON(t, router, "/api/auth/register", gin.H{
		"phone":         "9111111111",
		"password":      "secret123",
		"referral_code": "WELCOME1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	created, err := st.GetUserByPhone("9111111111")
	require.NoError(t, err)
	require.NotNil(t, created.ReferredBy)
	assert.Equal(t, referrer.ID, *created.ReferredBy)
	assert.NotEmpty(t, created.ReferralCode)
	assert.NotEqual(t, "WELCOME1", created.ReferralCode)

	var resp struct {
		Tokens utils.TokenPair `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)
}

func TestRegisterRejectsDuplicatePhone(t *testing.T) {
	st := store.NewMemoryStore()
	router := authRouter(st)
	seedReferrer(t, st)

	body := gin.H{
		"phone":         "9111111111",
		"password":      "secret123",
		"referral_code": "WELCOME1",
	}
	require.Equal(t, http.StatusCreated, postJSON(t, router, "/api/auth/register", body).Code)
	assert.Equal(t, http.StatusConflict, postJSON(t, router, "/api/auth/register", body).Code)
}

func TestLogin(t *testing.T) {
	st := store.NewMemoryStore()
	router := authRouter(st)
	seedReferrer(t, st)

	w := postJSON(t, router, "/api/auth/login", gin.H{
		"phone":    "9000000000",
		"password": "password",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, router, "/api/auth/login", gin.H{
		"phone":    "9000000000",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(t, router, "/api/auth/login", gin.H{
		"phone":    "0123456789",
		"password": "password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginBlockedUser(t *testing.T) {
	st := store.NewMemoryStore()
	router := authRouter(st)
	referrer := seedReferrer(t, st)

	referrer.IsBlocked = true
	require.NoError(t, st.SaveUser(referrer))

	w := postJSON(t, router, "/api/auth/login", gin.H{
		"phone":    "9000000000",
		"password": "password",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
