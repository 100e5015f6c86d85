package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fretline/buildtrack-api/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddlewarePropagatesIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	manager := utils.NewJWTManager("test-secret", time.Hour, time.Hour)

	userID := uuid.New()
	token, err := manager.GenerateAccessToken(userID, "mia@example.com", "Mia Chen",
		[]string{"staff"}, []string{"manage-notes"})
	require.NoError(t, err)

	router := gin.New()
	router.Use(AuthMiddleware(manager))
	router.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"id":    c.MustGet("user_id").(uuid.UUID).String(),
			"email": c.MustGet("user_email"),
			"name":  c.MustGet("user_name"),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), userID.String())
	assert.Contains(t, rec.Body.String(), "mia@example.com")
	assert.Contains(t, rec.Body.String(), "Mia Chen")
}

func TestAuthMiddlewareRejectsBadHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	manager := utils.NewJWTManager("test-secret", time.Hour, time.Hour)

	router := gin.New()
	router.Use(AuthMiddleware(manager))
	router.GET("/whoami", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, header := range []string{"", "Bearer", "Bearer not-a-token"} {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}
