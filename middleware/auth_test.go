package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestCustomClaims_HasScope(t *testing.T) {
	claims := CustomClaims{Scope: "read:orders write:orders"}

	assert.True(t, claims.HasScope("read:orders"))
	assert.True(t, claims.HasScope("write:orders"))
	assert.False(t, claims.HasScope("delete:orders"))
	assert.False(t, CustomClaims{}.HasScope("read:orders"))
}

func TestGetUserID(t *testing.T) {
	c, _ := testContext()

	_, err := GetUserID(c)
	assert.Error(t, err)

	c.Set("user_id", "auth0|123456")
	userID, err := GetUserID(c)
	assert.NoError(t, err)
	assert.Equal(t, "auth0|123456", userID)
}

func TestGetAccessToken(t *testing.T) {
	c, _ := testContext()

	_, err := GetAccessToken(c)
	assert.Error(t, err)

	c.Set("access_token", "token-abc")
	token, err := GetAccessToken(c)
	assert.NoError(t, err)
	assert.Equal(t, "token-abc", token)
}

func TestGetClaims(t *testing.T) {
	c, _ := testContext()

	_, err := GetClaims(c)
	assert.Error(t, err)

	expected := &validator.ValidatedClaims{
		CustomClaims: &CustomClaims{Role: "admin"},
	}
	c.Set("validated_claims", expected)

	claims, err := GetClaims(c)
	assert.NoError(t, err)
	assert.Same(t, expected, claims)

	customClaims, ok := claims.CustomClaims.(*CustomClaims)
	assert.True(t, ok)
	assert.Equal(t, "admin", customClaims.Role)
}

func TestRequireScope(t *testing.T) {
	tests := []struct {
		name           string
		scope          string
		required       string
		expectedStatus int
	}{
		{"Scope present", "read:kpis write:orders", "read:kpis", http.StatusOK},
		{"Scope missing", "read:kpis", "write:orders", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			router := gin.New()
			router.GET("/protected",
				func(c *gin.Context) {
					c.Set("validated_claims", &validator.ValidatedClaims{
						CustomClaims: &CustomClaims{Scope: tt.scope},
					})
				},
				RequireScope(tt.required),
				func(c *gin.Context) {
					c.JSON(http.StatusOK, gin.H{"success": true})
				},
			)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRequireScope_NoClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", RequireScope("read:kpis"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
