package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sejuk-service/aircond-service-api/config"
	"github.com/sejuk-service/aircond-service-api/middleware"
	"github.com/sejuk-service/aircond-service-api/models"
)

// getCurrentUser resolves the authenticated account from the JWT subject.
// On failure it writes the error response and returns ok=false, so handlers
// can simply return.
func getCurrentUser(c *gin.Context) (*models.User, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return nil, false
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User profile not found. Please create a profile first.",
			},
		})
		return nil, false
	}

	return &user, true
}

// requireAdmin resolves the authenticated account and rejects non-admins
func requireAdmin(c *gin.Context) (*models.User, bool) {
	user, ok := getCurrentUser(c)
	if !ok {
		return nil, false
	}

	if user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only admins can perform this action",
			},
		})
		return nil, false
	}

	return user, true
}

// canAccessOrder reports whether the account may act on the order:
// admins always, technicians only on their own assigned orders.
func canAccessOrder(user *models.User, order *models.Order) bool {
	if user.Role == models.RoleAdmin {
		return true
	}
	return user.TechnicianID != nil && *user.TechnicianID == order.AssignedTechnicianID
}
