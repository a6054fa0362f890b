package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sejuk-service/aircond-service-api/config"
	"github.com/sejuk-service/aircond-service-api/models"
	"github.com/sejuk-service/aircond-service-api/utils"
	"gorm.io/gorm"
)

// CreateTechnicianRequest represents the request body for adding a technician
type CreateTechnicianRequest struct {
	Name       string     `json:"name" binding:"required"`
	Phone      string     `json:"phone" binding:"required"`
	Email      string     `json:"email" binding:"required,email"`
	JoinedDate *time.Time `json:"joined_date"`
}

// UpdateTechnicianRequest represents the request body for editing a technician
type UpdateTechnicianRequest struct {
	Name  string `json:"name" binding:"omitempty"`
	Phone string `json:"phone" binding:"omitempty"`
	Email string `json:"email" binding:"omitempty,email"`
}

// CreateTechnician handles POST /api/v1/technicians (admins only). The
// TECH### code is assigned inside the insert transaction.
func CreateTechnician(c *gin.Context) {
	_, ok := requireAdmin(c)
	if !ok {
		return
	}

	var req CreateTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	joined := time.Now()
	if req.JoinedDate != nil {
		joined = *req.JoinedDate
	}

	db := config.GetDB()
	var technician models.Technician
	err := db.Transaction(func(tx *gorm.DB) error {
		id, err := utils.NextTechnicianID(tx)
		if err != nil {
			return err
		}
		technician = models.Technician{
			ID:         id,
			Name:       req.Name,
			Phone:      req.Phone,
			Email:      req.Email,
			JoinedDate: joined,
		}
		return tx.Create(&technician).Error
	})
	if err != nil {
		if utils.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "TECHNICIAN_EXISTS",
					"message": "A technician with this email or id already exists",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create technician",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    technician,
	})
}

// ListTechnicians handles GET /api/v1/technicians - the directory sorted by name
func ListTechnicians(c *gin.Context) {
	_, ok := getCurrentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var technicians []models.Technician
	if err := db.Order("name ASC").Find(&technicians).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch technicians",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    technicians,
	})
}

// GetTechnician handles GET /api/v1/technicians/:id
func GetTechnician(c *gin.Context) {
	_, ok := getCurrentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var technician models.Technician
	if err := db.First(&technician, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TECHNICIAN_NOT_FOUND",
				"message": "Technician not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    technician,
	})
}

// UpdateTechnician handles PUT /api/v1/technicians/:id (admins only).
// Renaming does not rewrite the denormalized name on existing orders; those
// keep the name that was current when they were assigned.
func UpdateTechnician(c *gin.Context) {
	_, ok := requireAdmin(c)
	if !ok {
		return
	}

	var req UpdateTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	var technician models.Technician
	if err := db.First(&technician, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TECHNICIAN_NOT_FOUND",
				"message": "Technician not found",
			},
		})
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    technician,
		})
		return
	}

	if err := db.Model(&technician).Updates(updates).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "EMAIL_EXISTS",
					"message": "A technician with this email already exists",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update technician",
			},
		})
		return
	}

	if err := db.First(&technician, "id = ?", technician.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch updated technician",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    technician,
	})
}

// DeleteTechnician handles DELETE /api/v1/technicians/:id (admins only).
// The paired account record is removed too. Orders referencing the id are
// left untouched, so historical assignments keep their display name.
func DeleteTechnician(c *gin.Context) {
	_, ok := requireAdmin(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var technician models.Technician
	if err := db.First(&technician, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TECHNICIAN_NOT_FOUND",
				"message": "Technician not found",
			},
		})
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("technician_id = ?", technician.ID).Delete(&models.User{}).Error; err != nil {
			return err
		}
		return tx.Delete(&technician).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete technician",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id": technician.ID,
		},
	})
}
