package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sejuk-service/aircond-service-api/config"
	"github.com/sejuk-service/aircond-service-api/models"
	"github.com/sejuk-service/aircond-service-api/services"
)

// loadKPIInputs reads the full order and technician collections. The KPI
// aggregator is a pure function of these; every call rescans, which is fine
// at the expected data volume of a few hundred orders.
func loadKPIInputs(c *gin.Context) ([]models.Order, []models.Technician, bool) {
	db := config.GetDB()

	var orders []models.Order
	if err := db.Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch orders",
			},
		})
		return nil, nil, false
	}

	var technicians []models.Technician
	if err := db.Order("name ASC").Find(&technicians).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch technicians",
			},
		})
		return nil, nil, false
	}

	return orders, technicians, true
}

// GetTechnicianKPIs handles GET /api/v1/kpis/technicians - the per-technician
// leaderboard
func GetTechnicianKPIs(c *gin.Context) {
	_, ok := getCurrentUser(c)
	if !ok {
		return
	}

	orders, technicians, ok := loadKPIInputs(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    services.TechnicianKPIs(orders, technicians),
	})
}

// GetWeeklyMetrics handles GET /api/v1/kpis/weekly - current week versus the
// previous Monday-Sunday week
func GetWeeklyMetrics(c *gin.Context) {
	_, ok := getCurrentUser(c)
	if !ok {
		return
	}

	orders, _, ok := loadKPIInputs(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    services.ComputeWeeklyMetrics(orders, time.Now()),
	})
}

// GetMonthlyTrends handles GET /api/v1/kpis/monthly - current month versus
// the previous calendar month
func GetMonthlyTrends(c *gin.Context) {
	_, ok := getCurrentUser(c)
	if !ok {
		return
	}

	orders, _, ok := loadKPIInputs(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    services.ComputeMonthlyTrends(orders, time.Now()),
	})
}
