package controllers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sejuk-service/aircond-service-api/config"
	"github.com/sejuk-service/aircond-service-api/models"
	"github.com/sejuk-service/aircond-service-api/services"
	"github.com/sejuk-service/aircond-service-api/utils"
	"gorm.io/gorm"
)

// CreateOrderRequest represents the request body for creating an order.
// The address may arrive flattened or decomposed into its parts; decomposed
// parts are joined into one line for storage.
type CreateOrderRequest struct {
	CustomerName         string     `json:"customer_name" binding:"required"`
	Phone                string     `json:"phone" binding:"required"`
	Address              string     `json:"address"`
	Street               string     `json:"street"`
	City                 string     `json:"city"`
	Postcode             string     `json:"postcode"`
	State                string     `json:"state"`
	ServiceType          string     `json:"service_type" binding:"required"`
	ProblemDescription   string     `json:"problem_description"`
	AdminNotes           string     `json:"admin_notes"`
	QuotedPrice          float64    `json:"quoted_price" binding:"required,gt=0"`
	AssignedTechnicianID string     `json:"assigned_technician_id" binding:"required"`
	AssignedAt           *time.Time `json:"assigned_at"`
}

// UpdateOrderRequest represents the request body for editing an order.
// Version must be the version the caller read; stale versions are rejected.
type UpdateOrderRequest struct {
	Version              int        `json:"version" binding:"required"`
	CustomerName         *string    `json:"customer_name"`
	Phone                *string    `json:"phone"`
	Address              *string    `json:"address"`
	ServiceType          *string    `json:"service_type"`
	ProblemDescription   *string    `json:"problem_description"`
	AdminNotes           *string    `json:"admin_notes"`
	QuotedPrice          *float64   `json:"quoted_price"`
	AssignedTechnicianID *string    `json:"assigned_technician_id"`
	AssignedAt           *time.Time `json:"assigned_at"`
}

// CompleteOrderRequest carries the technician's completion data
type CompleteOrderRequest struct {
	WorkDone      string                  `json:"work_done" binding:"required"`
	Remarks       string                  `json:"remarks"`
	ExtraCharges  models.ExtraChargeList  `json:"extra_charges"`
	UploadedFiles models.UploadedFileList `json:"uploaded_files"`
}

// ReworkRequest carries the admin's reason for demoting a completed order
type ReworkRequest struct {
	Reason     string `json:"reason"`
	AdminNotes string `json:"admin_notes"`
}

// flattenAddress joins decomposed address parts into a single line
func flattenAddress(req *CreateOrderRequest) string {
	if req.Address != "" {
		return req.Address
	}
	parts := make([]string, 0, 4)
	for _, p := range []string{req.Street, req.City, req.Postcode, req.State} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, ", ")
}

// validateExtraCharges rejects entries with blank reasons or non-positive amounts
func validateExtraCharges(charges models.ExtraChargeList) bool {
	for _, charge := range charges {
		if strings.TrimSpace(charge.Reason) == "" || charge.Amount <= 0 {
			return false
		}
	}
	return true
}

// CreateOrder handles POST /api/v1/orders - creates a new order (admins only)
func CreateOrder(c *gin.Context) {
	_, ok := requireAdmin(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
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

	address := flattenAddress(&req)
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Address is required",
			},
		})
		return
	}

	if !models.ValidServiceType(req.ServiceType) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Service type must be Cleaning, Repair or Installation",
			},
		})
		return
	}

	// The assigned technician must exist at assignment time; the display
	// name is denormalized onto the order here.
	db := config.GetDB()
	var technician models.Technician
	if err := db.First(&technician, "id = ?", req.AssignedTechnicianID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TECHNICIAN_NOT_FOUND",
				"message": "Assigned technician does not exist",
			},
		})
		return
	}

	order := models.Order{
		CustomerName:         req.CustomerName,
		Phone:                req.Phone,
		Address:              address,
		ServiceType:          req.ServiceType,
		ProblemDescription:   req.ProblemDescription,
		AdminNotes:           req.AdminNotes,
		QuotedPrice:          req.QuotedPrice,
		AssignedTechnicianID: technician.ID,
		AssignedTechnician:   technician.Name,
		AssignedAt:           req.AssignedAt,
		Status:               models.StatusPending,
		Version:              1,
	}

	// Human-readable order codes can collide; regenerate on conflict with
	// a bounded number of attempts.
	created := false
	for attempt := 0; attempt < utils.MaxOrderIDAttempts; attempt++ {
		order.ID = utils.NewOrderID()
		err := db.Create(&order).Error
		if err == nil {
			created = true
			break
		}
		if !utils.IsDuplicateKeyError(err) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to create order",
				},
			})
			return
		}
	}

	if !created {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_ID_EXHAUSTED",
				"message": "Could not allocate a unique order id",
			},
		})
		return
	}

	services.GetOrderFeed().PublishOrders(db)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// ListOrders handles GET /api/v1/orders - lists all orders newest first (admins only)
func ListOrders(c *gin.Context) {
	_, ok := requireAdmin(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var orders []models.Order
	if err := db.Order("created_at DESC").Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch orders",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// ListMyJobs handles GET /api/v1/orders/my - lists orders assigned to the
// calling technician, newest first
func ListMyJobs(c *gin.Context) {
	user, ok := getCurrentUser(c)
	if !ok {
		return
	}

	if user.TechnicianID == nil {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NO_TECHNICIAN_LINK",
				"message": "Account is not linked to a technician",
			},
		})
		return
	}

	db := config.GetDB()
	var orders []models.Order
	if err := db.Where("assigned_technician_id = ?", *user.TechnicianID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch orders",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// GetOrder handles GET /api/v1/orders/:id
func GetOrder(c *gin.Context) {
	user, ok := getCurrentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	if !canAccessOrder(user, &order) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have permission to view this order",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// UpdateOrder handles PUT /api/v1/orders/:id - merges fields into an
// existing order (admins only). The caller must send back the version it
// read; a stale version is rejected instead of silently overwriting a
// concurrent edit.
func UpdateOrder(c *gin.Context) {
	_, ok := requireAdmin(c)
	if !ok {
		return
	}

	var req UpdateOrderRequest
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
	orderID := c.Param("id")

	var order models.Order
	if err := db.First(&order, "id = ?", orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	updates := make(map[string]interface{})
	if req.CustomerName != nil {
		updates["customer_name"] = *req.CustomerName
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.ServiceType != nil {
		if !models.ValidServiceType(*req.ServiceType) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Service type must be Cleaning, Repair or Installation",
				},
			})
			return
		}
		updates["service_type"] = *req.ServiceType
	}
	if req.ProblemDescription != nil {
		updates["problem_description"] = *req.ProblemDescription
	}
	if req.AdminNotes != nil {
		updates["admin_notes"] = *req.AdminNotes
	}
	if req.QuotedPrice != nil {
		if *req.QuotedPrice <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Quoted price must be greater than 0",
				},
			})
			return
		}
		updates["quoted_price"] = *req.QuotedPrice
	}
	if req.AssignedAt != nil {
		updates["assigned_at"] = *req.AssignedAt
	}

	// Reassignment re-validates the technician and refreshes the
	// denormalized display name.
	if req.AssignedTechnicianID != nil {
		var technician models.Technician
		if err := db.First(&technician, "id = ?", *req.AssignedTechnicianID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "TECHNICIAN_NOT_FOUND",
					"message": "Assigned technician does not exist",
				},
			})
			return
		}
		updates["assigned_technician_id"] = technician.ID
		updates["assigned_technician"] = technician.Name
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    order,
		})
		return
	}

	updates["version"] = req.Version + 1
	result := db.Model(&models.Order{}).
		Where("id = ? AND version = ?", orderID, req.Version).
		Updates(updates)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update order",
			},
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STALE_WRITE",
				"message": "Order was modified by someone else; re-read and retry",
			},
		})
		return
	}

	if err := db.First(&order, "id = ?", orderID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch updated order",
			},
		})
		return
	}

	services.GetOrderFeed().PublishOrders(db)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// CompleteOrder handles POST /api/v1/orders/:id/complete - marks a job as
// done with the technician's work summary, evidence files and extra charges.
// Completing a rework attaches the technician's notes to the latest rework
// entry instead of creating a new one.
func CompleteOrder(c *gin.Context) {
	user, ok := getCurrentUser(c)
	if !ok {
		return
	}

	var req CompleteOrderRequest
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

	if !validateExtraCharges(req.ExtraCharges) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Extra charges need a reason and an amount greater than 0",
			},
		})
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	if !canAccessOrder(user, &order) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You can only complete your own assigned orders",
			},
		})
		return
	}

	if !order.CanComplete() {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATUS",
				"message": "Order cannot be completed from status " + order.Status,
			},
		})
		return
	}

	now := time.Now()
	finalAmount := services.ComputeFinalAmount(order.QuotedPrice, req.ExtraCharges)

	updates := map[string]interface{}{
		"status":         models.StatusCompleted,
		"work_done":      req.WorkDone,
		"remarks":        req.Remarks,
		"extra_charges":  req.ExtraCharges,
		"final_amount":   finalAmount,
		"uploaded_files": req.UploadedFiles,
		"completed_at":   now,
		"version":        gorm.Expr("version + 1"),
	}

	// A rework completion closes out the latest rework entry with the
	// technician's notes.
	if order.IsRework() && len(order.ReworkHistory) > 0 {
		history := order.ReworkHistory
		notes := req.Remarks
		if notes == "" {
			notes = "Rework completed"
		}
		history[len(history)-1].TechnicianNotes = notes
		updates["rework_history"] = history
	}

	// Guard on the status we read so two racing completions cannot both land
	result := db.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, order.Status).
		Updates(updates)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to complete order",
			},
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATUS",
				"message": "Order status changed while completing; re-read and retry",
			},
		})
		return
	}

	if err := db.First(&order, "id = ?", order.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch completed order",
			},
		})
		return
	}

	services.GetOrderFeed().PublishOrders(db)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// MarkForRework handles POST /api/v1/orders/:id/rework - demotes a completed
// order back to rework-required (admins only). The rework entry and the
// counter are written in the same update.
func MarkForRework(c *gin.Context) {
	_, ok := requireAdmin(c)
	if !ok {
		return
	}

	var req ReworkRequest
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

	if strings.TrimSpace(req.Reason) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Rework reason cannot be blank",
			},
		})
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	if order.Status != models.StatusCompleted {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATUS",
				"message": "Only completed orders can be marked for rework",
			},
		})
		return
	}

	history := append(order.ReworkHistory, models.ReworkEntry{
		Date:       time.Now(),
		Reason:     strings.TrimSpace(req.Reason),
		AdminNotes: req.AdminNotes,
	})

	updates := map[string]interface{}{
		"status":         models.StatusReworkRequired,
		"rework_history": history,
		"rework_count":   order.ReworkCount + 1,
		"completed_at":   nil,
		"version":        gorm.Expr("version + 1"),
	}
	// Preserve the completion timestamp being demoted away
	if order.CompletedAt != nil {
		updates["original_completed_at"] = *order.CompletedAt
	}

	result := db.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, models.StatusCompleted).
		Updates(updates)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to mark order for rework",
			},
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATUS",
				"message": "Order status changed while marking for rework; re-read and retry",
			},
		})
		return
	}

	if err := db.First(&order, "id = ?", order.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch updated order",
			},
		})
		return
	}

	services.GetOrderFeed().PublishOrders(db)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// DeleteOrder handles DELETE /api/v1/orders/:id (admins only). Evidence
// files are removed from the blob store best-effort; a failed delete is
// logged and does not block removing the record.
func DeleteOrder(c *gin.Context) {
	_, ok := requireAdmin(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	if err := db.Delete(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete order",
			},
		})
		return
	}

	if s3Service := services.GetS3Service(); s3Service != nil {
		for _, file := range order.UploadedFiles {
			if err := s3Service.DeleteFile(file.URL); err != nil {
				log.Printf("Failed to delete evidence file %s for order %s: %v", file.URL, order.ID, err)
			}
		}
	}

	services.GetOrderFeed().PublishOrders(db)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id": order.ID,
		},
	})
}

// GetOrderNotification handles GET /api/v1/orders/:id/notification - composes
// the customer message and WhatsApp deep link for a completed order.
// Dispatch is manual; opening the link is up to the caller.
func GetOrderNotification(c *gin.Context) {
	user, ok := getCurrentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	if !canAccessOrder(user, &order) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have permission to view this order",
			},
		})
		return
	}

	if order.Status != models.StatusCompleted {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATUS",
				"message": "Notifications are only available for completed orders",
			},
		})
		return
	}

	message := services.ComposeCompletionMessage(&order)
	link, err := services.WhatsAppLink(order.Phone, message)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_PHONE",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"message":      message,
			"whatsapp_url": link,
		},
	})
}
