package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sejuk-service/aircond-service-api/config"
	"github.com/sejuk-service/aircond-service-api/models"
	"github.com/sejuk-service/aircond-service-api/services"
	"github.com/sejuk-service/aircond-service-api/utils"
)

// FailedUpload reports a single file that could not be stored
type FailedUpload struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// UploadJobFiles handles POST /api/v1/orders/:id/files - uploads completion
// evidence (photos, videos, documents) for a job. Files are validated and
// uploaded one at a time; a failed file is reported individually and never
// aborts the remaining uploads. The caller attaches the returned references
// when completing the order.
func UploadJobFiles(c *gin.Context) {
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
				"message": "You can only upload files for your own assigned orders",
			},
		})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid multipart form",
				"details": err.Error(),
			},
		})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NO_FILES",
				"message": "At least one file is required",
			},
		})
		return
	}

	s3Service := services.GetS3Service()
	if s3Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STORAGE_NOT_CONFIGURED",
				"message": "File storage is not configured",
			},
		})
		return
	}

	uploaded := make([]models.UploadedFile, 0, len(files))
	failed := make([]FailedUpload, 0)

	for _, fileHeader := range files {
		if err := utils.ValidateEvidenceFile(fileHeader); err != nil {
			failed = append(failed, FailedUpload{Name: fileHeader.Filename, Error: err.Error()})
			continue
		}

		fileURL, err := s3Service.UploadJobFile(order.ID, fileHeader)
		if err != nil {
			log.Printf("Failed to upload %s for order %s: %v", fileHeader.Filename, order.ID, err)
			failed = append(failed, FailedUpload{Name: fileHeader.Filename, Error: "Upload failed"})
			continue
		}

		uploaded = append(uploaded, models.UploadedFile{
			URL:  fileURL,
			Name: fileHeader.Filename,
			Type: utils.ClassifyFile(fileHeader.Filename),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"uploaded": uploaded,
			"failed":   failed,
		},
	})
}
