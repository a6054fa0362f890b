package controllers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sejuk-service/aircond-service-api/config"
	"github.com/sejuk-service/aircond-service-api/models"
	"github.com/sejuk-service/aircond-service-api/services"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// buildMultipartRequest assembles a multipart upload with the given filenames
// under the "files" field. Content is a small placeholder; size limits are
// exercised at the validator level, not here.
func buildMultipartRequest(t *testing.T, path string, filenames []string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, name := range filenames {
		part, err := writer.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		part.Write([]byte("evidence content"))
	}
	if len(filenames) == 0 {
		// Keep the body a valid multipart form even with no files
		writer.WriteField("note", "no files attached")
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func seedUploadOrder(t *testing.T, db *gorm.DB) *models.Order {
	t.Helper()
	order := models.Order{
		ID:                   "ORDER8001",
		CustomerName:         "Mrs. Lim",
		Phone:                "0123456789",
		Address:              "12 Jalan Ampang",
		ServiceType:          "Repair",
		QuotedPrice:          150,
		AssignedTechnicianID: "TECH001",
		AssignedTechnician:   "Ahmad Faizal",
		Status:               models.StatusInProgress,
		Version:              1,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("Failed to seed order: %v", err)
	}
	return &order
}

func TestUploadJobFiles_Success(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	technician := seedTechnician(t, db, "TECH001", "Ahmad Faizal", "ahmad@sejukservice.com")
	seedTechnicianUser(t, db, "auth0|tech1", technician)
	seedUploadOrder(t, db)

	mockS3 := services.NewMockS3Service()
	mockS3.SetAsMockForTesting()
	defer services.SetS3Service(nil)

	router := setupTestRouter()
	router.POST("/orders/:id/files", mockAuthMiddleware("auth0|tech1", "technician", ""), UploadJobFiles)

	req := buildMultipartRequest(t, "/orders/ORDER8001/files", []string{"before.jpg", "after.mp4", "invoice.pdf"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "Response body: %s", w.Body.String())
	data := decodeResponse(t, w)["data"].(map[string]interface{})

	uploaded := data["uploaded"].([]interface{})
	failed := data["failed"].([]interface{})
	assert.Len(t, uploaded, 3)
	assert.Len(t, failed, 0)

	byName := make(map[string]map[string]interface{})
	for _, item := range uploaded {
		file := item.(map[string]interface{})
		byName[file["name"].(string)] = file
	}
	assert.Equal(t, models.FileKindImage, byName["before.jpg"]["type"])
	assert.Equal(t, models.FileKindVideo, byName["after.mp4"]["type"])
	assert.Equal(t, models.FileKindPDF, byName["invoice.pdf"]["type"])

	for _, file := range byName {
		assert.True(t, mockS3.FileExists(file["url"].(string)))
	}
}

func TestUploadJobFiles_PartialFailure(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	technician := seedTechnician(t, db, "TECH001", "Ahmad Faizal", "ahmad@sejukservice.com")
	seedTechnicianUser(t, db, "auth0|tech1", technician)
	seedUploadOrder(t, db)

	mockS3 := services.NewMockS3Service()
	mockS3.SetAsMockForTesting()
	defer services.SetS3Service(nil)
	mockS3.FailUploadFor("broken.jpg")

	router := setupTestRouter()
	router.POST("/orders/:id/files", mockAuthMiddleware("auth0|tech1", "technician", ""), UploadJobFiles)

	req := buildMultipartRequest(t, "/orders/ORDER8001/files", []string{"before.jpg", "broken.jpg", "after.jpg"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// One failure must not abort the others
	assert.Equal(t, http.StatusOK, w.Code, "Response body: %s", w.Body.String())
	data := decodeResponse(t, w)["data"].(map[string]interface{})

	uploaded := data["uploaded"].([]interface{})
	failed := data["failed"].([]interface{})
	assert.Len(t, uploaded, 2)
	if assert.Len(t, failed, 1) {
		failure := failed[0].(map[string]interface{})
		assert.Equal(t, "broken.jpg", failure["name"])
		assert.NotEmpty(t, failure["error"])
	}
}

func TestUploadJobFiles_NoFiles(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	technician := seedTechnician(t, db, "TECH001", "Ahmad Faizal", "ahmad@sejukservice.com")
	seedTechnicianUser(t, db, "auth0|tech1", technician)
	seedUploadOrder(t, db)

	mockS3 := services.NewMockS3Service()
	mockS3.SetAsMockForTesting()
	defer services.SetS3Service(nil)

	router := setupTestRouter()
	router.POST("/orders/:id/files", mockAuthMiddleware("auth0|tech1", "technician", ""), UploadJobFiles)

	req := buildMultipartRequest(t, "/orders/ORDER8001/files", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "NO_FILES", errorCode(t, w))
}

func TestUploadJobFiles_StorageNotConfigured(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	technician := seedTechnician(t, db, "TECH001", "Ahmad Faizal", "ahmad@sejukservice.com")
	seedTechnicianUser(t, db, "auth0|tech1", technician)
	seedUploadOrder(t, db)

	services.SetS3Service(nil)

	router := setupTestRouter()
	router.POST("/orders/:id/files", mockAuthMiddleware("auth0|tech1", "technician", ""), UploadJobFiles)

	req := buildMultipartRequest(t, "/orders/ORDER8001/files", []string{"before.jpg"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "STORAGE_NOT_CONFIGURED", errorCode(t, w))
}

func TestUploadJobFiles_ForbiddenForOtherTechnician(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	seedTechnician(t, db, "TECH001", "Ahmad Faizal", "ahmad@sejukservice.com")
	other := seedTechnician(t, db, "TECH002", "Rizal Hakim", "rizal@sejukservice.com")
	seedTechnicianUser(t, db, "auth0|tech2", other)
	seedUploadOrder(t, db)

	mockS3 := services.NewMockS3Service()
	mockS3.SetAsMockForTesting()
	defer services.SetS3Service(nil)

	router := setupTestRouter()
	router.POST("/orders/:id/files", mockAuthMiddleware("auth0|tech2", "technician", ""), UploadJobFiles)

	req := buildMultipartRequest(t, "/orders/ORDER8001/files", []string{"before.jpg"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, w))
	assert.Empty(t, mockS3.GetUploadedFiles())
}

func TestDeleteOrder_RemovesEvidenceFiles(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	seedAdmin(t, db)
	seedTechnician(t, db, "TECH001", "Ahmad Faizal", "ahmad@sejukservice.com")

	mockS3 := services.NewMockS3Service()
	mockS3.SetAsMockForTesting()
	defer services.SetS3Service(nil)

	order := seedUploadOrder(t, db)

	router := setupTestRouter()
	router.POST("/orders/:id/files", mockAuthMiddleware("auth0|admin", "admin", ""), UploadJobFiles)
	router.DELETE("/orders/:id", mockAuthMiddleware("auth0|admin", "admin", ""), DeleteOrder)

	// Upload evidence through the handler, then attach it to the order the
	// way a completion would
	req := buildMultipartRequest(t, "/orders/ORDER8001/files", []string{"before.jpg", "after.jpg"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, "Response body: %s", rec.Body.String())

	uploaded := decodeResponse(t, rec)["data"].(map[string]interface{})["uploaded"].([]interface{})
	files := make(models.UploadedFileList, 0, len(uploaded))
	fileURLs := make([]string, 0, len(uploaded))
	for _, item := range uploaded {
		entry := item.(map[string]interface{})
		files = append(files, models.UploadedFile{
			URL:  entry["url"].(string),
			Name: entry["name"].(string),
			Type: entry["type"].(string),
		})
		fileURLs = append(fileURLs, entry["url"].(string))
	}
	assert.Len(t, fileURLs, 2)
	assert.NoError(t, db.Model(order).Update("uploaded_files", files).Error)
	for _, url := range fileURLs {
		assert.True(t, mockS3.FileExists(url))
	}

	w := doJSON(router, http.MethodDelete, "/orders/ORDER8001", nil)
	assert.Equal(t, http.StatusOK, w.Code, "Response body: %s", w.Body.String())

	for _, url := range fileURLs {
		assert.False(t, mockS3.FileExists(url))
	}

	var gone models.Order
	err := db.First(&gone, "id = ?", "ORDER8001").Error
	assert.Error(t, err)
}
