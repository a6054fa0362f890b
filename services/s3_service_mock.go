package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"sync"
)

// MockS3Service is a mock implementation of S3Service for testing
type MockS3Service struct {
	uploadedFiles map[string][]byte // map of object URL to file content
	failFor       map[string]bool   // filenames whose upload should fail
	mu            sync.RWMutex
}

// NewMockS3Service creates a new mock S3 service
func NewMockS3Service() *MockS3Service {
	return &MockS3Service{
		uploadedFiles: make(map[string][]byte),
		failFor:       make(map[string]bool),
	}
}

// SetAsMockForTesting sets this mock as the global S3 service instance for testing
func (m *MockS3Service) SetAsMockForTesting() {
	SetS3Service(m)
}

// FailUploadFor makes uploads of the given filename return an error, to
// exercise partial multi-file failure handling
func (m *MockS3Service) FailUploadFor(filename string) {
	m.mu.Lock()
	m.failFor[filename] = true
	m.mu.Unlock()
}

// UploadJobFile simulates uploading a job evidence file to S3
func (m *MockS3Service) UploadJobFile(orderID string, fileHeader *multipart.FileHeader) (string, error) {
	m.mu.RLock()
	shouldFail := m.failFor[fileHeader.Filename]
	m.mu.RUnlock()
	if shouldFail {
		return "", fmt.Errorf("simulated upload failure for %s", fileHeader.Filename)
	}

	// Open and read the file
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	fileURL := fmt.Sprintf("https://test-bucket.s3.ap-southeast-1.amazonaws.com/jobs/%s/mock_%s", orderID, fileHeader.Filename)

	m.mu.Lock()
	m.uploadedFiles[fileURL] = content
	m.mu.Unlock()

	return fileURL, nil
}

// DeleteFile simulates deleting a file from S3
func (m *MockS3Service) DeleteFile(fileURL string) error {
	if fileURL == "" {
		return nil
	}

	m.mu.Lock()
	delete(m.uploadedFiles, fileURL)
	m.mu.Unlock()

	return nil
}

// GetUploadedFiles returns all uploaded files (for testing assertions)
func (m *MockS3Service) GetUploadedFiles() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy to prevent race conditions
	files := make(map[string][]byte, len(m.uploadedFiles))
	for k, v := range m.uploadedFiles {
		files[k] = v
	}
	return files
}

// FileExists checks if a file exists in mock storage
func (m *MockS3Service) FileExists(fileURL string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.uploadedFiles[fileURL]
	return exists
}

// Clear removes all files from mock storage
func (m *MockS3Service) Clear() {
	m.mu.Lock()
	m.uploadedFiles = make(map[string][]byte)
	m.failFor = make(map[string]bool)
	m.mu.Unlock()
}
