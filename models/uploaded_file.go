package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Uploaded file kinds
const (
	FileKindImage = "image"
	FileKindVideo = "video"
	FileKindPDF   = "pdf"
	FileKindOther = "other"
)

// UploadedFile references a completion evidence file in the blob store
type UploadedFile struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Type string `json:"type"` // image, video, pdf or other
}

// UploadedFileList is the set of evidence files attached at completion
type UploadedFileList []UploadedFile

// Value serializes the list as JSON for storage
func (f UploadedFileList) Value() (driver.Value, error) {
	if f == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]UploadedFile(f))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan reads the stored JSON list
func (f *UploadedFileList) Scan(value interface{}) error {
	if value == nil {
		*f = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported uploaded files column type %T", value)
	}

	if len(data) == 0 {
		*f = nil
		return nil
	}

	return json.Unmarshal(data, (*[]UploadedFile)(f))
}
