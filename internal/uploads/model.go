package uploads

import "time"

// MaxUploadSize caps a single upload at 10 MiB.
const MaxUploadSize = 10 << 20

// Upload is a stored file reference.
type Upload struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Category    string     `json:"category"`
	FilePath    string     `json:"filePath"`
	FileName    string     `json:"fileName"`
	FileSize    int64      `json:"fileSize"`
	ContentType string     `json:"contentType"`
	URL         string     `json:"url"`
	CreatedAt   time.Time  `json:"created_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}
