package documents

import (
	"time"

	"clinic-backend/internal/extract"
)

// OcrStatus tracks a document through its recognition lifecycle:
// pending -> processing -> done | failed, with failed -> processing on retry.
type OcrStatus string

const (
	StatusPending    OcrStatus = "pending"
	StatusProcessing OcrStatus = "processing"
	StatusDone       OcrStatus = "done"
	StatusFailed     OcrStatus = "failed"
)

// FileType is the closed set of accepted upload formats.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeJPG  FileType = "jpg"
	FileTypeJPEG FileType = "jpeg"
	FileTypePNG  FileType = "png"
	FileTypeWebP FileType = "webp"
)

// AllowedFileTypes is enforced both at the upload boundary and again at the
// persistence boundary.
var AllowedFileTypes = map[FileType]struct{}{
	FileTypePDF:  {},
	FileTypeJPG:  {},
	FileTypeJPEG: {},
	FileTypePNG:  {},
	FileTypeWebP: {},
}

// AllowedMimeTypes is the accepted set of caller-declared content types.
var AllowedMimeTypes = map[string]FileType{
	"image/jpeg":      FileTypeJPEG,
	"image/png":       FileTypePNG,
	"image/webp":      FileTypeWebP,
	"application/pdf": FileTypePDF,
}

// MaxFileSizeBytes is the upload size ceiling, checked against the actual
// payload rather than any declared size.
const MaxFileSizeBytes = 15 << 20 // 15 MiB

// Document is an uploaded receipt or invoice attached to a domain entity.
// A document may be uploaded before its owner exists; OwnerID is linked later.
type Document struct {
	ID               string
	OwnerType        string
	OwnerID          string
	FileType         FileType
	FileData         []byte
	OriginalFileName string
	FileSizeBytes    int64
	OcrStatus        OcrStatus
	OcrText          string
	ExtractedFields  *extract.Fields
	OcrError         string
	UploadedAt       time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
