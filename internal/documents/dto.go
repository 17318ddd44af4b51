package documents

import (
	"time"

	"clinic-backend/internal/extract"
)

// DocumentResponse is the outward-facing representation of a document. The
// file payload stays out of it; GET /documents/:id/file serves the bytes.
type DocumentResponse struct {
	DocumentID       string          `json:"documentId"`
	OwnerType        string          `json:"ownerType"`
	OwnerID          string          `json:"ownerId,omitempty"`
	FileType         string          `json:"fileType"`
	OriginalFileName string          `json:"originalFileName"`
	FileSizeBytes    int64           `json:"fileSizeBytes"`
	OcrStatus        string          `json:"ocrStatus"`
	OcrText          string          `json:"ocrText,omitempty"`
	ExtractedFields  *extract.Fields `json:"extractedFields,omitempty"`
	OcrError         string          `json:"ocrError,omitempty"`
	UploadedAt       time.Time       `json:"uploadedAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		DocumentID:       doc.ID,
		OwnerType:        doc.OwnerType,
		OwnerID:          doc.OwnerID,
		FileType:         string(doc.FileType),
		OriginalFileName: doc.OriginalFileName,
		FileSizeBytes:    doc.FileSizeBytes,
		OcrStatus:        string(doc.OcrStatus),
		OcrText:          doc.OcrText,
		ExtractedFields:  doc.ExtractedFields,
		OcrError:         doc.OcrError,
		UploadedAt:       doc.UploadedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
}

var contentTypeByFileType = map[FileType]string{
	FileTypePDF:  "application/pdf",
	FileTypeJPG:  "image/jpeg",
	FileTypeJPEG: "image/jpeg",
	FileTypePNG:  "image/png",
	FileTypeWebP: "image/webp",
}
