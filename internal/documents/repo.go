package documents

import (
	"context"

	"clinic-backend/internal/extract"
)

// Patch is a partial update: only non-nil members change. Setting OcrStatus
// to anything other than failed clears the stored error, so a record never
// carries an error outside the failed state.
type Patch struct {
	OwnerID   *string
	OcrStatus *OcrStatus
	OcrText   *string
	Fields    *extract.Fields
	OcrError  *string
}

// Repo defines keyed persistence for documents. Delete is unconditional and
// idempotent; deleting an owning entity never cascades here — documents
// outlive their owner.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, id string) (Document, error)
	List(ctx context.Context, limit, offset int) ([]Document, error)
	ListByOwner(ctx context.Context, ownerType, ownerID string) ([]Document, error)
	CountByOwner(ctx context.Context, ownerType, ownerID string) (int, error)
	Update(ctx context.Context, id string, patch Patch) (Document, error)
	Delete(ctx context.Context, id string) error
}

// validateForCreate re-checks the upload constraints at the persistence
// boundary, independent of whatever the HTTP layer already validated.
func validateForCreate(doc Document) error {
	if _, ok := AllowedFileTypes[doc.FileType]; !ok {
		return validationErrorf("file type %q is not allowed", doc.FileType)
	}
	if doc.FileSizeBytes > MaxFileSizeBytes {
		return validationErrorf("file exceeds maximum size of %d bytes", MaxFileSizeBytes)
	}
	return nil
}
