package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"clinic-backend/internal/extract"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, owner_type, owner_id, file_type, file_data, original_file_name, file_size_bytes,
       ocr_status, ocr_text, extracted_fields, ocr_error, uploaded_at, created_at, updated_at`

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	if err := validateForCreate(doc); err != nil {
		return err
	}

	const query = `
INSERT INTO documents (
    id,
    owner_type,
    owner_id,
    file_type,
    file_data,
    original_file_name,
    file_size_bytes,
    ocr_status,
    ocr_text,
    extracted_fields,
    ocr_error,
    uploaded_at,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	fieldsJSON, err := marshalFields(doc.ExtractedFields)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.OwnerType,
		nullString(doc.OwnerID),
		string(doc.FileType),
		doc.FileData,
		doc.OriginalFileName,
		doc.FileSizeBytes,
		string(doc.OcrStatus),
		nullString(doc.OcrText),
		fieldsJSON,
		nullString(doc.OcrError),
		doc.UploadedAt,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return err
}

// GetByID returns a document by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Document, error) {
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE id = $1
LIMIT 1`
	return scanDocument(r.DB.QueryRowContext(ctx, query, id))
}

// List returns documents newest-first.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Document, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	query := `
SELECT ` + documentColumns + `
FROM documents
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`

	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// ListByOwner returns the documents attached to one owner, newest first.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerType, ownerID string) ([]Document, error) {
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE owner_type = $1 AND owner_id = $2
ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, ownerType, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// CountByOwner returns how many documents one owner has.
func (r *PGRepo) CountByOwner(ctx context.Context, ownerType, ownerID string) (int, error) {
	const query = `SELECT COUNT(*) FROM documents WHERE owner_type = $1 AND owner_id = $2`
	var count int
	if err := r.DB.QueryRowContext(ctx, query, ownerType, ownerID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Update applies a patch and returns the updated row.
func (r *PGRepo) Update(ctx context.Context, id string, patch Patch) (Document, error) {
	sets := []string{}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if patch.OwnerID != nil {
		sets = append(sets, "owner_id = "+arg(nullString(*patch.OwnerID)))
	}
	if patch.OcrStatus != nil {
		sets = append(sets, "ocr_status = "+arg(string(*patch.OcrStatus)))
		if *patch.OcrStatus != StatusFailed {
			sets = append(sets, "ocr_error = NULL")
		}
	}
	if patch.OcrText != nil {
		sets = append(sets, "ocr_text = "+arg(nullString(*patch.OcrText)))
	}
	if patch.Fields != nil {
		fieldsJSON, err := marshalFields(patch.Fields)
		if err != nil {
			return Document{}, err
		}
		sets = append(sets, "extracted_fields = "+arg(fieldsJSON))
	}
	if patch.OcrError != nil {
		sets = append(sets, "ocr_error = "+arg(nullString(*patch.OcrError)))
	}
	sets = append(sets, "updated_at = "+arg(time.Now().UTC()))

	query := fmt.Sprintf(`
UPDATE documents
SET %s
WHERE id = %s
RETURNING `+documentColumns, strings.Join(sets, ", "), arg(id))

	return scanDocument(r.DB.QueryRowContext(ctx, query, args...))
}

// Delete removes a document; deleting an absent ID is a no-op.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM documents WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var (
		doc       Document
		ownerID   sql.NullString
		fileType  string
		ocrStatus string
		ocrText   sql.NullString
		fieldsRaw []byte
		ocrError  sql.NullString
	)
	err := row.Scan(
		&doc.ID,
		&doc.OwnerType,
		&ownerID,
		&fileType,
		&doc.FileData,
		&doc.OriginalFileName,
		&doc.FileSizeBytes,
		&ocrStatus,
		&ocrText,
		&fieldsRaw,
		&ocrError,
		&doc.UploadedAt,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}

	doc.FileType = FileType(fileType)
	doc.OcrStatus = OcrStatus(ocrStatus)
	if ownerID.Valid {
		doc.OwnerID = ownerID.String
	}
	if ocrText.Valid {
		doc.OcrText = ocrText.String
	}
	if ocrError.Valid {
		doc.OcrError = ocrError.String
	}
	if len(fieldsRaw) > 0 {
		var fields extract.Fields
		if err := json.Unmarshal(fieldsRaw, &fields); err != nil {
			return Document{}, fmt.Errorf("decode extracted_fields for %s: %w", doc.ID, err)
		}
		doc.ExtractedFields = &fields
	}
	return doc, nil
}

func collectDocuments(rows *sql.Rows) ([]Document, error) {
	out := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func marshalFields(fields *extract.Fields) (any, error) {
	if fields == nil {
		return nil, nil
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode extracted_fields: %w", err)
	}
	return data, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
