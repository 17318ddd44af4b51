package documents

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"clinic-backend/internal/extract"
	"clinic-backend/internal/ocr"
	"clinic-backend/internal/shared/metrics"
	"clinic-backend/internal/shared/telemetry"
	"clinic-backend/internal/shared/util"
)

// Event announces a status transition to interested observers. Sends are
// non-blocking; a slow observer loses events rather than stalling the
// pipeline.
type Event struct {
	DocumentID string
	Status     OcrStatus
	Error      string
}

// UploadRequest carries one upload through the boundary checks.
type UploadRequest struct {
	OwnerType        string
	OwnerID          string
	DeclaredMimeType string
	OriginalFileName string
	Data             []byte
}

// Service drives documents through their recognition lifecycle. Uploads are
// validated synchronously; recognition runs in the background and settles the
// record to done or failed. There is no per-document lock: concurrent
// process/retry runs for the same ID can interleave their writes (see the
// race test), which mirrors the intended single-actor usage.
type Service struct {
	Repo      Repo
	Engine    ocr.Engine
	Gate      *UploadGate
	Languages []string
	// MaxBytes caps accepted payloads; zero falls back to MaxFileSizeBytes.
	MaxBytes int64
	Events   chan<- Event
}

func (s *Service) maxBytes() int64 {
	if s.MaxBytes > 0 {
		return s.MaxBytes
	}
	return MaxFileSizeBytes
}

// SubmitUpload validates and stores an upload, then starts recognition in the
// background. Validation and rate-limit failures happen before any record
// exists.
func (s *Service) SubmitUpload(ctx context.Context, actor string, req UploadRequest) (Document, error) {
	fileType, err := resolveFileType(req)
	if err != nil {
		metrics.IncUploadRejected()
		return Document{}, err
	}
	if len(req.Data) == 0 {
		metrics.IncUploadRejected()
		return Document{}, validationErrorf("file is empty")
	}
	if int64(len(req.Data)) > s.maxBytes() {
		metrics.IncUploadRejected()
		return Document{}, validationErrorf("file exceeds maximum size of %d bytes", s.maxBytes())
	}
	if !ValidFileBytes(req.Data) {
		metrics.IncUploadRejected()
		return Document{}, validationErrorf("file content does not match an allowed format")
	}
	fileName, err := util.SanitizeFileName(req.OriginalFileName)
	if err != nil {
		metrics.IncUploadRejected()
		return Document{}, validationErrorf("invalid file name")
	}
	if strings.TrimSpace(req.OwnerType) == "" {
		metrics.IncUploadRejected()
		return Document{}, validationErrorf("ownerType is required")
	}

	if s.Gate != nil && !s.Gate.Allow(actor) {
		metrics.IncUploadRejected()
		return Document{}, ErrRateLimited
	}

	now := time.Now().UTC()
	doc := Document{
		ID:               uuid.NewString(),
		OwnerType:        strings.TrimSpace(req.OwnerType),
		OwnerID:          strings.TrimSpace(req.OwnerID),
		FileType:         fileType,
		FileData:         req.Data,
		OriginalFileName: fileName,
		FileSizeBytes:    int64(len(req.Data)),
		OcrStatus:        StatusPending,
		UploadedAt:       now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}
	metrics.IncUploadAccepted()
	telemetry.Info("document.uploaded", map[string]any{
		"document_id": doc.ID,
		"owner_type":  doc.OwnerType,
		"file_type":   string(doc.FileType),
		"size_bytes":  doc.FileSizeBytes,
	})

	// Recognition outlives the request that triggered it.
	go s.processAsync(context.Background(), doc.ID)

	return doc, nil
}

// Retry re-enters processing for a failed document. Any other status is
// rejected: done documents are final, and pending or processing documents
// already have a recognition run in flight.
func (s *Service) Retry(ctx context.Context, documentID string) error {
	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.OcrStatus != StatusFailed {
		return ErrNotRetryable
	}

	processing := StatusProcessing
	if _, err := s.Repo.Update(ctx, documentID, Patch{OcrStatus: &processing}); err != nil {
		return err
	}

	go s.processAsync(context.Background(), documentID)
	return nil
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, documentID string) (Document, error) {
	if documentID == "" {
		return Document{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, documentID)
}

// List returns documents newest-first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Document, error) {
	return s.Repo.List(ctx, limit, offset)
}

// ListByOwner returns the documents attached to one owner.
func (s *Service) ListByOwner(ctx context.Context, ownerType, ownerID string) ([]Document, error) {
	if ownerType == "" || ownerID == "" {
		return nil, validationErrorf("ownerType and ownerId are required")
	}
	return s.Repo.ListByOwner(ctx, ownerType, ownerID)
}

// LinkOwner attaches a document to its owner after the fact, for uploads that
// happen before the parent record exists.
func (s *Service) LinkOwner(ctx context.Context, documentID, ownerID string) (Document, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return Document{}, validationErrorf("ownerId is required")
	}
	return s.Repo.Update(ctx, documentID, Patch{OwnerID: &ownerID})
}

// Delete removes a document unconditionally.
func (s *Service) Delete(ctx context.Context, documentID string) error {
	return s.Repo.Delete(ctx, documentID)
}

func (s *Service) processAsync(ctx context.Context, documentID string) {
	startedAt := time.Now().UTC()
	defer func() {
		if r := recover(); r != nil {
			s.failDocument(documentID, fmt.Errorf("panic: %v", r), startedAt)
		}
	}()

	processing := StatusProcessing
	if _, err := s.Repo.Update(ctx, documentID, Patch{OcrStatus: &processing}); err != nil {
		s.failDocument(documentID, fmt.Errorf("set processing: %w", err), startedAt)
		return
	}
	metrics.IncOCRStarted()
	s.logTransition(documentID, StatusProcessing, "")
	s.notify(Event{DocumentID: documentID, Status: StatusProcessing})

	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		s.failDocument(documentID, fmt.Errorf("document lookup: %w", err), startedAt)
		return
	}

	text, err := s.Engine.Recognize(ctx, doc.FileData, s.Languages)
	if err != nil {
		s.failDocument(documentID, fmt.Errorf("ocr engine: %w", err), startedAt)
		return
	}

	fields := extract.Extract(text)

	done := StatusDone
	if _, err := s.Repo.Update(ctx, documentID, Patch{OcrStatus: &done, OcrText: &text, Fields: &fields}); err != nil {
		s.failDocument(documentID, fmt.Errorf("store result: %w", err), startedAt)
		return
	}

	metrics.IncOCRCompleted()
	metrics.ObserveOCRDurationMs(durationMs(startedAt))
	s.logTransition(documentID, StatusDone, "")
	s.notify(Event{DocumentID: documentID, Status: StatusDone})
}

func (s *Service) failDocument(documentID string, err error, startedAt time.Time) {
	msg := sanitizeError(err)
	if msg == "" {
		msg = "OCR processing failed"
	}
	failed := StatusFailed
	// Background context: the failure must be recorded even when the
	// triggering context is long gone.
	if _, updateErr := s.Repo.Update(context.Background(), documentID, Patch{OcrStatus: &failed, OcrError: &msg}); updateErr != nil {
		telemetry.Error("document.ocr.fail_update", map[string]any{
			"document_id": documentID,
			"error":       updateErr.Error(),
			"cause":       msg,
		})
	}
	metrics.IncOCRFailed()
	metrics.ObserveOCRDurationMs(durationMs(startedAt))
	s.logTransition(documentID, StatusFailed, msg)
	s.notify(Event{DocumentID: documentID, Status: StatusFailed, Error: msg})
}

func (s *Service) logTransition(documentID string, status OcrStatus, errMsg string) {
	fields := map[string]any{
		"document_id": documentID,
		"ocr_status":  string(status),
	}
	if errMsg != "" {
		fields["ocr_error"] = errMsg
	}
	telemetry.Info("document.ocr.status", fields)
}

func (s *Service) notify(event Event) {
	if s.Events == nil {
		return
	}
	select {
	case s.Events <- event:
	default:
	}
}

func durationMs(startedAt time.Time) float64 {
	return float64(time.Since(startedAt).Microseconds()) / 1000.0
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}

// resolveFileType prefers the file extension (which distinguishes jpg from
// jpeg) and falls back to the declared MIME type; either way the declared
// type must be in the accepted set.
func resolveFileType(req UploadRequest) (FileType, error) {
	declared := strings.ToLower(strings.TrimSpace(strings.Split(req.DeclaredMimeType, ";")[0]))
	mimeType, ok := AllowedMimeTypes[declared]
	if !ok {
		return "", validationErrorf("declared type %q is not allowed", req.DeclaredMimeType)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(req.OriginalFileName)), ".")
	if _, ok := AllowedFileTypes[FileType(ext)]; ok {
		return FileType(ext), nil
	}
	return mimeType, nil
}
