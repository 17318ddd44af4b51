package documents

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo, safe for concurrent use.
// It backs the server when no database is configured, and the tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Document)}
}

// Create stores a new document.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateForCreate(doc); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[doc.ID] = doc
	return nil
}

// GetByID returns a document by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.byID[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// List returns documents newest-first, honoring limit/offset.
func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	docs := make([]Document, 0, len(r.byID))
	for _, doc := range r.byID {
		docs = append(docs, doc)
	}
	r.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return window(docs, limit, offset), nil
}

// ListByOwner returns the documents attached to one owner, newest first.
func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerType, ownerID string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	var docs []Document
	for _, doc := range r.byID {
		if doc.OwnerType == ownerType && doc.OwnerID == ownerID {
			docs = append(docs, doc)
		}
	}
	r.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	if docs == nil {
		docs = []Document{}
	}
	return docs, nil
}

// CountByOwner returns how many documents one owner has.
func (r *MemoryRepo) CountByOwner(ctx context.Context, ownerType, ownerID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, doc := range r.byID {
		if doc.OwnerType == ownerType && doc.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

// Update applies a patch and returns the updated document.
func (r *MemoryRepo) Update(ctx context.Context, id string, patch Patch) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.byID[id]
	if !ok {
		return Document{}, ErrNotFound
	}

	if patch.OwnerID != nil {
		doc.OwnerID = *patch.OwnerID
	}
	if patch.OcrStatus != nil {
		doc.OcrStatus = *patch.OcrStatus
		if *patch.OcrStatus != StatusFailed {
			doc.OcrError = ""
		}
	}
	if patch.OcrText != nil {
		doc.OcrText = *patch.OcrText
	}
	if patch.Fields != nil {
		fields := *patch.Fields
		doc.ExtractedFields = &fields
	}
	if patch.OcrError != nil {
		doc.OcrError = *patch.OcrError
	}
	doc.UpdatedAt = time.Now().UTC()

	r.byID[id] = doc
	return doc, nil
}

// Delete removes a document; deleting an absent ID is a no-op.
func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func window(docs []Document, limit, offset int) []Document {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	if offset >= len(docs) {
		return []Document{}
	}
	end := len(docs)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return docs[offset:end]
}

var _ Repo = (*MemoryRepo)(nil)
