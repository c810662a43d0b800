package analyses

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores analyses in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu         sync.RWMutex
	byID       map[string]Analysis
	byDocument map[string][]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:       make(map[string]Analysis),
		byDocument: make(map[string][]string),
	}
}

// Create stores the analysis.
func (r *MemoryRepo) Create(ctx context.Context, analysis Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[analysis.ID]; !exists {
		r.byDocument[analysis.DocumentID] = append(r.byDocument[analysis.DocumentID], analysis.ID)
	}
	r.byID[analysis.ID] = analysis
	return nil
}

// GetByID returns an analysis by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	analysis, ok := r.byID[analysisID]
	if !ok {
		return Analysis{}, ErrNotFound
	}
	return analysis, nil
}

// List returns analyses newest first, with limit/offset. A zero limit returns everything.
func (r *MemoryRepo) List(ctx context.Context, documentID string, limit, offset int) ([]Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	var analyses []Analysis
	if documentID == "" {
		analyses = make([]Analysis, 0, len(r.byID))
		for _, a := range r.byID {
			analyses = append(analyses, a)
		}
	} else {
		ids := r.byDocument[documentID]
		analyses = make([]Analysis, 0, len(ids))
		for _, id := range ids {
			analyses = append(analyses, r.byID[id])
		}
	}
	r.mu.RUnlock()

	if offset >= len(analyses) {
		return []Analysis{}, nil
	}

	sort.Slice(analyses, func(i, j int) bool {
		if analyses[i].CreatedAt.Equal(analyses[j].CreatedAt) {
			return analyses[i].ID > analyses[j].ID
		}
		return analyses[i].CreatedAt.After(analyses[j].CreatedAt)
	})

	end := len(analyses)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return analyses[offset:end], nil
}

var _ Repo = (*MemoryRepo)(nil)
