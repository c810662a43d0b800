package analyses

import "context"

// Repo defines persistence operations for analyses.
type Repo interface {
	Create(ctx context.Context, analysis Analysis) error
	GetByID(ctx context.Context, analysisID string) (Analysis, error)
	// List returns analyses newest first. An empty documentID lists all.
	List(ctx context.Context, documentID string, limit, offset int) ([]Analysis, error)
}
