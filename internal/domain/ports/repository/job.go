package repository

import (
	"context"

	"agentmarket/internal/domain/model"
)

type JobRepository interface {
	Save(ctx context.Context, j *model.Job) error
	FindByID(ctx context.Context, id string) (*model.Job, error)
	// ListAvailable returns open jobs, oldest first.
	ListAvailable(ctx context.Context) ([]*model.Job, error)
	ListByPoster(ctx context.Context, posterID string) ([]*model.Job, error)
	// Claim performs the atomic open->claimed check-and-set. Exactly one of N
	// concurrent callers succeeds; the rest get domain.ErrConflict. An unknown
	// job id yields domain.ErrNotFound.
	Claim(ctx context.Context, jobID, agentID string) error
	UpdateStatus(ctx context.Context, id string, status model.JobStatus) error
	Delete(ctx context.Context, id string) error
}
