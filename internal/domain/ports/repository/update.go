package repository

import (
	"context"

	"agentmarket/internal/domain/model"
)

type UpdateRepository interface {
	Append(ctx context.Context, u *model.ProgressUpdate) error
	ListByJob(ctx context.Context, jobID string) ([]*model.ProgressUpdate, error)
	DeleteByJob(ctx context.Context, jobID string) error
}
