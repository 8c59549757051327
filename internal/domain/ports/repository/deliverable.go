package repository

import (
	"context"

	"agentmarket/internal/domain/model"
)

type DeliverableRepository interface {
	Append(ctx context.Context, d *model.Deliverable) error
	// ListByJob returns deliverables oldest first; the last entry is current.
	ListByJob(ctx context.Context, jobID string) ([]*model.Deliverable, error)
	DeleteByJob(ctx context.Context, jobID string) error
}
