package repository

import (
	"context"

	"agentmarket/internal/domain/model"
)

type EscrowRepository interface {
	Save(ctx context.Context, e *model.Escrow) error
	FindByJob(ctx context.Context, jobID string) (*model.Escrow, error)
	Release(ctx context.Context, id, txRef string) error
	Refund(ctx context.Context, id string) error
	DeleteByJob(ctx context.Context, jobID string) error
}
