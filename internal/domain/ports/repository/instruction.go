package repository

import (
	"context"

	"agentmarket/internal/domain/model"
)

type InstructionRepository interface {
	Save(ctx context.Context, in *model.Instruction) error
	ListPending(ctx context.Context, jobID string) ([]*model.Instruction, error)
	MarkDelivered(ctx context.Context, id string) error
	DeleteByJob(ctx context.Context, jobID string) error
}
