package usecase

import (
	"context"
	"time"

	"agentmarket/internal/domain"
	"agentmarket/internal/domain/model"
	"agentmarket/internal/domain/ports/repository"
	"agentmarket/internal/infra/bus"
	"agentmarket/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// JobUseCase owns the job lifecycle state machine:
//
//	open -> claimed -> in_progress -> delivered -> completed
//
// with cancelled reachable from any pre-completed state. Every transition is
// validated against the store and announced on the event bus. This is the
// only writer of job, escrow and agent-wallet state.
type JobUseCase struct {
	jobs         repository.JobRepository
	posters      repository.PosterRepository
	agents       repository.AgentRepository
	escrows      repository.EscrowRepository
	updates      repository.UpdateRepository
	deliverables repository.DeliverableRepository
	instructions repository.InstructionRepository
	bus          *bus.Bus
	refs         RefGenerator
	log          *zerolog.Logger
}

func NewJobUseCase(
	jobs repository.JobRepository,
	posters repository.PosterRepository,
	agents repository.AgentRepository,
	escrows repository.EscrowRepository,
	updates repository.UpdateRepository,
	deliverables repository.DeliverableRepository,
	instructions repository.InstructionRepository,
	eventBus *bus.Bus,
	refs RefGenerator,
	logger *zerolog.Logger,
) *JobUseCase {
	l := logger.With().Str("component", "JobUseCase").Logger()
	return &JobUseCase{
		jobs:         jobs,
		posters:      posters,
		agents:       agents,
		escrows:      escrows,
		updates:      updates,
		deliverables: deliverables,
		instructions: instructions,
		bus:          eventBus,
		refs:         refs,
		log:          &l,
	}
}

// JobDetail is a job with its full activity feed embedded.
type JobDetail struct {
	*model.Job
	Updates      []*model.ProgressUpdate `json:"updates"`
	Deliverables []*model.Deliverable    `json:"deliverables"`
}

// PaymentSummary describes the simulated settlement performed at approval.
type PaymentSummary struct {
	Amount          float64 `json:"amount_usdc"`
	TxRef           string  `json:"tx_hash"`
	ToWallet        string  `json:"to_wallet"`
	WalletDestroyed bool    `json:"agent_wallet_destroyed"`
}

// Post creates a job in `open` and synchronously funds its escrow from the
// poster's wallet. Escrow amount always equals the job budget.
func (uc *JobUseCase) Post(ctx context.Context, posterID, title, description string, budget float64) (*model.Job, error) {
	if posterID == "" || title == "" || budget <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	poster, err := uc.posters.FindByID(ctx, posterID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	job := &model.Job{
		ID:          newID(),
		PosterID:    posterID,
		Title:       title,
		Description: description,
		Budget:      budget,
		Status:      model.JobStatusOpen,
		CreatedAt:   now,
	}
	if err := uc.jobs.Save(ctx, job); err != nil {
		return nil, err
	}
	escrow := &model.Escrow{
		ID:         newID(),
		JobID:      job.ID,
		FromWallet: poster.WalletAddress,
		Amount:     budget,
		Status:     model.EscrowStatusFunded,
		CreatedAt:  now,
	}
	if err := uc.escrows.Save(ctx, escrow); err != nil {
		return nil, err
	}
	metrics.IncJobPosted()
	uc.log.Info().Str("job_id", job.ID).Float64("budget", budget).Msg("job posted")
	return job, nil
}

func (uc *JobUseCase) Get(ctx context.Context, id string) (*JobDetail, error) {
	job, err := uc.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	updates, err := uc.updates.ListByJob(ctx, id)
	if err != nil {
		return nil, err
	}
	deliverables, err := uc.deliverables.ListByJob(ctx, id)
	if err != nil {
		return nil, err
	}
	return &JobDetail{Job: job, Updates: updates, Deliverables: deliverables}, nil
}

func (uc *JobUseCase) ListAvailable(ctx context.Context) ([]*model.Job, error) {
	return uc.jobs.ListAvailable(ctx)
}

func (uc *JobUseCase) ListByPoster(ctx context.Context, posterID string) ([]*model.Job, error) {
	return uc.jobs.ListByPoster(ctx, posterID)
}

// Claim binds the job to an agent. The store serializes the open->claimed
// check-and-set, so exactly one of N concurrent callers wins; the rest see
// domain.ErrConflict.
func (uc *JobUseCase) Claim(ctx context.Context, jobID, agentID string) error {
	if agentID == "" {
		return domain.ErrInvalidArgument
	}
	if _, err := uc.agents.FindByID(ctx, agentID); err != nil {
		return err
	}
	if err := uc.jobs.Claim(ctx, jobID, agentID); err != nil {
		switch err {
		case domain.ErrConflict:
			metrics.IncClaimAttempt("conflict")
		case domain.ErrNotFound:
			metrics.IncClaimAttempt("not_found")
		}
		return err
	}
	metrics.IncClaimAttempt("won")
	if err := uc.agents.UpdateStatus(ctx, agentID, model.AgentStatusBusy); err != nil {
		uc.log.Error().Err(err).Str("agent_id", agentID).Msg("mark agent busy failed")
	}
	uc.publish(jobID, "job_claimed", map[string]any{"job_id": jobID, "agent_id": agentID})
	return nil
}

// Start moves a claimed job to in_progress. Calling it again is harmless,
// and it never regresses a job that is already past in_progress.
func (uc *JobUseCase) Start(ctx context.Context, jobID string) error {
	job, err := uc.jobs.FindByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status.Rank() > model.JobStatusInProgress.Rank() || job.Status.Terminal() {
		return nil
	}
	if job.Status != model.JobStatusInProgress {
		if err := uc.jobs.UpdateStatus(ctx, jobID, model.JobStatusInProgress); err != nil {
			return err
		}
	}
	uc.publish(jobID, "job_started", map[string]any{"job_id": jobID})
	return nil
}

// RecordUpdate appends a progress update and fans it out. Fan-out is
// best-effort; a subscriber failure never surfaces to the recording agent.
func (uc *JobUseCase) RecordUpdate(ctx context.Context, jobID, agentID string, typ model.UpdateType, content string) (*model.ProgressUpdate, error) {
	if _, err := uc.jobs.FindByID(ctx, jobID); err != nil {
		return nil, err
	}
	u := &model.ProgressUpdate{
		ID:        newID(),
		JobID:     jobID,
		AgentID:   agentID,
		Type:      typ,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.updates.Append(ctx, u); err != nil {
		return nil, err
	}
	metrics.IncUpdateRecorded(string(typ))
	uc.publish(jobID, "progress_update", map[string]any{"job_id": jobID, "update": u})
	return u, nil
}

// Deliver stores the agent's file set and summary, marks the job delivered
// and frees the agent. Re-delivery appends; the latest deliverable wins.
func (uc *JobUseCase) Deliver(ctx context.Context, jobID, agentID string, files []model.FileRecord, summary string) (*model.Deliverable, error) {
	if agentID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if _, err := uc.jobs.FindByID(ctx, jobID); err != nil {
		return nil, err
	}
	if summary == "" {
		summary = "Job completed"
	}
	if files == nil {
		files = []model.FileRecord{}
	}
	d := &model.Deliverable{
		ID:        newID(),
		JobID:     jobID,
		AgentID:   agentID,
		Files:     files,
		Summary:   summary,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.deliverables.Append(ctx, d); err != nil {
		return nil, err
	}
	if err := uc.jobs.UpdateStatus(ctx, jobID, model.JobStatusDelivered); err != nil {
		return nil, err
	}
	if err := uc.agents.UpdateStatus(ctx, agentID, model.AgentStatusActive); err != nil {
		uc.log.Error().Err(err).Str("agent_id", agentID).Msg("mark agent active failed")
	}
	metrics.IncJobDelivered()
	uc.publish(jobID, "job_delivered", map[string]any{"job_id": jobID, "deliverable_id": d.ID})
	return d, nil
}

// Approve completes the job, releases escrow with a settlement reference and
// destroys the agent's ephemeral payout credentials. The three writes are
// sequenced, not transactional: a crash in between leaves a recoverable
// inconsistency (completed job with unreleased escrow), never corruption.
func (uc *JobUseCase) Approve(ctx context.Context, jobID string) (*PaymentSummary, error) {
	job, err := uc.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.AgentID == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.jobs.UpdateStatus(ctx, jobID, model.JobStatusCompleted); err != nil {
		return nil, err
	}

	txRef := uc.refs.NewRef()
	if escrow, err := uc.escrows.FindByJob(ctx, jobID); err == nil {
		if err := uc.escrows.Release(ctx, escrow.ID, txRef); err != nil {
			uc.log.Error().Err(err).Str("job_id", jobID).Msg("escrow release failed")
		} else {
			metrics.IncEscrowReleased()
		}
	}

	toWallet := "unknown"
	if agent, err := uc.agents.FindByID(ctx, *job.AgentID); err == nil {
		if agent.WalletAddress != nil {
			toWallet = *agent.WalletAddress
		}
		if err := uc.agents.DestroyWallet(ctx, agent.ID); err != nil {
			uc.log.Error().Err(err).Str("agent_id", agent.ID).Msg("wallet destruction failed")
		}
	}

	payment := &PaymentSummary{
		Amount:          job.Budget,
		TxRef:           txRef,
		ToWallet:        toWallet,
		WalletDestroyed: true,
	}
	uc.publish(jobID, "job_approved", map[string]any{
		"job_id":                 jobID,
		"amount_usdc":            payment.Amount,
		"tx_hash":                payment.TxRef,
		"to_wallet":              payment.ToWallet,
		"agent_wallet_destroyed": payment.WalletDestroyed,
	})
	uc.log.Info().Str("job_id", jobID).Str("tx_ref", txRef).Msg("job approved, escrow released")
	return payment, nil
}

// PostInstruction queues a poster's mid-job steering message and records it
// in the progress feed under the sentinel "user" author.
func (uc *JobUseCase) PostInstruction(ctx context.Context, jobID, content string) (*model.Instruction, error) {
	if content == "" {
		return nil, domain.ErrInvalidArgument
	}
	if _, err := uc.jobs.FindByID(ctx, jobID); err != nil {
		return nil, err
	}
	in := &model.Instruction{
		ID:        newID(),
		JobID:     jobID,
		Content:   content,
		Status:    model.InstructionStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.instructions.Save(ctx, in); err != nil {
		return nil, err
	}
	if _, err := uc.RecordUpdate(ctx, jobID, model.InstructionAuthor, model.UpdateTypeInstruction, content); err != nil {
		uc.log.Error().Err(err).Str("job_id", jobID).Msg("instruction feed entry failed")
	}
	return in, nil
}

func (uc *JobUseCase) PendingInstructions(ctx context.Context, jobID string) ([]*model.Instruction, error) {
	return uc.instructions.ListPending(ctx, jobID)
}

func (uc *JobUseCase) MarkInstructionDelivered(ctx context.Context, id string) error {
	return uc.instructions.MarkDelivered(ctx, id)
}

// Delete cascades children before the job row so stores without FK cascade
// never orphan rows. Deleting an unknown job is a no-op.
func (uc *JobUseCase) Delete(ctx context.Context, jobID string) error {
	if _, err := uc.jobs.FindByID(ctx, jobID); err != nil {
		if err == domain.ErrNotFound {
			return nil
		}
		return err
	}
	if err := uc.instructions.DeleteByJob(ctx, jobID); err != nil {
		return err
	}
	if err := uc.deliverables.DeleteByJob(ctx, jobID); err != nil {
		return err
	}
	if err := uc.updates.DeleteByJob(ctx, jobID); err != nil {
		return err
	}
	if err := uc.escrows.DeleteByJob(ctx, jobID); err != nil {
		return err
	}
	return uc.jobs.Delete(ctx, jobID)
}

// FileFromLatest resolves a relative path against the most recent
// deliverable only; older deliverables are shadowed by re-delivery.
func (uc *JobUseCase) FileFromLatest(ctx context.Context, jobID, path string) (*model.FileRecord, error) {
	deliverables, err := uc.deliverables.ListByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if len(deliverables) == 0 {
		return nil, domain.ErrNotFound
	}
	latest := deliverables[len(deliverables)-1]
	for i := range latest.Files {
		if latest.Files[i].Path == path {
			return &latest.Files[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// Escrow exposes a job's escrow record (read-only).
func (uc *JobUseCase) Escrow(ctx context.Context, jobID string) (*model.Escrow, error) {
	return uc.escrows.FindByJob(ctx, jobID)
}

func (uc *JobUseCase) publish(jobID, eventType string, payload map[string]any) {
	payload["type"] = eventType
	uc.bus.Publish(jobID, bus.Event{Type: eventType, Payload: payload})
}
