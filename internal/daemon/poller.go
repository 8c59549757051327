package daemon

import (
	"context"
	"path/filepath"
	"time"

	"agentmarket/internal/daemon/executor"
	"agentmarket/internal/domain"
	"agentmarket/internal/domain/model"

	"github.com/rs/zerolog"
)

// Poller is the daemon's single-threaded work loop: poll for open jobs,
// claim the first one, run it through the executor while relaying progress,
// deliver the result, go back to polling. A lost claim race and a failed
// relay are both routine; neither stops the loop. Only context cancellation
// does.
type Poller struct {
	client   *Client
	agentID  string
	executor executor.Executor
	jobsDir  string
	interval time.Duration
	log      *zerolog.Logger
}

func NewPoller(client *Client, agentID string, exec executor.Executor, jobsDir string, interval time.Duration, logger *zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	l := logger.With().Str("component", "Poller").Str("agent_id", agentID).Logger()
	return &Poller{
		client:   client,
		agentID:  agentID,
		executor: exec,
		jobsDir:  jobsDir,
		interval: interval,
		log:      &l,
	}
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.log.Info().Dur("interval", p.interval).Msg("watching for jobs")
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.pollOnce(ctx); err != nil && ctx.Err() == nil {
			p.log.Warn().Err(err).Msg("poll failed")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *Poller) pollOnce(ctx context.Context) error {
	jobs, err := p.client.AvailableJobs(ctx)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return nil
	}
	return p.executeJob(ctx, jobs[0])
}

func (p *Poller) executeJob(ctx context.Context, job *model.Job) error {
	log := p.log.With().Str("job_id", job.ID).Logger()

	if err := p.client.Claim(ctx, job.ID, p.agentID); err != nil {
		// Another agent got there first; back to polling.
		if err == domain.ErrConflict {
			log.Debug().Msg("claim lost")
			return nil
		}
		return err
	}
	log.Info().Str("title", job.Title).Float64("budget", job.Budget).Msg("job claimed")

	if err := p.client.Start(ctx, job.ID); err != nil {
		log.Warn().Err(err).Msg("start signal failed")
	}

	onUpdate := func(kind executor.UpdateKind, content string) {
		// Relay failures must never interrupt the run.
		if err := p.client.RecordUpdate(ctx, job.ID, p.agentID, string(kind), content); err != nil {
			log.Debug().Err(err).Msg("update relay failed")
		}
	}

	workDir := filepath.Join(p.jobsDir, job.ID)
	result, err := p.executor.Execute(ctx, job, workDir, onUpdate, p.interactivity(job.ID))
	if err != nil {
		return err
	}
	log.Info().Bool("success", result.Success).Int("files", len(result.Files)).Msg("execution finished")

	if err := p.client.Deliver(ctx, job.ID, p.agentID, result.Files, result.Summary); err != nil {
		log.Error().Err(err).Msg("deliver failed")
		return nil
	}
	log.Info().Msg("deliverables sent")
	return nil
}

func (p *Poller) interactivity(jobID string) executor.Interactivity {
	return &clientInteractivity{client: p.client, jobID: jobID}
}

// clientInteractivity adapts the broker client to the executor's
// instruction channel for one job.
type clientInteractivity struct {
	client *Client
	jobID  string
}

func (ci *clientInteractivity) PendingInstructions(ctx context.Context) ([]*model.Instruction, error) {
	return ci.client.PendingInstructions(ctx, ci.jobID)
}

func (ci *clientInteractivity) MarkDelivered(ctx context.Context, instructionID string) error {
	return ci.client.MarkInstructionDelivered(ctx, ci.jobID, instructionID)
}
