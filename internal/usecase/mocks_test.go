package usecase

import (
	"context"
	"sync"

	"agentmarket/internal/domain"
	"agentmarket/internal/domain/model"
	"agentmarket/internal/domain/ports/repository"
)

// In-memory repositories used across the usecase tests. Each one guards its
// map with a mutex so the concurrent claim tests exercise real contention.

type memPosterRepo struct {
	mu sync.Mutex
	m  map[string]*model.Poster
}

func newMemPosterRepo() *memPosterRepo { return &memPosterRepo{m: map[string]*model.Poster{}} }

func (r *memPosterRepo) Save(_ context.Context, p *model.Poster) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.m[p.ID] = &cp
	return nil
}

func (r *memPosterRepo) FindByID(_ context.Context, id string) (*model.Poster, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.m[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

type memAgentRepo struct {
	mu sync.Mutex
	m  map[string]*model.Agent
}

func newMemAgentRepo() *memAgentRepo { return &memAgentRepo{m: map[string]*model.Agent{}} }

func (r *memAgentRepo) Save(_ context.Context, a *model.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.m[a.ID] = &cp
	return nil
}

func (r *memAgentRepo) FindByID(_ context.Context, id string) (*model.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.m[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memAgentRepo) UpdateStatus(_ context.Context, id string, status model.AgentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.m[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.Status = status
	return nil
}

func (r *memAgentRepo) DestroyWallet(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.m[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.WalletAddress = nil
	a.WalletSecret = nil
	return nil
}

type memJobRepo struct {
	mu    sync.Mutex
	m     map[string]*model.Job
	order []string
}

func newMemJobRepo() *memJobRepo { return &memJobRepo{m: map[string]*model.Job{}} }

func (r *memJobRepo) Save(_ context.Context, j *model.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[j.ID]; !ok {
		r.order = append(r.order, j.ID)
	}
	cp := *j
	r.m[j.ID] = &cp
	return nil
}

func (r *memJobRepo) FindByID(_ context.Context, id string) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.m[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (r *memJobRepo) ListAvailable(_ context.Context) ([]*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Job
	for _, id := range r.order {
		if j := r.m[id]; j != nil && j.Status == model.JobStatusOpen {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memJobRepo) ListByPoster(_ context.Context, posterID string) ([]*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Job
	for i := len(r.order) - 1; i >= 0; i-- {
		if j := r.m[r.order[i]]; j != nil && j.PosterID == posterID {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Claim mirrors the store's atomic conditional update: the whole
// check-and-set happens under one lock acquisition.
func (r *memJobRepo) Claim(_ context.Context, jobID, agentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.m[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	if j.Status != model.JobStatusOpen {
		return domain.ErrConflict
	}
	j.Status = model.JobStatusClaimed
	id := agentID
	j.AgentID = &id
	return nil
}

func (r *memJobRepo) UpdateStatus(_ context.Context, id string, status model.JobStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.m[id]
	if !ok {
		return domain.ErrNotFound
	}
	j.Status = status
	return nil
}

func (r *memJobRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

type memEscrowRepo struct {
	mu sync.Mutex
	m  map[string]*model.Escrow // keyed by escrow id
}

func newMemEscrowRepo() *memEscrowRepo { return &memEscrowRepo{m: map[string]*model.Escrow{}} }

func (r *memEscrowRepo) Save(_ context.Context, e *model.Escrow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.m[e.ID] = &cp
	return nil
}

func (r *memEscrowRepo) FindByJob(_ context.Context, jobID string) (*model.Escrow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.m {
		if e.JobID == jobID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memEscrowRepo) Release(_ context.Context, id, txRef string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.m[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.Status = model.EscrowStatusReleased
	ref := txRef
	e.TxRef = &ref
	return nil
}

func (r *memEscrowRepo) Refund(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.m[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.Status = model.EscrowStatusRefunded
	return nil
}

func (r *memEscrowRepo) DeleteByJob(_ context.Context, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.m {
		if e.JobID == jobID {
			delete(r.m, id)
		}
	}
	return nil
}

type memUpdateRepo struct {
	mu   sync.Mutex
	rows []*model.ProgressUpdate
}

func newMemUpdateRepo() *memUpdateRepo { return &memUpdateRepo{} }

func (r *memUpdateRepo) Append(_ context.Context, u *model.ProgressUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *memUpdateRepo) ListByJob(_ context.Context, jobID string) ([]*model.ProgressUpdate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.ProgressUpdate
	for _, u := range r.rows {
		if u.JobID == jobID {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memUpdateRepo) DeleteByJob(_ context.Context, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	for _, u := range r.rows {
		if u.JobID != jobID {
			kept = append(kept, u)
		}
	}
	r.rows = kept
	return nil
}

type memDeliverableRepo struct {
	mu   sync.Mutex
	rows []*model.Deliverable
}

func newMemDeliverableRepo() *memDeliverableRepo { return &memDeliverableRepo{} }

func (r *memDeliverableRepo) Append(_ context.Context, d *model.Deliverable) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *d
	cp.Files = append([]model.FileRecord(nil), d.Files...)
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *memDeliverableRepo) ListByJob(_ context.Context, jobID string) ([]*model.Deliverable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Deliverable
	for _, d := range r.rows {
		if d.JobID == jobID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memDeliverableRepo) DeleteByJob(_ context.Context, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	for _, d := range r.rows {
		if d.JobID != jobID {
			kept = append(kept, d)
		}
	}
	r.rows = kept
	return nil
}

type memInstructionRepo struct {
	mu   sync.Mutex
	rows []*model.Instruction
}

func newMemInstructionRepo() *memInstructionRepo { return &memInstructionRepo{} }

func (r *memInstructionRepo) Save(_ context.Context, in *model.Instruction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *in
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *memInstructionRepo) ListPending(_ context.Context, jobID string) ([]*model.Instruction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Instruction
	for _, in := range r.rows {
		if in.JobID == jobID && in.Status == model.InstructionStatusPending {
			cp := *in
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memInstructionRepo) MarkDelivered(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, in := range r.rows {
		if in.ID == id {
			in.Status = model.InstructionStatusDelivered
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memInstructionRepo) DeleteByJob(_ context.Context, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	for _, in := range r.rows {
		if in.JobID != jobID {
			kept = append(kept, in)
		}
	}
	r.rows = kept
	return nil
}

// Compile-time conformance for the mocks.
var (
	_ repository.PosterRepository      = (*memPosterRepo)(nil)
	_ repository.AgentRepository       = (*memAgentRepo)(nil)
	_ repository.JobRepository         = (*memJobRepo)(nil)
	_ repository.EscrowRepository      = (*memEscrowRepo)(nil)
	_ repository.UpdateRepository      = (*memUpdateRepo)(nil)
	_ repository.DeliverableRepository = (*memDeliverableRepo)(nil)
	_ repository.InstructionRepository = (*memInstructionRepo)(nil)
)
