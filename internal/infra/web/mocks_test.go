package web

import (
	"context"
	"sync"

	"agentmarket/internal/domain"
	"agentmarket/internal/domain/model"
	"agentmarket/internal/domain/ports/repository"
)

// Minimal in-memory store shared by the handler tests. One struct backs all
// seven repository ports; every method runs under a single mutex, which also
// makes the claim path a faithful check-and-set.
type memStore struct {
	mu           sync.Mutex
	posters      map[string]*model.Poster
	agents       map[string]*model.Agent
	jobs         map[string]*model.Job
	jobOrder     []string
	escrows      map[string]*model.Escrow
	updates      []*model.ProgressUpdate
	deliverables []*model.Deliverable
	instructions []*model.Instruction
}

func newMemStore() *memStore {
	return &memStore{
		posters: map[string]*model.Poster{},
		agents:  map[string]*model.Agent{},
		jobs:    map[string]*model.Job{},
		escrows: map[string]*model.Escrow{},
	}
}

type posterStore struct{ *memStore }
type agentStore struct{ *memStore }
type jobStore struct{ *memStore }
type escrowStore struct{ *memStore }
type updateStore struct{ *memStore }
type deliverableStore struct{ *memStore }
type instructionStore struct{ *memStore }

func (s posterStore) Save(_ context.Context, p *model.Poster) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.posters[p.ID] = &cp
	return nil
}

func (s posterStore) FindByID(_ context.Context, id string) (*model.Poster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posters[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s agentStore) Save(_ context.Context, a *model.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.agents[a.ID] = &cp
	return nil
}

func (s agentStore) FindByID(_ context.Context, id string) (*model.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s agentStore) UpdateStatus(_ context.Context, id string, status model.AgentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agents[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.Status = status
	return nil
}

func (s agentStore) DestroyWallet(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agents[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.WalletAddress = nil
	a.WalletSecret = nil
	return nil
}

func (s jobStore) Save(_ context.Context, j *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[j.ID]; !ok {
		s.jobOrder = append(s.jobOrder, j.ID)
	}
	cp := *j
	s.jobs[j.ID] = &cp
	return nil
}

func (s jobStore) FindByID(_ context.Context, id string) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (s jobStore) ListAvailable(_ context.Context) ([]*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Job
	for _, id := range s.jobOrder {
		if j := s.jobs[id]; j != nil && j.Status == model.JobStatusOpen {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s jobStore) ListByPoster(_ context.Context, posterID string) ([]*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Job
	for i := len(s.jobOrder) - 1; i >= 0; i-- {
		if j := s.jobs[s.jobOrder[i]]; j != nil && j.PosterID == posterID {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s jobStore) Claim(_ context.Context, jobID, agentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
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

func (s jobStore) UpdateStatus(_ context.Context, id string, status model.JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	j.Status = status
	return nil
}

func (s jobStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
	for i, oid := range s.jobOrder {
		if oid == id {
			s.jobOrder = append(s.jobOrder[:i], s.jobOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s escrowStore) Save(_ context.Context, e *model.Escrow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.escrows[e.ID] = &cp
	return nil
}

func (s escrowStore) FindByJob(_ context.Context, jobID string) (*model.Escrow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.escrows {
		if e.JobID == jobID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s escrowStore) Release(_ context.Context, id, txRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.escrows[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.Status = model.EscrowStatusReleased
	ref := txRef
	e.TxRef = &ref
	return nil
}

func (s escrowStore) Refund(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.escrows[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.Status = model.EscrowStatusRefunded
	return nil
}

func (s escrowStore) DeleteByJob(_ context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.escrows {
		if e.JobID == jobID {
			delete(s.escrows, id)
		}
	}
	return nil
}

func (s updateStore) Append(_ context.Context, u *model.ProgressUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.updates = append(s.updates, &cp)
	return nil
}

func (s updateStore) ListByJob(_ context.Context, jobID string) ([]*model.ProgressUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.ProgressUpdate
	for _, u := range s.updates {
		if u.JobID == jobID {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s updateStore) DeleteByJob(_ context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.updates[:0]
	for _, u := range s.updates {
		if u.JobID != jobID {
			kept = append(kept, u)
		}
	}
	s.memStore.updates = kept
	return nil
}

func (s deliverableStore) Append(_ context.Context, d *model.Deliverable) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	cp.Files = append([]model.FileRecord(nil), d.Files...)
	s.memStore.deliverables = append(s.memStore.deliverables, &cp)
	return nil
}

func (s deliverableStore) ListByJob(_ context.Context, jobID string) ([]*model.Deliverable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Deliverable
	for _, d := range s.deliverables {
		if d.JobID == jobID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s deliverableStore) DeleteByJob(_ context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.deliverables[:0]
	for _, d := range s.deliverables {
		if d.JobID != jobID {
			kept = append(kept, d)
		}
	}
	s.memStore.deliverables = kept
	return nil
}

func (s instructionStore) Save(_ context.Context, in *model.Instruction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *in
	s.memStore.instructions = append(s.memStore.instructions, &cp)
	return nil
}

func (s instructionStore) ListPending(_ context.Context, jobID string) ([]*model.Instruction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Instruction
	for _, in := range s.instructions {
		if in.JobID == jobID && in.Status == model.InstructionStatusPending {
			cp := *in
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s instructionStore) MarkDelivered(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, in := range s.instructions {
		if in.ID == id {
			in.Status = model.InstructionStatusDelivered
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s instructionStore) DeleteByJob(_ context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.instructions[:0]
	for _, in := range s.instructions {
		if in.JobID != jobID {
			kept = append(kept, in)
		}
	}
	s.memStore.instructions = kept
	return nil
}

var (
	_ repository.PosterRepository      = posterStore{}
	_ repository.AgentRepository       = agentStore{}
	_ repository.JobRepository         = jobStore{}
	_ repository.EscrowRepository      = escrowStore{}
	_ repository.UpdateRepository      = updateStore{}
	_ repository.DeliverableRepository = deliverableStore{}
	_ repository.InstructionRepository = instructionStore{}
)
