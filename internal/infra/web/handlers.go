package web

import (
	"encoding/json"
	"net/http"
	"path"
	"strings"

	"agentmarket/internal/domain"
	"agentmarket/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto the API's {error: string} envelope.
func (s *Server) writeError(w http.ResponseWriter, err error, msg string) {
	switch err {
	case domain.ErrNotFound:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": msg})
	case domain.ErrInvalidArgument:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
	case domain.ErrConflict:
		writeJSON(w, http.StatusConflict, map[string]string{"error": msg})
	default:
		s.log.Error().Err(err).Msg(msg)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ErrInvalidArgument
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegisterPoster(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string `json:"name"`
		WalletAddress string `json:"wallet_address"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err, "invalid request body")
		return
	}
	poster, err := s.posterUC.Register(r.Context(), req.Name, req.WalletAddress)
	if err != nil {
		s.writeError(w, err, "name and wallet_address required")
		return
	}
	writeJSON(w, http.StatusCreated, poster)
}

func (s *Server) handleRegisterAgent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err, "invalid request body")
		return
	}
	agent, err := s.agentUC.Register(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, err, "name required")
		return
	}
	writeJSON(w, http.StatusCreated, agent)
}

func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	agent, err := s.agentUC.Get(r.Context(), chi.URLParam(r, "agentID"))
	if err != nil {
		s.writeError(w, err, "agent not found")
		return
	}
	writeJSON(w, http.StatusOK, agent)
}

func (s *Server) handlePostJob(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PosterID    string  `json:"poster_id"`
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Budget      float64 `json:"budget_usdc"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err, "invalid request body")
		return
	}
	job, err := s.jobUC.Post(r.Context(), req.PosterID, req.Title, req.Description, req.Budget)
	if err != nil {
		if err == domain.ErrNotFound {
			s.writeError(w, err, "poster not found")
			return
		}
		s.writeError(w, err, "poster_id, title and a positive budget_usdc required")
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

func (s *Server) handleListAvailable(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.jobUC.ListAvailable(r.Context())
	if err != nil {
		s.writeError(w, err, "list jobs failed")
		return
	}
	if jobs == nil {
		jobs = []*model.Job{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

// handleListJobs lists a poster's jobs (newest first) when poster_id is
// given, otherwise it behaves like the available listing.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	posterID := r.URL.Query().Get("poster_id")
	if posterID == "" {
		s.handleListAvailable(w, r)
		return
	}
	jobs, err := s.jobUC.ListByPoster(r.Context(), posterID)
	if err != nil {
		s.writeError(w, err, "list jobs failed")
		return
	}
	if jobs == nil {
		jobs = []*model.Job{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	detail, err := s.jobUC.Get(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		s.writeError(w, err, "job not found")
		return
	}
	if detail.Updates == nil {
		detail.Updates = []*model.ProgressUpdate{}
	}
	if detail.Deliverables == nil {
		detail.Deliverables = []*model.Deliverable{}
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := s.jobUC.Delete(r.Context(), chi.URLParam(r, "jobID")); err != nil {
		s.writeError(w, err, "delete failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AgentID string `json:"agent_id"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err, "invalid request body")
		return
	}
	jobID := chi.URLParam(r, "jobID")
	if err := s.jobUC.Claim(r.Context(), jobID, req.AgentID); err != nil {
		switch err {
		case domain.ErrConflict:
			s.writeError(w, err, "job is not open")
		case domain.ErrInvalidArgument:
			s.writeError(w, err, "agent_id required")
		default:
			s.writeError(w, err, "job or agent not found")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "claimed", "job_id": jobID, "agent_id": req.AgentID})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if err := s.jobUC.Start(r.Context(), jobID); err != nil {
		s.writeError(w, err, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "in_progress", "job_id": jobID})
}

func (s *Server) handleRecordUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AgentID string `json:"agent_id"`
		Type    string `json:"type"`
		Content string `json:"content"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err, "invalid request body")
		return
	}
	if req.Type == "" {
		req.Type = string(model.UpdateTypeText)
	}
	u, err := s.jobUC.RecordUpdate(r.Context(), chi.URLParam(r, "jobID"),
		req.AgentID, model.UpdateType(req.Type), req.Content)
	if err != nil {
		s.writeError(w, err, "job not found")
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleDeliver(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AgentID string             `json:"agent_id"`
		Files   []model.FileRecord `json:"files"`
		Summary string             `json:"summary"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err, "invalid request body")
		return
	}
	d, err := s.jobUC.Deliver(r.Context(), chi.URLParam(r, "jobID"), req.AgentID, req.Files, req.Summary)
	if err != nil {
		if err == domain.ErrInvalidArgument {
			s.writeError(w, err, "agent_id required")
			return
		}
		s.writeError(w, err, "job not found")
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	payment, err := s.jobUC.Approve(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		s.writeError(w, err, "job not found or no agent assigned")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "completed", "payment": payment})
}

// handleDownloadFile serves one file out of the most recent deliverable.
func (s *Server) handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	filePath := chi.URLParam(r, "*")
	file, err := s.jobUC.FileFromLatest(r.Context(), chi.URLParam(r, "jobID"), filePath)
	if err != nil {
		s.writeError(w, err, "file not found")
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+path.Base(file.Path)+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(file.Content))
}

func (s *Server) handlePostInstruction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err, "invalid request body")
		return
	}
	in, err := s.jobUC.PostInstruction(r.Context(), chi.URLParam(r, "jobID"), strings.TrimSpace(req.Content))
	if err != nil {
		if err == domain.ErrInvalidArgument {
			s.writeError(w, err, "content required")
			return
		}
		s.writeError(w, err, "job not found")
		return
	}
	writeJSON(w, http.StatusCreated, in)
}

func (s *Server) handleListInstructions(w http.ResponseWriter, r *http.Request) {
	// Only the pending view is exposed; it is what the executor polls.
	if status := r.URL.Query().Get("status"); status != "" && status != "pending" {
		s.writeError(w, domain.ErrInvalidArgument, "only status=pending is supported")
		return
	}
	instructions, err := s.jobUC.PendingInstructions(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		s.writeError(w, err, "list instructions failed")
		return
	}
	if instructions == nil {
		instructions = []*model.Instruction{}
	}
	writeJSON(w, http.StatusOK, instructions)
}

func (s *Server) handleAckInstruction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "instructionID")
	if err := s.jobUC.MarkInstructionDelivered(r.Context(), id); err != nil {
		s.writeError(w, err, "instruction not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "delivered", "id": id})
}
