// Package web is the broker's HTTP surface: the marketplace JSON API, the
// per-job SSE live stream and the health endpoint. Routing is chi; every
// request gets a uuid trace id and a zerolog access line.
package web

import (
	"net/http"
	"time"

	"agentmarket/internal/infra/bus"
	"agentmarket/internal/infra/logging"
	"agentmarket/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Server struct {
	jobUC    *usecase.JobUseCase
	posterUC *usecase.PosterUseCase
	agentUC  *usecase.AgentUseCase
	bus      *bus.Bus
	pingTick time.Duration
	log      *zerolog.Logger
}

func NewServer(
	jobUC *usecase.JobUseCase,
	posterUC *usecase.PosterUseCase,
	agentUC *usecase.AgentUseCase,
	eventBus *bus.Bus,
	pingInterval time.Duration,
	logger *zerolog.Logger,
) *Server {
	if pingInterval <= 0 {
		pingInterval = 15 * time.Second
	}
	l := logger.With().Str("component", "web").Logger()
	return &Server{
		jobUC:    jobUC,
		posterUC: posterUC,
		agentUC:  agentUC,
		bus:      eventBus,
		pingTick: pingInterval,
		log:      &l,
	}
}

// Router builds the full route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.traceMiddleware)

	r.Get("/health", s.handleHealth)

	r.Post("/register", s.handleRegisterPoster)
	r.Post("/agents/register", s.handleRegisterAgent)
	r.Get("/agents/{agentID}", s.handleGetAgent)

	r.Route("/jobs", func(r chi.Router) {
		r.Post("/", s.handlePostJob)
		r.Get("/", s.handleListJobs)
		r.Get("/available", s.handleListAvailable)

		r.Route("/{jobID}", func(r chi.Router) {
			r.Get("/", s.handleGetJob)
			r.Delete("/", s.handleDeleteJob)
			r.Post("/claim", s.handleClaim)
			r.Post("/start", s.handleStart)
			r.Post("/updates", s.handleRecordUpdate)
			r.Post("/deliver", s.handleDeliver)
			r.Post("/approve", s.handleApprove)
			r.Get("/files/*", s.handleDownloadFile)
			r.Post("/instructions", s.handlePostInstruction)
			r.Get("/instructions", s.handleListInstructions)
			r.Patch("/instructions/{instructionID}", s.handleAckInstruction)
			r.Get("/stream", s.handleStream)
		})
	})

	return r
}

// traceMiddleware stamps a trace id onto the request context and logs one
// access line per request.
func (s *Server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := uuid.NewString()
		ctx := logging.WithTraceID(r.Context(), traceID)
		w.Header().Set("X-Trace-Id", traceID)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		s.log.Debug().
			Str("trace_id", traceID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
