package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"agentmarket/internal/infra/bus"
	"agentmarket/internal/infra/metrics"

	"github.com/go-chi/chi/v5"
)

// handleStream is the per-job SSE feed. On connect it emits a synthetic
// `status` event with the job's current state, then relays bus events named
// by their type, with a `ping` keep-alive between real events. Everything is
// written from this goroutine; bus callbacks only enqueue.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, fmt.Errorf("streaming unsupported"), "streaming unsupported")
		return
	}

	jobID := chi.URLParam(r, "jobID")
	detail, err := s.jobUC.Get(r.Context(), jobID)
	if err != nil {
		s.writeError(w, err, "job not found")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Buffered so a slow client never blocks the publisher; overflow events
	// are dropped, the next status event resynchronizes the client.
	events := make(chan bus.Event, 64)
	cancel := s.bus.Subscribe(jobID, func(ev bus.Event) {
		select {
		case events <- ev:
		default:
		}
	})
	defer cancel()

	metrics.StreamSubscriberConnected()
	defer metrics.StreamSubscriberDisconnected()

	writeEvent(w, "status", map[string]any{
		"type":   "status",
		"job_id": jobID,
		"status": detail.Status,
	})
	flusher.Flush()

	ticker := time.NewTicker(s.pingTick)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			writeEvent(w, ev.Type, ev.Payload)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, "event: ping\ndata: {}\n\n")
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
}
