package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "tutorialID")
	if err != nil {
		jsonError(w, "invalid tutorial id", http.StatusBadRequest)
		return
	}
	job, err := s.publisher.Submit(r.Context(), actor(r), id)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	snap := job.Snapshot()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   snap.ID,
		"status":   snap.Status,
		"poll_url": fmt.Sprintf("/api/publish/%s/status", snap.ID),
	})
}

func (s *Server) handlePublishStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.publisher.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleRenderStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"queue_depth": s.publisher.QueueDepth(),
		"stats":       s.publisher.Stats(),
	})
}
