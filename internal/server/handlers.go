package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jonathan/jobhunt-assistant/internal/workflow"
)

type startWorkflowRequest struct {
	JobDescription string `json:"jd_text" validate:"required"`
	Resume         string `json:"resume_text" validate:"required"`
	Projects       string `json:"projects_text"`
}

// handleStartWorkflow registers a new workflow and launches the
// pipeline in the background. Progress is polled or streamed.
func (s *Server) handleStartWorkflow(w http.ResponseWriter, r *http.Request) {
	var req startWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	wf := s.registry.Create(workflow.Inputs{
		JobDescription: req.JobDescription,
		Resume:         req.Resume,
		Projects:       req.Projects,
	})

	// The run outlives this request; stage timeouts bound each call.
	go wf.Run(context.Background())

	s.jsonResponse(w, http.StatusAccepted, map[string]any{
		"workflow_id": wf.ID,
		"state":       workflow.StateValidating,
	})
}

func (s *Server) handleWorkflowProgress(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.lookupWorkflow(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, wf.Snapshot())
}

// handleWorkflowProgressStream streams snapshots as SSE until the
// workflow reaches a terminal state or the client disconnects.
func (s *Server) handleWorkflowProgressStream(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.lookupWorkflow(w, r)
	if !ok {
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	var last workflow.Snapshot
	for {
		snap := wf.Snapshot()
		if snap.State != last.State || snap.Progress != last.Progress {
			if err := sse.WriteEvent("progress", snap); err != nil {
				return
			}
			last = snap
		}
		if snap.State.Terminal() || snap.State == workflow.StateAwaitingFeedback {
			sse.WriteComplete(wf.ID, string(snap.State))
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) handleWorkflowResult(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.lookupWorkflow(w, r)
	if !ok {
		return
	}

	snap := wf.Snapshot()
	response := map[string]any{
		"workflow_id": wf.ID,
		"state":       snap.State,
		"results":     snap.Results,
	}
	if artifact, ok := wf.Artifact(); ok {
		response["final"] = artifact
	}
	s.jsonResponse(w, http.StatusOK, response)
}

// handleRecommendations returns the optimization stage's proposals
// together with the reviewable item ids feedback must reference.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.lookupWorkflow(w, r)
	if !ok {
		return
	}

	optimization, ok := wf.Result("optimization")
	if !ok {
		s.errorResponse(w, http.StatusConflict, "optimization stage has not completed")
		return
	}

	items := wf.Items()
	views := make([]map[string]any, 0, len(items))
	for _, item := range items {
		views = append(views, map[string]any{
			"item_id":     item.ID,
			"type":        item.Type,
			"description": item.Description,
		})
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"recommendations": optimization,
		"items":           views,
	})
}

// handleGenerate applies accepted feedback and freezes the final
// resume artifact.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.lookupWorkflow(w, r)
	if !ok {
		return
	}

	artifact, err := wf.Finalize(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusConflict, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, artifact)
}

func (s *Server) handleClassifiedProjects(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.lookupWorkflow(w, r)
	if !ok {
		return
	}

	artifact, ok := wf.Artifact()
	if !ok {
		s.errorResponse(w, http.StatusConflict, "final resume has not been generated")
		return
	}
	s.jsonResponse(w, http.StatusOK, artifact["classified_projects"])
}

func (s *Server) handleInterviewPrepare(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.lookupWorkflow(w, r)
	if !ok {
		return
	}

	result, err := wf.PrepareInterview(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusConflict, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleInterviewResult(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.lookupWorkflow(w, r)
	if !ok {
		return
	}

	result, ok := wf.Result("interview")
	if !ok {
		s.errorResponse(w, http.StatusNotFound, "interview preparation has not run")
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

type exportRequest struct {
	Formats []string `json:"formats" validate:"required,min=1,dive,oneof=txt md json"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.lookupWorkflow(w, r)
	if !ok {
		return
	}

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	paths, err := wf.Export(r.Context(), s.exportDir, req.Formats)
	if err != nil {
		s.errorResponse(w, http.StatusConflict, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"exported": paths})
}
