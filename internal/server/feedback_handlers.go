package server

import (
	"encoding/json"
	"net/http"

	"github.com/jonathan/jobhunt-assistant/internal/feedback"
)

// feedbackRequest carries one decision. feedback_type names the item's
// category and feedback the verdict; the category is informational, the
// item id alone identifies the recommendation.
type feedbackRequest struct {
	ItemID       string `json:"item_id" validate:"required"`
	ItemType     string `json:"feedback_type" validate:"omitempty,oneof=experience_replacement format_adjustment experience_optimization skills_optimization"`
	Decision     string `json:"feedback" validate:"required,oneof=accept further_modify reject"`
	Notes        string `json:"additional_notes"`
	ModifiedText string `json:"modified_text"`
}

type batchFeedbackRequest struct {
	Items []feedbackRequest `json:"items" validate:"required,min=1,dive"`
}

// handleFeedback records one decision. Resubmitting an item id
// replaces the earlier decision.
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.lookupWorkflow(w, r)
	if !ok {
		return
	}

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	entry, err := wf.Ledger().Record(req.ItemID, feedback.Decision(req.Decision), req.Notes, req.ModifiedText)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"recorded": entry,
		"status":   wf.Ledger().Status(),
	})
}

// handleFeedbackBatch records several decisions at once. The batch is
// validated up front so a bad entry rejects the whole request.
func (s *Server) handleFeedbackBatch(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.lookupWorkflow(w, r)
	if !ok {
		return
	}

	var req batchFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	entries := make([]feedback.Entry, 0, len(req.Items))
	for _, item := range req.Items {
		entry, err := wf.Ledger().Record(item.ItemID, feedback.Decision(item.Decision), item.Notes, item.ModifiedText)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		entries = append(entries, entry)
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"recorded": entries,
		"status":   wf.Ledger().Status(),
	})
}

func (s *Server) handleFeedbackStatus(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.lookupWorkflow(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, wf.Ledger().Status())
}
