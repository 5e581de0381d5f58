package workflow

import (
	"context"
	"fmt"

	"github.com/jonathan/jobhunt-assistant/internal/editor"
	"github.com/jonathan/jobhunt-assistant/internal/feedback"
)

// Finalize applies every accepted edit in source order against the
// original resume, recomputes the project classification from which
// replacements were actually accepted, and freezes the result as the
// run's final artifact. Edits whose anchors drifted are reported as
// not applied, never raised.
func (w *Workflow) Finalize(ctx context.Context) (map[string]any, error) {
	w.mu.Lock()
	if w.state != StateAwaitingFeedback {
		state := w.state
		w.mu.Unlock()
		return nil, fmt.Errorf("workflow %s is %s, not awaiting feedback", w.ID, state)
	}
	items := append([]Item(nil), w.items...)
	doc := w.inputs.Resume
	packaging := w.results["packaging"]
	w.mu.Unlock()

	w.transition(ctx, StateFinalizing, 90, "Applying accepted edits")

	mods := []map[string]any{}
	var adoptedIndices []int
	for _, item := range items {
		entry, ok := w.ledger.Get(item.ID)
		if !ok || entry.Decision != feedback.DecisionAccept {
			continue
		}

		res := item.Instruction.Apply(doc)
		doc = res.Document
		mods = append(mods, modificationRecord(item, entry, res))

		if res.Applied && item.Type == TypeExperienceReplacement && item.ProjectIndex >= 0 {
			adoptedIndices = append(adoptedIndices, item.ProjectIndex)
		}
	}

	classification, classified := classifyProjects(asSlice(packaging["selected_projects"]), adoptedIndices)

	artifact := map[string]any{
		"final_resume":           doc,
		"classified_projects":    classified,
		"modifications_applied":  mods,
		"total_modifications":    len(mods),
		"summary":                modificationSummary(mods),
		"project_classification": classification,
	}

	w.mu.Lock()
	w.finalArtifact = artifact
	w.mu.Unlock()

	if w.recorder != nil {
		_ = w.recorder.RecordArtifact(ctx, w.ID, "final_resume", artifact)
	}

	w.transition(ctx, StateDone, 100, "Final resume ready")
	return artifact, nil
}

// PrepareInterview runs the interview preparation stage against the
// finalized resume. It requires Finalize to have run so the adopted
// project classification exists.
func (w *Workflow) PrepareInterview(ctx context.Context) (map[string]any, error) {
	artifact, ok := w.Artifact()
	if !ok {
		return nil, fmt.Errorf("workflow %s has no final resume yet", w.ID)
	}
	analysis, _ := w.Result("analysis")

	result := w.agents.Interview.Prepare(ctx,
		w.inputs.JobDescription,
		asString(artifact["final_resume"]),
		analysis,
		asMap(artifact["classified_projects"]))
	w.storeResult("interview", result)

	if w.recorder != nil {
		_ = w.recorder.RecordArtifact(ctx, w.ID, "interview_prep", result)
	}
	return result, nil
}

func modificationRecord(item Item, entry feedback.Entry, res editor.Result) map[string]any {
	mod := map[string]any{
		"type":    item.Type,
		"item_id": item.ID,
		"applied": res.Applied,
		"note":    res.Note,
	}
	if entry.Notes != "" {
		mod["user_notes"] = entry.Notes
	}

	switch instr := item.Instruction.(type) {
	case editor.ReplaceBullet:
		mod["original"] = instr.Original
		mod["replaced_with"] = instr.Replacement
	case editor.ReplaceBlock:
		mod["original"] = instr.Anchor.Title
		mod["replaced_with"] = instr.NewTitle
	case editor.ReplaceSkillsCategory:
		mod["original"] = instr.OriginalSkills
		mod["replaced_with"] = instr.Skills
	}
	return mod
}

// classifyProjects partitions the packaged projects by whether an
// accepted replacement consumed them. The classification is always
// recomputed from the accepted set, never carried as a stored flag.
func classifyProjects(selected []any, adoptedIndices []int) (map[string]any, map[string]any) {
	adoptedAt := make(map[int]int, len(adoptedIndices))
	for replacementIdx, projectIdx := range adoptedIndices {
		if _, seen := adoptedAt[projectIdx]; !seen {
			adoptedAt[projectIdx] = replacementIdx
		}
	}

	var adoptedSummary, notAdoptedSummary []any
	var adoptedFull, notAdoptedFull []any

	for idx, raw := range selected {
		project := asMap(raw)
		name := asString(project["project_name"])
		if name == "" {
			name = fmt.Sprintf("Project %d", idx)
		}

		info := map[string]any{
			"project_index":  idx,
			"project_name":   name,
			"resume_adopted": false,
			"note":           "kept in full detail for interview preparation",
		}

		full := make(map[string]any, len(project)+2)
		for k, v := range project {
			full[k] = v
		}
		full["project_index"] = idx
		full["resume_adopted"] = false

		if replacementIdx, ok := adoptedAt[idx]; ok {
			info["resume_adopted"] = true
			info["replacement_experience_index"] = replacementIdx
			info["note"] = "converted to resume experience"
			full["resume_adopted"] = true
			adoptedSummary = append(adoptedSummary, info)
			adoptedFull = append(adoptedFull, full)
			continue
		}
		notAdoptedSummary = append(notAdoptedSummary, info)
		notAdoptedFull = append(notAdoptedFull, full)
	}

	if adoptedSummary == nil {
		adoptedSummary = []any{}
	}
	if notAdoptedSummary == nil {
		notAdoptedSummary = []any{}
	}
	if adoptedFull == nil {
		adoptedFull = []any{}
	}
	if notAdoptedFull == nil {
		notAdoptedFull = []any{}
	}

	classification := map[string]any{
		"resume_adopted_projects":     adoptedSummary,
		"resume_not_adopted_projects": notAdoptedSummary,
	}
	classified := map[string]any{
		"resume_adopted_projects":     adoptedFull,
		"resume_not_adopted_projects": notAdoptedFull,
	}
	return classification, classified
}

func modificationSummary(mods []map[string]any) map[string]any {
	byType := make(map[string]any)
	for _, mod := range mods {
		t := asString(mod["type"])
		if t == "" {
			t = "unknown"
		}
		count, _ := byType[t].(int)
		byType[t] = count + 1
	}
	return map[string]any{
		"total_modifications": len(mods),
		"by_type":             byType,
	}
}
