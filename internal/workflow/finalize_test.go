package workflow

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jobhunt-assistant/internal/feedback"
)

func runToAwaitingFeedback(t *testing.T) *Workflow {
	t.Helper()
	w, _ := newTestWorkflow(t, validationResponse, analysisResponse, packagingResponse, optimizationResponse, interviewResponse)
	w.Run(context.Background())
	require.Equal(t, StateAwaitingFeedback, w.Snapshot().State)
	return w
}

func TestFinalize_AppliesAcceptedEditsInOrder(t *testing.T) {
	w := runToAwaitingFeedback(t)

	_, err := w.Ledger().Record("replacement_0", feedback.DecisionAccept, "", "")
	require.NoError(t, err)
	_, err = w.Ledger().Record("adjustment_Engineer_Acme_0_0", feedback.DecisionAccept, "", "")
	require.NoError(t, err)
	_, err = w.Ledger().Record("skills_optimization", feedback.DecisionReject, "", "")
	require.NoError(t, err)

	artifact, err := w.Finalize(context.Background())
	require.NoError(t, err)

	final := artifact["final_resume"].(string)
	assert.Contains(t, final, "Fraud Detection Platform")
	assert.Contains(t, final, "Reduced false positives 30%")
	assert.NotContains(t, final, "Analyzed data sets")
	assert.Contains(t, final, "Built internal tooling used by 40 engineers")
	// Rejected skills edit left the section alone.
	assert.Contains(t, final, "Python, SQL")
	assert.NotContains(t, final, "Spark")

	// One modification per accept decision.
	mods := artifact["modifications_applied"].([]map[string]any)
	assert.Len(t, mods, 2)
	assert.Equal(t, 2, artifact["total_modifications"])

	assert.Equal(t, StateDone, w.Snapshot().State)
}

func TestFinalize_RecomputesProjectClassification(t *testing.T) {
	w := runToAwaitingFeedback(t)

	_, err := w.Ledger().Record("replacement_0", feedback.DecisionAccept, "", "")
	require.NoError(t, err)

	artifact, err := w.Finalize(context.Background())
	require.NoError(t, err)

	classification := artifact["project_classification"].(map[string]any)
	adopted := classification["resume_adopted_projects"].([]any)
	notAdopted := classification["resume_not_adopted_projects"].([]any)

	require.Len(t, adopted, 1)
	assert.Empty(t, notAdopted)

	info := adopted[0].(map[string]any)
	assert.Equal(t, 0, info["project_index"])
	assert.Equal(t, "Fraud Detection Platform", info["project_name"])
	assert.Equal(t, true, info["resume_adopted"])
	assert.Equal(t, 0, info["replacement_experience_index"])
}

func TestFinalize_RejectedReplacementLeavesProjectNotAdopted(t *testing.T) {
	w := runToAwaitingFeedback(t)

	_, err := w.Ledger().Record("replacement_0", feedback.DecisionReject, "", "")
	require.NoError(t, err)

	artifact, err := w.Finalize(context.Background())
	require.NoError(t, err)

	assert.Empty(t, artifact["modifications_applied"])

	classification := artifact["project_classification"].(map[string]any)
	assert.Empty(t, classification["resume_adopted_projects"])
	assert.Len(t, classification["resume_not_adopted_projects"].([]any), 1)

	// Untouched document.
	assert.Equal(t, sampleResume, artifact["final_resume"])
}

func TestFinalize_RequiresAwaitingFeedback(t *testing.T) {
	w, _ := newTestWorkflow(t, validationResponse, analysisResponse, packagingResponse, optimizationResponse)

	_, err := w.Finalize(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not awaiting feedback")
}

func TestPrepareInterview_UsesFinalResume(t *testing.T) {
	w := runToAwaitingFeedback(t)

	_, err := w.Ledger().Record("replacement_0", feedback.DecisionAccept, "", "")
	require.NoError(t, err)
	_, err = w.Finalize(context.Background())
	require.NoError(t, err)

	result, err := w.PrepareInterview(context.Background())
	require.NoError(t, err)

	theme3 := result["theme_3_business_domain"].(map[string]any)
	assert.Len(t, theme3["business_questions"], 1)

	stored, ok := w.Result("interview")
	require.True(t, ok)
	assert.Equal(t, result, stored)
}

func TestPrepareInterview_RequiresFinalization(t *testing.T) {
	w := runToAwaitingFeedback(t)

	_, err := w.PrepareInterview(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no final resume")
}

func TestExport_WritesRequestedFormats(t *testing.T) {
	w := runToAwaitingFeedback(t)
	_, err := w.Ledger().Record("replacement_0", feedback.DecisionAccept, "", "")
	require.NoError(t, err)
	_, err = w.Finalize(context.Background())
	require.NoError(t, err)

	dir := t.TempDir()
	paths, err := w.Export(context.Background(), dir, []string{"txt", "json"})
	require.NoError(t, err)
	require.Len(t, paths, 2)

	data, err := os.ReadFile(paths["txt"])
	require.NoError(t, err)
	assert.Contains(t, string(data), "Fraud Detection Platform")

	assert.Equal(t, filepath.Join(dir, "resume_"+w.ID+".json"), paths["json"])
	assert.Equal(t, StateDone, w.Snapshot().State)
}

func TestExport_RejectsUnknownFormat(t *testing.T) {
	w := runToAwaitingFeedback(t)
	_, err := w.Finalize(context.Background())
	require.NoError(t, err)

	_, err = w.Export(context.Background(), t.TempDir(), []string{"pdf"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported export format")
}

func TestExport_RequiresArtifact(t *testing.T) {
	w := runToAwaitingFeedback(t)

	_, err := w.Export(context.Background(), t.TempDir(), []string{"txt"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no final resume")
}
