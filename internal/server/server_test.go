package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jobhunt-assistant/internal/agents"
	"github.com/jonathan/jobhunt-assistant/internal/llm"
	"github.com/jonathan/jobhunt-assistant/internal/workflow"
)

const sampleResume = `JOHN DOE

EXPERIENCE

Engineer | Acme | 2020-2022
• Built internal tools
• Did maintenance work

Analyst | DataCo | 2018-2020
• Analyzed data sets

SKILLS
Python, SQL
`

const validationResponse = `{"is_valid": true, "has_work_experience": true, "work_experience_count": 2}`

const analysisResponse = `{"match_assessment": {"overall_match_score": 4.1, "match_level": "good"}}`

const packagingResponse = `{
  "selected_projects": [
    {"project_name": "Fraud Detection Platform", "optimized_version": {"summary_bullets": ["Built streaming pipeline"]}}
  ]
}`

const optimizationResponse = `{
  "experience_replacements": [
    {
      "original_experience": {"title": "Analyst", "company": "DataCo", "duration": "2018-2020", "entry_index": 1},
      "replacement_project": {"project_name": "Fraud Detection Platform", "project_index": 0, "new_title": "Fraud Detection Platform", "summary_bullets": ["Built streaming pipeline"]},
      "replacement_reason": "stronger fit"
    }
  ],
  "skills_section_optimization": {"has_skills_section": true, "category_label": "Skills", "current_skills": ["Python", "SQL"], "optimized_skills": ["Python", "SQL", "Spark"]}
}`

const interviewResponse = `{"theme_3_business_domain": {"business_questions": [{"question": "Why fintech?"}]}}`

// scriptedClient replays canned responses in call order. Stages run
// strictly sequentially per workflow, so order identifies the stage.
type scriptedClient struct {
	mu        sync.Mutex
	responses []string
}

func (c *scriptedClient) ChatCompletion(context.Context, llm.Request) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.responses) == 0 {
		return "", &llm.UpstreamError{Message: "script exhausted"}
	}
	resp := c.responses[0]
	c.responses = c.responses[1:]
	return resp, nil
}

func (c *scriptedClient) Close() error { return nil }

func newTestServer(t *testing.T, responses ...string) *httptest.Server {
	t.Helper()

	client := &scriptedClient{responses: responses}
	ag := workflow.Agents{
		Validator: agents.NewValidator(client, nil),
		Analyzer:  agents.NewAnalyzer(client, nil),
		Packager:  agents.NewPackager(client, nil),
		Optimizer: agents.NewOptimizer(client, nil),
		Interview: agents.NewInterviewPrep(client, nil),
	}

	s, err := New(Config{Port: 0, ExportDir: t.TempDir()}, ag)
	require.NoError(t, err)

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	return out
}

func startWorkflow(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, body := postJSON(t, srv.URL+"/api/v1/workflow/start", map[string]any{
		"jd_text":       "Senior Data Engineer role",
		"resume_text":   sampleResume,
		"projects_text": "Fraud detection project notes",
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	id, ok := body["workflow_id"].(string)
	require.True(t, ok, "workflow_id missing: %v", body)
	return id
}

func waitForState(t *testing.T, srv *httptest.Server, id, state string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		_, body := getJSON(t, srv.URL+"/api/v1/workflow/"+id+"/progress")
		if body["state"] == state {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("workflow %s never reached state %s", id, state)
}

func TestWorkflowLifecycle(t *testing.T) {
	srv := newTestServer(t,
		validationResponse, analysisResponse, packagingResponse, optimizationResponse, interviewResponse)

	id := startWorkflow(t, srv)
	waitForState(t, srv, id, "awaiting_feedback")

	// Recommendations expose the reviewable item ids.
	resp, body := getJSON(t, fmt.Sprintf("%s/api/v1/workflow/%s/recommendations", srv.URL, id))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := body["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "replacement_0", items[0].(map[string]any)["item_id"])

	// One accept, one reject via the batch endpoint.
	resp, _ = postJSON(t, fmt.Sprintf("%s/api/v1/workflow/%s/feedback", srv.URL, id), map[string]any{
		"item_id":       "replacement_0",
		"feedback_type": "experience_replacement",
		"feedback":      "accept",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = postJSON(t, fmt.Sprintf("%s/api/v1/workflow/%s/feedback/batch", srv.URL, id), map[string]any{
		"items": []map[string]any{
			{"item_id": "skills_optimization", "feedback_type": "skills_optimization", "feedback": "reject", "additional_notes": "keep as is"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, status := getJSON(t, fmt.Sprintf("%s/api/v1/workflow/%s/feedback/status", srv.URL, id))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), status["total"])
	assert.Equal(t, float64(2), status["received"])
	assert.Equal(t, float64(0), status["pending"])

	// Generate the final resume.
	resp, artifact := postJSON(t, fmt.Sprintf("%s/api/v1/workflow/%s/generate", srv.URL, id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	finalResume := artifact["final_resume"].(string)
	assert.Contains(t, finalResume, "Fraud Detection Platform")
	assert.NotContains(t, finalResume, "Analyzed data sets")
	assert.Equal(t, float64(1), artifact["total_modifications"])

	resp, classified := getJSON(t, fmt.Sprintf("%s/api/v1/workflow/%s/projects/classified", srv.URL, id))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, classified["resume_adopted_projects"], 1)

	// Interview preparation uses the finalized resume.
	resp, prep := postJSON(t, fmt.Sprintf("%s/api/v1/workflow/%s/interview/prepare", srv.URL, id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, prep, "theme_3_business_domain")

	resp, prepAgain := getJSON(t, fmt.Sprintf("%s/api/v1/workflow/%s/interview/result", srv.URL, id))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, prepAgain, "theme_1_behavioral_interview")
}

func TestExportEndpoint(t *testing.T) {
	srv := newTestServer(t,
		validationResponse, analysisResponse, packagingResponse, optimizationResponse)

	id := startWorkflow(t, srv)
	waitForState(t, srv, id, "awaiting_feedback")

	resp, _ := postJSON(t, fmt.Sprintf("%s/api/v1/workflow/%s/generate", srv.URL, id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := postJSON(t, fmt.Sprintf("%s/api/v1/workflow/%s/export", srv.URL, id), map[string]any{
		"formats": []string{"txt", "json"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	exported := body["exported"].(map[string]any)
	require.Len(t, exported, 2)
	for _, p := range exported {
		path := p.(string)
		assert.Equal(t, "resume_"+id, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		_, err := os.Stat(path)
		assert.NoError(t, err, "exported file missing: %s", path)
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	srv := newTestServer(t,
		validationResponse, analysisResponse, packagingResponse, optimizationResponse)

	id := startWorkflow(t, srv)
	waitForState(t, srv, id, "awaiting_feedback")

	postJSON(t, fmt.Sprintf("%s/api/v1/workflow/%s/generate", srv.URL, id), nil)

	resp, body := postJSON(t, fmt.Sprintf("%s/api/v1/workflow/%s/export", srv.URL, id), map[string]any{
		"formats": []string{"pdf"},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "validation error")
}

func TestStartWorkflow_MissingFields(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/api/v1/workflow/start", map[string]any{
		"resume_text": sampleResume,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "JobDescription")
}

func TestUnknownWorkflowIs404(t *testing.T) {
	srv := newTestServer(t)

	resp, body := getJSON(t, srv.URL+"/api/v1/workflow/nope/progress")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body["error"], "workflow not found")
}

// The feedback body names the item's category in feedback_type and the
// decision in feedback; the category may also be omitted.
func TestFeedbackPayloadContract(t *testing.T) {
	srv := newTestServer(t,
		validationResponse, analysisResponse, packagingResponse, optimizationResponse)

	id := startWorkflow(t, srv)
	waitForState(t, srv, id, "awaiting_feedback")
	url := fmt.Sprintf("%s/api/v1/workflow/%s/feedback", srv.URL, id)

	resp, body := postJSON(t, url, map[string]any{
		"item_id":       "replacement_0",
		"feedback_type": "experience_replacement",
		"feedback":      "accept",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %v", body)

	resp, _ = postJSON(t, url, map[string]any{
		"item_id":          "skills_optimization",
		"feedback":         "further_modify",
		"additional_notes": "mention Spark",
		"modified_text":    "Python, SQL, Spark",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The decision belongs in feedback, not feedback_type.
	resp, body = postJSON(t, url, map[string]any{
		"item_id":       "replacement_0",
		"feedback_type": "accept",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "validation error")

	resp, _ = postJSON(t, url, map[string]any{
		"item_id":  "replacement_0",
		"feedback": "maybe",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// Every workflow-scoped GET shape must register on one mux and resolve
// to its own handler; mixed literal/wildcard segment orders would panic
// at registration.
func TestWorkflowRoutesRegisterAndResolve(t *testing.T) {
	srv := newTestServer(t)

	id := startWorkflow(t, srv)
	waitForState(t, srv, id, "awaiting_feedback")

	for _, path := range []string{
		"/api/v1/workflow/" + id + "/progress",
		"/api/v1/workflow/" + id + "/result",
		"/api/v1/workflow/" + id + "/recommendations",
		"/api/v1/workflow/" + id + "/feedback/status",
	} {
		resp, _ := getJSON(t, srv.URL+path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestGenerateBeforeFeedbackStateConflicts(t *testing.T) {
	srv := newTestServer(t)

	// Start a workflow whose run degrades every stage; it still parks in
	// awaiting_feedback, so generate twice to hit the state conflict.
	id := startWorkflow(t, srv)
	waitForState(t, srv, id, "awaiting_feedback")

	resp, _ := postJSON(t, fmt.Sprintf("%s/api/v1/workflow/%s/generate", srv.URL, id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := postJSON(t, fmt.Sprintf("%s/api/v1/workflow/%s/generate", srv.URL, id), nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body["error"], "not awaiting feedback")
}

func TestInterviewResultBeforePrepareIs404(t *testing.T) {
	srv := newTestServer(t,
		validationResponse, analysisResponse, packagingResponse, optimizationResponse)

	id := startWorkflow(t, srv)
	waitForState(t, srv, id, "awaiting_feedback")

	resp, _ := getJSON(t, fmt.Sprintf("%s/api/v1/workflow/%s/interview/result", srv.URL, id))
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProgressStream(t *testing.T) {
	srv := newTestServer(t,
		validationResponse, analysisResponse, packagingResponse, optimizationResponse)

	id := startWorkflow(t, srv)
	waitForState(t, srv, id, "awaiting_feedback")

	resp, err := http.Get(fmt.Sprintf("%s/api/v1/workflow/%s/progress/stream", srv.URL, id))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	stream := string(raw)
	assert.Contains(t, stream, "event: progress")
	assert.Contains(t, stream, `"state":"awaiting_feedback"`)
	assert.Contains(t, stream, "event: complete")
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, body := getJSON(t, srv.URL+"/api/v1/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["persisted"])
}

func TestListRunsWithoutPersistence(t *testing.T) {
	srv := newTestServer(t)

	resp, body := getJSON(t, srv.URL+"/api/v1/runs")
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body["error"], "persistence not configured")
}
