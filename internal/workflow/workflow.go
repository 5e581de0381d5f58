// Package workflow drives one resume optimization run through the five
// pipeline stages, collects user feedback on the proposed edits, and
// produces the final resume artifact. All mutable state is scoped to a
// Workflow instance; concurrent runs never share a ledger or document.
package workflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonathan/jobhunt-assistant/internal/agents"
	"github.com/jonathan/jobhunt-assistant/internal/extraction"
	"github.com/jonathan/jobhunt-assistant/internal/feedback"
	"github.com/jonathan/jobhunt-assistant/internal/ingestion"
	"github.com/jonathan/jobhunt-assistant/internal/llm"
	"github.com/jonathan/jobhunt-assistant/internal/schemas"
)

// State is the workflow's position in its linear state machine.
type State string

const (
	StateIdle             State = "idle"
	StateValidating       State = "validating"
	StateAnalyzing        State = "analyzing"
	StatePackaging        State = "packaging"
	StateOptimizing       State = "optimizing"
	StateAwaitingFeedback State = "awaiting_feedback"
	StateFinalizing       State = "finalizing"
	StateExporting        State = "exporting"
	StateDone             State = "done"
	StateFailed           State = "failed"
)

// Terminal reports whether no further transitions can happen from s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Inputs are the user-provided documents a run operates on.
type Inputs struct {
	JobDescription string
	Resume         string
	Projects       string
}

// Agents bundles the five stage clients a workflow invokes.
type Agents struct {
	Validator *agents.Validator
	Analyzer  *agents.Analyzer
	Packager  *agents.Packager
	Optimizer *agents.Optimizer
	Interview *agents.InterviewPrep
}

// NewAgents wires all five stage clients around one provider.
func NewAgents(client llm.Client, sink extraction.DebugSink) Agents {
	return Agents{
		Validator: agents.NewValidator(client, sink),
		Analyzer:  agents.NewAnalyzer(client, sink),
		Packager:  agents.NewPackager(client, sink),
		Optimizer: agents.NewOptimizer(client, sink),
		Interview: agents.NewInterviewPrep(client, sink),
	}
}

// Recorder persists run snapshots and artifacts. Persistence is
// best-effort: a nil Recorder or a failing one never blocks a run.
type Recorder interface {
	RecordRun(ctx context.Context, id string, snap Snapshot) error
	RecordArtifact(ctx context.Context, id, kind string, payload map[string]any) error
}

// Snapshot is a point-in-time copy of a workflow's observable state.
type Snapshot struct {
	WorkflowID string                    `json:"workflow_id"`
	State      State                     `json:"state"`
	Progress   int                       `json:"progress"`
	Message    string                    `json:"message"`
	Error      string                    `json:"error,omitempty"`
	Warnings   []string                  `json:"warnings,omitempty"`
	Results    map[string]map[string]any `json:"results,omitempty"`
}

// Workflow is one run's mutable state. Methods are safe for concurrent
// use; the pipeline itself progresses strictly sequentially.
type Workflow struct {
	ID string

	agents   Agents
	recorder Recorder
	onChange func(Snapshot)

	mu            sync.Mutex
	state         State
	progress      int
	message       string
	err           string
	warnings      []string
	inputs        Inputs
	results       map[string]map[string]any
	items         []Item
	ledger        *feedback.Ledger
	finalArtifact map[string]any
}

// Option configures a Workflow at construction time.
type Option func(*Workflow)

// WithRecorder attaches a persistence backend.
func WithRecorder(r Recorder) Option {
	return func(w *Workflow) { w.recorder = r }
}

// WithObserver registers a callback invoked on every state change with
// a snapshot. Used for SSE progress streaming.
func WithObserver(fn func(Snapshot)) Option {
	return func(w *Workflow) { w.onChange = fn }
}

// New creates a workflow in the Idle state. Inputs are normalized up
// front so editor anchors behave consistently.
func New(id string, inputs Inputs, ag Agents, opts ...Option) *Workflow {
	inputs.JobDescription = ingestion.CleanText(inputs.JobDescription)
	inputs.Resume = ingestion.CleanText(inputs.Resume)
	inputs.Projects = ingestion.CleanText(inputs.Projects)

	w := &Workflow{
		ID:      id,
		agents:  ag,
		state:   StateIdle,
		inputs:  inputs,
		results: make(map[string]map[string]any),
		ledger:  feedback.NewLedger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run executes the pipeline from validation through optimization, then
// parks in AwaitingFeedback. Stage failures degrade (stage results carry
// an error field); only a fundamentally unusable input fails the run.
func (w *Workflow) Run(ctx context.Context) {
	w.transition(ctx, StateValidating, 10, "Validating resume and project materials")
	validation := w.agents.Validator.Validate(ctx, w.inputs.Resume, w.inputs.Projects)
	w.storeResult("validation", validation)

	if unusableInput(validation) {
		w.fail(ctx, "input validation failed: no salvageable work experience")
		return
	}

	w.transition(ctx, StateAnalyzing, 30, "Analyzing job description and candidate fit")
	analysis := w.agents.Analyzer.Analyze(ctx, w.inputs.JobDescription, w.inputs.Resume, w.inputs.Projects)
	w.storeResult("analysis", analysis)

	w.transition(ctx, StatePackaging, 50, "Packaging project materials")
	packaged := w.agents.Packager.Package(ctx, w.inputs.JobDescription, analysis, w.inputs.Projects)
	w.storeResult("packaging", packaged)

	w.transition(ctx, StateOptimizing, 70, "Generating resume optimization recommendations")
	optimization := w.agents.Optimizer.Optimize(ctx, w.inputs.JobDescription, w.inputs.Resume, analysis, packaged)
	w.storeResult("optimization", optimization)

	items := BuildItems(optimization)
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	w.mu.Lock()
	w.items = items
	w.ledger.LoadItems(ids)
	replacements := len(asSlice(optimization["experience_replacements"]))
	selected := len(asSlice(packaged["selected_projects"]))
	if replacements != selected {
		w.warnings = append(w.warnings, fmt.Sprintf(
			"optimization produced %d experience replacements for %d packaged projects", replacements, selected))
	}
	w.mu.Unlock()

	w.transition(ctx, StateAwaitingFeedback, 85, "Awaiting feedback on proposed edits")
}

// Ledger exposes the run's feedback ledger.
func (w *Workflow) Ledger() *feedback.Ledger {
	return w.ledger
}

// Items returns the recommendation items in source order.
func (w *Workflow) Items() []Item {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Item(nil), w.items...)
}

// Result returns a stage's stored result.
func (w *Workflow) Result(stage string) (map[string]any, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	r, ok := w.results[stage]
	return r, ok
}

// Artifact returns the frozen final artifact, if finalization ran.
func (w *Workflow) Artifact() (map[string]any, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.finalArtifact, w.finalArtifact != nil
}

// Snapshot returns a copy of the observable state.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *Workflow) snapshotLocked() Snapshot {
	results := make(map[string]map[string]any, len(w.results))
	for k, v := range w.results {
		results[k] = v
	}
	return Snapshot{
		WorkflowID: w.ID,
		State:      w.state,
		Progress:   w.progress,
		Message:    w.message,
		Error:      w.err,
		Warnings:   append([]string(nil), w.warnings...),
		Results:    results,
	}
}

// storeResult records a stage result and checks it against the stage's
// payload schema. A violation is surfaced as a run warning; the result
// is kept either way so the pipeline degrades instead of halting.
func (w *Workflow) storeResult(stage string, result map[string]any) {
	w.mu.Lock()
	w.results[stage] = result
	if err := schemas.ValidateStage(stage, result); err != nil {
		w.warnings = append(w.warnings, fmt.Sprintf("%s result failed schema validation: %v", stage, err))
	}
	w.mu.Unlock()
}

func (w *Workflow) transition(ctx context.Context, state State, progress int, message string) {
	w.mu.Lock()
	w.state = state
	w.progress = progress
	w.message = message
	snap := w.snapshotLocked()
	w.mu.Unlock()

	w.notify(ctx, snap)
}

func (w *Workflow) fail(ctx context.Context, reason string) {
	w.mu.Lock()
	w.state = StateFailed
	w.err = reason
	w.message = reason
	snap := w.snapshotLocked()
	w.mu.Unlock()

	w.notify(ctx, snap)
}

func (w *Workflow) notify(ctx context.Context, snap Snapshot) {
	if w.onChange != nil {
		w.onChange(snap)
	}
	if w.recorder != nil {
		// Best-effort persistence; a failing store never stops a run.
		_ = w.recorder.RecordRun(ctx, w.ID, snap)
	}
}

// unusableInput is the one validation outcome that fails a run: the
// stage answered (no transport error) and found no work history at all.
func unusableInput(validation map[string]any) bool {
	if _, hadError := validation["error"]; hadError {
		return false
	}
	if asBool(validation["is_valid"]) {
		return false
	}
	return !asBool(validation["has_work_experience"])
}
