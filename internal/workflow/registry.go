package workflow

import (
	"sync"

	"github.com/google/uuid"
)

// Registry holds live workflow instances keyed by id. Each instance
// owns its own state; the registry only maps ids to instances.
type Registry struct {
	mu        sync.RWMutex
	workflows map[string]*Workflow
	agents    Agents
	opts      []Option
}

// NewRegistry creates a registry that builds workflows with the given
// stage clients and options.
func NewRegistry(ag Agents, opts ...Option) *Registry {
	return &Registry{
		workflows: make(map[string]*Workflow),
		agents:    ag,
		opts:      opts,
	}
}

// Create registers a new idle workflow for the inputs and returns it.
func (r *Registry) Create(inputs Inputs, extra ...Option) *Workflow {
	id := uuid.NewString()
	w := New(id, inputs, r.agents, append(append([]Option(nil), r.opts...), extra...)...)

	r.mu.Lock()
	r.workflows[id] = w
	r.mu.Unlock()
	return w
}

// Get looks up a workflow by id.
func (r *Registry) Get(id string) (*Workflow, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workflows[id]
	return w, ok
}

// Remove drops a workflow from the registry. Abandoned runs are
// removed by ceasing to poll and eventually calling Remove.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.workflows, id)
	r.mu.Unlock()
}
