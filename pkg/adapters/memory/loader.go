package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/quorumlabs/quorum/pkg/domain"
)

// Loader implements ports.WorkflowLoader over a fixed set of workflow
// definitions.
type Loader struct {
	mu        sync.RWMutex
	workflows map[string]domain.Workflow
}

// NewLoader creates an empty loader.
func NewLoader() *Loader {
	return &Loader{workflows: make(map[string]domain.Workflow)}
}

// NewFromWorkflows builds a loader pre-populated with definitions.
// Workflow IDs must be unique.
func NewFromWorkflows(workflows ...domain.Workflow) (*Loader, error) {
	l := NewLoader()
	for _, w := range workflows {
		if err := l.Add(w); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Add registers one workflow definition.
func (l *Loader) Add(w domain.Workflow) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, dup := l.workflows[w.ID]; dup {
		return fmt.Errorf("duplicate workflow id %q", w.ID)
	}
	l.workflows[w.ID] = w
	return nil
}

// Get retrieves a workflow by ID.
func (l *Loader) Get(ctx context.Context, id string) (*domain.Workflow, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	w, ok := l.workflows[id]
	if !ok {
		return nil, domain.ErrWorkflowNotFound
	}
	return &w, nil
}

// List returns the registered workflow IDs.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.workflows))
	for id := range l.workflows {
		ids = append(ids, id)
	}
	return ids, nil
}
