package ports

import (
	"context"

	"github.com/quorumlabs/quorum/pkg/domain"
)

// WorkflowLoader resolves static workflow definitions. A definition is
// loaded once per workflow; the engine re-annotates it from the status
// map on every update instead of reloading.
type WorkflowLoader interface {
	// Get retrieves a workflow by ID.
	// Returns domain.ErrWorkflowNotFound if it is unknown.
	Get(ctx context.Context, id string) (*domain.Workflow, error)

	// List returns the IDs of the available workflows.
	List(ctx context.Context) ([]string, error)
}
