// Package file loads workflow definitions from a directory of YAML or
// JSON files, one workflow per file.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/quorumlabs/quorum/pkg/domain"
)

// Loader implements ports.WorkflowLoader over a directory scanned once
// at construction. Definitions are static; re-create the loader to pick
// up file changes.
type Loader struct {
	workflows map[string]domain.Workflow
}

// NewLoader scans dir for *.yaml, *.yml and *.json workflow files.
func NewLoader(dir string) (*Loader, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow directory: %w", err)
	}

	l := &Loader{workflows: make(map[string]domain.Workflow)}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		w, err := parseFile(path, ext)
		if err != nil {
			return nil, err
		}
		if _, dup := l.workflows[w.ID]; dup {
			return nil, fmt.Errorf("duplicate workflow id %q in %s", w.ID, path)
		}
		l.workflows[w.ID] = w
	}
	return l, nil
}

func parseFile(path, ext string) (domain.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Workflow{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var w domain.Workflow
	if ext == ".json" {
		err = json.Unmarshal(data, &w)
	} else {
		err = yaml.Unmarshal(data, &w)
	}
	if err != nil {
		return domain.Workflow{}, fmt.Errorf("failed to parse workflow %s: %w", path, err)
	}
	if w.ID == "" {
		return domain.Workflow{}, fmt.Errorf("workflow %s has no id", path)
	}
	return w, nil
}

// Get retrieves a workflow by ID.
func (l *Loader) Get(ctx context.Context, id string) (*domain.Workflow, error) {
	w, ok := l.workflows[id]
	if !ok {
		return nil, domain.ErrWorkflowNotFound
	}
	return &w, nil
}

// List returns the loaded workflow IDs.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(l.workflows))
	for id := range l.workflows {
		ids = append(ids, id)
	}
	return ids, nil
}
