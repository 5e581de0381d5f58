package workflow

import (
	"context"
	"fmt"

	"github.com/jonathan/jobhunt-assistant/internal/export"
)

// Export writes the final artifact to dir in the requested formats.
// A failed export leaves the frozen artifact valid and retrievable;
// the failure is recorded as a warning and returned.
func (w *Workflow) Export(ctx context.Context, dir string, formats []string) (map[string]string, error) {
	artifact, ok := w.Artifact()
	if !ok {
		return nil, fmt.Errorf("workflow %s has no final resume to export", w.ID)
	}

	parsed := make([]export.Format, 0, len(formats))
	for _, name := range formats {
		f, err := export.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, f)
	}

	w.transition(ctx, StateExporting, 100, "Exporting final resume")

	written, err := export.WriteAll(ctx, dir, "resume_"+w.ID, artifact, parsed)
	if err != nil {
		w.mu.Lock()
		w.warnings = append(w.warnings, fmt.Sprintf("export failed: %v", err))
		w.mu.Unlock()
		w.transition(ctx, StateDone, 100, "Final resume ready (export failed)")
		return nil, err
	}

	w.transition(ctx, StateDone, 100, "Final resume exported")

	paths := make(map[string]string, len(written))
	for format, path := range written {
		paths[string(format)] = path
	}
	return paths, nil
}
