// Package export renders a finalized resume artifact to presentation
// formats. Export is a terminal side effect: a failed write never
// invalidates the in-memory artifact.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Format identifies an output rendering.
type Format string

const (
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatText:
		return FormatText, nil
	case FormatMarkdown:
		return FormatMarkdown, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", name)
	}
}

// Render produces the bytes for one format of the artifact.
func Render(artifact map[string]any, format Format) ([]byte, error) {
	resume, _ := artifact["final_resume"].(string)
	if resume == "" {
		return nil, fmt.Errorf("artifact has no final resume text")
	}

	switch format {
	case FormatText:
		return []byte(resume), nil
	case FormatMarkdown:
		return renderMarkdown(resume, artifact), nil
	case FormatJSON:
		payload := map[string]any{
			"final_resume":          resume,
			"modifications_applied": artifact["modifications_applied"],
			"classified_projects":   artifact["classified_projects"],
			"summary":               artifact["summary"],
			"generated_at":          time.Now().UTC().Format(time.RFC3339),
		}
		return json.MarshalIndent(payload, "", "  ")
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteAll renders the requested formats concurrently and writes each
// to dir as baseName.<ext>. It returns the written paths; on any
// failure the whole export reports an error, though files already
// written remain on disk.
func WriteAll(ctx context.Context, dir, baseName string, artifact map[string]any, formats []Format) (map[Format]string, error) {
	if len(formats) == 0 {
		formats = []Format{FormatText}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	paths := make(map[Format]string, len(formats))
	g, ctx := errgroup.WithContext(ctx)

	for _, format := range formats {
		path := filepath.Join(dir, baseName+"."+string(format))
		paths[format] = path

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := Render(artifact, format)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func renderMarkdown(resume string, artifact map[string]any) []byte {
	var sb strings.Builder
	sb.WriteString("# Resume\n\n")
	sb.WriteString("```\n")
	sb.WriteString(strings.TrimRight(resume, "\n"))
	sb.WriteString("\n```\n")

	mods, _ := artifact["modifications_applied"].([]map[string]any)
	if len(mods) > 0 {
		sb.WriteString("\n## Modifications\n\n")
		for _, mod := range mods {
			t, _ := mod["type"].(string)
			applied, _ := mod["applied"].(bool)
			status := "applied"
			if !applied {
				status = "skipped"
			}
			fmt.Fprintf(&sb, "- %s (%s)\n", t, status)
		}
	}
	return []byte(sb.String())
}
