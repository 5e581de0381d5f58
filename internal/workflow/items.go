package workflow

import (
	"fmt"

	"github.com/jonathan/jobhunt-assistant/internal/editor"
)

// Item categories, mirrored in feedback submissions.
const (
	TypeExperienceReplacement  = "experience_replacement"
	TypeFormatAdjustment       = "format_adjustment"
	TypeExperienceOptimization = "experience_optimization"
	TypeSkillsOptimization     = "skills_optimization"
)

// Item is one reviewable recommendation: a stable identifier, its
// category, and the edit it performs when accepted. Ids are derived
// from position and identity fields so feedback can reference an item
// across calls without ambiguity.
type Item struct {
	ID          string
	Type        string
	Description string
	Instruction editor.Instruction

	// ProjectIndex is the packaged project consumed by an accepted
	// replacement, -1 for every other item type.
	ProjectIndex int
}

// BuildItems flattens a resume optimization result into reviewable
// items in a fixed source order: replacements, then per-bullet
// adjustments, then kept-entry rewrites, then the single skills item
// (present only when a skills section exists).
func BuildItems(optimization map[string]any) []Item {
	var items []Item

	for idx, raw := range asSlice(optimization["experience_replacements"]) {
		rep := asMap(raw)
		original := asMap(rep["original_experience"])
		project := asMap(rep["replacement_project"])

		newTitle := asString(project["new_title"])
		if newTitle == "" {
			newTitle = asString(project["project_name"])
		}

		items = append(items, Item{
			ID:          fmt.Sprintf("replacement_%d", idx),
			Type:        TypeExperienceReplacement,
			Description: asString(rep["replacement_reason"]),
			Instruction: editor.ReplaceBlock{
				Anchor: editor.BlockAnchor{
					Title:    asString(original["title"]),
					Company:  asString(original["company"]),
					Duration: asString(original["duration"]),
				},
				OriginalLines: asStringSlice(original["original_lines"]),
				NewTitle:      newTitle,
				Bullets:       asStringSlice(project["summary_bullets"]),
			},
			ProjectIndex: asIndex(project["project_index"]),
		})
	}

	for _, raw := range asSlice(optimization["format_content_adjustments"]) {
		group := asMap(raw)
		entryID := fmt.Sprintf("%s_%s_%d",
			asString(group["experience_title"]),
			asString(group["company"]),
			asIndexOrZero(group["entry_index"]))

		for adjIdx, adjRaw := range asSlice(group["adjustments"]) {
			adj := asMap(adjRaw)
			items = append(items, Item{
				ID:          fmt.Sprintf("adjustment_%s_%d", entryID, adjIdx),
				Type:        TypeFormatAdjustment,
				Description: asString(adj["reason"]),
				Instruction: editor.ReplaceBullet{
					Original:    asString(adj["original_text"]),
					Replacement: asString(adj["adjusted_text"]),
				},
				ProjectIndex: -1,
			})
		}
	}

	for _, raw := range asSlice(optimization["experience_optimizations"]) {
		opt := asMap(raw)
		entryID := fmt.Sprintf("%s_%s_%d",
			asString(opt["experience_title"]),
			asString(opt["company"]),
			asIndexOrZero(opt["entry_index"]))

		items = append(items, Item{
			ID:          fmt.Sprintf("experience_opt_%s", entryID),
			Type:        TypeExperienceOptimization,
			Description: asString(opt["optimization_reason"]),
			Instruction: editor.ReplaceBlock{
				Anchor: editor.BlockAnchor{
					Title:    asString(opt["experience_title"]),
					Company:  asString(opt["company"]),
					Duration: asString(opt["duration"]),
				},
				Bullets: asStringSlice(opt["optimized_bullets"]),
			},
			ProjectIndex: -1,
		})
	}

	skills := asMap(optimization["skills_section_optimization"])
	if asBool(skills["has_skills_section"]) {
		category := asString(skills["category_label"])
		if category == "" {
			category = "Skills"
		}
		items = append(items, Item{
			ID:          "skills_optimization",
			Type:        TypeSkillsOptimization,
			Description: asString(skills["optimization_reason"]),
			Instruction: editor.ReplaceSkillsCategory{
				Category:       category,
				OriginalSkills: asStringSlice(skills["current_skills"]),
				Skills:         asStringSlice(skills["optimized_skills"]),
			},
			ProjectIndex: -1,
		})
	}

	return items
}

// Loose conversions over extraction output. Parsed JSON carries
// float64 numbers and []any / map[string]any containers; anything of
// an unexpected shape degrades to a zero value.

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asStringSlice(v any) []string {
	raw := asSlice(v)
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// asIndex returns -1 when the value is not a number.
func asIndex(v any) int {
	f, ok := v.(float64)
	if !ok {
		return -1
	}
	return int(f)
}

func asIndexOrZero(v any) int {
	if idx := asIndex(v); idx >= 0 {
		return idx
	}
	return 0
}
