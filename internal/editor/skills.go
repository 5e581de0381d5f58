package editor

import (
	"fmt"
	"strings"
)

// sectionSynonyms are header names accepted in place of an exact
// category label when locating a skills section.
var sectionSynonyms = []string{
	"Skills",
	"Technical Skills",
	"Core Competencies",
	"Proficiencies",
}

// listFormat is the detected rendering style of an existing skill list.
type listFormat int

const (
	formatLines listFormat = iota // one skill per line
	formatCommas
	formatBullets
)

// Apply locates the skills section for the category and re-renders its
// content with the replacement list, preserving the section's existing
// list format. When no section matches, a new bulleted section is
// appended rather than dropping the edit.
func (e ReplaceSkillsCategory) Apply(document string) Result {
	if len(e.Skills) == 0 {
		return Result{Document: document, Applied: false, Note: "no replacement skills provided"}
	}

	lines := strings.Split(document, "\n")
	headerIdx, inline := findSkillsHeader(lines, e.Category)
	if headerIdx == -1 {
		header := e.Category
		if header == "" {
			header = "Skills"
		}
		section := header + ":\n" + renderSkills(e.Skills, formatBullets, "•")
		doc := document
		if doc != "" {
			doc = strings.TrimRight(doc, "\n") + "\n\n"
		}
		return Result{
			Document: doc + section,
			Applied:  true,
			Note:     fmt.Sprintf("section %q not found, appended", header),
		}
	}

	end := skillsSectionEnd(lines, headerIdx)
	content := inline
	if content == "" {
		content = strings.Join(lines[headerIdx+1:end], "\n")
	}

	format, glyph := detectListFormat(content)
	headerText := headerLabel(lines[headerIdx])
	rendered := headerText + ":\n" + renderSkills(e.Skills, format, glyph)

	out := make([]string, 0, len(lines))
	out = append(out, lines[:headerIdx]...)
	out = append(out, strings.Split(rendered, "\n")...)
	out = append(out, lines[end:]...)

	return Result{
		Document: strings.Join(out, "\n"),
		Applied:  true,
		Note:     fmt.Sprintf("rewrote section %q", headerText),
	}
}

// findSkillsHeader returns the index of the section header line, and
// any content that sits on the header line itself after a colon
// ("Skills: Go, Python").
func findSkillsHeader(lines []string, category string) (int, string) {
	labels := make([]string, 0, len(sectionSynonyms)+1)
	if category != "" {
		labels = append(labels, category)
	}
	labels = append(labels, sectionSynonyms...)

	for i, line := range lines {
		label := headerLabel(line)
		if label == "" {
			continue
		}
		for _, want := range labels {
			if strings.EqualFold(label, want) {
				rest := ""
				if idx := strings.Index(line, ":"); idx != -1 {
					rest = strings.TrimSpace(line[idx+1:])
				}
				return i, rest
			}
		}
	}
	return -1, ""
}

// headerLabel extracts the label part of a potential header line,
// stripping a trailing colon and surrounding whitespace.
func headerLabel(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ""
	}
	if idx := strings.Index(trimmed, ":"); idx != -1 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

// skillsSectionEnd finds the line one past the section content: the
// next blank line or all-caps header.
func skillsSectionEnd(lines []string, header int) int {
	i := header + 1
	for i < len(lines) {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			break
		}
		if isSectionHeader(line) {
			break
		}
		i++
	}
	return i
}

// detectListFormat inspects existing section content and reports how
// the skill list is rendered there, so the replacement can match.
func detectListFormat(content string) (listFormat, string) {
	if strings.Contains(content, ",") {
		return formatCommas, ""
	}
	if strings.Contains(content, "•") {
		return formatBullets, "•"
	}
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "*") {
			return formatBullets, "-"
		}
	}
	return formatLines, ""
}

func renderSkills(skills []string, format listFormat, glyph string) string {
	switch format {
	case formatCommas:
		return strings.Join(skills, ", ")
	case formatBullets:
		lines := make([]string, len(skills))
		for i, s := range skills {
			lines[i] = glyph + " " + stripBulletGlyph(s)
		}
		return strings.Join(lines, "\n")
	default:
		return strings.Join(skills, "\n")
	}
}
