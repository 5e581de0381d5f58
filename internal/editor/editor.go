// Package editor performs anchored text surgery on free-form resume
// documents: replacing experience blocks, individual bullets, and
// skills sections located by fuzzy textual anchors.
//
// Resume text has no reliable structure, so matching is deliberately a
// small explicit line scanner rather than a document model: anchors
// are substring matches, block extents are inferred from bullet lines
// and section boundaries, and every miss degrades to a reported skip
// or an append instead of an error. Edits are applied sequentially and
// are not commutative; callers must apply them in the order the
// instructions were produced.
package editor

import (
	"fmt"
	"strings"
	"unicode"
)

// Apply runs a sequence of edits left to right, each against the
// result of the previous one.
func Apply(document string, instructions []Instruction) (string, []Result) {
	results := make([]Result, 0, len(instructions))
	for _, in := range instructions {
		r := in.Apply(document)
		document = r.Document
		results = append(results, r)
	}
	return document, results
}

// Apply locates the experience block for the anchor and substitutes
// the replacement content. When no anchor field matches the document
// the replacement is appended as a new block at the end.
func (e ReplaceBlock) Apply(document string) Result {
	replacement := e.renderReplacement()

	lines := strings.Split(document, "\n")
	start, end, matched := findBlock(lines, e.Anchor)
	if !matched {
		if document == "" {
			return Result{Document: replacement, Applied: true, Note: "document empty, block appended"}
		}
		return Result{
			Document: strings.TrimRight(document, "\n") + "\n\n" + replacement,
			Applied:  true,
			Note:     "anchor not found, block appended at end",
		}
	}

	out := make([]string, 0, len(lines))
	out = append(out, lines[:start]...)
	out = append(out, strings.Split(replacement, "\n")...)
	out = append(out, lines[end:]...)

	return Result{
		Document: strings.Join(out, "\n"),
		Applied:  true,
		Note:     fmt.Sprintf("replaced block at line %d", start+1),
	}
}

// renderReplacement builds the new block text. A pre-rendered
// description wins; otherwise the block is synthesized from the
// header fields and bullet list.
func (e ReplaceBlock) renderReplacement() string {
	title := e.NewTitle
	if title == "" {
		title = e.Anchor.Title
	}
	header := renderHeader(title, e.Anchor.Company, e.Anchor.Duration)

	if e.Description != "" {
		if header == "" {
			return e.Description
		}
		return header + "\n\n" + e.Description
	}

	lines := make([]string, 0, len(e.Bullets)+2)
	if header != "" {
		lines = append(lines, header, "")
	}
	for _, b := range e.Bullets {
		lines = append(lines, "• "+stripBulletGlyph(b))
	}
	return strings.Join(lines, "\n")
}

func renderHeader(title, company, duration string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{title, company, duration} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " | ")
}

// findBlock locates the header line for the anchor and the extent of
// its block. The full field set is tried first, then progressively
// smaller subsets, mirroring how anchor text drifts between the
// model's view of the resume and the actual document.
func findBlock(lines []string, anchor BlockAnchor) (start, end int, ok bool) {
	for _, fields := range anchorSubsets(anchor) {
		for i, line := range lines {
			if lineContainsAll(line, fields) {
				return i, blockEnd(lines, i), true
			}
		}
	}
	return 0, 0, false
}

// anchorSubsets yields candidate field sets in decreasing specificity.
func anchorSubsets(a BlockAnchor) [][]string {
	full := make([]string, 0, 3)
	for _, f := range []string{a.Title, a.Company, a.Duration} {
		if f != "" {
			full = append(full, f)
		}
	}
	if len(full) == 0 {
		return nil
	}

	subsets := [][]string{full}
	if len(full) > 2 {
		subsets = append(subsets, full[:2])
	}
	if len(full) > 1 {
		for _, f := range full {
			subsets = append(subsets, []string{f})
		}
	}
	return subsets
}

func lineContainsAll(line string, fields []string) bool {
	for _, f := range fields {
		if !strings.Contains(line, f) {
			return false
		}
	}
	return true
}

// blockEnd returns the index one past the last line belonging to the
// block that starts at header. The block greedily consumes bullet
// lines, tolerating a single blank line before a run of bullets, and
// stops at a section boundary: a blank line followed by a non-bullet
// line, an all-caps section header, or end of document.
func blockEnd(lines []string, header int) int {
	i := header + 1
	for i < len(lines) {
		line := lines[i]

		if isSectionHeader(line) {
			break
		}
		if isBulletLine(line) {
			i++
			continue
		}
		if strings.TrimSpace(line) == "" {
			if i+1 < len(lines) && isBulletLine(lines[i+1]) {
				i += 2
				continue
			}
			break
		}
		// Plain continuation text under the header.
		i++
	}
	return i
}

func isBulletLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, "•") ||
		strings.HasPrefix(trimmed, "- ") ||
		strings.HasPrefix(trimmed, "* ")
}

// isSectionHeader reports whether a line is entirely capitalized, the
// heuristic for a resume section heading like "EDUCATION".
func isSectionHeader(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	hasLetter := false
	for _, r := range trimmed {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

func stripBulletGlyph(s string) string {
	return strings.TrimSpace(strings.TrimLeft(s, "•-* \t"))
}

// Apply replaces the first exact occurrence of the original bullet
// text. A missing anchor leaves the document unchanged.
func (e ReplaceBullet) Apply(document string) Result {
	if e.Original == "" || e.Replacement == "" {
		return Result{Document: document, Applied: false, Note: "missing original or replacement text"}
	}

	idx := strings.Index(document, e.Original)
	if idx == -1 {
		return Result{
			Document: document,
			Applied:  false,
			Note:     fmt.Sprintf("original text not found: %q", truncateNote(e.Original)),
		}
	}

	return Result{
		Document: document[:idx] + e.Replacement + document[idx+len(e.Original):],
		Applied:  true,
		Note:     "bullet replaced",
	}
}

func truncateNote(s string) string {
	const max = 60
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
