package editor

// BlockAnchor is a partial textual description of an experience entry.
// Any subset of the fields may be empty; matching degrades gracefully.
type BlockAnchor struct {
	Title    string
	Company  string
	Duration string
}

// ReplaceBlock swaps an entire experience block (header line plus its
// bullet lines) for new content.
type ReplaceBlock struct {
	Anchor        BlockAnchor
	OriginalLines []string // bullet lines expected under the header, informational
	NewTitle      string   // header title for the replacement; Anchor.Title when empty
	Description   string   // pre-rendered body; wins over Bullets when set
	Bullets       []string
}

// ReplaceBullet swaps one bullet's exact text, first occurrence only.
type ReplaceBullet struct {
	Original    string
	Replacement string
}

// ReplaceSkillsCategory re-renders the skill list under a category
// header, preserving the section's existing list format.
type ReplaceSkillsCategory struct {
	Category       string
	OriginalSkills []string
	Skills         []string
}

// Instruction is one edit against a resume document.
type Instruction interface {
	// Apply performs the edit against document and returns the new
	// document text. Apply never fails: an edit whose anchor cannot
	// be located reports Applied=false with an explanatory note.
	Apply(document string) Result
}

// Result is the outcome of a single edit.
type Result struct {
	Document string
	Applied  bool
	Note     string
}
