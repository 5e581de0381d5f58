// Package extraction recovers structured JSON from raw LLM output.
//
// Model responses routinely violate strict JSON syntax: markdown code
// fences, prose before or after the object, XML-like wrapper tags,
// trailing commas, unquoted keys, comments. Extract runs a layered
// repair pipeline over the raw text and returns the first complete
// top-level object it can parse. Every structural transformation is
// string-aware so that braces, commas, and slashes inside quoted
// string values are never mistaken for syntax.
package extraction

import (
	"encoding/json"
	"regexp"
	"strings"
)

// DebugSink receives raw model output verbatim before any processing.
// Sinks are fire-and-forget: they must not block extraction, and any
// panic inside a sink is swallowed.
type DebugSink func(content string)

var (
	handoffTailRe  = regexp.MustCompile(`(?is)</handoff>\s*(\{.*\})`)
	handoffSpanRe  = regexp.MustCompile(`(?is)<handoff>.*?</handoff>`)
	paramSpanRe    = regexp.MustCompile(`(?is)<parameter[^>]*>.*?</parameter>`)
	anyTagRe       = regexp.MustCompile(`<[^>]+>`)
	codeFenceRe    = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	looseCommaRe   = regexp.MustCompile(`,\s*([}\]])`)
	bareKeyRe      = regexp.MustCompile(`([a-zA-Z_][a-zA-Z0-9_]*)\s*:`)
	previewLimit   = 1000
	extractedLimit = 500
)

// Extract parses a JSON object out of arbitrary model output.
//
// When the text contains more than one top-level object, the first
// complete balanced one wins: the pipeline scans left to right and
// commits to the first brace group that closes.
func Extract(text string) (map[string]any, error) {
	return ExtractWithDebug(text, nil)
}

// ExtractWithDebug is Extract with an optional raw-capture sink.
func ExtractWithDebug(text string, sink DebugSink) (map[string]any, error) {
	if sink != nil {
		saveRaw(sink, text)
	}

	original := text
	content := text

	// Step 1: wrapper tags. Content after a closing handoff marker is
	// authoritative; otherwise strip all tag spans.
	if m := handoffTailRe.FindStringSubmatch(content); m != nil {
		content = m[1]
	} else {
		content = handoffSpanRe.ReplaceAllString(content, "")
		content = paramSpanRe.ReplaceAllString(content, "")
		content = anyTagRe.ReplaceAllString(content, "")
	}

	// Step 2: markdown code fences.
	if m := codeFenceRe.FindStringSubmatch(content); m != nil {
		content = m[1]
	}

	// Step 3: isolate the first balanced {...} span.
	if span, ok := firstBalancedObject(content); ok {
		content = span
	} else if clipped, ok := clipToBraces(content); ok {
		content = clipped
	}

	// Steps 4-5: structural cleanup, string-aware.
	content = stripComments(content)
	content = removeTrailingCommas(content)

	// Step 6: strict parse.
	record, firstErr := parseObject(content)
	if firstErr == nil {
		return record, nil
	}

	// Step 7: recovery pass. Looser, not string-aware by design.
	content = looseCommaRe.ReplaceAllString(content, "$1")
	content = quoteBareKeys(content)
	if clipped, ok := clipToBraces(content); ok {
		content = clipped
	}
	if record, err := parseObject(content); err == nil {
		return record, nil
	}

	// Step 8: final balanced-extraction retry on the recovered text.
	if span, ok := firstBalancedObject(content); ok {
		span = looseCommaRe.ReplaceAllString(span, "$1")
		if record, err := parseObject(span); err == nil {
			return record, nil
		}
	}

	return nil, &ExtractionError{
		Message:          "failed to parse JSON after all attempts",
		Cause:            firstErr,
		OriginalPreview:  truncate(original, previewLimit),
		ExtractedPreview: truncate(content, extractedLimit),
	}
}

// parseObject is the strict parse attempt. Anything that is not a JSON
// object is rejected.
func parseObject(text string) (map[string]any, error) {
	var record map[string]any
	if err := json.Unmarshal([]byte(text), &record); err != nil {
		return nil, err
	}
	if record == nil {
		return nil, &ExtractionError{Message: "response is not a JSON object"}
	}
	return record, nil
}

// firstBalancedObject scans for the outermost balanced {...} span using
// a depth counter that ignores braces inside string literals.
func firstBalancedObject(text string) (string, bool) {
	depth := 0
	start := -1
	inString := false
	escapeNext := false

	for i := 0; i < len(text); i++ {
		c := text[i]

		if escapeNext {
			escapeNext = false
			continue
		}
		if c == '\\' {
			escapeNext = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			depth--
			if depth == 0 && start != -1 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// clipToBraces is the non-counting fallback: first '{' to last '}'.
func clipToBraces(text string) (string, bool) {
	first := strings.IndexByte(text, '{')
	last := strings.LastIndexByte(text, '}')
	if first == -1 || last == -1 || last <= first {
		return "", false
	}
	return text[first : last+1], true
}

// stripComments removes // line comments and /* */ block comments that
// occur outside string literals.
func stripComments(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	inString := false
	escapeNext := false

	for i := 0; i < len(text); i++ {
		c := text[i]

		if escapeNext {
			b.WriteByte(c)
			escapeNext = false
			continue
		}
		if c == '\\' {
			b.WriteByte(c)
			escapeNext = true
			continue
		}
		if c == '"' {
			inString = !inString
			b.WriteByte(c)
			continue
		}
		if inString {
			b.WriteByte(c)
			continue
		}

		if c == '/' && i+1 < len(text) {
			switch text[i+1] {
			case '/':
				for i < len(text) && text[i] != '\n' {
					i++
				}
				if i < len(text) {
					b.WriteByte('\n')
				}
				continue
			case '*':
				i += 2
				for i+1 < len(text) && !(text[i] == '*' && text[i+1] == '/') {
					i++
				}
				i++ // skip the trailing '/'
				continue
			}
		}

		b.WriteByte(c)
	}
	return b.String()
}

// removeTrailingCommas drops any comma whose next non-whitespace
// character is '}' or ']', respecting string boundaries.
func removeTrailingCommas(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	inString := false
	escapeNext := false

	for i := 0; i < len(text); i++ {
		c := text[i]

		if escapeNext {
			b.WriteByte(c)
			escapeNext = false
			continue
		}
		if c == '\\' {
			b.WriteByte(c)
			escapeNext = true
			continue
		}
		if c == '"' {
			inString = !inString
			b.WriteByte(c)
			continue
		}

		if !inString && c == ',' {
			j := i + 1
			for j < len(text) && isJSONSpace(text[j]) {
				j++
			}
			if j < len(text) && (text[j] == '}' || text[j] == ']') {
				continue // trailing comma, drop it
			}
		}

		b.WriteByte(c)
	}
	return b.String()
}

// quoteBareKeys wraps unquoted identifier keys in double quotes. This
// is a best-effort regex sweep used only during recovery; a key that is
// already quoted is left alone.
func quoteBareKeys(text string) string {
	matches := bareKeyRe.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + 2*len(matches))
	prev := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		keyStart, keyEnd := m[2], m[3]
		if keyStart > 0 && text[keyStart-1] == '"' {
			continue // already quoted
		}
		b.WriteString(text[prev:start])
		b.WriteByte('"')
		b.WriteString(text[keyStart:keyEnd])
		b.WriteString(`":`)
		prev = end
	}
	b.WriteString(text[prev:])
	return b.String()
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// saveRaw invokes the sink, isolating extraction from sink failures.
func saveRaw(sink DebugSink, content string) {
	defer func() { _ = recover() }()
	sink(content)
}
