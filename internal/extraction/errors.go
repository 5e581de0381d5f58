package extraction

import "fmt"

// ExtractionError reports a response that could not be coerced into a
// JSON object. It keeps bounded previews of the original input and the
// final extraction attempt so a failure can be diagnosed after the fact
// without retaining the full payload.
type ExtractionError struct {
	Message          string
	Cause            error
	OriginalPreview  string
	ExtractedPreview string
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction failed: %s", e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
