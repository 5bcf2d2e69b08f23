// Package sanitize turns raw model output into parsed question payloads.
// Generation APIs routinely wrap JSON in markdown fences or leak control
// characters into string literals; everything here is pure and synchronous so
// the defensive behavior stays trivially testable.
package sanitize

import (
	"encoding/json"
	"fmt"
	"strings"
)

// QuestionPayload is the JSON shape the instruction prompt asks the model for.
type QuestionPayload struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectOption string   `json:"correctOption"`
	Explanation   string   `json:"explanation"`
}

// ParseError wraps the decoder failure so callers can report a stable message
// without leaking raw parser output to end users.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse generated content: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Clean strips markdown code fences and illegal ASCII control characters,
// preserving newline, carriage return and horizontal tab, which are legal
// inside JSON strings the model may have emitted literally.
func Clean(raw string) string {
	text := strings.ReplaceAll(raw, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if (r < 0x20 || r == 0x7f) && r != '\n' && r != '\r' && r != '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Questions cleans the raw text and parses it as a JSON array of question
// payloads. Any decode failure surfaces as a *ParseError; there is never a
// partial result.
func Questions(raw string) ([]QuestionPayload, error) {
	cleaned := Clean(raw)
	var questions []QuestionPayload
	if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
		return nil, &ParseError{Err: err}
	}
	return questions, nil
}
