package question

import (
	"fmt"
	"strings"
)

// BuildInstruction renders the deterministic generation prompt. The rules
// section exists because models love wrapping JSON in prose and backticks; the
// sanitizer tolerates that anyway, but asking keeps payloads small.
func BuildInstruction(subject string, count int) string {
	if count <= 0 {
		count = 10
	}
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Generate %d multiple-choice questions on: %q.\n\n", count, strings.TrimSpace(subject))
	sb.WriteString("RULES:\n")
	sb.WriteString("1. Return ONLY a valid JSON array.\n")
	sb.WriteString("2. No Markdown, no backticks, no explanations outside the JSON.\n")
	sb.WriteString("3. Ensure all strings are properly escaped.\n")
	sb.WriteString("4. Each question has exactly 4 options and correctOption is copied verbatim from options.\n\n")
	sb.WriteString("JSON structure per object:\n")
	sb.WriteString(`{"text": "Question text here", "options": ["Option A", "Option B", "Option C", "Option D"], "correctOption": "Option A", "explanation": "Brief explanation here"}`)
	return sb.String()
}
