package gemini

import "strings"

// ExtractJSON strips conversational wrapping from a model response that is
// supposed to be JSON: markdown code fences first, then everything outside
// the outermost object braces. Schema-constrained responses normally arrive
// clean; this tolerates the gateway not perfectly honoring the schema.
func ExtractJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
