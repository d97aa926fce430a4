package assistant

import "regexp"

// Streamed assistant text may embed inline control tags of the form
// [[UPDATE:<fieldName>:<fieldValue>]] instructing the client to update a
// named form field. Tags are scanned over the full accumulated text on every
// chunk, because a tag can be split across chunk boundaries.
var updateTagPattern = regexp.MustCompile(`\[\[UPDATE:([^:\]]+):([^\]]*)\]\]`)

// FieldUpdate is one parsed update tag.
type FieldUpdate struct {
	Field string
	Value string
}

func (u FieldUpdate) seenKey() string {
	return u.Field + "\x00" + u.Value
}

// scanUpdates extracts update tags from the accumulated text that have not
// been seen before in this response, recording them in seen. Re-delivery of
// an identical tag in a later chunk yields nothing.
func scanUpdates(accumulated string, seen map[string]struct{}) []FieldUpdate {
	var out []FieldUpdate
	for _, m := range updateTagPattern.FindAllStringSubmatch(accumulated, -1) {
		u := FieldUpdate{Field: m[1], Value: m[2]}
		key := u.seenKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, u)
	}
	return out
}

// stripTags removes every update tag from the user-visible text.
func stripTags(text string) string {
	return updateTagPattern.ReplaceAllString(text, "")
}
