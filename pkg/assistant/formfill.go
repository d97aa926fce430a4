package assistant

import (
	"strings"
	"sync"

	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/core/types"
)

// FormState is the shared holder for the form-fill state. The one-shot image
// analysis replaces the whole state; streamed tag parsing patches one field at
// a time. Both paths go through this holder so a patch always applies to the
// latest state, never a stale copy.
type FormState struct {
	mu    sync.Mutex
	state types.FormFillState
}

func NewFormState() *FormState {
	return &FormState{}
}

// Replace swaps in a whole new state, typically from a fresh image analysis.
func (s *FormState) Replace(state types.FormFillState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// Patch sets the value of the field matching name and reports whether a field
// matched. Matching is a case-insensitive bidirectional substring check
// against the stored field names; the first match in field order wins.
func (s *FormState) Patch(name, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Fields {
		if fieldNameMatches(s.state.Fields[i].Name, name) {
			s.state.Fields[i].Value = value
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the current state.
func (s *FormState) Snapshot() types.FormFillState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state
	out.Fields = append([]types.FormField(nil), s.state.Fields...)
	return out
}

// fieldNameMatches is deliberately fuzzy: either name containing the other
// counts as a match. Overlapping field names ("Name" vs "Father's Name") are
// therefore ambiguous and resolve to whichever field comes first.
func fieldNameMatches(stored, tagged string) bool {
	a := strings.ToLower(strings.TrimSpace(stored))
	b := strings.ToLower(strings.TrimSpace(tagged))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
