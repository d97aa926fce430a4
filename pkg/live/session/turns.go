package session

import (
	"sync"

	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/core/types"
)

// turnLog reconciles incremental transcript fragments into discrete
// conversational turns. It keeps one "open turn" pointer per role: fragments
// append to the open turn for their role, or open a new turn when none is
// open. Turn-complete and interruption clear both pointers; content of a
// closed turn is never mutated again.
type turnLog struct {
	mu    sync.Mutex
	newID func() string

	turns         []*types.ConversationTurn
	openUser      string
	openAssistant string
}

func newTurnLog(newID func() string) *turnLog {
	return &turnLog{newID: newID}
}

// AppendFragment appends text to the open turn for role, opening a new turn
// first if needed. It returns the turn id and its full reconciled content.
func (l *turnLog) AppendFragment(role types.Role, text string) (id, content string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	open := &l.openUser
	if role == types.RoleAssistant {
		open = &l.openAssistant
	}

	if *open != "" {
		for _, turn := range l.turns {
			if turn.ID == *open {
				turn.Content += text
				return turn.ID, turn.Content
			}
		}
	}

	turn := &types.ConversationTurn{
		ID:      l.newID(),
		Role:    role,
		Content: text,
	}
	l.turns = append(l.turns, turn)
	*open = turn.ID
	return turn.ID, turn.Content
}

// Complete closes both open turns; subsequent fragments start new turns.
func (l *turnLog) Complete() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.openUser = ""
	l.openAssistant = ""
}

// Interrupt clears both open-turn pointers (barge-in semantics).
func (l *turnLog) Interrupt() {
	l.Complete()
}

// Turns returns a snapshot of all reconciled turns in insertion order.
func (l *turnLog) Turns() []types.ConversationTurn {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]types.ConversationTurn, 0, len(l.turns))
	for _, turn := range l.turns {
		out = append(out, *turn)
	}
	return out
}

func (l *turnLog) openPointers() (user, assistant string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.openUser, l.openAssistant
}
