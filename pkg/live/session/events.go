package session

import (
	"time"

	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/core/types"
)

// Event is emitted by a Session for delivery to the browser.
type Event interface {
	sessionEventType() string
}

// TurnUpdateEvent republishes a turn's full reconciled content after a
// transcription fragment was appended.
type TurnUpdateEvent struct {
	TurnID string
	Role   types.Role
	Text   string
}

func (e TurnUpdateEvent) sessionEventType() string { return "turn_update" }

// TurnCompleteEvent marks a conversational turn boundary.
type TurnCompleteEvent struct{}

func (e TurnCompleteEvent) sessionEventType() string { return "turn_complete" }

// InterruptedEvent signals barge-in: all scheduled playback was discarded.
type InterruptedEvent struct{}

func (e InterruptedEvent) sessionEventType() string { return "interrupted" }

// AudioEvent is a playback buffer together with its slot on the playback
// timeline.
type AudioEvent struct {
	Seq      int64
	PCM      []byte
	Start    time.Duration
	Duration time.Duration
}

func (e AudioEvent) sessionEventType() string { return "audio_chunk" }

// LevelEvent carries the microphone volume envelope for UI feedback.
type LevelEvent struct {
	RMS float64
}

func (e LevelEvent) sessionEventType() string { return "level" }

// ErrorEvent is a user-visible session error.
type ErrorEvent struct {
	Code    string
	Message string
}

func (e ErrorEvent) sessionEventType() string { return "error" }

// ClosedEvent announces that the session released its resources.
type ClosedEvent struct {
	Reason string
}

func (e ClosedEvent) sessionEventType() string { return "closed" }
