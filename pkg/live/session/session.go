// Package session implements the live voice session: one duplex stream to
// the AI gateway per chat surface, reconciling streamed transcript fragments
// into conversational turns and scheduling inbound audio for gapless
// playback.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/audio"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/core/types"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/gateway/gemini"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/live/frames"
)

// State is the session lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Connector opens duplex streams to the AI gateway. *gemini.Client satisfies
// it; tests substitute fakes.
type Connector interface {
	ConnectLive(ctx context.Context, cfg gemini.LiveConfig) (gemini.LiveStream, error)
}

// Config configures a live session.
type Config struct {
	System   string
	Language string
	Voice    string
	Camera   bool

	// Lookahead is the small fixed offset applied when the playback timeline
	// has fallen behind real time.
	Lookahead time.Duration

	// FrameInterval gates camera stills forwarded to the gateway.
	FrameInterval time.Duration

	// ReconnectDelay separates the stop from the re-connect on a language
	// change; the stream has no in-place parameter-update capability.
	ReconnectDelay time.Duration
}

func (c *Config) applyDefaults() {
	if c.Lookahead <= 0 {
		c.Lookahead = 50 * time.Millisecond
	}
	if c.FrameInterval <= 0 {
		c.FrameInterval = time.Second
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = 250 * time.Millisecond
	}
}

// Session owns exactly one open duplex stream to the gateway plus the
// resources around it: the playback scheduler, the turn log, and the frame
// gate. Every termination path funnels through the same cleanup; Stop is
// idempotent and safe before the session ever opened.
type Session struct {
	ID string

	cfg       Config
	connector Connector
	logger    *slog.Logger

	events  chan Event
	emitMu  sync.Mutex
	emitOff bool

	stopOnce sync.Once
	done     chan struct{}

	mu        sync.Mutex
	state     State
	stream    gemini.LiveStream
	gen       int
	ctx       context.Context
	epoch     time.Time
	lastFrame time.Time

	turns *turnLog
	clock *playbackClock
}

// New builds an idle session. Start opens the stream.
func New(cfg Config, connector Connector, logger *slog.Logger) *Session {
	cfg.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		ID:        uuid.NewString(),
		cfg:       cfg,
		connector: connector,
		logger:    logger,
		events:    make(chan Event, 256),
		done:      make(chan struct{}),
		turns:     newTurnLog(uuid.NewString),
	}
	s.clock = newPlaybackClock(func() time.Duration {
		s.mu.Lock()
		epoch := s.epoch
		s.mu.Unlock()
		if epoch.IsZero() {
			return 0
		}
		return time.Since(epoch)
	}, cfg.Lookahead)
	return s
}

// Events yields session events for delivery to the browser. The channel is
// closed once the session has fully stopped.
func (s *Session) Events() <-chan Event {
	if s == nil {
		return nil
	}
	return s.events
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Turns returns the reconciled conversation so far.
func (s *Session) Turns() []types.ConversationTurn {
	return s.turns.Turns()
}

// ScheduledPlayback reports how many playback buffers are currently tracked.
func (s *Session) ScheduledPlayback() int {
	return s.clock.Scheduled()
}

// Start transitions Idle -> Connecting -> Open. A connect failure (device or
// handshake) surfaces an error event and returns the session to Idle; no
// retry is attempted.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return fmt.Errorf("live session is already %s", s.state)
	}
	s.state = StateConnecting
	s.ctx = ctx
	cfg := s.cfg
	s.mu.Unlock()

	stream, err := s.connector.ConnectLive(ctx, gemini.LiveConfig{
		System:   cfg.System,
		Language: cfg.Language,
		Voice:    cfg.Voice,
	})
	if err != nil {
		s.mu.Lock()
		s.state = StateIdle
		s.mu.Unlock()
		s.emit(ErrorEvent{Code: "connect_failed", Message: err.Error()})
		return fmt.Errorf("open live stream: %w", err)
	}

	s.mu.Lock()
	if s.state != StateConnecting {
		// Stopped while connecting; release the freshly opened stream.
		s.mu.Unlock()
		_ = stream.Close()
		return fmt.Errorf("live session stopped during connect")
	}
	s.state = StateOpen
	s.stream = stream
	s.gen++
	gen := s.gen
	s.epoch = time.Now()
	s.mu.Unlock()

	s.logger.Info("live session open", "live_id", s.ID, "language", cfg.Language)
	go s.recvLoop(gen, stream)
	return nil
}

// HandleAudioFrame forwards one microphone frame to the gateway and emits a
// volume-envelope event. Frames are sent unbatched on every boundary; send
// failures are swallowed so the capture loop never crashes.
func (s *Session) HandleAudioFrame(pcm []byte) {
	s.mu.Lock()
	stream := s.stream
	open := s.state == StateOpen
	s.mu.Unlock()
	if !open || stream == nil {
		return
	}

	if err := stream.SendAudio(pcm); err != nil {
		s.logger.Debug("drop audio frame", "error", err)
	}
	s.emit(LevelEvent{RMS: audio.RMS(pcm)})
}

// HandleVideoFrame forwards at most one downscaled camera still per
// FrameInterval. Best-effort: failures never touch the audio path.
func (s *Session) HandleVideoFrame(jpeg []byte) {
	s.mu.Lock()
	stream := s.stream
	open := s.state == StateOpen && s.cfg.Camera
	now := time.Now()
	if open && now.Sub(s.lastFrame) < s.cfg.FrameInterval {
		open = false
	}
	if open {
		s.lastFrame = now
	}
	s.mu.Unlock()
	if !open || stream == nil {
		return
	}

	small, err := frames.Downscale(jpeg)
	if err != nil {
		s.logger.Debug("drop video frame", "error", err)
		return
	}
	if err := stream.SendVideo(small); err != nil {
		s.logger.Debug("drop video frame", "error", err)
	}
}

// SetLanguage changes the target language. While open this is a full stop
// followed by a delayed re-connect with the new configuration.
func (s *Session) SetLanguage(language string) {
	s.mu.Lock()
	s.cfg.Language = language
	open := s.state == StateOpen
	delay := s.cfg.ReconnectDelay
	ctx := s.ctx
	s.mu.Unlock()
	if !open {
		return
	}

	s.closeStream("language_change")
	time.AfterFunc(delay, func() {
		select {
		case <-s.done:
			return
		default:
		}
		if ctx == nil {
			ctx = context.Background()
		}
		if err := s.Start(ctx); err != nil {
			s.logger.Warn("reconnect after language change failed", "live_id", s.ID, "error", err)
		}
	})
}

// Stop tears the session down: close the stream, discard scheduled playback,
// clear open-turn pointers, and close the event channel. Idempotent, and a
// no-op beyond resource release for a session that never opened.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.closeStream("stopped")
		s.emitMu.Lock()
		s.emitOff = true
		close(s.events)
		s.emitMu.Unlock()
		close(s.done)
	})
}

// Done is closed once Stop has completed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// closeStream is the single cleanup path shared by explicit stop, gateway
// close, gateway error, and language change.
func (s *Session) closeStream(reason string) {
	s.mu.Lock()
	stream := s.stream
	s.stream = nil
	s.gen++
	wasIdle := s.state == StateIdle
	s.state = StateIdle
	s.lastFrame = time.Time{}
	s.mu.Unlock()

	if stream != nil {
		if err := stream.Close(); err != nil {
			s.logger.Debug("close live stream", "error", err)
		}
	}
	s.clock.Interrupt()
	s.turns.Interrupt()
	if !wasIdle {
		s.logger.Info("live session closed", "live_id", s.ID, "reason", reason)
		s.emit(ClosedEvent{Reason: reason})
	}
}

func (s *Session) recvLoop(gen int, stream gemini.LiveStream) {
	for {
		ev, err := stream.Recv()
		if !s.isCurrent(gen) {
			return
		}
		if err != nil {
			if s.ctxErr() == nil {
				s.emit(ErrorEvent{Code: "gateway_error", Message: err.Error()})
			}
			s.closeStream("gateway_closed")
			return
		}
		s.process(ev)
	}
}

func (s *Session) process(ev gemini.LiveEvent) {
	if ev.Interrupted {
		s.clock.Interrupt()
		s.turns.Interrupt()
		s.emit(InterruptedEvent{})
	}
	if ev.InputTranscript != "" {
		id, content := s.turns.AppendFragment(types.RoleUser, ev.InputTranscript)
		s.emit(TurnUpdateEvent{TurnID: id, Role: types.RoleUser, Text: content})
	}
	if ev.OutputTranscript != "" {
		id, content := s.turns.AppendFragment(types.RoleAssistant, ev.OutputTranscript)
		s.emit(TurnUpdateEvent{TurnID: id, Role: types.RoleAssistant, Text: content})
	}
	if len(ev.Audio) > 0 {
		d := audio.Duration(ev.Audio, gemini.OutputSampleRate)
		src := s.clock.Schedule(d)
		s.emit(AudioEvent{Seq: src.seq, PCM: ev.Audio, Start: src.start, Duration: d})

		// Release tracking once the buffer has played out naturally.
		delay := src.start + src.duration - s.clock.Now()
		seq := src.seq
		time.AfterFunc(delay, func() { s.clock.Finish(seq) })
	}
	if ev.TurnComplete {
		s.turns.Complete()
		s.emit(TurnCompleteEvent{})
	}
}

func (s *Session) isCurrent(gen int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen == gen
}

func (s *Session) ctxErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		return nil
	}
	return s.ctx.Err()
}

func (s *Session) emit(ev Event) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	if s.emitOff {
		return
	}
	select {
	case s.events <- ev:
	default:
		// Avoid blocking the receive loop if the browser stops consuming.
	}
}
