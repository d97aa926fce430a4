package handlers

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/gateway/gemini"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/i18n"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/live/protocol"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/live/session"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/live/sessions"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/store"
)

const helloTimeout = 5 * time.Second

// LiveHandler bridges the browser websocket to a live voice session. It owns
// the frame translation in both directions: decoded client frames drive the
// session, session events become server frames.
type LiveHandler struct {
	Connector session.Connector
	Tracker   *sessions.Tracker
	Repo      store.Repository

	Voice           string
	DefaultLanguage string

	PlaybackLookahead  time.Duration
	FrameInterval      time.Duration
	ReconnectDelay     time.Duration
	PingInterval       time.Duration
	WriteTimeout       time.Duration
	MaxAudioFrameBytes int

	Logger *slog.Logger
}

func (h LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  16 << 10,
		WriteBufferSize: 16 << 10,
		// Browser origins are screened by the CORS layer in front of the API;
		// the websocket accepts any origin that got this far.
		CheckOrigin: func(*http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	lc := &liveConn{conn: conn, writeTimeout: h.WriteTimeout}

	hello, ok := h.readHello(lc)
	if !ok {
		return
	}

	lang := hello.Language
	if lang == "" || !i18n.Supported(lang) {
		lang = h.DefaultLanguage
	}

	sess := session.New(session.Config{
		System:         liveSystemPrompt(lang),
		Language:       lang,
		Voice:          h.Voice,
		Camera:         hello.Camera,
		Lookahead:      h.PlaybackLookahead,
		FrameInterval:  h.FrameInterval,
		ReconnectDelay: h.ReconnectDelay,
	}, h.Connector, h.Logger)
	defer sess.Stop()

	unregister := h.Tracker.Register(hello.SessionID, sessions.Handle{
		Stop: sess.Stop,
		Warn: func(code, message string) error {
			return lc.writeJSON(protocol.ServerError{Type: "error", Code: code, Message: message})
		},
	})
	defer unregister()

	var writerDone sync.WaitGroup
	writerDone.Add(1)
	go func() {
		defer writerDone.Done()
		h.writeLoop(lc, sess)
	}()

	if err := lc.writeJSON(protocol.ServerHelloAck{
		Type:            "hello_ack",
		ProtocolVersion: protocol.ProtocolVersion1,
		LiveID:          sess.ID,
		AudioIn: protocol.AudioFormat{
			Encoding: "pcm_s16le", SampleRateHz: gemini.InputSampleRate, Channels: 1,
		},
		AudioOut: protocol.AudioFormat{
			Encoding: "pcm_s16le", SampleRateHz: gemini.OutputSampleRate, Channels: 1,
		},
	}); err != nil {
		return
	}

	if err := sess.Start(r.Context()); err != nil {
		h.Logger.Warn("live session failed to open", "error", err)
		// The error event reaches the client through the write loop; give it
		// a moment before tearing the socket down.
		time.Sleep(100 * time.Millisecond)
		sess.Stop()
		writerDone.Wait()
		return
	}

	h.readLoop(lc, sess)

	sess.Stop()
	writerDone.Wait()
	h.persistTurns(r, hello.SessionID, sess)
}

func (h LiveHandler) readHello(lc *liveConn) (protocol.ClientHello, bool) {
	_ = lc.conn.SetReadDeadline(time.Now().Add(helloTimeout))
	defer lc.conn.SetReadDeadline(time.Time{})

	_, data, err := lc.conn.ReadMessage()
	if err != nil {
		return protocol.ClientHello{}, false
	}
	msg, err := protocol.DecodeClientMessage(data)
	if err != nil {
		lc.writeDecodeError(err)
		return protocol.ClientHello{}, false
	}
	hello, ok := msg.(protocol.ClientHello)
	if !ok {
		_ = lc.writeJSON(protocol.ServerError{Type: "error", Code: "bad_request", Message: "first frame must be hello"})
		return protocol.ClientHello{}, false
	}
	return hello, true
}

func (h LiveHandler) readLoop(lc *liveConn, sess *session.Session) {
	for {
		_, data, err := lc.conn.ReadMessage()
		if err != nil {
			return
		}
		msg, err := protocol.DecodeClientMessage(data)
		if err != nil {
			lc.writeDecodeError(err)
			continue
		}

		switch m := msg.(type) {
		case protocol.ClientAudioFrame:
			pcm, err := base64.StdEncoding.DecodeString(m.DataB64)
			if err != nil {
				lc.writeDecodeError(&protocol.DecodeError{Code: "bad_request", Message: "audio frame is not valid base64", Param: "data_b64"})
				continue
			}
			if h.MaxAudioFrameBytes > 0 && len(pcm) > h.MaxAudioFrameBytes {
				lc.writeDecodeError(&protocol.DecodeError{Code: "bad_request", Message: "audio frame too large", Param: "data_b64"})
				continue
			}
			sess.HandleAudioFrame(pcm)
		case protocol.ClientVideoFrame:
			jpeg, err := base64.StdEncoding.DecodeString(m.DataB64)
			if err != nil {
				continue
			}
			sess.HandleVideoFrame(jpeg)
		case protocol.ClientControl:
			switch m.Op {
			case "stop":
				return
			case "set_language":
				if i18n.Supported(m.Language) {
					sess.SetLanguage(m.Language)
				}
			}
		case protocol.ClientHello:
			lc.writeDecodeError(&protocol.DecodeError{Code: "bad_request", Message: "session is already open"})
		}
	}
}

func (h LiveHandler) writeLoop(lc *liveConn, sess *session.Session) {
	pingInterval := h.PingInterval
	if pingInterval <= 0 {
		pingInterval = 20 * time.Second
	}
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case ev, ok := <-sess.Events():
			if !ok {
				return
			}
			if err := lc.writeJSON(frameFor(ev)); err != nil {
				return
			}
		case <-ping.C:
			if err := lc.writePing(); err != nil {
				return
			}
		}
	}
}

func frameFor(ev session.Event) any {
	switch e := ev.(type) {
	case session.TurnUpdateEvent:
		return protocol.ServerTurnUpdate{Type: "turn_update", TurnID: e.TurnID, Role: string(e.Role), Text: e.Text}
	case session.TurnCompleteEvent:
		return protocol.ServerTurnComplete{Type: "turn_complete"}
	case session.InterruptedEvent:
		return protocol.ServerInterrupted{Type: "interrupted"}
	case session.AudioEvent:
		return protocol.ServerAudioChunk{
			Type:       "audio_chunk",
			Seq:        e.Seq,
			DataB64:    base64.StdEncoding.EncodeToString(e.PCM),
			StartMS:    e.Start.Milliseconds(),
			DurationMS: e.Duration.Milliseconds(),
		}
	case session.LevelEvent:
		return protocol.ServerLevel{Type: "level", RMS: e.RMS}
	case session.ErrorEvent:
		return protocol.ServerError{Type: "error", Code: e.Code, Message: e.Message}
	case session.ClosedEvent:
		return protocol.ServerClosed{Type: "closed", Reason: e.Reason}
	default:
		return protocol.ServerError{Type: "error", Code: "internal", Message: "unknown event"}
	}
}

// persistTurns merges the reconciled voice turns into the owning chat session.
func (h LiveHandler) persistTurns(r *http.Request, sessionID string, sess *session.Session) {
	turns := sess.Turns()
	if len(turns) == 0 || h.Repo == nil {
		return
	}
	stored, err := h.Repo.Get(r.Context(), sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return
	}
	if err != nil {
		h.Logger.Error("load session for voice turns", "error", err)
		return
	}
	appendTurns(stored, turns)
	if err := h.Repo.Put(r.Context(), stored); err != nil {
		h.Logger.Error("persist voice turns", "error", err)
	}
}

func liveSystemPrompt(lang string) string {
	prompt := "You are CivicEase, a voice assistant helping Indian citizens with government services, forms, and civic issues. Keep answers short and conversational."
	if lang != "" && lang != i18n.LangEnglish {
		prompt += " Speak in the language with code " + lang + "."
	}
	return prompt
}

// liveConn serializes websocket writes; the writer goroutine, the read loop's
// error frames, and tracker warnings all share the connection.
type liveConn struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	mu           sync.Mutex
}

func (c *liveConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	return c.conn.WriteJSON(v)
}

func (c *liveConn) writePing() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

func (c *liveConn) writeDecodeError(err error) {
	var de *protocol.DecodeError
	if !errors.As(err, &de) {
		de = &protocol.DecodeError{Code: "bad_request", Message: err.Error()}
	}
	_ = c.writeJSON(protocol.ServerError{Type: "error", Code: de.Code, Message: de.Error()})
}
