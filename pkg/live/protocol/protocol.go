// Package protocol defines the JSON frames exchanged with the browser on the
// live voice websocket.
package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

const ProtocolVersion1 = "1"

type DecodeError struct {
	Code    string
	Message string
	Param   string
}

func (e *DecodeError) Error() string {
	if e == nil {
		return ""
	}
	if strings.TrimSpace(e.Param) == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Param)
}

func badRequest(message, param string) *DecodeError {
	return &DecodeError{Code: "bad_request", Message: message, Param: param}
}

func unsupported(message, param string) *DecodeError {
	return &DecodeError{Code: "unsupported", Message: message, Param: param}
}

// AudioFormat describes the negotiated live audio shape.
type AudioFormat struct {
	Encoding     string `json:"encoding"`
	SampleRateHz int    `json:"sample_rate_hz"`
	Channels     int    `json:"channels"`
}

// ClientHello opens a live session. SessionID names the chat surface the
// session belongs to; at most one live session may be open per surface.
type ClientHello struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	SessionID       string `json:"session_id"`
	Language        string `json:"language,omitempty"`
	Camera          bool   `json:"camera,omitempty"`
}

// ClientAudioFrame carries one fixed-size microphone frame as base64 PCM.
type ClientAudioFrame struct {
	Type    string `json:"type"`
	Seq     int64  `json:"seq,omitempty"`
	DataB64 string `json:"data_b64"`
}

// ClientVideoFrame carries one camera still as base64 JPEG.
type ClientVideoFrame struct {
	Type    string `json:"type"`
	DataB64 string `json:"data_b64"`
}

// ClientControl carries session control operations.
type ClientControl struct {
	Type     string `json:"type"`
	Op       string `json:"op"`
	Language string `json:"language,omitempty"`
}

// DecodeClientMessage decodes a text frame from the browser.
func DecodeClientMessage(data []byte) (any, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, badRequest("invalid json frame", "")
	}
	typ := strings.TrimSpace(envelope.Type)
	if typ == "" {
		return nil, badRequest("missing type", "type")
	}

	switch typ {
	case "hello":
		var msg ClientHello
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, badRequest("invalid hello frame", "")
		}
		if strings.TrimSpace(msg.ProtocolVersion) == "" {
			return nil, badRequest("hello.protocol_version is required", "protocol_version")
		}
		if strings.TrimSpace(msg.SessionID) == "" {
			return nil, badRequest("hello.session_id is required", "session_id")
		}
		return msg, nil
	case "audio_frame":
		var msg ClientAudioFrame
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, badRequest("invalid audio_frame", "")
		}
		if strings.TrimSpace(msg.DataB64) == "" {
			return nil, badRequest("audio_frame.data_b64 is required", "data_b64")
		}
		return msg, nil
	case "video_frame":
		var msg ClientVideoFrame
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, badRequest("invalid video_frame", "")
		}
		if strings.TrimSpace(msg.DataB64) == "" {
			return nil, badRequest("video_frame.data_b64 is required", "data_b64")
		}
		return msg, nil
	case "control":
		var msg ClientControl
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, badRequest("invalid control", "")
		}
		op := strings.TrimSpace(msg.Op)
		switch op {
		case "stop":
		case "set_language":
			if strings.TrimSpace(msg.Language) == "" {
				return nil, badRequest("control.language is required for set_language", "language")
			}
		case "":
			return nil, badRequest("control.op is required", "op")
		default:
			return nil, unsupported("unsupported control operation", "op")
		}
		msg.Op = op
		return msg, nil
	default:
		return nil, badRequest("unsupported message type", "type")
	}
}

// ServerHelloAck acknowledges a hello and reports the negotiated formats.
type ServerHelloAck struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	LiveID          string      `json:"live_id"`
	AudioIn         AudioFormat `json:"audio_in"`
	AudioOut        AudioFormat `json:"audio_out"`
}

// ServerTurnUpdate republishes a turn's full reconciled content after each
// transcription fragment.
type ServerTurnUpdate struct {
	Type   string `json:"type"`
	TurnID string `json:"turn_id"`
	Role   string `json:"role"`
	Text   string `json:"text"`
}

// ServerTurnComplete marks the end of a conversational turn; subsequent
// fragments start new turns.
type ServerTurnComplete struct {
	Type string `json:"type"`
}

// ServerInterrupted tells the client to flush its playback immediately.
type ServerInterrupted struct {
	Type string `json:"type"`
}

// ServerAudioChunk is a scheduled playback buffer: base64 24 kHz PCM plus
// its slot on the playback timeline.
type ServerAudioChunk struct {
	Type       string `json:"type"`
	Seq        int64  `json:"seq"`
	DataB64    string `json:"data_b64"`
	StartMS    int64  `json:"start_ms"`
	DurationMS int64  `json:"duration_ms"`
}

// ServerLevel carries the microphone volume envelope for UI feedback.
type ServerLevel struct {
	Type string  `json:"type"`
	RMS  float64 `json:"rms"`
}

// ServerError is a user-visible session error.
type ServerError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServerClosed announces session teardown.
type ServerClosed struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}
