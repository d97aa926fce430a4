package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	// InputSampleRate is the live microphone format (16 kHz, 16-bit mono PCM).
	InputSampleRate = 16000
	// OutputSampleRate is the live playback format (24 kHz, 16-bit mono PCM).
	OutputSampleRate = 24000
)

// LiveConfig configures a duplex live session.
type LiveConfig struct {
	System   string
	Language string
	Voice    string
}

// LiveEvent is one inbound event from the live session. A single event may
// carry several of these at once (for example an audio payload together with
// an output transcription fragment).
type LiveEvent struct {
	Interrupted      bool
	TurnComplete     bool
	InputTranscript  string
	OutputTranscript string
	Audio            []byte
}

// LiveStream is the duplex channel to the gateway. The concrete
// implementation talks to the live model endpoint; tests substitute fakes.
type LiveStream interface {
	SendAudio(pcm []byte) error
	SendVideo(jpeg []byte) error
	Recv() (LiveEvent, error)
	Close() error
}

// ConnectLive opens a duplex live session: audio response modality,
// streaming transcription in both directions, target-language system
// instruction and voice identity.
func (c *Client) ConnectLive(ctx context.Context, cfg LiveConfig) (LiveStream, error) {
	lcfg := &genai.LiveConnectConfig{
		ResponseModalities:       []genai.Modality{genai.ModalityAudio},
		InputAudioTranscription:  &genai.AudioTranscriptionConfig{},
		OutputAudioTranscription: &genai.AudioTranscriptionConfig{},
	}
	if strings.TrimSpace(cfg.System) != "" {
		lcfg.SystemInstruction = genai.NewContentFromText(cfg.System, genai.RoleUser)
	}
	speech := &genai.SpeechConfig{}
	if strings.TrimSpace(cfg.Voice) != "" {
		speech.VoiceConfig = &genai.VoiceConfig{
			PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: cfg.Voice},
		}
	}
	if strings.TrimSpace(cfg.Language) != "" {
		speech.LanguageCode = cfg.Language
	}
	lcfg.SpeechConfig = speech

	session, err := c.api.Live.Connect(ctx, c.cfg.LiveModel, lcfg)
	if err != nil {
		return nil, fmt.Errorf("connect live session: %w", err)
	}
	return &liveStream{session: session}, nil
}

type liveStream struct {
	session *genai.Session
}

func (s *liveStream) SendAudio(pcm []byte) error {
	return s.session.SendRealtimeInput(genai.LiveRealtimeInput{
		Audio: &genai.Blob{MIMEType: fmt.Sprintf("audio/pcm;rate=%d", InputSampleRate), Data: pcm},
	})
}

func (s *liveStream) SendVideo(jpeg []byte) error {
	return s.session.SendRealtimeInput(genai.LiveRealtimeInput{
		Video: &genai.Blob{MIMEType: "image/jpeg", Data: jpeg},
	})
}

// Recv blocks for the next inbound event. Messages that carry nothing the
// reconciler cares about are skipped.
func (s *liveStream) Recv() (LiveEvent, error) {
	for {
		msg, err := s.session.Receive()
		if err != nil {
			return LiveEvent{}, err
		}
		sc := msg.ServerContent
		if sc == nil {
			continue
		}

		ev := LiveEvent{
			Interrupted:  sc.Interrupted,
			TurnComplete: sc.TurnComplete,
		}
		if sc.InputTranscription != nil {
			ev.InputTranscript = sc.InputTranscription.Text
		}
		if sc.OutputTranscription != nil {
			ev.OutputTranscript = sc.OutputTranscription.Text
		}
		if sc.ModelTurn != nil {
			for _, part := range sc.ModelTurn.Parts {
				if part == nil || part.InlineData == nil {
					continue
				}
				ev.Audio = append(ev.Audio, part.InlineData.Data...)
			}
		}
		if !ev.Interrupted && !ev.TurnComplete && ev.InputTranscript == "" && ev.OutputTranscript == "" && len(ev.Audio) == 0 {
			continue
		}
		return ev, nil
	}
}

func (s *liveStream) Close() error {
	return s.session.Close()
}
