package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/i18n"
)

type Config struct {
	Addr string

	// Gateway credential. GEMINI_API_KEY is accepted as a fallback for local
	// development. Absence is not fatal; requests fail upstream.
	GeminiAPIKey string

	ChatModel string
	LiveModel string
	Voice     string

	DefaultLanguage string

	// DatabaseURL enables the PostgreSQL session store; empty means in-memory.
	DatabaseURL string

	// CORS
	CORSAllowedOrigins map[string]struct{} // empty => disabled

	// Live session tuning.
	LivePlaybackLookahead time.Duration
	LiveFrameInterval     time.Duration
	LiveReconnectDelay    time.Duration
	LiveWSPingInterval    time.Duration
	LiveWSWriteTimeout    time.Duration
	LiveMaxAudioFrameBytes int

	// SSE chat stream.
	SSEPingInterval time.Duration

	// Operational defaults.
	ReadHeaderTimeout   time.Duration
	ReadTimeout         time.Duration
	ShutdownGracePeriod time.Duration
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		Addr:                   envOr("CIVICEASE_ADDR", ":8080"),
		GeminiAPIKey:           envOr("CIVICEASE_GEMINI_API_KEY", envOr("GEMINI_API_KEY", "")),
		ChatModel:              envOr("CIVICEASE_CHAT_MODEL", "gemini-2.5-flash"),
		LiveModel:              envOr("CIVICEASE_LIVE_MODEL", "gemini-2.5-flash-native-audio-preview-09-2025"),
		Voice:                  envOr("CIVICEASE_VOICE", "Puck"),
		DefaultLanguage:        envOr("CIVICEASE_DEFAULT_LANGUAGE", i18n.LangEnglish),
		DatabaseURL:            envOr("CIVICEASE_DATABASE_URL", ""),
		CORSAllowedOrigins:     make(map[string]struct{}),
		LivePlaybackLookahead:  envDurationOr("CIVICEASE_LIVE_PLAYBACK_LOOKAHEAD", 50*time.Millisecond),
		LiveFrameInterval:      envDurationOr("CIVICEASE_LIVE_FRAME_INTERVAL", time.Second),
		LiveReconnectDelay:     envDurationOr("CIVICEASE_LIVE_RECONNECT_DELAY", 250*time.Millisecond),
		LiveWSPingInterval:     envDurationOr("CIVICEASE_LIVE_WS_PING_INTERVAL", 20*time.Second),
		LiveWSWriteTimeout:     envDurationOr("CIVICEASE_LIVE_WS_WRITE_TIMEOUT", 5*time.Second),
		LiveMaxAudioFrameBytes: envIntOr("CIVICEASE_LIVE_MAX_AUDIO_FRAME_BYTES", 8192),
		SSEPingInterval:        envDurationOr("CIVICEASE_SSE_PING_INTERVAL", 15*time.Second),
		ReadHeaderTimeout:      envDurationOr("CIVICEASE_READ_HEADER_TIMEOUT", 10*time.Second),
		ReadTimeout:            envDurationOr("CIVICEASE_READ_TIMEOUT", 30*time.Second),
		ShutdownGracePeriod:    envDurationOr("CIVICEASE_SHUTDOWN_GRACE_PERIOD", 30*time.Second),
	}

	for _, origin := range splitCSV(os.Getenv("CIVICEASE_CORS_ORIGINS")) {
		cfg.CORSAllowedOrigins[origin] = struct{}{}
	}

	if strings.TrimSpace(cfg.ChatModel) == "" {
		return Config{}, fmt.Errorf("CIVICEASE_CHAT_MODEL must not be empty")
	}
	if strings.TrimSpace(cfg.LiveModel) == "" {
		return Config{}, fmt.Errorf("CIVICEASE_LIVE_MODEL must not be empty")
	}
	if !i18n.Supported(cfg.DefaultLanguage) {
		return Config{}, fmt.Errorf("CIVICEASE_DEFAULT_LANGUAGE must be one of %s", strings.Join(i18n.Languages(), "|"))
	}
	if cfg.LivePlaybackLookahead <= 0 {
		return Config{}, fmt.Errorf("CIVICEASE_LIVE_PLAYBACK_LOOKAHEAD must be > 0")
	}
	if cfg.LiveFrameInterval <= 0 {
		return Config{}, fmt.Errorf("CIVICEASE_LIVE_FRAME_INTERVAL must be > 0")
	}
	if cfg.LiveReconnectDelay <= 0 {
		return Config{}, fmt.Errorf("CIVICEASE_LIVE_RECONNECT_DELAY must be > 0")
	}
	if cfg.LiveWSPingInterval <= 0 {
		return Config{}, fmt.Errorf("CIVICEASE_LIVE_WS_PING_INTERVAL must be > 0")
	}
	if cfg.LiveWSWriteTimeout <= 0 {
		return Config{}, fmt.Errorf("CIVICEASE_LIVE_WS_WRITE_TIMEOUT must be > 0")
	}
	if cfg.LiveMaxAudioFrameBytes <= 0 {
		return Config{}, fmt.Errorf("CIVICEASE_LIVE_MAX_AUDIO_FRAME_BYTES must be > 0")
	}
	if cfg.SSEPingInterval <= 0 {
		return Config{}, fmt.Errorf("CIVICEASE_SSE_PING_INTERVAL must be > 0")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		return Config{}, fmt.Errorf("CIVICEASE_READ_HEADER_TIMEOUT must be > 0")
	}
	if cfg.ReadTimeout <= 0 {
		return Config{}, fmt.Errorf("CIVICEASE_READ_TIMEOUT must be > 0")
	}
	if cfg.ShutdownGracePeriod <= 0 {
		return Config{}, fmt.Errorf("CIVICEASE_SHUTDOWN_GRACE_PERIOD must be > 0")
	}

	return cfg, nil
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envIntOr(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func envDurationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

func splitCSV(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
