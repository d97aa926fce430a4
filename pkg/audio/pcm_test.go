package audio

import (
	"encoding/binary"
	"math"
	"testing"
	"time"
)

func TestFloat32ToPCM16RoundTrip(t *testing.T) {
	in := []float32{0, 0.5, -0.5, 0.25}
	pcm := Float32ToPCM16(in)
	if len(pcm) != len(in)*2 {
		t.Fatalf("pcm length = %d, want %d", len(pcm), len(in)*2)
	}
	out := PCM16ToFloat32(pcm)
	for i := range in {
		if diff := math.Abs(float64(out[i] - in[i])); diff > 1.0/math.MaxInt16 {
			t.Fatalf("sample %d: got %f, want %f", i, out[i], in[i])
		}
	}
}

func TestFloat32ToPCM16Clamps(t *testing.T) {
	pcm := Float32ToPCM16([]float32{2.0, -2.0})
	hi := int16(binary.LittleEndian.Uint16(pcm[0:]))
	lo := int16(binary.LittleEndian.Uint16(pcm[2:]))
	if hi != math.MaxInt16 {
		t.Fatalf("positive overflow clamped to %d, want %d", hi, math.MaxInt16)
	}
	if lo != -math.MaxInt16 {
		t.Fatalf("negative overflow clamped to %d, want %d", lo, -math.MaxInt16)
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name       string
		bytes      int
		sampleRate int
		want       time.Duration
	}{
		{"one second at 24k", 48000, 24000, time.Second},
		{"half second at 16k", 16000, 16000, 500 * time.Millisecond},
		{"empty", 0, 24000, 0},
		{"zero rate", 48000, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pcm := make([]byte, tt.bytes)
			if got := Duration(pcm, tt.sampleRate); got != tt.want {
				t.Fatalf("Duration = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRMS(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Fatalf("RMS(nil) = %f, want 0", got)
	}

	silence := make([]byte, 320)
	if got := RMS(silence); got != 0 {
		t.Fatalf("RMS(silence) = %f, want 0", got)
	}

	loud := Float32ToPCM16([]float32{0.8, -0.8, 0.8, -0.8})
	quiet := Float32ToPCM16([]float32{0.1, -0.1, 0.1, -0.1})
	if RMS(loud) <= RMS(quiet) {
		t.Fatalf("RMS(loud)=%f should exceed RMS(quiet)=%f", RMS(loud), RMS(quiet))
	}
}

func TestWAVHeader(t *testing.T) {
	pcm := make([]byte, 48000)
	wav := WAV(pcm, 24000)
	if len(wav) != 44+len(pcm) {
		t.Fatalf("wav length = %d, want %d", len(wav), 44+len(pcm))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatalf("bad RIFF/WAVE magic: %q %q", wav[0:4], wav[8:12])
	}
	if rate := binary.LittleEndian.Uint32(wav[24:28]); rate != 24000 {
		t.Fatalf("sample rate = %d, want 24000", rate)
	}
	if size := binary.LittleEndian.Uint32(wav[40:44]); size != uint32(len(pcm)) {
		t.Fatalf("data size = %d, want %d", size, len(pcm))
	}
}
