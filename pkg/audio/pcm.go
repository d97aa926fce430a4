package audio

import (
	"encoding/binary"
	"math"
	"time"
)

// Live audio formats: 16 kHz 16-bit mono PCM up, 24 kHz 16-bit mono PCM down.
const (
	BitsPerSample = 16
	Channels      = 1
)

// Float32ToPCM16 converts normalized float32 samples ([-1, 1]) to little-endian
// 16-bit signed PCM. Out-of-range samples are clamped.
func Float32ToPCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		v := int16(s * math.MaxInt16)
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

// PCM16ToFloat32 converts little-endian 16-bit signed PCM to normalized
// float32 samples. A trailing odd byte is ignored.
func PCM16ToFloat32(pcm []byte) []float32 {
	n := len(pcm) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		out[i] = float32(v) / math.MaxInt16
	}
	return out
}

// Duration returns the playback duration of a 16-bit mono PCM buffer at the
// given sample rate.
func Duration(pcm []byte, sampleRate int) time.Duration {
	if sampleRate <= 0 || len(pcm) < 2 {
		return 0
	}
	samples := int64(len(pcm) / 2)
	return time.Duration(samples * int64(time.Second) / int64(sampleRate))
}

// RMS computes the root-mean-square level of a 16-bit mono PCM buffer,
// normalized to [0, 1]. Used for the UI volume envelope.
func RMS(pcm []byte) float64 {
	n := len(pcm) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		v := float64(int16(binary.LittleEndian.Uint16(pcm[i*2:]))) / math.MaxInt16
		sum += v * v
	}
	return math.Sqrt(sum / float64(n))
}

// WAV wraps raw PCM data with a 44-byte RIFF/WAVE header so recordings can be
// saved or replayed by standard players.
func WAV(pcm []byte, sampleRate int) []byte {
	dataLen := len(pcm)
	byteRate := sampleRate * Channels * BitsPerSample / 8
	blockAlign := Channels * BitsPerSample / 8

	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataLen))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1)
	binary.LittleEndian.PutUint16(header[22:24], Channels)
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], BitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataLen))

	return append(header, pcm...)
}
