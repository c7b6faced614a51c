package live

import (
	"encoding/binary"
	"math"
	"time"
)

// Audio formats used on the wire.
const (
	InputSampleRate  = 16000
	OutputSampleRate = 24000
	FrameSize        = 4096
	InputMIMEType    = "audio/pcm;rate=16000"
)

// EncodePCM16 converts float samples in [-1, 1] to 16-bit little-endian PCM.
// Out-of-range samples are clamped.
func EncodePCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := float64(s) * 32768
		if v > math.MaxInt16 {
			v = math.MaxInt16
		} else if v < math.MinInt16 {
			v = math.MinInt16
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v)))
	}
	return out
}

// DecodePCM16 converts 16-bit little-endian PCM to float samples.
// A trailing odd byte is ignored.
func DecodePCM16(data []byte) []float32 {
	out := make([]float32, len(data)/2)
	for i := range out {
		out[i] = float32(int16(binary.LittleEndian.Uint16(data[i*2:]))) / 32768
	}
	return out
}

// Resample converts samples between rates with linear interpolation.
func Resample(samples []float32, fromRate, toRate int) []float32 {
	if fromRate == toRate || len(samples) == 0 || fromRate <= 0 || toRate <= 0 {
		return samples
	}

	n := int(int64(len(samples)) * int64(toRate) / int64(fromRate))
	if n == 0 {
		return []float32{}
	}
	out := make([]float32, n)
	step := float64(fromRate) / float64(toRate)

	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		if j >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = samples[j] + (samples[j+1]-samples[j])*frac
	}
	return out
}

// Duration returns the play time of n samples at rate.
func Duration(n, rate int) time.Duration {
	if rate <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second / time.Duration(rate)
}
