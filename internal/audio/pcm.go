package audio

import (
	"encoding/binary"
	"math"
)

// EncodePCM16 converts float samples to raw little-endian signed 16-bit PCM
// with no container. Each sample is clamped to [-1, 1], scaled by 32767 and
// truncated toward zero.
func EncodePCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := int16(float64(clamp(s)) * math.MaxInt16)
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}
