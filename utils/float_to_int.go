// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToInt16 clamps x to [-1,1] and scales it to 16-bit PCM.
func Float32ToInt16(x float32) int16 {
	// Use 32767 for both ends so the range stays symmetric
	return int16(Clamp(x, -1, 1) * 32767.0)
}

// Float32ToInt scales a clamped sample to a signed integer of bitDepth bits.
func Float32ToInt(x float32, bitDepth int) int {
	full := float64(int64(1)<<(bitDepth-1) - 1)
	return int(float64(Clamp(x, -1, 1)) * full)
}

// IntToFloat32 normalizes a signed integer sample of bitDepth bits to [-1,1).
func IntToFloat32(v int, bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return float32(v) / 128.0
	case 24:
		return float32(v) / 8388608.0
	case 32:
		return float32(v) / 2147483648.0
	default:
		return float32(v) / 32768.0
	}
}
