// SPDX-License-Identifier: EPL-2.0

package utils

// Clamp limits x to [lo, hi]. NaN becomes lo.
func Clamp(x, lo, hi float32) float32 {
	if x > hi {
		return hi
	}
	if x >= lo {
		return x
	}

	return lo
}

// BalanceGains returns the left and right gains for a volume in [0,1]
// and a pan in [-1,1]. A centered pan keeps both channels at unity, a
// hard pan silences the opposite channel.
func BalanceGains(volume, pan float32) (left, right float32) {
	volume = Clamp(volume, 0, 1)
	pan = Clamp(pan, -1, 1)

	left, right = volume, volume
	if pan > 0 {
		left *= 1 - pan
	} else if pan < 0 {
		right *= 1 + pan
	}

	return left, right
}

// MixStereo adds src into dst with the given channel gains.
// Both slices are interleaved stereo; the shorter length wins.
func MixStereo(dst, src []float32, left, right float32) {
	n := min(len(dst), len(src)) &^ 1
	for i := 0; i < n; i += 2 {
		dst[i] += src[i] * left
		dst[i+1] += src[i+1] * right
	}
}
