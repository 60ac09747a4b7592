// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes PCM WAV files.
//
// Decoder accepts integer PCM at 8, 16, 24 and 32 bits in any chunk
// layout. Encoder streams float32 samples to a seekable writer.
// WriteWAV16 writes a whole 16-bit file to any writer.
package wav
