// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ik5/audlink/audio"
	"github.com/ik5/audlink/utils"
)

const (
	headerSize = 44
	chunkSize  = 8192
)

// header16 builds the canonical 44 byte header of a 16-bit PCM file
// holding dataSize bytes of samples.
func header16(format audio.Format, dataSize uint32) []byte {
	const bytesPerSample = 2

	channels := uint16(format.Channels)
	blockAlign := channels * bytesPerSample

	header := make([]byte, headerSize)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], headerSize-8+dataSize)
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], formatPCM)
	binary.LittleEndian.PutUint16(header[22:24], channels)
	binary.LittleEndian.PutUint32(header[24:28], uint32(format.SampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(format.SampleRate)*uint32(blockAlign))
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], 16)

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)

	return header
}

// WriteWAV16 writes interleaved 16-bit samples as a complete WAV file.
// Unlike Encoder it needs no seeking, so it suits pipes and sockets.
func WriteWAV16(w io.Writer, format audio.Format, samples []int16) error {
	if err := format.Validate(); err != nil {
		return err
	}
	if len(samples)%format.Channels != 0 {
		return audio.ErrInvalidDstSize
	}

	if _, err := w.Write(header16(format, uint32(len(samples)*2))); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	if len(samples) == 0 {
		return nil
	}

	buf := make([]byte, 2*min(len(samples), chunkSize))
	for start := 0; start < len(samples); start += chunkSize {
		chunk := samples[start:min(start+chunkSize, len(samples))]
		out := buf[:2*len(chunk)]
		for i, s := range chunk {
			binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
		}

		if _, err := w.Write(out); err != nil {
			return fmt.Errorf("writing samples: %w", err)
		}
	}

	return nil
}

// WriteFloat32 converts float32 samples to 16-bit and writes them with
// WriteWAV16.
func WriteFloat32(w io.Writer, format audio.Format, samples []float32) error {
	pcm := make([]int16, len(samples))
	for i, v := range samples {
		pcm[i] = utils.Float32ToInt16(v)
	}

	return WriteWAV16(w, format, pcm)
}
