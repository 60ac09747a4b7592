// SPDX-License-Identifier: EPL-2.0

// Package audio holds the sample formats and conversions shared by ports
// and file codecs.
//
// # Line format
//
// Every connection carries LineFormat: 44100 Hz stereo, interleaved
// float32 in [-1,1]. A port declares its own client Format and a
// Converter moves audio between the two:
//
//	conv, err := audio.NewConverter(audio.Format{SampleRate: 48000, Channels: 1}, audio.LineFormat)
//	consumed, produced := conv.Convert(line, client)
//
// Rate changes use Catmull-Rom interpolation with a one pole low pass
// when downsampling. Channel layouts are mapped by averaging down and
// duplicating up. Converters never allocate after construction.
//
// # Sources
//
// Source is a pull stream of interleaved samples. ReadSamples returns
// values, not frames, and io.EOF once the stream is finished:
//
//	for {
//	    n, err := src.ReadSamples(buf)
//	    process(buf[:n])
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
//
// Decoders are looked up by file extension through a Registry.
package audio
