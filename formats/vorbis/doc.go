// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams with
// github.com/jfreymuth/oggvorbis.
//
// The source keeps the stream's channel count and sample rate:
//
//	f, _ := os.Open("loop.ogg")
//	src, err := vorbis.Decoder{}.Decode(f)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(src.Format()) // e.g. 48000Hz/2ch
//
// Reads fill whole frames even when a Vorbis packet ends mid buffer.
package vorbis
