// SPDX-License-Identifier: EPL-2.0

// Package stream drives ports from the host side.
//
// # Cycle
//
// A Cycle plays the part of an audio device callback. Each step covers a
// fixed number of line frames, in this order:
//   - players send their next slice
//   - filters are pumped in the order they were added
//   - receivers with an input handler are dispatched
//   - recorders drain their receivers and end the interval
//
// Without options a Cycle runs as fast as it can, which suits offline
// rendering. WithRealtime paces it by a ticker at the period of one
// step:
//
//	cycle, err := stream.NewCycle(512, stream.WithRealtime())
//	if err != nil {
//	    return err
//	}
//	cycle.AddPlayer(player)
//	cycle.AddRecorder(recorder)
//
//	errc := cycle.Start(ctx)
//	if err := <-errc; err != nil && !errors.Is(err, context.Canceled) {
//	    return err
//	}
//
// Run returns once every player is done, or when ctx is cancelled. A
// realtime cycle without players keeps running until cancelled.
//
// # Players and recorders
//
// A Player reads an audio.Source in the sender's client format and pads
// the final slice with silence. A Recorder writes what its receiver
// gets to a Sink such as a formats/wav Encoder. Sample counts are kept
// in client frames, so streams at other rates do not drift against the
// line.
package stream
