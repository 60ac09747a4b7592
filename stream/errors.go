// SPDX-License-Identifier: EPL-2.0

package stream

import "errors"

var (
	ErrFormatMismatch = errors.New("source format does not match port client format")
	ErrInvalidFrames  = errors.New("frames per step must be positive")
	ErrNothingToPlay  = errors.New("cycle has no players")
	ErrRunning        = errors.New("cycle already running")
)
