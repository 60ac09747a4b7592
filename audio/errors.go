// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
	ErrInvalidFormat  = errors.New("invalid audio format")
	ErrUnknownFormat  = errors.New("no decoder registered for format")
)
