// SPDX-License-Identifier: EPL-2.0

package port

import "errors"

var (
	ErrInvalidConnection = errors.New("invalid connection")
	ErrAlreadyConnected  = errors.New("ports already connected")
	ErrNotConnected      = errors.New("ports not connected")
	ErrPortClosed        = errors.New("port closed")
	ErrPortConnected     = errors.New("port is connected")
	ErrLatencyLocked     = errors.New("latency cannot change while connected")
	ErrUnknownSource     = errors.New("source not connected to this port")
	ErrInvalidLatency    = errors.New("invalid latency")
	ErrNoProcessor       = errors.New("filter has no processing function")
)
