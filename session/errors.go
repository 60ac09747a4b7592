// SPDX-License-Identifier: EPL-2.0

package session

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrHubClosed     = errors.New("hub closed")
	ErrSessionClosed = errors.New("session closed")
	ErrDuplicatePort = errors.New("port name already used in session")
	ErrUnknownPort   = errors.New("port not registered with hub")
	ErrUnknownPeer   = errors.New("unknown peer")
)
