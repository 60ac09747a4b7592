// SPDX-License-Identifier: EPL-2.0

package trigger

import "errors"

var (
	ErrInvalidBounds  = errors.New("minimum is above maximum")
	ErrAlreadyAdded   = errors.New("trigger already belongs to a set")
	ErrUnknownTrigger = errors.New("unknown trigger")
	ErrWrongKind      = errors.New("operation not supported by trigger kind")
)
