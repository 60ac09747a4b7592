// SPDX-License-Identifier: EPL-2.0

// Package trigger implements the remote-control signals a session
// publishes: buttons with a visual state, and variables with a value
// bounded by a minimum and a maximum.
//
// Peers see these as remote triggers and invoke them through the hub.
// The perform function of a trigger runs in the control domain.
package trigger
