// SPDX-License-Identifier: GPL-3.0-or-later

package pbx

import (
	"context"
	"errors"
)

var (
	// ErrConnect covers transport dial and authentication failures.
	ErrConnect = errors.New("switch connection failed")

	// ErrTimeout marks a read deadline exhausted mid-operation.
	ErrTimeout = errors.New("switch read timed out")
)

// ChannelTransport is a single session with the switch. Implementations
// are not safe for concurrent use; callers open one per logical
// operation and must Close it on every path after a successful Connect.
type ChannelTransport interface {
	// Connect establishes and authenticates the session. On failure the
	// returned error wraps ErrConnect and the session is already torn
	// down.
	Connect(ctx context.Context) error

	// FetchChannels returns a snapshot of the live channels. When the
	// read deadline expires mid-stream it returns the records parsed so
	// far together with an error wrapping ErrTimeout.
	FetchChannels(ctx context.Context) ([]ChannelRecord, error)

	// Hangup asks the switch to terminate a channel. It reports false
	// without an error when the switch knows no such channel.
	Hangup(ctx context.Context, channelID string) (bool, error)

	// Close releases the session. It is safe to call multiple times.
	Close() error
}
