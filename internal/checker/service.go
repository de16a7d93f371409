// SPDX-License-Identifier: GPL-3.0-or-later

// Package checker answers whether a dialed number currently has a live call
// leg on the switch. Mock registry entries take precedence over the switch;
// every live check opens its own transport session and tears it down before
// returning.
package checker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dialtonehq/callcheck/internal/mockreg"
	"github.com/dialtonehq/callcheck/internal/pbx"
	"github.com/dialtonehq/callcheck/logger"
)

const mockChannelPrefix = "mock-"

// Result is the outcome of a single connection check. Degraded is set when
// the switch response timed out and only partially fetched channels were
// matched, so "not connected" may be a false negative.
type Result struct {
	Connected bool      `json:"connected"`
	ChannelID string    `json:"channel_id,omitempty"`
	Message   string    `json:"message"`
	Degraded  bool      `json:"degraded,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Service struct {
	*logger.Logger

	registry     *mockreg.Registry
	newTransport func() pbx.ChannelTransport

	now func() time.Time
}

func New(registry *mockreg.Registry, newTransport func() pbx.ChannelTransport, log *logger.Logger) *Service {
	return &Service{
		Logger:       log,
		registry:     registry,
		newTransport: newTransport,
		now:          time.Now,
	}
}

// Check reports whether the dialed number has an active call. A mock registry
// hit short-circuits with a synthesized channel id and never touches the
// switch. Connect failures are returned to the caller; fetch timeouts degrade
// the result instead, matching against whatever was received.
func (s *Service) Check(ctx context.Context, dialed, callerID string) (*Result, error) {
	res := &Result{Timestamp: s.now().UTC()}

	if key, ok := s.registry.Get(dialed); ok {
		res.Connected = true
		res.ChannelID = fmt.Sprintf("%s%s-%d", mockChannelPrefix, key, s.now().Unix())
		res.Message = "Mock connection active"
		return res, nil
	}

	conn := s.newTransport()
	if err := conn.Connect(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	records, err := conn.FetchChannels(ctx)
	if err != nil {
		if !errors.Is(err, pbx.ErrTimeout) {
			return nil, err
		}
		s.Warningf("channel fetch timed out, matching against %d partial records: %v", len(records), err)
		res.Degraded = true
	}

	m := newMatcher(dialed, callerID)
	for _, rec := range records {
		if m.Match(rec) {
			res.Connected = true
			res.ChannelID = rec.ID()
			res.Message = "Call exists on Asterisk server"
			return res, nil
		}
	}

	if res.Degraded {
		res.Message = "Call check incomplete, switch response timed out"
	} else {
		res.Message = "Call not found on Asterisk server"
	}

	return res, nil
}

// Disconnect hangs up the channel with the given id. Ids carrying the mock
// prefix are resolved against the registry only.
func (s *Service) Disconnect(ctx context.Context, channelID string) (bool, string, error) {
	if number, ok := parseMockChannelID(channelID); ok {
		s.registry.Remove(number)
		return true, "Mock call disconnected", nil
	}

	conn := s.newTransport()
	if err := conn.Connect(ctx); err != nil {
		return false, "", err
	}
	defer func() { _ = conn.Close() }()

	ok, err := conn.Hangup(ctx, channelID)
	if err != nil {
		return false, "", err
	}
	if !ok {
		return false, "Failed to disconnect call", nil
	}

	return true, "Call disconnected successfully", nil
}

// parseMockChannelID extracts the number from a synthesized channel id of the
// form "mock-<number>-<unix timestamp>".
func parseMockChannelID(channelID string) (string, bool) {
	rest, found := strings.CutPrefix(channelID, mockChannelPrefix)
	if !found {
		return "", false
	}
	number, _, _ := strings.Cut(rest, "-")
	return number, true
}
