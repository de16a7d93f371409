// SPDX-License-Identifier: GPL-3.0-or-later

// Package ami talks the Asterisk manager protocol: a line-oriented TCP
// session with a login handshake, action requests correlated by
// ActionID and CRLF-framed event responses.
package ami

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/blang/semver/v4"
	"github.com/google/uuid"

	"github.com/dialtonehq/callcheck/internal/pbx"
	"github.com/dialtonehq/callcheck/logger"
	"github.com/dialtonehq/callcheck/pkg/socket"
)

const responseSuccess = "Response: Success"

// Event streams on large systems run to thousands of lines; the limit
// only guards against a peer that never sends the completion event.
const maxEventLines = 10000

// Config holds the manager protocol endpoint and credentials.
type Config struct {
	Address  string
	Username string
	Secret   string
	Timeout  time.Duration
}

// New creates a manager protocol transport. Connect must be called
// before any other operation.
func New(cfg Config, log *logger.Logger) *Client {
	return &Client{
		Logger: log,
		cfg:    cfg,
		conn: socket.New(socket.Config{
			Address:      cfg.Address,
			Timeout:      cfg.Timeout,
			MaxReadLines: maxEventLines,
		}),
	}
}

// Client is a single manager protocol session.
type Client struct {
	*logger.Logger

	cfg  Config
	conn socket.Client

	connected bool
}

// Connect dials the switch, reads the protocol banner and logs in.
// Every failure tears the socket down before returning.
func (c *Client) Connect(ctx context.Context) error {
	if err := c.conn.Connect(); err != nil {
		return fmt.Errorf("%w: dialing '%s': %v", pbx.ErrConnect, c.cfg.Address, err)
	}

	stop := context.AfterFunc(ctx, func() { _ = c.conn.Disconnect() })
	defer stop()

	banner, err := c.readBanner()
	if err != nil {
		_ = c.conn.Disconnect()
		return fmt.Errorf("%w: reading banner: %v", pbx.ErrConnect, err)
	}

	if ver, ok := parseProtocolVersion(banner); ok {
		c.Debugf("connected to '%s' (manager protocol %s)", c.cfg.Address, ver)
	} else {
		c.Debugf("connected to '%s', unexpected banner '%s'", c.cfg.Address, banner)
	}

	if err := c.login(); err != nil {
		_ = c.conn.Disconnect()
		return err
	}

	c.connected = true

	return nil
}

// FetchChannels requests the live channel list. A read deadline expiring
// mid-stream returns the records parsed so far together with an error
// wrapping pbx.ErrTimeout.
func (c *Client) FetchChannels(ctx context.Context) ([]pbx.ChannelRecord, error) {
	stop := context.AfterFunc(ctx, func() { _ = c.conn.Disconnect() })
	defer stop()

	actionID := "channels-" + uuid.NewString()

	cmd := "Action: CoreShowChannels\r\n" +
		"ActionID: " + actionID + "\r\n" +
		"\r\n"

	var sb strings.Builder
	var complete bool

	err := c.conn.Command(cmd, func(line []byte) (bool, error) {
		s := string(line)
		sb.WriteString(s)
		sb.WriteByte('\n')

		if strings.HasPrefix(s, eventChannelsComplete) {
			complete = true
		}

		return !(complete && s == ""), nil
	})

	records := parseChannelEvents(sb.String())

	if err != nil {
		switch {
		case isTimeout(err) || errors.Is(ctx.Err(), context.DeadlineExceeded):
			c.Warningf("channel listing timed out after %d records (action '%s')", len(records), actionID)
			return records, fmt.Errorf("%w: %v", pbx.ErrTimeout, err)
		case ctx.Err() != nil:
			return nil, fmt.Errorf("listing channels (action '%s'): %w", actionID, ctx.Err())
		default:
			return nil, fmt.Errorf("listing channels (action '%s'): %v", actionID, err)
		}
	}

	c.Debugf("received %d channel records (action '%s')", len(records), actionID)

	return records, nil
}

// Hangup asks the switch to terminate the channel. It reports false
// when the switch answers with anything but success.
func (c *Client) Hangup(ctx context.Context, channelID string) (bool, error) {
	stop := context.AfterFunc(ctx, func() { _ = c.conn.Disconnect() })
	defer stop()

	actionID := "hangup-" + uuid.NewString()

	cmd := "Action: Hangup\r\n" +
		"Channel: " + channelID + "\r\n" +
		"ActionID: " + actionID + "\r\n" +
		"\r\n"

	response, _, err := c.readActionResponse(cmd)
	if err != nil {
		if isTimeout(err) {
			return false, fmt.Errorf("%w: %v", pbx.ErrTimeout, err)
		}
		return false, fmt.Errorf("hangup '%s' (action '%s'): %v", channelID, actionID, err)
	}

	return response == responseSuccess, nil
}

// Close sends a best effort Logoff and tears the connection down. It is
// a no-op unless Connect succeeded.
func (c *Client) Close() error {
	if !c.connected {
		return nil
	}
	c.connected = false

	_, _, _ = c.readActionResponse("Action: Logoff\r\n\r\n")

	return c.conn.Disconnect()
}

func (c *Client) readBanner() (string, error) {
	var banner string

	err := c.conn.Command("", func(line []byte) (bool, error) {
		banner = string(line)
		return false, nil
	})

	return banner, err
}

func (c *Client) login() error {
	cmd := "Action: Login\r\n" +
		"Username: " + c.cfg.Username + "\r\n" +
		"Secret: " + c.cfg.Secret + "\r\n" +
		"Events: off\r\n" +
		"\r\n"

	response, message, err := c.readActionResponse(cmd)
	if err != nil {
		return fmt.Errorf("%w: login: %v", pbx.ErrConnect, err)
	}

	if response != responseSuccess {
		if message == "" {
			message = "authentication rejected"
		}
		return fmt.Errorf("%w: login as '%s': %s", pbx.ErrConnect, c.cfg.Username, message)
	}

	return nil
}

// readActionResponse writes an action and reads its response frame: the
// Response line decides the outcome, the Message line carries details,
// the empty line terminates the frame.
func (c *Client) readActionResponse(cmd string) (response, message string, err error) {
	var seen bool

	err = c.conn.Command(cmd, func(line []byte) (bool, error) {
		s := string(line)

		switch {
		case strings.HasPrefix(s, "Response:"):
			response = s
			seen = true
		case strings.HasPrefix(s, "Message:"):
			message = strings.TrimSpace(strings.TrimPrefix(s, "Message:"))
		}

		return !(seen && s == ""), nil
	})

	return response, message, err
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.Is(err, os.ErrDeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout())
}

func parseProtocolVersion(banner string) (semver.Version, bool) {
	_, s, ok := strings.Cut(banner, "/")
	if !ok {
		return semver.Version{}, false
	}

	ver, err := semver.ParseTolerant(s)
	if err != nil {
		return semver.Version{}, false
	}

	return ver, true
}
