// SPDX-License-Identifier: GPL-3.0-or-later

// Package ari talks to the switch over its REST interface. It serves
// the same contract as the manager protocol transport: channel objects
// are flattened into dotted lower-case field maps so the matcher treats
// both transports alike.
package ari

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/dialtonehq/callcheck/internal/pbx"
	"github.com/dialtonehq/callcheck/logger"
	"github.com/dialtonehq/callcheck/pkg/web"
)

// Config holds the REST endpoint and credentials. The URL is the API
// base, e.g. http://127.0.0.1:8088/ari.
type Config struct {
	web.HTTPConfig `yaml:",inline"`
}

// New creates a REST transport. Connect must be called before any other
// operation.
func New(cfg Config, log *logger.Logger) *Client {
	return &Client{
		Logger: log,
		cfg:    cfg,
	}
}

// Client is a REST session with the switch.
type Client struct {
	*logger.Logger

	cfg        Config
	httpClient *http.Client
}

// Connect builds the HTTP client. The REST interface has no handshake,
// so failures here are configuration problems (TLS material, proxy URL).
func (c *Client) Connect(_ context.Context) error {
	httpClient, err := web.NewHTTPClient(c.cfg.ClientConfig)
	if err != nil {
		return fmt.Errorf("%w: %v", pbx.ErrConnect, err)
	}

	c.httpClient = httpClient

	return nil
}

// FetchChannels lists the live channels via GET {base}/channels.
func (c *Client) FetchChannels(ctx context.Context) ([]pbx.ChannelRecord, error) {
	req, err := web.NewHTTPRequestWithPath(c.cfg.RequestConfig, "channels")
	if err != nil {
		return nil, fmt.Errorf("creating channels request: %v", err)
	}
	req = req.WithContext(ctx)

	var body []byte

	err = web.DoHTTP(c.httpClient).Request(req, func(r io.Reader) error {
		bs, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		body = bs
		return nil
	})
	if err != nil {
		return nil, classifyRequestError(err)
	}

	var records []pbx.ChannelRecord

	gjson.ParseBytes(body).ForEach(func(_, ch gjson.Result) bool {
		rec := flattenChannel(ch)
		if _, ok := rec["id"]; ok {
			records = append(records, rec)
		}
		return true
	})

	c.Debugf("received %d channel records", len(records))

	return records, nil
}

// Hangup deletes the channel via DELETE {base}/channels/{id}. A 404
// means the channel is already gone and reports false without an error.
func (c *Client) Hangup(ctx context.Context, channelID string) (bool, error) {
	cfg := c.cfg.RequestConfig.Copy()
	cfg.Method = http.MethodDelete

	req, err := web.NewHTTPRequestWithPath(cfg, "channels/"+url.PathEscape(channelID))
	if err != nil {
		return false, fmt.Errorf("creating hangup request: %v", err)
	}
	req = req.WithContext(ctx)

	var gone bool

	err = web.DoHTTP(c.httpClient).OnNokCode(func(resp *http.Response) (bool, error) {
		switch resp.StatusCode {
		case http.StatusNoContent:
			return true, nil
		case http.StatusNotFound:
			gone = true
			return true, nil
		}
		return false, nil
	}).Request(req, nil)
	if err != nil {
		return false, classifyRequestError(err)
	}

	if gone {
		c.Debugf("channel '%s' not found, treating hangup as done", channelID)
		return false, nil
	}

	return true, nil
}

// Close drops the client's idle connections.
func (c *Client) Close() error {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
	return nil
}

// classifyRequestError maps transport-level failures onto the shared
// taxonomy. Responses with unexpected status codes pass through: the
// switch answered, so the session is neither down nor timed out.
func classifyRequestError(err error) error {
	var uerr *url.Error

	if !errors.As(err, &uerr) {
		return err
	}
	if uerr.Timeout() || errors.Is(uerr, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", pbx.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", pbx.ErrConnect, err)
}

func flattenChannel(ch gjson.Result) pbx.ChannelRecord {
	rec := make(pbx.ChannelRecord)
	flattenInto(rec, "", ch)
	return rec
}

// flattenInto lowers object keys and joins nested ones with dots, so
// {"caller": {"number": "123"}} becomes caller.number. Arrays carry no
// channel identity fields and are skipped.
func flattenInto(rec pbx.ChannelRecord, prefix string, v gjson.Result) {
	v.ForEach(func(key, value gjson.Result) bool {
		name := strings.ToLower(key.String())
		if prefix != "" {
			name = prefix + "." + name
		}

		switch {
		case value.IsObject():
			flattenInto(rec, name, value)
		case value.IsArray():
		default:
			rec[name] = value.String()
		}

		return true
	})
}
