// SPDX-License-Identifier: GPL-3.0-or-later

package web

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
)

// DoHTTP returns a new Client that executes requests with the given http.Client.
func DoHTTP(httpClient *http.Client) *Client {
	return &Client{httpClient: httpClient}
}

// Client executes HTTP requests and decodes responses.
type Client struct {
	httpClient *http.Client
	onNokCode  func(resp *http.Response) (bool, error)
}

// OnNokCode sets a hook that is called when the response status code is not 200.
// The hook returns whether the code should be accepted anyway and an optional
// error to attach to the failure.
func (c *Client) OnNokCode(fn func(resp *http.Response) (bool, error)) *Client {
	c.onNokCode = fn
	return c
}

// Request executes the request and passes the response body to the parse
// function. The body is always drained and closed before returning.
func (c *Client) Request(req *http.Request, parse func(body io.Reader) error) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error on HTTP request '%s': %w", req.URL, err)
	}

	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		var ok bool
		var nokErr error

		if c.onNokCode != nil {
			ok, nokErr = c.onNokCode(resp)
		}
		if nokErr != nil {
			return fmt.Errorf("'%s' returned HTTP status code: %d (%v)", req.URL, resp.StatusCode, nokErr)
		}
		if !ok {
			return fmt.Errorf("'%s' returned HTTP status code: %d", req.URL, resp.StatusCode)
		}
	}

	if parse != nil {
		if err := parse(resp.Body); err != nil {
			return fmt.Errorf("error on parsing response from '%s': %v", req.URL, err)
		}
	}

	return nil
}

// RequestJSON executes the request and decodes the response body into dst as JSON.
func (c *Client) RequestJSON(req *http.Request, dst any) error {
	return c.Request(req, func(body io.Reader) error {
		return json.NewDecoder(body).Decode(dst)
	})
}

// RequestXML executes the request and decodes the response body into dst as XML.
func (c *Client) RequestXML(req *http.Request, dst any) error {
	return c.Request(req, func(body io.Reader) error {
		return xml.NewDecoder(body).Decode(dst)
	})
}

func closeBody(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}
}
