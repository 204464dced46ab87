/*
 * Copyright 2026 The rapid-go Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package rapid

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rapididentity/rapid-go/internal/client"
	"github.com/rapididentity/rapid-go/internal/debug"
	"github.com/rs/zerolog"
)

const (
	DefaultPort    = client.DefaultPort
	DefaultTimeout = client.DefaultTimeout
)

var (
	ErrNoHost = client.ErrNoHost
	// ErrMalformedResponse is returned when a response body lacks a field that the operation reads
	ErrMalformedResponse = errors.New("malformed response")
	ErrNoUserID          = errors.New("no user ID")
)

type (
	// ResponseCode is the outcome of a request
	ResponseCode = client.ResponseCode
	// ResponseError is returned when RapidIdentity responds with a failure status
	ResponseError = client.ResponseError
)

var (
	CodeBadRequest          = client.CodeBadRequest
	CodeUnauthorized        = client.CodeUnauthorized
	CodeForbidden           = client.CodeForbidden
	CodeNotFound            = client.CodeNotFound
	CodeConflict            = client.CodeConflict
	CodeTooManyRequests     = client.CodeTooManyRequests
	CodeInternalServerError = client.CodeInternalServerError
	CodeServiceUnavailable  = client.CodeServiceUnavailable
)

// SetDebugLogger routes all debug information of the client to the given logger. The logger is muted by default.
// Set it before making any requests.
func SetDebugLogger(logger zerolog.Logger) {
	debug.Logger = logger
}

// Config of a RapidIdentity REST API. Every operation creates its own connection from the Config.
type Config struct {
	// Host of the RapidIdentity server, required
	Host string
	// Port of the HTTPS listener, defaults to 443
	Port int
	// Token of the session; requests are sent without authorisation if it is empty
	Token string
	// Timeout of a single request, defaults to one second
	Timeout time.Duration
	// HTTPClient sends the requests, e.g. to configure TLS. It is never modified.
	HTTPClient *http.Client
}

// WithToken returns a copy of the configuration that uses the given session token
func (c Config) WithToken(token string) Config {
	c.Token = token
	return c
}

// BaseURL returns the base URL of the REST API
func (c Config) BaseURL() (string, error) {
	conn, err := c.connect()
	if err != nil {
		return "", err
	}
	return conn.BaseURL(), nil
}

func (c Config) connect() (*client.Connection, error) {
	return client.NewConnection().
		ConnectTo(c.Host, c.Port).
		WithToken(c.Token).
		TimeoutRequestAfter(c.Timeout).
		UsingHTTPClient(c.HTTPClient).
		Create()
}

// Object is a JSON object whose shape is defined by the RapidIdentity server
type Object map[string]interface{}

func missingField(field string) error {
	return fmt.Errorf("%w: missing %s", ErrMalformedResponse, field)
}

// exchange makes the request and, if the response has the expected status, decodes the body into reply.
// A response with any other success status returns ok == false without an error.
func exchange(ctx context.Context, cfg Config, request client.Request, expected client.ResponseCode,
	reply interface{}) (ok bool, err error) {
	conn, err := cfg.connect()
	if err != nil {
		return false, err
	}
	response, err := conn.Do(ctx, request)
	if err != nil {
		return false, err
	}
	if code := response.Code(); code.HTTP != expected.HTTP {
		debug.Logger.Debug().
			Str("method", request.Method).
			Str("path", request.Path).
			Int("status", code.HTTP).
			Str("response", code.Name).
			Int("expected", expected.HTTP).
			Bool("authorised", conn.HasToken()).
			Msg("unexpected response status")
		return false, nil
	}
	if reply == nil {
		return true, nil
	}
	if err = response.Decode(reply); err != nil {
		return false, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return true, nil
}
