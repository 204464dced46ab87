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

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rapididentity/rapid-go/internal/debug"
)

const (
	httpAccept        = "Accept"
	httpContentType   = "Content-Type"
	httpAuthorization = "Authorization"
	applicationJSON   = "application/json"
)

// Connection to a RapidIdentity REST API
type Connection struct {
	client  *http.Client
	baseURL string
	token   string
	timeout time.Duration
}

// Request describes a single call to the REST API
type Request struct {
	Method string
	// Path relative to the base URL, e.g. "/sessions". Absolute URLs are used as given.
	Path  string
	Query url.Values
	// Body is sent as is when it is a []byte, json.RawMessage or string, otherwise it is encoded as JSON
	Body interface{}
}

// Response holds the outcome of a request
type Response struct {
	StatusCode int
	Body       []byte
}

// Code returns the response code of the response status
func (r Response) Code() ResponseCode {
	return responseCodeOf(r.StatusCode)
}

// Decode the JSON response body into v
func (r Response) Decode(v interface{}) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return fmt.Errorf("empty response body with status %d", r.StatusCode)
	}
	return json.Unmarshal(r.Body, v)
}

// BaseURL of the REST API, https://{host}:{port}/api/rest
func (c *Connection) BaseURL() string {
	return c.baseURL
}

// HasToken returns true if requests are authorised with a session token
func (c *Connection) HasToken() bool {
	return c.token != ""
}

func (c *Connection) requestURL(path string, query url.Values) (string, error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	if !u.IsAbs() {
		u, err = url.Parse(c.baseURL + "/" + strings.TrimPrefix(path, "/"))
		if err != nil {
			return "", err
		}
	}
	if len(query) > 0 {
		q := u.Query()
		for key, values := range query {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func requestBody(body interface{}) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(b), nil
	case json.RawMessage:
		return bytes.NewReader(b), nil
	case string:
		return strings.NewReader(b), nil
	default:
		encoded, err := json.Marshal(b)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(encoded), nil
	}
}

// Do performs exactly one request.
// An error is returned if the request could not be made or if the response status is a failure, in which case
// the error is a ResponseError. The response is returned whenever one was received.
func (c *Connection) Do(ctx context.Context, r Request) (reply Response, err error) {
	u, err := c.requestURL(r.Path, r.Query)
	if err != nil {
		debug.LogRoundTrip(err, nil, nil)
		return reply, err
	}
	body, err := requestBody(r.Body)
	if err != nil {
		debug.LogRoundTrip(err, nil, nil)
		return reply, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	request, err := http.NewRequestWithContext(ctx, r.Method, u, body)
	if err != nil {
		debug.LogRoundTrip(err, nil, nil)
		return reply, err
	}

	// headers are set per request, the http.Client is shared and stays untouched
	request.Header.Set(httpAccept, applicationJSON)
	if body != nil {
		request.Header.Set(httpContentType, applicationJSON)
	}
	if c.HasToken() {
		request.Header.Set(httpAuthorization, "Bearer "+c.token)
	}

	response, err := c.client.Do(request)
	if err != nil {
		debug.LogRoundTrip(err, request, nil)
		return reply, err
	}
	defer response.Body.Close()
	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		debug.LogRoundTrip(err, request, response)
		return reply, err
	}
	response.Body = io.NopCloser(bytes.NewReader(responseBody))

	reply = Response{StatusCode: response.StatusCode, Body: responseBody}
	if err = errorFromStatus(response.StatusCode, responseBody); err != nil {
		debug.LogRoundTrip(err, request, response)
		return reply, err
	}
	return reply, nil
}
