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
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultPort of the RapidIdentity REST API
	DefaultPort = 443
	// DefaultTimeout of a single request
	DefaultTimeout = time.Second

	apiPath = "/api/rest"
)

// ErrNoHost is returned when a connection is created without a host
var ErrNoHost = errors.New("no RapidIdentity host configured")

var (
	// Success response codes
	CodeOK = ResponseCode{
		HTTP:    http.StatusOK,
		Name:    "ok",
		Success: true,
	}
	CodeCreated = ResponseCode{
		HTTP:    http.StatusCreated,
		Name:    "created",
		Success: true,
	}
	CodeAccepted = ResponseCode{
		HTTP:    http.StatusAccepted,
		Name:    "accepted",
		Success: true,
	}
	CodeNoContent = ResponseCode{
		HTTP:    http.StatusNoContent,
		Name:    "no content",
		Success: true,
	}
	CodeNotModified = ResponseCode{
		HTTP:    http.StatusNotModified,
		Name:    "not modified",
		Success: true,
	}
	// Client error codes
	CodeBadRequest = ResponseCode{
		HTTP: http.StatusBadRequest,
		Name: "bad request",
	}
	CodeUnauthorized = ResponseCode{
		HTTP: http.StatusUnauthorized,
		Name: "unauthorized",
	}
	CodeForbidden = ResponseCode{
		HTTP: http.StatusForbidden,
		Name: "forbidden",
	}
	CodeNotFound = ResponseCode{
		HTTP: http.StatusNotFound,
		Name: "not found",
	}
	CodeMethodNotAllowed = ResponseCode{
		HTTP: http.StatusMethodNotAllowed,
		Name: "method not allowed",
	}
	CodeNotAcceptable = ResponseCode{
		HTTP: http.StatusNotAcceptable,
		Name: "not acceptable",
	}
	CodeConflict = ResponseCode{
		HTTP: http.StatusConflict,
		Name: "conflict",
	}
	CodePreconditionFailed = ResponseCode{
		HTTP: http.StatusPreconditionFailed,
		Name: "precondition failed",
	}
	CodeRequestEntityTooLarge = ResponseCode{
		HTTP: http.StatusRequestEntityTooLarge,
		Name: "request entity too large",
	}
	CodeUnsupportedMediaType = ResponseCode{
		HTTP: http.StatusUnsupportedMediaType,
		Name: "unsupported media type",
	}
	CodeTooManyRequests = ResponseCode{
		HTTP: http.StatusTooManyRequests,
		Name: "too many requests",
	}
	// Server error codes
	CodeInternalServerError = ResponseCode{
		HTTP: http.StatusInternalServerError,
		Name: "internal server error",
	}
	CodeNotImplemented = ResponseCode{
		HTTP: http.StatusNotImplemented,
		Name: "not implemented",
	}
	CodeBadGateway = ResponseCode{
		HTTP: http.StatusBadGateway,
		Name: "bad gateway",
	}
	CodeServiceUnavailable = ResponseCode{
		HTTP: http.StatusServiceUnavailable,
		Name: "service unavailable",
	}
	CodeGatewayTimeout = ResponseCode{
		HTTP: http.StatusGatewayTimeout,
		Name: "gateway timeout",
	}
)

// ResponseCodes list all the mapped response codes
var ResponseCodes = []ResponseCode{
	CodeOK,
	CodeCreated,
	CodeAccepted,
	CodeNoContent,
	CodeNotModified,
	CodeBadRequest,
	CodeUnauthorized,
	CodeForbidden,
	CodeNotFound,
	CodeMethodNotAllowed,
	CodeNotAcceptable,
	CodeConflict,
	CodePreconditionFailed,
	CodeRequestEntityTooLarge,
	CodeUnsupportedMediaType,
	CodeTooManyRequests,
	CodeInternalServerError,
	CodeNotImplemented,
	CodeBadGateway,
	CodeServiceUnavailable,
	CodeGatewayTimeout,
}

// ResponseCode is used to relay the outcome of HTTP requests made to RapidIdentity
type ResponseCode struct {
	HTTP    int
	Name    string
	Success bool
}

// IsWrappedIn will check if the given error is a ResponseError and if it wraps this ResponseCode
func (r ResponseCode) IsWrappedIn(err error) bool {
	var respErr ResponseError
	if errors.As(err, &respErr) {
		return r == respErr.ResponseCode
	}
	return false
}

// ResponseError is used to wrap a ResponseCode into an error
type ResponseError struct {
	ResponseCode
	Message string
}

// Error ensures the error interface is implemented for ResponseError
func (r ResponseError) Error() string {
	if r.Message != "" {
		return r.Name + ": " + r.Message
	}
	return r.Name
}

// responseCodeOf finds the mapped response code for the HTTP status.
// Unmapped statuses get a code named after the status text; only 2xx statuses count as a success.
func responseCodeOf(status int) ResponseCode {
	for _, responseCode := range ResponseCodes {
		if responseCode.HTTP == status {
			return responseCode
		}
	}
	name := strings.ToLower(http.StatusText(status))
	if name == "" {
		name = "status " + strconv.Itoa(status)
	}
	return ResponseCode{
		HTTP:    status,
		Name:    name,
		Success: status >= 200 && status < 300,
	}
}

// serverMessage extracts the message from a RapidIdentity error response, falling back to the raw body
func serverMessage(response []byte) string {
	var reply struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(response, &reply); err == nil {
		if reply.Message != "" {
			return reply.Message
		}
		if reply.Error != "" {
			return reply.Error
		}
	}
	return strings.TrimSpace(string(response))
}

// errorFromStatus will check if the HTTP status is a success or map it to a ResponseError
func errorFromStatus(status int, response []byte) error {
	responseCode := responseCodeOf(status)
	if responseCode.Success {
		return nil
	}
	return ResponseError{
		ResponseCode: responseCode,
		Message:      serverMessage(response),
	}
}

// ConnectionBuilder collects the settings of a single connection to RapidIdentity
type ConnectionBuilder struct {
	host    string
	port    int
	token   string
	timeout time.Duration
	client  *http.Client
}

func NewConnection() *ConnectionBuilder {
	return &ConnectionBuilder{}
}

func (b *ConnectionBuilder) ConnectTo(host string, port int) *ConnectionBuilder {
	b.host = host
	b.port = port
	return b
}

// WithToken authorises every request with the given session token
func (b *ConnectionBuilder) WithToken(token string) *ConnectionBuilder {
	b.token = token
	return b
}

func (b *ConnectionBuilder) TimeoutRequestAfter(timeout time.Duration) *ConnectionBuilder {
	b.timeout = timeout
	return b
}

// UsingHTTPClient sends requests with the given client. The client is never modified.
func (b *ConnectionBuilder) UsingHTTPClient(client *http.Client) *ConnectionBuilder {
	b.client = client
	return b
}

// Create the connection
func (b *ConnectionBuilder) Create() (*Connection, error) {
	host := strings.TrimSpace(b.host)
	if host == "" {
		return nil, ErrNoHost
	}
	port := b.port
	if port <= 0 {
		port = DefaultPort
	}
	timeout := b.timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := b.client
	if client == nil {
		client = &http.Client{}
	}
	return &Connection{
		client:  client,
		baseURL: "https://" + net.JoinHostPort(host, strconv.Itoa(port)) + apiPath,
		token:   b.token,
		timeout: timeout,
	}, nil
}
