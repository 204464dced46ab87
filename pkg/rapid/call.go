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
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rapididentity/rapid-go/internal/client"
)

// Request is an arbitrary call to the REST API
type Request struct {
	// Method defaults to GET, it is sent in upper case
	Method string
	// URL relative to the base URL, e.g. "/users/123". Absolute URLs are used as given.
	URL string
	// Body is sent as is when it is a []byte, json.RawMessage or string, otherwise it is encoded as JSON
	Body interface{}
}

// CallAPI makes the request and returns the raw JSON body of any success (2xx) response.
// The body is nil if the response had none.
func CallAPI(ctx context.Context, cfg Config, request Request) (json.RawMessage, bool, error) {
	method := strings.ToUpper(strings.TrimSpace(request.Method))
	if method == "" {
		method = http.MethodGet
	}
	conn, err := cfg.connect()
	if err != nil {
		return nil, false, err
	}
	response, err := conn.Do(ctx, client.Request{
		Method: method,
		Path:   request.URL,
		Body:   request.Body,
	})
	if err != nil {
		return nil, false, err
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, false, nil
	}
	if len(response.Body) == 0 {
		return nil, true, nil
	}
	return json.RawMessage(response.Body), true, nil
}
