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

package debug

import (
	"context"
	"net/http"
	"net/http/httputil"

	"github.com/rs/zerolog"
)

const redacted = "[REDACTED]"

// Logger receives all debug output of the client. It is muted by default.
var Logger = zerolog.Nop()

// DumpHTTPRoundTrip will dump the given request and response.
// The request body is never included since it may carry credentials and the Authorization header is redacted.
func DumpHTTPRoundTrip(req *http.Request, res *http.Response) (message string) {
	if req != nil {
		// the request context may already be done, e.g. after a timeout
		clone := req.Clone(context.Background())
		if clone.Header.Get("Authorization") != "" {
			clone.Header.Set("Authorization", redacted)
		}
		dump, err := httputil.DumpRequestOut(clone, false)
		message = "*** HTTP Request ***\n"
		if err == nil {
			message += string(dump)
		} else {
			message += "Failed to dump request: " + err.Error()
		}
	}

	if res != nil {
		dump, err := httputil.DumpResponse(res, true)
		if err != nil {
			dump, err = httputil.DumpResponse(res, false)
		}
		message += "*** HTTP Response ***\n"
		if err == nil {
			message += string(dump)
		} else {
			message += "Failed to dump response: " + err.Error()
		}
	}
	return message
}

// LogRoundTrip writes the dump of the round trip to the debug logger together with the failure reason
func LogRoundTrip(reason error, req *http.Request, res *http.Response) {
	if Logger.GetLevel() == zerolog.Disabled {
		return
	}
	event := Logger.Debug()
	if reason != nil {
		event = event.Err(reason)
	}
	if req != nil {
		event = event.Str("method", req.Method).Str("url", req.URL.Redacted())
	}
	if res != nil {
		event = event.Int("status", res.StatusCode)
	}
	event.Msg(DumpHTTPRoundTrip(req, res))
}
