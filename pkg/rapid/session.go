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
	"net/http"

	"github.com/rapididentity/rapid-go/internal/client"
)

const sessionsPath = "/sessions"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginReply struct {
	Session *struct {
		Token string `json:"token"`
	} `json:"session"`
}

// Login establishes a session with the username and password and returns the session token
func Login(ctx context.Context, cfg Config, username, password string) (token string, ok bool, err error) {
	var reply loginReply
	ok, err = exchange(ctx, cfg, client.Request{
		Method: http.MethodPost,
		Path:   sessionsPath,
		Body:   loginRequest{Username: username, Password: password},
	}, client.CodeOK, &reply)
	if !ok || err != nil {
		return "", ok, err
	}
	if reply.Session == nil || reply.Session.Token == "" {
		return "", false, missingField("session.token")
	}
	return reply.Session.Token, true, nil
}

// Logout ends the session of the configured token
func Logout(ctx context.Context, cfg Config) (ok bool, err error) {
	return exchange(ctx, cfg, client.Request{
		Method: http.MethodDelete,
		Path:   sessionsPath,
	}, client.CodeNoContent, nil)
}
