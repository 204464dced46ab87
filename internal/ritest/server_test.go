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

package ritest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(t *testing.T, handler http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func TestServer_Login(t *testing.T) {
	s := NewSimpleServer()
	router := s.Router()
	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "valid", body: `{"username":"jdoe","password":"Password1!"}`, code: http.StatusOK},
		{name: "wrong-password", body: `{"username":"jdoe","password":"nope"}`, code: http.StatusUnauthorized},
		{name: "unknown-user", body: `{"username":"asmith","password":"Password1!"}`, code: http.StatusUnauthorized},
		{name: "malformed", body: `{`, code: http.StatusBadRequest},
	}
	for _, subtest := range tests {
		t.Run(subtest.name, func(t *testing.T) {
			recorder := doRequest(t, router, http.MethodPost, "/api/rest/sessions", "", subtest.body)
			assert.Equal(t, subtest.code, recorder.Code)
		})
	}

	recorder := doRequest(t, router, http.MethodPost, "/api/rest/sessions", "",
		`{"username":"jdoe","password":"Password1!"}`)
	var reply struct {
		Session struct {
			Token string `json:"token"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &reply))
	assert.True(t, s.verify(reply.Session.Token))
	assert.Equal(t, 2, s.ActiveSessions())
}

func TestServer_Authentication(t *testing.T) {
	s := NewSimpleServer()
	router := s.Router()
	token, err := s.IssueToken(s.UserID)
	require.NoError(t, err)

	other := NewSimpleServer()
	foreign, err := other.IssueToken(s.UserID)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		code  int
	}{
		{name: "valid", token: token, code: http.StatusOK},
		{name: "missing", token: "", code: http.StatusUnauthorized},
		{name: "garbage", token: "not.a.token", code: http.StatusUnauthorized},
		{name: "foreign-signature", token: foreign, code: http.StatusUnauthorized},
	}
	for _, subtest := range tests {
		t.Run(subtest.name, func(t *testing.T) {
			recorder := doRequest(t, router, http.MethodGet, "/api/rest/bootstrapInfo", subtest.token, "")
			assert.Equal(t, subtest.code, recorder.Code)
		})
	}
}

func TestServer_ExpiredSession(t *testing.T) {
	s := NewSimpleServer()
	s.SessionTTL = -time.Hour
	token, err := s.IssueToken(s.UserID)
	require.NoError(t, err)
	assert.False(t, s.verify(token))
}

func TestServer_Logout(t *testing.T) {
	s := NewSimpleServer()
	router := s.Router()
	token, err := s.IssueToken(s.UserID)
	require.NoError(t, err)
	require.Equal(t, 1, s.ActiveSessions())

	recorder := doRequest(t, router, http.MethodDelete, "/api/rest/sessions", token, "")
	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Zero(t, s.ActiveSessions())

	recorder = doRequest(t, router, http.MethodGet, "/api/rest/bootstrapInfo", token, "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestServer_SearchUsers(t *testing.T) {
	s := NewSimpleServer()
	router := s.Router()
	token, err := s.IssueToken(s.UserID)
	require.NoError(t, err)

	tests := []struct {
		name     string
		criteria string
		expect   int
	}{
		{name: "all", criteria: AllUsersCriteria, expect: 2},
		{name: "substring", criteria: "smith", expect: 1},
		{name: "case-insensitive", criteria: "JANE", expect: 1},
		{name: "no-match", criteria: "zzz", expect: 0},
	}
	for _, subtest := range tests {
		t.Run(subtest.name, func(t *testing.T) {
			query := url.Values{"search": []string{"simple"}, "criteria": []string{subtest.criteria}}
			recorder := doRequest(t, router, http.MethodGet, "/api/rest/users?"+query.Encode(), token, "")
			require.Equal(t, http.StatusOK, recorder.Code)
			var reply struct {
				Users []map[string]interface{} `json:"users"`
			}
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &reply))
			assert.Len(t, reply.Users, subtest.expect)
			assert.Equal(t, subtest.criteria, s.LastSearch().Get("criteria"))
		})
	}

	recorder := doRequest(t, router, http.MethodGet, "/api/rest/users?search=advanced", token, "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestServer_AggregatedProfile(t *testing.T) {
	s := NewSimpleServer()
	router := s.Router()
	token, err := s.IssueToken(s.UserID)
	require.NoError(t, err)

	recorder := doRequest(t, router, http.MethodGet, "/api/rest/profiles/aggregated/for/"+s.UserID, token, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, SimpleAggregatedProfile, recorder.Body.String())

	recorder = doRequest(t, router, http.MethodGet, "/api/rest/profiles/aggregated/for/unknown", token, "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestHostPort(t *testing.T) {
	server := NewSimpleServer().Start()
	defer server.Close()
	host, port := HostPort(server)
	assert.Equal(t, "127.0.0.1", host)
	assert.NotZero(t, port)
}
