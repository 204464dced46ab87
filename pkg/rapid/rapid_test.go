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
	"net/http/httptest"
	"testing"

	"github.com/rapididentity/rapid-go/internal/ritest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(server *httptest.Server) Config {
	host, port := ritest.HostPort(server)
	return Config{Host: host, Port: port, HTTPClient: server.Client()}
}

// testSession starts a simple RapidIdentity server, after applying the modifiers, and logs in
func testSession(t *testing.T, modifiers ...func(*ritest.Server)) (*ritest.Server, Config) {
	ri := ritest.NewSimpleServer()
	for _, modify := range modifiers {
		modify(ri)
	}
	server := ri.Start()
	t.Cleanup(server.Close)

	cfg := testConfig(server)
	token, ok, err := Login(context.Background(), cfg, ritest.SimpleTestUsername, ritest.SimpleTestPassword)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, token)
	return ri, cfg.WithToken(token)
}

// testStatusServer responds to every request with the given status and body
func testStatusServer(t *testing.T, code int, body string) Config {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return testConfig(server).WithToken("token")
}

func TestConfig_BaseURL(t *testing.T) {
	u, err := Config{Host: "ri.example.com"}.BaseURL()
	require.NoError(t, err)
	assert.Equal(t, "https://ri.example.com:443/api/rest", u)

	u, err = Config{Host: "ri.example.com", Port: 8443}.BaseURL()
	require.NoError(t, err)
	assert.Equal(t, "https://ri.example.com:8443/api/rest", u)

	_, err = Config{}.BaseURL()
	assert.ErrorIs(t, err, ErrNoHost)
}

func TestLogin(t *testing.T) {
	ri, cfg := testSession(t)
	assert.Equal(t, 1, ri.ActiveSessions())

	_, ok, err := Login(context.Background(), cfg.WithToken(""), ritest.SimpleTestUsername, "wrong")
	assert.False(t, ok)
	assert.True(t, CodeUnauthorized.IsWrappedIn(err), "expected unauthorized; got %v", err)
}

func TestLogin_NoHost(t *testing.T) {
	_, ok, err := Login(context.Background(), Config{}, "jdoe", "pw")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNoHost)
}

func TestLogout(t *testing.T) {
	ri, cfg := testSession(t)
	ctx := context.Background()

	ok, err := Logout(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, ri.ActiveSessions())

	// the session token is no longer valid
	_, _, err = License(ctx, cfg)
	assert.True(t, CodeUnauthorized.IsWrappedIn(err), "expected unauthorized; got %v", err)
	ok, err = Logout(ctx, cfg)
	assert.False(t, ok)
	assert.True(t, CodeUnauthorized.IsWrappedIn(err), "expected unauthorized; got %v", err)
}

func TestBootstrapOperations(t *testing.T) {
	ri, cfg := testSession(t)
	ctx := context.Background()

	license, ok, err := License(ctx, cfg)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Example School District", license["licensee"])

	user, ok, err := UserProfile(ctx, cfg)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ri.UserID, user["id"])
	assert.Equal(t, ritest.SimpleTestUsername, user["username"])

	roles, ok, err := UserRoles(ctx, cfg)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, roles, 2)

	info, ok, err := Bootstrap(ctx, cfg)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, license, info.LicenseInfo)
	require.NotNil(t, info.SessionInfo)
	assert.Equal(t, user, info.SessionInfo.User)
}

func TestBootstrapOperations_MissingFields(t *testing.T) {
	ctx := context.Background()
	cfg := testStatusServer(t, http.StatusOK, `{"sessionInfo":{}}`)

	_, ok, err := License(ctx, cfg)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrMalformedResponse)

	_, ok, err = UserProfile(ctx, cfg)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrMalformedResponse)

	_, ok, err = UserRoles(ctx, cfg)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrMalformedResponse)

	cfg = testStatusServer(t, http.StatusOK, `not json`)
	_, ok, err = Bootstrap(ctx, cfg)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestUsers(t *testing.T) {
	ri, cfg := testSession(t)
	ctx := context.Background()
	var reply struct {
		Users []Object `json:"users"`
	}

	users, ok, err := Users(ctx, cfg, UserSearch{})
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, json.Unmarshal(users, &reply))
	assert.Len(t, reply.Users, 2)
	assert.Equal(t, "simple", ri.LastSearch().Get("search"))
	assert.Equal(t, AllUsers, ri.LastSearch().Get("criteria"))
	assert.False(t, ri.LastSearch().Has("did"))

	users, ok, err = Users(ctx, cfg, UserSearch{Criteria: "smith", DelegationID: "d1"})
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, json.Unmarshal(users, &reply))
	assert.Len(t, reply.Users, 1)
	assert.Equal(t, "smith", ri.LastSearch().Get("criteria"))
	assert.Equal(t, "d1", ri.LastSearch().Get("did"))
}

func TestUsers_ReplyShape(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "array", body: `[{"id":"u1"},{"id":"u2"}]`},
		{name: "object", body: `{"users":[{"id":"u1"}],"total":1}`},
		{name: "empty-array", body: `[]`},
		{name: "null", body: `null`, wantErr: ErrMalformedResponse},
		{name: "not-json", body: `[{"id"`, wantErr: ErrMalformedResponse},
		{name: "empty", body: ``, wantErr: ErrMalformedResponse},
	}
	for _, subtest := range tests {
		t.Run(subtest.name, func(t *testing.T) {
			users, ok, err := Users(context.Background(), testStatusServer(t, http.StatusOK, subtest.body), UserSearch{})
			if subtest.wantErr != nil {
				assert.False(t, ok)
				assert.ErrorIs(t, err, subtest.wantErr)
				assert.Nil(t, users)
				return
			}
			require.NoError(t, err)
			assert.True(t, ok)
			assert.JSONEq(t, subtest.body, string(users))
		})
	}
}

func TestUserApplications(t *testing.T) {
	_, cfg := testSession(t)

	apps, ok, err := UserApplications(context.Background(), cfg)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, apps, 2)
	assert.Equal(t, "Mail", apps[0]["name"])

	_, ok, err = UserApplications(context.Background(), testStatusServer(t, http.StatusOK, `{}`))
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestUserData(t *testing.T) {
	ri, cfg := testSession(t)
	ctx := context.Background()

	data, ok, err := UserData(ctx, cfg, ri.UserID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, FlattenedProfile{
		"first_name":        "Jane",
		"favourite_colours": []string{"red", "blue"},
	}, data)

	document, ok, err := AggregatedProfile(ctx, cfg, ri.UserID)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, document.AggregatedDelegation)
	assert.Len(t, document.AggregatedDelegation.DelegationProfiles, 2)

	_, ok, err = UserData(ctx, cfg, "unknown")
	assert.False(t, ok)
	assert.True(t, CodeNotFound.IsWrappedIn(err), "expected not found; got %v", err)

	_, ok, err = UserData(ctx, cfg, " ")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNoUserID)
}

func TestUserData_MissingDefinition(t *testing.T) {
	ri, cfg := testSession(t, func(ri *ritest.Server) {
		ri.Profiles[ri.UserID] = json.RawMessage(`{"aggregatedDelegation":{"delegationProfiles":[
			{"delegation":{"id":"other_profiles","attributes":[]},
			 "profile":{"attributes":[{"id":"a1","name":"First Name","values":["Jane"]}]}}]}}`)
	})

	_, ok, err := UserData(context.Background(), cfg, ri.UserID)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrMissingDefinition)
}

func TestCallAPI(t *testing.T) {
	ri, cfg := testSession(t)
	ctx := context.Background()

	body, ok, err := CallAPI(ctx, cfg, Request{URL: "/apps/my/applications"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"applications":[{"id":"app1","name":"Mail"},{"id":"app2","name":"Gradebook"}]}`, string(body))

	body, ok, err = CallAPI(ctx, cfg, Request{Method: http.MethodDelete, URL: "/sessions"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, body)
	assert.Zero(t, ri.ActiveSessions())

	_, ok, err = CallAPI(ctx, cfg, Request{URL: "/apps/my/applications"})
	assert.False(t, ok)
	assert.True(t, CodeUnauthorized.IsWrappedIn(err), "expected unauthorized; got %v", err)
}

func TestCallAPI_Body(t *testing.T) {
	received := make(chan map[string]string, 1)
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/rest/sessions", r.URL.Path)
		var got map[string]string
		_ = json.NewDecoder(r.Body).Decode(&got)
		received <- got
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"created":true}`))
	}))
	defer server.Close()

	body, ok, err := CallAPI(context.Background(), testConfig(server), Request{
		Method: http.MethodPost,
		URL:    "/sessions",
		Body:   map[string]string{"username": "jdoe"},
	})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"created":true}`, string(body))
	assert.Equal(t, map[string]string{"username": "jdoe"}, <-received)
}

func TestCallAPI_MethodCase(t *testing.T) {
	received := make(chan string, 1)
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	tests := []struct {
		method string
		expect string
	}{
		{method: "delete", expect: http.MethodDelete},
		{method: "Patch", expect: http.MethodPatch},
		{method: "", expect: http.MethodGet},
	}
	for _, subtest := range tests {
		_, ok, err := CallAPI(context.Background(), testConfig(server), Request{Method: subtest.method, URL: "/things"})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, subtest.expect, <-received)
	}
}

// A success status other than the expected one is not an error but the operation reports !ok
func TestUnexpectedStatus(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		code int
		body string
		call func(Config) (bool, error)
	}{
		{name: "login-created", code: http.StatusCreated, body: `{"session":{"token":"t"}}`,
			call: func(cfg Config) (bool, error) {
				_, ok, err := Login(ctx, cfg, "jdoe", "pw")
				return ok, err
			}},
		{name: "logout-ok", code: http.StatusOK, body: `{}`,
			call: func(cfg Config) (bool, error) {
				return Logout(ctx, cfg)
			}},
		{name: "license-accepted", code: http.StatusAccepted, body: `{"licenseInfo":{}}`,
			call: func(cfg Config) (bool, error) {
				_, ok, err := License(ctx, cfg)
				return ok, err
			}},
		{name: "users-no-content", code: http.StatusNoContent,
			call: func(cfg Config) (bool, error) {
				_, ok, err := Users(ctx, cfg, UserSearch{})
				return ok, err
			}},
		{name: "applications-created", code: http.StatusCreated, body: `{"applications":[]}`,
			call: func(cfg Config) (bool, error) {
				_, ok, err := UserApplications(ctx, cfg)
				return ok, err
			}},
		{name: "userdata-accepted", code: http.StatusAccepted, body: `{}`,
			call: func(cfg Config) (bool, error) {
				_, ok, err := UserData(ctx, cfg, "u1")
				return ok, err
			}},
	}
	for _, subtest := range tests {
		t.Run(subtest.name, func(t *testing.T) {
			ok, err := subtest.call(testStatusServer(t, subtest.code, subtest.body))
			assert.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestFailureStatus(t *testing.T) {
	ctx := context.Background()
	cfg := testStatusServer(t, http.StatusServiceUnavailable, `{"message":"maintenance"}`)

	_, ok, err := Login(ctx, cfg, "jdoe", "pw")
	assert.False(t, ok)
	assert.True(t, CodeServiceUnavailable.IsWrappedIn(err))

	var respErr ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, "maintenance", respErr.Message)

	_, ok, err = CallAPI(ctx, cfg, Request{URL: "/anything"})
	assert.False(t, ok)
	assert.True(t, CodeServiceUnavailable.IsWrappedIn(err))
}
