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
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/rapididentity/rapid-go/internal/client"
)

// AllUsers is the search criteria matching every user visible to the session user
const AllUsers = "**&**"

// UserSearch holds the parameters of a simple user search
type UserSearch struct {
	// Criteria defaults to AllUsers
	Criteria string
	// DelegationID restricts the search to a delegation, optional
	DelegationID string
}

func (s UserSearch) query() url.Values {
	criteria := s.Criteria
	if criteria == "" {
		criteria = AllUsers
	}
	q := url.Values{}
	q.Set("search", "simple")
	q.Set("criteria", criteria)
	if s.DelegationID != "" {
		q.Set("did", s.DelegationID)
	}
	return q
}

// Users searches for the users that match the criteria and that the session user has access to see.
// The shape of the user list is defined by the server, so the body is returned as is.
func Users(ctx context.Context, cfg Config, search UserSearch) (users json.RawMessage, ok bool, err error) {
	ok, err = exchange(ctx, cfg, client.Request{
		Method: http.MethodGet,
		Path:   "/users",
		Query:  search.query(),
	}, client.CodeOK, &users)
	if !ok || err != nil {
		return nil, ok, err
	}
	if bytes.Equal(bytes.TrimSpace(users), []byte("null")) {
		return nil, false, missingField("users")
	}
	return users, true, nil
}

// UserApplications retrieves the applications of the session user
func UserApplications(ctx context.Context, cfg Config) ([]Object, bool, error) {
	var reply struct {
		Applications []Object `json:"applications"`
	}
	ok, err := exchange(ctx, cfg, client.Request{
		Method: http.MethodGet,
		Path:   "/apps/my/applications",
	}, client.CodeOK, &reply)
	if !ok || err != nil {
		return nil, ok, err
	}
	if reply.Applications == nil {
		return nil, false, missingField("applications")
	}
	return reply.Applications, true, nil
}

// AggregatedProfile retrieves the aggregated delegation profile document of a user
func AggregatedProfile(ctx context.Context, cfg Config, userID string) (document DelegationProfileResponse, ok bool, err error) {
	if strings.TrimSpace(userID) == "" {
		return document, false, ErrNoUserID
	}
	ok, err = exchange(ctx, cfg, client.Request{
		Method: http.MethodGet,
		Path:   "/profiles/aggregated/for/" + url.PathEscape(userID),
	}, client.CodeOK, &document)
	return document, ok, err
}

// UserData retrieves the aggregated profile of a user and flattens it with FlattenProfile
func UserData(ctx context.Context, cfg Config, userID string) (FlattenedProfile, bool, error) {
	document, ok, err := AggregatedProfile(ctx, cfg, userID)
	if !ok || err != nil {
		return nil, ok, err
	}
	flattened, err := FlattenProfile(document)
	if err != nil {
		return nil, false, err
	}
	return flattened, true, nil
}
