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

// BootstrapInfo describes the active license and the session of the token
type BootstrapInfo struct {
	LicenseInfo Object       `json:"licenseInfo"`
	SessionInfo *SessionInfo `json:"sessionInfo"`
}

type SessionInfo struct {
	User  Object        `json:"user"`
	Roles []interface{} `json:"roles"`
}

// Bootstrap retrieves the bootstrap information of the session
func Bootstrap(ctx context.Context, cfg Config) (info BootstrapInfo, ok bool, err error) {
	ok, err = exchange(ctx, cfg, client.Request{
		Method: http.MethodGet,
		Path:   "/bootstrapInfo",
	}, client.CodeOK, &info)
	return info, ok, err
}

// License retrieves the active RapidIdentity license
func License(ctx context.Context, cfg Config) (Object, bool, error) {
	info, ok, err := Bootstrap(ctx, cfg)
	if !ok || err != nil {
		return nil, ok, err
	}
	if info.LicenseInfo == nil {
		return nil, false, missingField("licenseInfo")
	}
	return info.LicenseInfo, true, nil
}

// UserProfile retrieves the profile of the session user
func UserProfile(ctx context.Context, cfg Config) (Object, bool, error) {
	info, ok, err := Bootstrap(ctx, cfg)
	if !ok || err != nil {
		return nil, ok, err
	}
	if info.SessionInfo == nil || info.SessionInfo.User == nil {
		return nil, false, missingField("sessionInfo.user")
	}
	return info.SessionInfo.User, true, nil
}

// UserRoles retrieves the RapidIdentity roles of the session user
func UserRoles(ctx context.Context, cfg Config) ([]interface{}, bool, error) {
	info, ok, err := Bootstrap(ctx, cfg)
	if !ok || err != nil {
		return nil, ok, err
	}
	if info.SessionInfo == nil || info.SessionInfo.Roles == nil {
		return nil, false, missingField("sessionInfo.roles")
	}
	return info.SessionInfo.Roles, true, nil
}
