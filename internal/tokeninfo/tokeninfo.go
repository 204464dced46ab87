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

// Package tokeninfo reads the claims of session tokens that are signed JSON Web Tokens.
// The claims are NOT verified; use them for display only.
package tokeninfo

import (
	"time"

	"gopkg.in/square/go-jose.v2/jwt"
)

// Info about a session token
type Info struct {
	Subject  string
	IssuedAt time.Time
	Expiry   time.Time
}

// Expired returns true if the token has an expiry before the given time
func (i Info) Expired(now time.Time) bool {
	return !i.Expiry.IsZero() && now.After(i.Expiry)
}

// unsafeClaims deserialises the claims of the token without verifying them with the signature
func unsafeClaims(rawToken string) (claims jwt.Claims, ok bool) {
	token, err := jwt.ParseSigned(rawToken)
	if err != nil {
		return claims, false
	}

	if err := token.UnsafeClaimsWithoutVerification(&claims); err != nil {
		return claims, false
	}
	return claims, true
}

// Parse the token. ok is false if the token is opaque.
func Parse(rawToken string) (info Info, ok bool) {
	claims, ok := unsafeClaims(rawToken)
	if !ok {
		return info, false
	}
	info.Subject = claims.Subject
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time()
	}
	if claims.Expiry != nil {
		info.Expiry = claims.Expiry.Time()
	}
	return info, true
}
