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

// Package rapid provides a client for the RapidIdentity REST API.
// Use it to establish sessions, read the license, profile and roles of the session user, search users and
// read the aggregated profile of a user.
//
// Every operation takes a Config and makes exactly one request. Operations are independent of each other and
// may be called concurrently.
//
//   cfg := rapid.Config{Host: "ri.example.com"}
//
//   token, ok, err := rapid.Login(ctx, cfg, "jdoe", password)
//   if err != nil || !ok {
//       ...
//   }
//   cfg = cfg.WithToken(token)
//
//   roles, ok, err := rapid.UserRoles(ctx, cfg)
//
// Results
//
// An operation returns an error if the request could not be made, if RapidIdentity responds with a failure
// status or if the response lacks the data the operation reads. Failure statuses are reported as a
// ResponseError; test for a specific one with the response codes:
//
//   if rapid.CodeUnauthorized.IsWrappedIn(err) {
//       // log in again
//   }
//
// A success status other than the one the operation expects is not an error; the operation returns ok == false.
//
// Aggregated profiles
//
// UserData flattens the aggregated profile of a user into a map from attribute name to value. Only the
// "other_profiles" delegation contributes. Names are lower-cased with spaces replaced by underscores:
//
//   data, ok, err := rapid.UserData(ctx, cfg, userID)
//   firstName, _ := data.String("first_name")
//
// Debugging
//
// Failed requests are written to a muted zerolog logger. Assign your own with SetDebugLogger.
package rapid
