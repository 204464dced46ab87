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
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dchest/uniuri"
	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"
	"gopkg.in/square/go-jose.v2"
	"gopkg.in/square/go-jose.v2/jwt"
)

const (
	SimpleTestUsername = "jdoe"
	SimpleTestPassword = "Password1!"
	// AllUsersCriteria matches every user in a simple search
	AllUsersCriteria = "**&**"
)

// Server mocks the endpoints of the RapidIdentity REST API
type Server struct {
	Username     string
	Password     string
	UserID       string
	User         map[string]interface{}
	Roles        []interface{}
	License      map[string]interface{}
	Users        []map[string]interface{}
	Applications []map[string]interface{}
	// Profiles holds the aggregated delegation document of each user ID
	Profiles   map[string]json.RawMessage
	SessionTTL time.Duration

	mu         sync.Mutex
	lastSearch url.Values
	sessions   *cache.Cache
	signingKey []byte
}

// NewSimpleServer creates a test server that holds a single user with a license, roles, applications and an
// aggregated profile
func NewSimpleServer() *Server {
	userID := uniuri.NewLen(24)
	return &Server{
		Username: SimpleTestUsername,
		Password: SimpleTestPassword,
		UserID:   userID,
		User: map[string]interface{}{
			"id":        userID,
			"username":  SimpleTestUsername,
			"firstName": "Jane",
			"lastName":  "Doe",
		},
		Roles: []interface{}{
			map[string]interface{}{"id": "r1", "name": "Portal User"},
			map[string]interface{}{"id": "r2", "name": "Help Desk"},
		},
		License: map[string]interface{}{
			"licensee":   "Example School District",
			"expiration": "2027-06-30",
			"modules":    []interface{}{"portal", "connect"},
		},
		Users: []map[string]interface{}{
			{"id": userID, "username": SimpleTestUsername, "name": "Jane Doe"},
			{"id": uniuri.NewLen(24), "username": "asmith", "name": "Alex Smith"},
		},
		Applications: []map[string]interface{}{
			{"id": "app1", "name": "Mail"},
			{"id": "app2", "name": "Gradebook"},
		},
		Profiles: map[string]json.RawMessage{
			userID: json.RawMessage(SimpleAggregatedProfile),
		},
		SessionTTL: 15 * time.Minute,
		sessions:   cache.New(15*time.Minute, time.Minute),
		signingKey: []byte(uniuri.NewLen(32)),
	}
}

// SimpleAggregatedProfile contains one "other_profiles" delegation and one that is not flattened
const SimpleAggregatedProfile = `{
  "aggregatedDelegation": {
    "delegationProfiles": [
      {
        "delegation": {
          "id": "other_profiles",
          "attributes": [
            {"galItem": {"id": "a1", "allowMultiValue": false}},
            {"galItem": {"id": "a2", "allowMultiValue": true}}
          ]
        },
        "profile": {
          "attributes": [
            {"id": "a1", "name": "First Name", "values": ["Jane"]},
            {"id": "a2", "name": "Favourite Colours", "values": ["red", "blue"]}
          ]
        }
      },
      {
        "delegation": {
          "id": "staff_profile",
          "attributes": [
            {"galItem": {"id": "b1", "allowMultiValue": false}}
          ]
        },
        "profile": {
          "attributes": [
            {"id": "b1", "name": "Employee Number", "values": ["E-1001"]}
          ]
        }
      }
    ]
  }
}`

// Router returns the handler serving the REST API under /api/rest
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Route("/api/rest", func(r chi.Router) {
		r.Post("/sessions", s.login)
		r.Group(func(r chi.Router) {
			r.Use(s.authenticated)
			r.Delete("/sessions", s.logout)
			r.Get("/bootstrapInfo", s.bootstrapInfo)
			r.Get("/users", s.searchUsers)
			r.Get("/apps/my/applications", s.applications)
			r.Get("/profiles/aggregated/for/{userID}", s.aggregatedProfile)
		})
	})
	return router
}

// Start the test server over TLS. Use the Client of the returned server to trust its certificate.
func (s *Server) Start() *httptest.Server {
	return httptest.NewTLSServer(s.Router())
}

// HostPort returns the host and port that the test server listens on
func HostPort(server *httptest.Server) (host string, port int) {
	u, err := url.Parse(server.URL)
	if err != nil {
		return "", 0
	}
	port, _ = strconv.Atoi(u.Port())
	return u.Hostname(), port
}

// ActiveSessions returns the number of sessions that have not expired or been logged out
func (s *Server) ActiveSessions() int {
	return s.sessions.ItemCount()
}

// LastSearch returns the query of the most recent user search
func (s *Server) LastSearch() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSearch
}

// IssueToken creates a session for the given user ID without a login request
func (s *Server) IssueToken(userID string) (string, error) {
	now := time.Now()
	sig, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: s.signingKey},
		(&jose.SignerOptions{}).WithType("JWT"))
	if err != nil {
		return "", err
	}
	token, err := jwt.Signed(sig).Claims(jwt.Claims{
		ID:       uniuri.New(),
		Subject:  userID,
		IssuedAt: jwt.NewNumericDate(now),
		Expiry:   jwt.NewNumericDate(now.Add(s.SessionTTL)),
	}).CompactSerialize()
	if err != nil {
		return "", err
	}
	s.sessions.Set(token, userID, s.SessionTTL)
	return token, nil
}

func writeJSON(writer http.ResponseWriter, code int, v interface{}) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(code)
	_ = json.NewEncoder(writer).Encode(v)
}

func writeError(writer http.ResponseWriter, code int, message string) {
	writeJSON(writer, code, map[string]string{"message": message})
}

func bearerToken(request *http.Request) string {
	auth := request.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}

// verify checks the token signature and expiry and that the session is still active
func (s *Server) verify(token string) bool {
	parsed, err := jwt.ParseSigned(token)
	if err != nil {
		return false
	}
	var claims jwt.Claims
	if err = parsed.Claims(s.signingKey, &claims); err != nil {
		return false
	}
	if err = claims.Validate(jwt.Expected{Time: time.Now()}); err != nil {
		return false
	}
	_, ok := s.sessions.Get(token)
	return ok
}

func (s *Server) authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if !s.verify(bearerToken(request)) {
			writeError(writer, http.StatusUnauthorized, "invalid session")
			return
		}
		next.ServeHTTP(writer, request)
	})
}

func (s *Server) login(writer http.ResponseWriter, request *http.Request) {
	var credentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(request.Body).Decode(&credentials); err != nil {
		writeError(writer, http.StatusBadRequest, "invalid login request")
		return
	}
	if credentials.Username != s.Username || credentials.Password != s.Password {
		writeError(writer, http.StatusUnauthorized, "invalid username or password")
		return
	}
	token, err := s.IssueToken(s.UserID)
	if err != nil {
		writeError(writer, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(writer, http.StatusOK, map[string]interface{}{
		"session": map[string]string{"token": token},
	})
}

func (s *Server) logout(writer http.ResponseWriter, request *http.Request) {
	s.sessions.Delete(bearerToken(request))
	writer.WriteHeader(http.StatusNoContent)
}

func (s *Server) bootstrapInfo(writer http.ResponseWriter, request *http.Request) {
	writeJSON(writer, http.StatusOK, map[string]interface{}{
		"licenseInfo": s.License,
		"sessionInfo": map[string]interface{}{
			"user":  s.User,
			"roles": s.Roles,
		},
	})
}

func (s *Server) searchUsers(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()
	s.mu.Lock()
	s.lastSearch = query
	s.mu.Unlock()
	if query.Get("search") != "simple" {
		writeError(writer, http.StatusBadRequest, "unsupported search type")
		return
	}
	criteria := strings.ToLower(query.Get("criteria"))
	users := make([]map[string]interface{}, 0, len(s.Users))
	for _, user := range s.Users {
		if criteria == AllUsersCriteria || matches(user, criteria) {
			users = append(users, user)
		}
	}
	writeJSON(writer, http.StatusOK, map[string]interface{}{"users": users})
}

func matches(user map[string]interface{}, criteria string) bool {
	for _, v := range user {
		if str, ok := v.(string); ok && strings.Contains(strings.ToLower(str), criteria) {
			return true
		}
	}
	return false
}

func (s *Server) applications(writer http.ResponseWriter, request *http.Request) {
	writeJSON(writer, http.StatusOK, map[string]interface{}{"applications": s.Applications})
}

func (s *Server) aggregatedProfile(writer http.ResponseWriter, request *http.Request) {
	profile, ok := s.Profiles[chi.URLParam(request, "userID")]
	if !ok {
		writeError(writer, http.StatusNotFound, "user not found")
		return
	}
	writer.Header().Set("Content-Type", "application/json")
	_, _ = writer.Write(profile)
}
