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

package main

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/rapididentity/rapid-go/internal/tokeninfo"
	"github.com/rapididentity/rapid-go/pkg/rapid"
	"golang.org/x/sync/errgroup"
)

type loginCommand struct {
	app      *app
	Username string `short:"u" long:"username" required:"true" description:"RapidIdentity username"`
	Password string `short:"p" long:"password" description:"RapidIdentity password (default: $RAPID_PASSWORD)"`
}

type loginOutput struct {
	Token     string     `json:"token"`
	Subject   string     `json:"subject,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func (c *loginCommand) Execute([]string) error {
	cfg, err := c.app.config()
	if err != nil {
		return err
	}
	password := c.Password
	if password == "" {
		password = c.app.settings.GetString("password")
	}
	if password == "" {
		return errors.New("no password; use --password or RAPID_PASSWORD")
	}
	token, ok, err := rapid.Login(c.app.ctx, cfg.WithToken(""), c.Username, password)
	if err != nil {
		return err
	}
	if !ok {
		return errUnexpectedStatus
	}
	output := loginOutput{Token: token}
	if info, ok := tokeninfo.Parse(token); ok {
		output.Subject = info.Subject
		if !info.Expiry.IsZero() {
			output.ExpiresAt = &info.Expiry
		}
	}
	c.app.log.Info().Str("username", c.Username).Msg("session established")
	return c.app.print(output)
}

type logoutCommand struct {
	app *app
}

func (c *logoutCommand) Execute([]string) error {
	cfg, err := c.app.config()
	if err != nil {
		return err
	}
	ok, err := rapid.Logout(c.app.ctx, cfg)
	if err != nil {
		return err
	}
	if !ok {
		return errUnexpectedStatus
	}
	c.app.log.Info().Msg("session ended")
	return nil
}

type licenseCommand struct {
	app *app
}

func (c *licenseCommand) Execute([]string) error {
	cfg, err := c.app.config()
	if err != nil {
		return err
	}
	return c.app.result(rapid.License(c.app.ctx, cfg))
}

type profileCommand struct {
	app *app
}

func (c *profileCommand) Execute([]string) error {
	cfg, err := c.app.config()
	if err != nil {
		return err
	}
	return c.app.result(rapid.UserProfile(c.app.ctx, cfg))
}

type rolesCommand struct {
	app *app
}

func (c *rolesCommand) Execute([]string) error {
	cfg, err := c.app.config()
	if err != nil {
		return err
	}
	return c.app.result(rapid.UserRoles(c.app.ctx, cfg))
}

type whoamiCommand struct {
	app *app
}

type whoamiOutput struct {
	User         rapid.Object   `json:"user"`
	Roles        []interface{}  `json:"roles"`
	License      rapid.Object   `json:"license"`
	Applications []rapid.Object `json:"applications"`
}

// Execute makes the independent requests concurrently
func (c *whoamiCommand) Execute([]string) error {
	cfg, err := c.app.config()
	if err != nil {
		return err
	}
	var output whoamiOutput
	g, ctx := errgroup.WithContext(c.app.ctx)
	expect := func(ok bool, err error) error {
		if err == nil && !ok {
			return errUnexpectedStatus
		}
		return err
	}
	g.Go(func() (err error) {
		var ok bool
		output.User, ok, err = rapid.UserProfile(ctx, cfg)
		return expect(ok, err)
	})
	g.Go(func() (err error) {
		var ok bool
		output.Roles, ok, err = rapid.UserRoles(ctx, cfg)
		return expect(ok, err)
	})
	g.Go(func() (err error) {
		var ok bool
		output.License, ok, err = rapid.License(ctx, cfg)
		return expect(ok, err)
	})
	g.Go(func() (err error) {
		var ok bool
		output.Applications, ok, err = rapid.UserApplications(ctx, cfg)
		return expect(ok, err)
	})
	if err = g.Wait(); err != nil {
		return err
	}
	return c.app.print(output)
}

type usersCommand struct {
	app          *app
	Criteria     string `short:"c" long:"criteria" description:"Search criteria (default: all users)"`
	DelegationID string `long:"did" description:"Delegation ID"`
}

func (c *usersCommand) Execute([]string) error {
	cfg, err := c.app.config()
	if err != nil {
		return err
	}
	return c.app.result(rapid.Users(c.app.ctx, cfg, rapid.UserSearch{
		Criteria:     c.Criteria,
		DelegationID: c.DelegationID,
	}))
}

type appsCommand struct {
	app *app
}

func (c *appsCommand) Execute([]string) error {
	cfg, err := c.app.config()
	if err != nil {
		return err
	}
	return c.app.result(rapid.UserApplications(c.app.ctx, cfg))
}

type userArgs struct {
	UserID string `positional-arg-name:"user-id" required:"yes"`
}

type aggregatedCommand struct {
	app  *app
	Args userArgs `positional-args:"yes"`
}

func (c *aggregatedCommand) Execute([]string) error {
	cfg, err := c.app.config()
	if err != nil {
		return err
	}
	return c.app.result(rapid.AggregatedProfile(c.app.ctx, cfg, c.Args.UserID))
}

type userDataCommand struct {
	app  *app
	Args userArgs `positional-args:"yes"`
}

func (c *userDataCommand) Execute([]string) error {
	cfg, err := c.app.config()
	if err != nil {
		return err
	}
	return c.app.result(rapid.UserData(c.app.ctx, cfg, c.Args.UserID))
}

type callCommand struct {
	app    *app
	Method string `short:"X" long:"request" default:"GET" description:"HTTP method"`
	Data   string `short:"d" long:"data" description:"JSON request body"`
	Args   struct {
		URL string `positional-arg-name:"url" required:"yes"`
	} `positional-args:"yes"`
}

func (c *callCommand) Execute([]string) error {
	cfg, err := c.app.config()
	if err != nil {
		return err
	}
	request := rapid.Request{Method: c.Method, URL: c.Args.URL}
	if c.Data != "" {
		if !json.Valid([]byte(c.Data)) {
			return errors.New("request body is not valid JSON")
		}
		request.Body = json.RawMessage(c.Data)
	}
	body, ok, err := rapid.CallAPI(c.app.ctx, cfg, request)
	if err != nil {
		return err
	}
	if !ok {
		return errUnexpectedStatus
	}
	if body == nil {
		return nil
	}
	return c.app.print(body)
}
