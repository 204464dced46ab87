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

// Command rapid calls the RapidIdentity REST API from the command line.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/rapididentity/rapid-go/pkg/rapid"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

var errUnexpectedStatus = errors.New("unexpected response from RapidIdentity")

// app is shared by all commands
type app struct {
	Options globalOptions

	ctx        context.Context
	out        io.Writer
	log        zerolog.Logger
	httpClient *http.Client
	settings   *viper.Viper
}

// config returns the RapidIdentity configuration of the command line, file and environment
func (a *app) config() (rapid.Config, error) {
	v, err := a.Options.load()
	if err != nil {
		return rapid.Config{}, err
	}
	a.settings = v
	cfg := configFrom(v)
	cfg.HTTPClient = a.httpClient
	if a.Options.Debug {
		a.log = a.log.Level(zerolog.DebugLevel)
		rapid.SetDebugLogger(a.log)
	}
	if cfg.Host == "" {
		return cfg, fmt.Errorf("%w; use --host, RAPID_HOST or the config file", rapid.ErrNoHost)
	}
	return cfg, nil
}

// print writes the value as indented JSON
func (a *app) print(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(b))
	return err
}

// result prints the value of an operation or converts its outcome into an error
func (a *app) result(v interface{}, ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return errUnexpectedStatus
	}
	return a.print(v)
}

func newParser(a *app) *flags.Parser {
	parser := flags.NewParser(&a.Options, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "rapid"
	commands := []struct {
		name, short, long string
		data              interface{}
	}{
		{"login", "Establish a session", "Log in with username and password and print the session token", &loginCommand{app: a}},
		{"logout", "End the session", "Log out the session of the token", &logoutCommand{app: a}},
		{"license", "Show the license", "Print the active RapidIdentity license", &licenseCommand{app: a}},
		{"profile", "Show the session user", "Print the profile of the session user", &profileCommand{app: a}},
		{"roles", "Show the session user's roles", "Print the roles of the session user", &rolesCommand{app: a}},
		{"whoami", "Show the session", "Print profile, roles, license and applications of the session user", &whoamiCommand{app: a}},
		{"users", "Search users", "Search the users visible to the session user", &usersCommand{app: a}},
		{"apps", "Show the session user's applications", "Print the applications of the session user", &appsCommand{app: a}},
		{"aggregated", "Show an aggregated profile", "Print the aggregated delegation profile document of a user", &aggregatedCommand{app: a}},
		{"userdata", "Show a flattened profile", "Print the flattened aggregated profile of a user", &userDataCommand{app: a}},
		{"call", "Call the REST API", "Make an arbitrary request relative to the REST API base URL", &callCommand{app: a}},
	}
	for _, c := range commands {
		if _, err := parser.AddCommand(c.name, c.short, c.long, c.data); err != nil {
			panic(err)
		}
	}
	return parser
}

func newLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger().
		Level(zerolog.InfoLevel)
}

// run the command line and return the exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer, httpClient *http.Client) int {
	a := &app{
		ctx:        ctx,
		out:        stdout,
		log:        newLogger(stderr),
		httpClient: httpClient,
	}
	parser := newParser(a)
	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			_, _ = fmt.Fprintln(stdout, err)
			return 0
		}
		a.log.Error().Err(err).Msg("command failed")
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, nil)
	stop()
	os.Exit(code)
}
