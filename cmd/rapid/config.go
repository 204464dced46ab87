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
	"errors"
	"fmt"
	"time"

	"github.com/rapididentity/rapid-go/pkg/rapid"
	"github.com/spf13/viper"
)

type globalOptions struct {
	Host       string        `long:"host" description:"RapidIdentity host"`
	Port       int           `long:"port" description:"RapidIdentity HTTPS port (default: 443)"`
	Token      string        `long:"token" description:"Session token"`
	Timeout    time.Duration `long:"timeout" description:"Request timeout (default: 1s)"`
	ConfigFile string        `long:"config" description:"Configuration file (default: ./rapid.yaml or $HOME/.config/rapid/rapid.yaml)"`
	Debug      bool          `long:"debug" description:"Write request dumps of failed requests to stderr"`
}

// load reads the configuration file and RAPID_* environment variables. Command line options take precedence.
func (o globalOptions) load() (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault("port", rapid.DefaultPort)
	v.SetDefault("timeout", rapid.DefaultTimeout)

	// e.g. RAPID_HOST -> host
	v.SetEnvPrefix("RAPID")
	v.AutomaticEnv()

	if o.ConfigFile != "" {
		v.SetConfigFile(o.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", o.ConfigFile, err)
		}
	} else {
		v.SetConfigName("rapid")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/rapid")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	if o.Host != "" {
		v.Set("host", o.Host)
	}
	if o.Port != 0 {
		v.Set("port", o.Port)
	}
	if o.Token != "" {
		v.Set("token", o.Token)
	}
	if o.Timeout != 0 {
		v.Set("timeout", o.Timeout)
	}
	return v, nil
}

func configFrom(v *viper.Viper) rapid.Config {
	return rapid.Config{
		Host:    v.GetString("host"),
		Port:    v.GetInt("port"),
		Token:   v.GetString("token"),
		Timeout: v.GetDuration("timeout"),
	}
}
