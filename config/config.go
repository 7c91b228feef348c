// Copyright 2024 Cloudbase Solutions SRL
//
//    Licensed under the Apache License, Version 2.0 (the "License"); you may
//    not use this file except in compliance with the License. You may obtain
//    a copy of the License at
//
//         http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
//    WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
//    License for the specific language governing permissions and limitations
//    under the License.

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

const (
	// DefaultAPIBaseURL is the App Services admin API endpoint.
	DefaultAPIBaseURL APIURL = "https://services.cloud.mongodb.com/api/admin/v3.0"
	// DefaultLogDir is the directory the run log file is created in.
	DefaultLogDir = "logs"
)

// DefaultConfig returns a Config populated with the default values.
// A zero timeout means the transport default is used.
func DefaultConfig() *Config {
	return &Config{
		API: API{
			BaseURL: DefaultAPIBaseURL,
		},
		Logging: Logging{
			Dir: DefaultLogDir,
		},
	}
}

// NewConfig returns a new Config. Values missing from cfgFile
// keep their defaults.
func NewConfig(cfgFile string) (*Config, error) {
	config := DefaultConfig()
	if _, err := toml.DecodeFile(cfgFile, config); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Duration wraps time.Duration so it can be written as "30s" in
// the config file.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrap(err, "parsing duration")
	}
	d.Duration = parsed
	return nil
}

// APIURL represents the base URL of the admin API
type APIURL string

func (a APIURL) IsValid() bool {
	url, err := url.Parse(string(a))
	if err != nil {
		return false
	}
	if url.Scheme != "http" && url.Scheme != "https" {
		return false
	}

	if url.Host == "" {
		return false
	}
	return true
}

// Join appends path elements to the base URL.
func (a APIURL) Join(elem ...string) string {
	base := strings.TrimRight(string(a), "/")
	for _, val := range elem {
		base += "/" + strings.Trim(val, "/")
	}
	return base
}

// API holds the settings used to talk to the admin API
type API struct {
	BaseURL APIURL   `toml:"base_url"`
	Timeout Duration `toml:"timeout"`
}

func (a *API) Validate() error {
	if !a.BaseURL.IsValid() {
		return fmt.Errorf("invalid API base URL: %q", a.BaseURL)
	}
	if a.Timeout.Duration < 0 {
		return fmt.Errorf("invalid API timeout %q", a.Timeout.Duration)
	}
	return nil
}

// Logging holds the run log settings
type Logging struct {
	Dir string `toml:"dir"`
}

func (l *Logging) Validate() error {
	if strings.TrimSpace(l.Dir) == "" {
		return fmt.Errorf("missing log dir")
	}
	return nil
}

type Config struct {
	API     API     `toml:"api"`
	Logging Logging `toml:"logging"`
}

func (c *Config) Validate() error {
	if err := c.API.Validate(); err != nil {
		return errors.Wrap(err, "validating api")
	}

	if err := c.Logging.Validate(); err != nil {
		return errors.Wrap(err, "validating logging")
	}
	return nil
}
