// Licensed to the Apache Software Foundation (ASF) under one or more
// contributor license agreements.  See the NOTICE file distributed with
// this work for additional information regarding copyright ownership.
// The ASF licenses this file to You under the Apache License, Version 2.0
// (the "License"); you may not use this file except in compliance with
// the License.  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dimuon

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v2"
)

// Config holds the selection thresholds and trigger columns.
type Config struct {
	// Triggers names the two trigger flag columns. An event passes the
	// trigger selection when either is set.
	Triggers []string `yaml:"triggers"`

	MinPt     float32 `yaml:"min_pt"`      // GeV, exclusive.
	MaxAbsEta float32 `yaml:"max_abs_eta"` // Exclusive.
	MaxRelIso float32 `yaml:"max_rel_iso"` // Exclusive.
}

// DefaultConfig returns the standard tight muon selection.
func DefaultConfig() Config {
	return Config{
		Triggers:  []string{ColTriggerIsoMu24, ColTriggerIsoMu18},
		MinPt:     20,
		MaxAbsEta: 2.4,
		MaxRelIso: 0.15,
	}
}

// ConfigError reports an unusable configuration value. It is detected
// before any graph is built.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("dimuon: invalid configuration: %v", e.Err)
	}
	return fmt.Sprintf("dimuon: invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Validate checks that c describes a usable selection.
func (c Config) Validate() error {
	switch {
	case len(c.Triggers) != 2:
		return &ConfigError{Field: "triggers", Err: fmt.Errorf("want 2 trigger columns, got %d", len(c.Triggers))}
	case c.Triggers[0] == "" || c.Triggers[1] == "":
		return &ConfigError{Field: "triggers", Err: fmt.Errorf("empty trigger column name in %q", c.Triggers)}
	case c.MinPt < 0:
		return &ConfigError{Field: "min_pt", Err: fmt.Errorf("%v is negative", c.MinPt)}
	case c.MaxAbsEta <= 0:
		return &ConfigError{Field: "max_abs_eta", Err: fmt.Errorf("%v is not positive", c.MaxAbsEta)}
	case c.MaxRelIso <= 0:
		return &ConfigError{Field: "max_rel_iso", Err: fmt.Errorf("%v is not positive", c.MaxRelIso)}
	}
	return nil
}

// ReadConfig decodes a YAML configuration from r. Fields left out keep their
// defaults; unknown fields are an error.
func ReadConfig(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, &ConfigError{Err: err}
	}
	cfg := DefaultConfig()
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, &ConfigError{Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads the YAML configuration file at path.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, &ConfigError{Field: "config file", Err: err}
	}
	defer f.Close()
	return ReadConfig(f)
}
