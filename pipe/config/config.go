// Copyright 2020 Anapaya Systems
// Copyright 2026 The ddspipe Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config contains the configuration of the ddspipe service. The
// service configuration is a TOML file; the participants, topics and routes
// the pipe works with are described in a separate YAML file that can be
// reloaded at runtime.
package config

import (
	"io"

	"github.com/ddspipe/ddspipe/pipe"
	"github.com/ddspipe/ddspipe/pkg/log"
	"github.com/ddspipe/ddspipe/pkg/private/serrors"
	"github.com/ddspipe/ddspipe/private/config"
	"github.com/ddspipe/ddspipe/private/env"
)

// Defaults.
const (
	DefaultDescriptionFile = "pipe.yml"
	DefaultMaxHistoryDepth = 5000
)

var _ config.Config = (*Config)(nil)

type Config struct {
	General env.General `toml:"general,omitempty"`
	Logging log.Config  `toml:"log,omitempty"`
	Metrics env.Metrics `toml:"metrics,omitempty"`
	API     env.API     `toml:"api,omitempty"`
	Pipe    Pipe        `toml:"pipe,omitempty"`
}

func (cfg *Config) InitDefaults() {
	config.InitAll(
		&cfg.General,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.API,
		&cfg.Pipe,
	)
}

func (cfg *Config) Validate() error {
	return config.ValidateAll(
		&cfg.General,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.API,
		&cfg.Pipe,
	)
}

func (cfg *Config) Sample(dst io.Writer, path config.Path, _ config.CtxMap) {
	config.WriteSample(dst, path, config.CtxMap{config.ID: "ddspipe"},
		&cfg.General,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.API,
		&cfg.Pipe,
	)
}

// DescriptionFile returns the path of the pipe description, resolved against
// the configuration directory.
func (cfg *Config) DescriptionFile() string {
	return cfg.General.Path(cfg.Pipe.Description)
}

var _ config.Config = (*Pipe)(nil)

// Pipe holds the pipe specific configuration.
type Pipe struct {
	// Threads is the number of transmission workers.
	Threads int `toml:"threads,omitempty"`
	// RemoveUnusedEntities creates writers only for participants that have
	// readers on a topic.
	RemoveUnusedEntities bool `toml:"remove_unused_entities,omitempty"`
	// Description is the file path of the pipe description.
	Description string `toml:"description,omitempty"`
	// MaxHistoryDepth caps the history depth of every topic.
	MaxHistoryDepth uint32 `toml:"max_history_depth,omitempty"`
}

func (cfg *Pipe) InitDefaults() {
	if cfg.Threads == 0 {
		cfg.Threads = pipe.DefaultThreads
	}
	if cfg.Description == "" {
		cfg.Description = DefaultDescriptionFile
	}
	if cfg.MaxHistoryDepth == 0 {
		cfg.MaxHistoryDepth = DefaultMaxHistoryDepth
	}
}

func (cfg *Pipe) Validate() error {
	if cfg.Threads < 0 {
		return serrors.New("negative number of threads", "threads", cfg.Threads)
	}
	if cfg.Description == "" {
		return serrors.New("no pipe description specified")
	}
	return nil
}

func (cfg *Pipe) Sample(dst io.Writer, path config.Path, _ config.CtxMap) {
	config.WriteString(dst, pipeSample)
}

func (cfg *Pipe) ConfigName() string {
	return "pipe"
}
