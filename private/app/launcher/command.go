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

package launcher

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ddspipe/ddspipe/private/app/command"
	libconfig "github.com/ddspipe/ddspipe/private/config"
)

func newCommandTemplate(executable, shortName string, config libconfig.Sampler) *cobra.Command {
	cmd := &cobra.Command{
		Use:   executable,
		Short: shortName,
		Example: fmt.Sprintf("  %[1]s --config %[1]s.toml\n"+
			"  %[1]s sample config > %[1]s.toml", executable),
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
	}
	cmd.Flags().String(cfgConfigFile, "", "Configuration file (required)")
	if err := cmd.MarkFlagRequired(cfgConfigFile); err != nil {
		panic(err)
	}
	cmd.AddCommand(newSample(executable, config), command.NewGendocs())
	return cmd
}

func newSample(executable string, config libconfig.Sampler) *cobra.Command {
	sample := &cobra.Command{
		Use:   "sample",
		Short: "Display sample files",
		Args:  cobra.NoArgs,
	}
	sample.AddCommand(&cobra.Command{
		Use:   "config",
		Short: "Display sample configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.Sample(cmd.OutOrStdout(), nil, libconfig.CtxMap{libconfig.ID: executable})
			return nil
		},
	})
	return sample
}
