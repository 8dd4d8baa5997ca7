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

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ddspipe/ddspipe/pipe/config"
	"github.com/ddspipe/ddspipe/pkg/dds"
)

func newRoutesCommand() *cobra.Command {
	var flags struct {
		topic   string
		typ     string
		noColor bool
	}
	cmd := &cobra.Command{
		Use:   "routes <description>",
		Short: "Display the routing table of a pipe description",
		Example: "  ddspipe routes pipe.yml\n" +
			"  ddspipe routes pipe.yml --topic rt/chatter --type std_msgs::msg::String",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := config.LoadDescription(args[0])
			if err != nil {
				return err
			}
			var topic *dds.TopicKey
			if flags.topic != "" {
				topic = &dds.TopicKey{Name: flags.topic, Type: flags.typ}
			}
			renderRoutes(cmd.OutOrStdout(), desc, topic, !flags.noColor)
			return nil
		},
	}
	addTopicFlags(cmd.Flags(), &flags.topic, &flags.typ)
	cmd.Flags().BoolVar(&flags.noColor, "no-color", !isatty.IsTerminal(os.Stdout.Fd()),
		"Disable colored output")
	return cmd
}

func addTopicFlags(fs *pflag.FlagSet, topic, typ *string) {
	fs.StringVar(topic, "topic", "", "Resolve the routes of this topic instead of the generic ones")
	fs.StringVar(typ, "type", "", "Type of the topic")
}

// renderRoutes prints every participant with the participants its readers
// forward to. If topic is set, its specific routes are used when present.
func renderRoutes(w io.Writer, desc *config.Description, topic *dds.TopicKey, colored bool) {
	repeater := color.New(color.FgHiCyan)
	if colored {
		repeater.EnableColor()
	} else {
		repeater.DisableColor()
	}

	routes := desc.RoutesConfig()
	if topic != nil {
		routes = desc.TopicRoutesConfig().For(*topic, routes)
	}
	participants := desc.Repeaters()
	table := routes.ReadersToWriters(participants)

	var rows [][]string
	for _, id := range participants.IDs() {
		dsts := make([]string, 0, len(table[id]))
		for _, dst := range table[id] {
			dsts = append(dsts, string(dst))
		}
		name := string(id)
		if participants[id] {
			name = repeater.Sprint(id)
		}
		rows = append(rows, []string{
			name,
			fmt.Sprintf("%v", participants[id]),
			strings.Join(dsts, ","),
		})
	}
	tw := tablewriter.NewWriter(w)
	tw.SetAutoWrapText(false)
	tw.SetBorder(false)
	tw.SetHeaderLine(false)
	tw.SetCenterSeparator("")
	tw.SetColumnSeparator("")
	tw.SetRowSeparator("")
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetHeader([]string{"PARTICIPANT", "REPEATER", "WRITES TO"})
	tw.AppendBulk(rows)
	tw.Render()
}
