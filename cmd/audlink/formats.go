// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/ik5/audlink/formats"
)

type formatsCommand struct {
	stdout io.Writer
}

func (cmd *formatsCommand) Name() string { return "formats" }
func (cmd *formatsCommand) Help() string { return "List the file extensions that can be mixed" }

func (cmd *formatsCommand) Register(*flag.FlagSet) {}

func (cmd *formatsCommand) Run(context.Context, []string) error {
	for _, ext := range formats.NewRegistry().Formats() {
		fmt.Fprintln(cmd.stdout, ext)
	}

	return nil
}
