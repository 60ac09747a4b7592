// SPDX-License-Identifier: EPL-2.0

// Command audlink bounces audio files through a hub into one WAV mix.
//
//	audlink mix -o mix.wav drums.wav bass.mp3:0.8:-0.3
//	audlink formats
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
)

const (
	successExitCode = 0
	errorExitCode   = 1
)

type command interface {
	Name() string
	Help() string
	Register(fs *flag.FlagSet)
	Run(ctx context.Context, args []string) error
}

type app struct {
	stdout   io.Writer
	stderr   io.Writer
	commands []command
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout: stdout,
		stderr: stderr,
		commands: []command{
			&mixCommand{stdout: stdout},
			&formatsCommand{stdout: stdout},
		},
	}
}

func (a *app) run(ctx context.Context, args []string) int {
	if len(args) < 1 {
		a.printUsage()
		return errorExitCode
	}

	name, rest := args[0], args[1:]
	for _, cmd := range a.commands {
		if cmd.Name() != name {
			continue
		}

		fs := flag.NewFlagSet(name, flag.ContinueOnError)
		fs.SetOutput(a.stderr)
		cmd.Register(fs)
		if err := fs.Parse(rest); err != nil {
			return errorExitCode
		}

		if err := cmd.Run(ctx, fs.Args()); err != nil {
			fmt.Fprintf(a.stderr, "%s: %v\n", name, err)
			return errorExitCode
		}

		return successExitCode
	}

	fmt.Fprintf(a.stderr, "unknown command %q\n", name)
	a.printUsage()

	return errorExitCode
}

func (a *app) printUsage() {
	fmt.Fprintln(a.stderr, "audlink routes and mixes audio between ports")
	fmt.Fprintln(a.stderr)
	fmt.Fprintln(a.stderr, "Usage: audlink <command> [flags] [args]")
	fmt.Fprintln(a.stderr)
	fmt.Fprintln(a.stderr, "Commands:")
	for _, cmd := range a.commands {
		fmt.Fprintf(a.stderr, "\t%s\t%s\n", cmd.Name(), cmd.Help())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := newApp(os.Stdout, os.Stderr).run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
