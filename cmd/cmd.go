// Copyright (c) voidfemme 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmd contains the command-line interface (CLI) for stash.
package cmd

import (
	"os"

	"github.com/urfave/cli/v3"
	"github.com/voidfemme/stash/cmd/logs"
	"github.com/voidfemme/stash/cmd/prune"
	"github.com/voidfemme/stash/cmd/run"
)

// RootCmd is the root command for the CLI.
var RootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.RunCmd,
		logs.LogsCmd,
		prune.PruneCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "stash",
	Description: `Stash wraps execution of an arbitrary command, teeing its standard output
and standard error to both the terminal and a persistent, timestamped log
file, while keeping only the most recent N log files on disk. Programs in
the ignore set (TUI apps and the like) run with the terminal handed over
directly and are never logged.`,
	Usage:                 "stash run -- make test",
	Copyright:             "Copyright (c) voidfemme 2025. All rights reserved.",
	EnableShellCompletion: true,
}
