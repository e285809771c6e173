// Copyright (c) voidfemme 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run contains the subcommand that executes a command under the
// supervisor, teeing its output to a timestamped log file.
package run

import (
	"context"

	"github.com/urfave/cli/v3"
	"github.com/voidfemme/stash/internal/config"
	"github.com/voidfemme/stash/internal/ctxlog"
	"github.com/voidfemme/stash/internal/ignore"
	"github.com/voidfemme/stash/internal/supervisor"
)

const (
	logDirFlag = "log-dir"
	retainFlag = "retain"
	ignoreFlag = "ignore"
)

// RunCmd runs a command and tees its output to a timestamped log file.
var RunCmd = &cli.Command{
	Name:        "run",
	Usage:       "run a command and tee its output to a timestamped log",
	ArgsUsage:   "-- COMMAND [ARGS...]",
	Description: `Runs the given command with stdout and stderr duplicated to the terminal and
to a fresh log file in the log directory. Old logs beyond the retention limit
are pruned first. The command's exit code is relayed unchanged.

Programs named in the ignore set (from the configuration file or --ignore)
inherit the terminal directly and produce no log file.`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     logDirFlag,
			Usage:    "Where to store rolling logs of past commands",
			Value:    config.DefaultLogDir,
			OnlyOnce: true,
		},
		&cli.IntFlag{
			Name:     retainFlag,
			Usage:    "Max number of log files to retain",
			Value:    config.DefaultRetain,
			OnlyOnce: true,
		},
		&cli.StringSliceFlag{
			Name:    ignoreFlag,
			Aliases: []string{"i"},
			Usage:   "Additional program names to run without logging. Specify multiple times.",
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	argv := cmd.Args().Slice()
	if len(argv) == 0 {
		return cli.Exit("Please provide a command to run after --", 1)
	}

	cfg, err := config.Load()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	logDir, err := cfg.EffectiveLogDir(cmd.String(logDirFlag), cmd.IsSet(logDirFlag))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	sup := &supervisor.Supervisor{
		LogDir: logDir,
		Retain: cfg.EffectiveRetain(cmd.Int(retainFlag), cmd.IsSet(retainFlag)),
		Ignore: ignore.Merge(cfg.Ignore, cmd.StringSlice(ignoreFlag)),
	}

	res, err := sup.Run(ctx, argv)
	if err != nil {
		logger.Error("invocation failed", "error", err, "mode", res.Mode.String())
		return cli.Exit(nil, res.ExitCode)
	}

	if res.ExitCode != 0 {
		return cli.Exit(nil, res.ExitCode)
	}

	return nil
}
