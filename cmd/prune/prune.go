// Copyright (c) voidfemme 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package prune contains the subcommand that runs log rotation on demand.
package prune

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"github.com/voidfemme/stash/internal/config"
	"github.com/voidfemme/stash/internal/logstore"
)

const (
	logDirFlag = "log-dir"
	retainFlag = "retain"
)

// PruneCmd deletes the oldest log files beyond the retention limit.
var PruneCmd = &cli.Command{
	Name:  "prune",
	Usage: "delete the oldest log files beyond the retention limit",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     logDirFlag,
			Usage:    "Where rolling logs of past commands are stored",
			Value:    config.DefaultLogDir,
			OnlyOnce: true,
		},
		&cli.IntFlag{
			Name:     retainFlag,
			Usage:    "Max number of log files to retain",
			Value:    config.DefaultRetain,
			OnlyOnce: true,
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	logDir, err := cfg.EffectiveLogDir(cmd.String(logDirFlag), cmd.IsSet(logDirFlag))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	retain := cfg.EffectiveRetain(cmd.Int(retainFlag), cmd.IsSet(retainFlag))
	removed := logstore.Rotate(ctx, logDir, retain)

	fmt.Fprintf(cmd.Writer, "removed %d log file(s), retaining up to %d in %s\n", removed, retain, logDir)

	return nil
}
