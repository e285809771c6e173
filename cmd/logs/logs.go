// Copyright (c) voidfemme 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package logs contains the subcommand that lists retained log files.
package logs

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v3"
	"github.com/voidfemme/stash/internal/config"
	"github.com/voidfemme/stash/internal/logstore"
)

const logDirFlag = "log-dir"

// LogsCmd lists the retained log files, oldest first.
var LogsCmd = &cli.Command{
	Name:  "logs",
	Usage: "list retained log files",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     logDirFlag,
			Usage:    "Where rolling logs of past commands are stored",
			Value:    config.DefaultLogDir,
			OnlyOnce: true,
		},
	},
	Action: actionFunc,
}

func actionFunc(_ context.Context, cmd *cli.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	logDir, err := cfg.EffectiveLogDir(cmd.String(logDirFlag), cmd.IsSet(logDirFlag))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	entries, err := logstore.List(logDir)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if len(entries) == 0 {
		fmt.Fprintf(cmd.Writer, "no logs in %s\n", logDir)
		return nil
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "SIZE", "MODIFIED")

	for _, e := range entries {
		tbl.Row(e.Name, formatSize(e.Size), e.ModTime.Format(time.DateTime))
	}

	fmt.Fprintln(cmd.Writer, tbl)

	return nil
}

func formatSize(n int64) string {
	const unit = 1024

	switch {
	case n >= unit*unit:
		return fmt.Sprintf("%.1f MiB", float64(n)/(unit*unit))
	case n >= unit:
		return fmt.Sprintf("%.1f KiB", float64(n)/unit)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
