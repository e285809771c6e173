// Copyright (c) voidfemme 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main is the entry point for the stash command-line application.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/voidfemme/stash"
	"github.com/voidfemme/stash/cmd"
	"github.com/voidfemme/stash/internal/ctxlog"
)

func main() {
	ctx := ctxlog.New(context.Background(), ctxlog.DefaultLogger)

	cmd.RootCmd.Version = fmt.Sprintf("%s (commit: %s)", stash.Version, stash.Commit)

	// Signal handling lives in the supervisor: interrupts are forwarded to
	// the child, and the supervisor's own wait/join proceeds unchanged.
	err := cmd.RootCmd.Run(ctx, os.Args)
	if err != nil {
		ctxlog.Logger(ctx).Error("command failed", "error", err)
		os.Exit(1)
	}
}
