// Copyright (c) voidfemme 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker provides a way to listen for OS signals so they can be
// forwarded to a child process. By default it listens for os.Interrupt,
// syscall.SIGINT, syscall.SIGTERM, and syscall.SIGQUIT signals.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/voidfemme/stash/internal/ctxlog"
)

var termSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
	os.Interrupt,
}

// New creates a new signal broker that listens for OS signals that should be
// relayed to the wrapped process.
func New(ctx context.Context, sigs ...os.Signal) chan os.Signal {
	ch := make(chan os.Signal, 1)

	if len(sigs) == 0 {
		sigs = termSignals
	}

	ctxlog.Debug(ctx, "signalbroker", "detail", "creating signal broker", "signals", sigs)
	signal.Notify(ch, sigs...)

	return ch
}

// Stop unregisters the channel from signal delivery and closes it.
func Stop(ch chan os.Signal) {
	signal.Stop(ch)
	close(ch)
}
