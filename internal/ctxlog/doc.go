// Copyright (c) voidfemme 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog provides a context-based logger using the slog package for
// structured logging. The log level is set from an environment variable whose
// name is derived from the executable name: for an executable named "stash"
// the variable is STASH_LOG_LEVEL, and may be set to "DEBUG", "INFO", "WARN"
// or "ERROR". Any other value defaults to "WARN".
//
// Diagnostic output always goes to stderr so that it never mixes with the
// stdout of a wrapped command.
package ctxlog
