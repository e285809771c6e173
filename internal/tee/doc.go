// Copyright (c) voidfemme 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tee duplicates a child process output stream to two destinations:
// the user's terminal and a log file. Two broadcasters, one per stream, run
// concurrently with the child and with each other; each must fully drain its
// pipe before the invocation is considered complete, so buffered output
// written just before the child exits is never lost.
package tee
