// Copyright (c) voidfemme 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package logstore manages the log directory: it names new log files by
// timestamp so that lexicographic order matches creation order, and enforces
// the retention policy by deleting the oldest files beyond a configured
// count. Rotation runs before each new file is created, so a fresh log is
// never itself a candidate for the same pass.
package logstore
