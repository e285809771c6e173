// Copyright (c) voidfemme 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package supervisor launches a child command in one of two modes. In bypass
// mode (the program is in the ignore set) the child inherits the terminal
// directly and nothing is logged. In captured mode the child's stdout and
// stderr are redirected through pipes and teed to both the terminal and a
// fresh timestamped log file, with rotation of old logs beforehand. The
// supervisor waits for the child and then for both streams to drain before
// reporting the child's exit code.
package supervisor
