// Copyright (c) voidfemme 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ignore holds the set of program names for which logging is skipped
// entirely. The set is built by merging the configuration file defaults with
// any names supplied on the command line; duplicates collapse and order is
// not significant.
package ignore

import "path/filepath"

// Set is a set of program names, keyed by base command name.
type Set map[string]struct{}

// Merge builds a Set from the union of the given name lists.
// Empty names are dropped; names are reduced to their base command name so
// that "vim" and "/usr/bin/vim" refer to the same program.
func Merge(lists ...[]string) Set {
	s := make(Set)

	for _, list := range lists {
		for _, name := range list {
			if name == "" {
				continue
			}

			s[filepath.Base(name)] = struct{}{}
		}
	}

	return s
}

// Contains reports whether the program identified by name is in the set.
// The name is reduced to its base command name before matching.
func (s Set) Contains(name string) bool {
	if name == "" {
		return false
	}

	_, ok := s[filepath.Base(name)]

	return ok
}
