// Copyright (c) voidfemme 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package supervisor

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// resolvePath finds the executable to launch for the given program name.
// A name containing a path separator is used as-is; otherwise each entry of
// $PATH is scanned in order. Directories and non-executable files are
// skipped.
func resolvePath(prog string) (string, bool) {
	if strings.ContainsRune(prog, os.PathSeparator) {
		if isExecutable(prog) {
			return prog, true
		}

		return "", false
	}

	paths := strings.Split(os.Getenv("PATH"), string(os.PathListSeparator))
	for _, p := range paths {
		candidate := filepath.Join(p, prog)
		if isExecutable(candidate) {
			return candidate, true
		}
	}

	return "", false
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	// check if the file is executable if not Windows
	if runtime.GOOS != "windows" && info.Mode()&0111 == 0 {
		return false
	}

	return true
}
