// Copyright (c) voidfemme 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package logstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/voidfemme/stash/internal/ctxlog"
)

// Ext is the extension that classifies a file as a rotation candidate.
// Name-pattern matching is the sole classifier: any .log file in the
// directory is treated as one of ours.
const Ext = ".log"

const (
	// timeFormat names log files so that lexicographic order is creation order.
	timeFormat = "20060102-150405.000"
	dirPerm    = 0o755
	filePerm   = 0o644
)

var (
	// ErrCreateDir is returned when the log directory cannot be created.
	ErrCreateDir = errors.New("could not create log directory")
	// ErrCreateFile is returned when a new log file cannot be created.
	ErrCreateFile = errors.New("could not create log file")
	// ErrOpenFile is returned when an existing log file cannot be opened for appending.
	ErrOpenFile = errors.New("could not open log file")
)

// FS is a filesystem abstraction used for file operations.
// Default is the OS filesystem, but can be replaced with a mock for testing.
var FS = afero.NewOsFs()

// Now returns the current time. It is a variable so tests can pin the clock.
var Now = time.Now

// Entry describes one recognized log file in the store.
type Entry struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Create makes the log directory if absent and creates a fresh, uniquely
// named log file in it. The returned file is open for writing; the caller
// owns it for the lifetime of the invocation.
//
// Names are millisecond-precision timestamps. If two invocations land on the
// same millisecond, a numeric suffix disambiguates rather than silently
// sharing a file. The underscore separator sorts after the '.' that starts
// the extension, so a suffixed name still orders after its unsuffixed twin.
func Create(ctx context.Context, dir string) (afero.File, string, error) {
	if err := FS.MkdirAll(dir, dirPerm); err != nil {
		return nil, "", errors.Join(ErrCreateDir, err)
	}

	stamp := Now().Format(timeFormat)

	for i := 0; ; i++ {
		name := stamp + Ext
		if i > 0 {
			name = fmt.Sprintf("%s_%d%s", stamp, i, Ext)
		}

		path := filepath.Join(dir, name)

		f, err := FS.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL|os.O_APPEND, filePerm)
		if err == nil {
			ctxlog.Debug(ctx, "created log file", "path", path)
			return f, path, nil
		}

		if !os.IsExist(err) {
			return nil, "", errors.Join(ErrCreateFile, err)
		}
	}
}

// OpenAppend opens an independent append-mode handle to an existing log file.
// The two stream broadcasters each hold their own handle so that interleaved
// writes append without truncating each other.
func OpenAppend(path string) (afero.File, error) {
	f, err := FS.OpenFile(path, os.O_WRONLY|os.O_APPEND, filePerm)
	if err != nil {
		return nil, errors.Join(ErrOpenFile, err)
	}

	return f, nil
}

// Rotate deletes the oldest recognized log files until at most retain remain.
// It is best-effort: a file that cannot be removed (already gone, or held by
// another process) is skipped and does not abort rotation of the rest.
// Rotate never fails; it returns the number of files it removed.
func Rotate(ctx context.Context, dir string, retain int) int {
	if retain < 0 {
		retain = 0
	}

	entries, err := List(dir)
	if err != nil {
		ctxlog.Debug(ctx, "rotation skipped", "dir", dir, "error", err)
		return 0
	}

	excess := len(entries) - retain
	if excess <= 0 {
		return 0
	}

	removed := 0

	for _, e := range entries[:excess] {
		if err := FS.Remove(e.Path); err != nil {
			ctxlog.Debug(ctx, "could not remove old log", "path", e.Path, "error", err)
			continue
		}

		ctxlog.Debug(ctx, "removed old log", "path", e.Path)

		removed++
	}

	return removed
}

// List returns the recognized log files in dir, oldest first. Names encode
// creation time, so sorting by name is chronological by construction.
// A missing directory yields an empty list.
func List(dir string) ([]Entry, error) {
	infos, err := afero.ReadDir(FS, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, err //nolint:wrapcheck
	}

	var entries []Entry

	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), Ext) {
			continue
		}

		entries = append(entries, Entry{
			Name:    info.Name(),
			Path:    filepath.Join(dir, info.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	return entries, nil
}
