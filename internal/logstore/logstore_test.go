// Copyright (c) voidfemme 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package logstore

import (
	"context"
	"testing"
	"time"

	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubFs(t *testing.T) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	stub := gostub.Stub(&FS, fs)
	t.Cleanup(stub.Reset)

	return fs
}

func stubClock(t *testing.T, at time.Time) {
	t.Helper()

	stub := gostub.Stub(&Now, func() time.Time { return at })
	t.Cleanup(stub.Reset)
}

func TestCreateNamesSortChronologically(t *testing.T) {
	stubFs(t)
	ctx := context.Background()

	stubClock(t, time.Date(2025, 7, 12, 15, 30, 45, 123e6, time.UTC))

	f1, path1, err := Create(ctx, "/logs")
	require.NoError(t, err)
	require.NoError(t, f1.Close())
	assert.Equal(t, "/logs/20250712-153045.123.log", path1)

	stubClock(t, time.Date(2025, 7, 12, 15, 30, 46, 0, time.UTC))

	f2, path2, err := Create(ctx, "/logs")
	require.NoError(t, err)
	require.NoError(t, f2.Close())

	assert.Less(t, path1, path2)
}

func TestCreateCollisionGetsSuffix(t *testing.T) {
	stubFs(t)
	ctx := context.Background()

	stubClock(t, time.Date(2025, 7, 12, 15, 30, 45, 123e6, time.UTC))

	f1, path1, err := Create(ctx, "/logs")
	require.NoError(t, err)
	require.NoError(t, f1.Close())

	f2, path2, err := Create(ctx, "/logs")
	require.NoError(t, err)
	require.NoError(t, f2.Close())

	assert.NotEqual(t, path1, path2)
	assert.Equal(t, "/logs/20250712-153045.123_1.log", path2)

	// The later file must also sort later, or rotation would prune the
	// newer of the two first.
	assert.Less(t, path1, path2)

	entries, err := List("/logs")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "20250712-153045.123.log", entries[0].Name)
	assert.Equal(t, "20250712-153045.123_1.log", entries[1].Name)
}

func TestCreateMakesDirectoryTree(t *testing.T) {
	fs := stubFs(t)

	f, _, err := Create(context.Background(), "/deep/nested/logs")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	ok, err := afero.DirExists(fs, "/deep/nested/logs")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpenAppendSharesFile(t *testing.T) {
	fs := stubFs(t)

	f, path, err := Create(context.Background(), "/logs")
	require.NoError(t, err)

	_, err = f.WriteString("out\n")
	require.NoError(t, err)

	g, err := OpenAppend(path)
	require.NoError(t, err)

	_, err = g.WriteString("err\n")
	require.NoError(t, err)

	require.NoError(t, f.Close())
	require.NoError(t, g.Close())

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, "out\nerr\n", string(data))
}

func TestOpenAppendMissingFile(t *testing.T) {
	stubFs(t)

	_, err := OpenAppend("/logs/nope.log")
	require.ErrorIs(t, err, ErrOpenFile)
}

func TestRotate(t *testing.T) {
	fs := stubFs(t)
	ctx := context.Background()

	names := []string{
		"20250101-000000.000.log",
		"20250102-000000.000.log",
		"20250103-000000.000.log",
		"20250104-000000.000.log",
		"20250105-000000.000.log",
	}
	for _, n := range names {
		require.NoError(t, afero.WriteFile(fs, "/logs/"+n, []byte("x"), 0o644))
	}

	removed := Rotate(ctx, "/logs", 2)
	assert.Equal(t, 3, removed)

	entries, err := List("/logs")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, names[3], entries[0].Name)
	assert.Equal(t, names[4], entries[1].Name)
}

func TestRotateUnderLimitIsNoop(t *testing.T) {
	fs := stubFs(t)

	require.NoError(t, afero.WriteFile(fs, "/logs/20250101-000000.000.log", []byte("x"), 0o644))

	assert.Zero(t, Rotate(context.Background(), "/logs", 20))

	entries, err := List("/logs")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRotateMissingDirectory(t *testing.T) {
	stubFs(t)

	assert.Zero(t, Rotate(context.Background(), "/nope", 2))
}

func TestListIgnoresUnrecognizedFiles(t *testing.T) {
	fs := stubFs(t)

	require.NoError(t, afero.WriteFile(fs, "/logs/20250101-000000.000.log", []byte("x"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/logs/readme.txt", []byte("x"), 0o644))
	require.NoError(t, fs.MkdirAll("/logs/subdir.log", 0o755))

	entries, err := List("/logs")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "20250101-000000.000.log", entries[0].Name)
}

func TestListMissingDirectory(t *testing.T) {
	stubFs(t)

	entries, err := List("/nope")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
