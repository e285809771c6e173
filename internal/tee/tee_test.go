// Copyright (c) voidfemme 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tee

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type failingWriter struct {
	failAfter int // number of successful writes before failing
	writes    int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.writes >= w.failAfter {
		return 0, errors.New("sink failed")
	}

	w.writes++

	return len(p), nil
}

type failingReader struct{}

func (r *failingReader) Read([]byte) (int, error) {
	return 0, errors.New("pipe broke")
}

func TestRunFidelity(t *testing.T) {
	input := "line one\nline two\nline three\n"
	term := &bytes.Buffer{}
	log := &bytes.Buffer{}

	b := New(strings.NewReader(input), term, log, nil)
	require.NoError(t, b.Run())

	assert.Equal(t, input, term.String())
	assert.Equal(t, input, log.String())
}

func TestRunFlushesFinalPartialLine(t *testing.T) {
	input := "complete line\nno trailing newline"
	term := &bytes.Buffer{}
	log := &bytes.Buffer{}

	b := New(strings.NewReader(input), term, log, nil)
	require.NoError(t, b.Run())

	assert.Equal(t, input, term.String())
	assert.Equal(t, input, log.String())
}

func TestRunNilLogWriter(t *testing.T) {
	term := &bytes.Buffer{}

	b := New(strings.NewReader("hello\n"), term, nil, nil)
	require.NoError(t, b.Run())

	assert.Equal(t, "hello\n", term.String())
}

func TestRunLogFailureKeepsTerminalFlowing(t *testing.T) {
	input := "one\ntwo\nthree\n"
	term := &bytes.Buffer{}
	log := &failingWriter{failAfter: 1}

	b := New(strings.NewReader(input), term, log, nil)
	err := b.Run()

	require.ErrorIs(t, err, ErrLogWrite)
	assert.Equal(t, input, term.String(), "terminal copy must not be suppressed by a log failure")
}

func TestRunTerminalFailureStops(t *testing.T) {
	term := &failingWriter{failAfter: 1}
	log := &bytes.Buffer{}

	b := New(strings.NewReader("one\ntwo\n"), term, log, nil)
	err := b.Run()

	require.ErrorIs(t, err, ErrTerminalWrite)
	assert.Equal(t, "one\n", log.String())
}

func TestRunReadError(t *testing.T) {
	b := New(&failingReader{}, &bytes.Buffer{}, &bytes.Buffer{}, nil)

	require.ErrorIs(t, b.Run(), ErrRead)
}

func TestGoDrainsBeforeSignalling(t *testing.T) {
	defer goleak.VerifyNone(t)

	pr, pw := io.Pipe()
	term := &bytes.Buffer{}
	log := &bytes.Buffer{}

	b := New(pr, term, log, nil)
	done := b.Go()

	go func() {
		fmt.Fprintln(pw, "buffered output")
		pw.Close()
	}()

	require.NoError(t, <-done)
	assert.Equal(t, "buffered output\n", term.String())
	assert.Equal(t, "buffered output\n", log.String())
}

// sharedTerminal is not safe for concurrent use: the race detector flags any
// write to it made without holding the shared terminal mutex.
type sharedTerminal struct {
	bytes.Buffer
}

func TestConcurrentBroadcastersPreserveStreamOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	const lines = 500

	outSrc := &bytes.Buffer{}
	errSrc := &bytes.Buffer{}

	for i := range lines {
		fmt.Fprintf(outSrc, "out %d\n", i)
		fmt.Fprintf(errSrc, "err %d\n", i)
	}

	term := &sharedTerminal{}
	termMu := &sync.Mutex{}

	logOut := &bytes.Buffer{}
	logErr := &bytes.Buffer{}

	outDone := New(outSrc, term, logOut, termMu).Go()
	errDone := New(errSrc, term, logErr, termMu).Go()

	require.NoError(t, <-outDone)
	require.NoError(t, <-errDone)

	// Each stream's own ordering is preserved at its log destination.
	for i := range lines {
		assert.Contains(t, logOut.String(), fmt.Sprintf("out %d\n", i))
		assert.Contains(t, logErr.String(), fmt.Sprintf("err %d\n", i))
	}

	var outLines, errLines []string

	for _, line := range strings.Split(strings.TrimSuffix(term.String(), "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "out "):
			outLines = append(outLines, line)
		case strings.HasPrefix(line, "err "):
			errLines = append(errLines, line)
		default:
			t.Fatalf("torn line in shared terminal output: %q", line)
		}
	}

	require.Len(t, outLines, lines)
	require.Len(t, errLines, lines)

	for i := range lines {
		assert.Equal(t, fmt.Sprintf("out %d", i), outLines[i])
		assert.Equal(t, fmt.Sprintf("err %d", i), errLines[i])
	}
}
