// Copyright (c) voidfemme 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tee

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

var (
	// ErrRead is returned when the source stream fails mid-read.
	ErrRead = errors.New("could not read from stream")
	// ErrTerminalWrite is returned when the terminal destination rejects a write.
	ErrTerminalWrite = errors.New("could not write to terminal")
	// ErrLogWrite is returned when the log destination rejects a write.
	ErrLogWrite = errors.New("could not write to log")
)

// Broadcaster copies one readable byte stream (child stdout or stderr) to a
// terminal destination and to a log destination, line by line. Each line is
// written to the terminal first, then to the log, before the next read.
//
// Ordering within the stream is preserved at both destinations. The terminal
// write is guarded by a mutex shared with the sibling broadcaster, held only
// for the single write call so one stream can never starve the other.
type Broadcaster struct {
	src      io.Reader
	terminal io.Writer
	log      io.Writer
	termMu   *sync.Mutex
}

// New creates a Broadcaster. termMu serializes terminal writes across
// broadcasters that share a destination; pass the same mutex to both. A nil
// mutex gets a private one. A nil log writer disables the log copy.
func New(src io.Reader, terminal, log io.Writer, termMu *sync.Mutex) *Broadcaster {
	if termMu == nil {
		termMu = &sync.Mutex{}
	}

	return &Broadcaster{
		src:      src,
		terminal: terminal,
		log:      log,
		termMu:   termMu,
	}
}

// Run drains the source until end-of-stream, copying each line (or the final
// partial line) to the terminal and the log. It blocks until the source is
// exhausted or a terminal failure occurs.
//
// A log write failure does not stop the terminal copy: the log destination is
// dropped for the remainder of the stream and the failure is reported in the
// returned error after the drain completes. A terminal write failure or a
// non-EOF read error stops the broadcaster immediately.
func (b *Broadcaster) Run() error {
	reader := bufio.NewReader(b.src)

	var logErr error

	for {
		line, err := reader.ReadString('\n')

		if len(line) > 0 {
			b.termMu.Lock()
			_, werr := io.WriteString(b.terminal, line)
			b.termMu.Unlock()

			if werr != nil {
				return errors.Join(ErrTerminalWrite, werr, logErr)
			}

			if b.log != nil && logErr == nil {
				if _, werr := io.WriteString(b.log, line); werr != nil {
					logErr = errors.Join(ErrLogWrite, werr)
				}
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return logErr
			}

			return errors.Join(ErrRead, err, logErr)
		}
	}
}

// Go runs the broadcaster in its own goroutine and returns a channel that
// receives the result of Run exactly once.
func (b *Broadcaster) Go() <-chan error {
	done := make(chan error, 1)

	go func() {
		done <- b.Run()
	}()

	return done
}
