// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logger

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// AsyncLogger decouples a request handler's logging calls from the
// lumberjack file writer (and its occasional rotation stall) by handing
// each Write off to a buffered channel drained by one background
// goroutine. A full buffer drops the message rather than blocking the
// caller, since a busy dispatcher goroutine must never stall waiting on
// disk I/O to finish a log line.
type AsyncLogger struct {
	lj   *lumberjack.Logger
	msgs chan []byte
	done chan struct{}
	once sync.Once
}

// NewAsyncLogger starts the background writer goroutine and returns a
// logger ready for use as an io.Writer. bufferSize is the number of
// pending messages allowed to queue before Write starts dropping.
func NewAsyncLogger(lj *lumberjack.Logger, bufferSize int) *AsyncLogger {
	a := &AsyncLogger{
		lj:   lj,
		msgs: make(chan []byte, bufferSize),
		done: make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *AsyncLogger) run() {
	defer close(a.done)
	for msg := range a.msgs {
		if _, err := a.lj.Write(msg); err != nil {
			fmt.Fprintf(os.Stderr, "asynclogger: write failed: %v\n", err)
		}
	}
}

// Write queues p for the background writer. It never blocks: if the
// buffer is full the message is dropped and a warning goes to stderr.
func (a *AsyncLogger) Write(p []byte) (int, error) {
	msg := make([]byte, len(p))
	copy(msg, p)
	select {
	case a.msgs <- msg:
	default:
		fmt.Fprintln(os.Stderr, "asynclogger: log buffer is full, dropping message.")
	}
	return len(p), nil
}

// Close drains any queued messages, closes the underlying lumberjack
// file, and waits for the background goroutine to exit.
func (a *AsyncLogger) Close() error {
	a.once.Do(func() { close(a.msgs) })
	<-a.done
	return a.lj.Close()
}
