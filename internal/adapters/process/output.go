package process

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Output connects a process's stdout and stderr to line handlers. Handlers
// are never called concurrently, and Close returns only after every line
// has been delivered.
type Output struct {
	Stdout *io.PipeWriter
	Stderr *io.PipeWriter

	readers errgroup.Group
	mu      sync.Mutex
	once    sync.Once
	err     error
}

// NewOutput starts delivering lines written to Stdout and Stderr.
func NewOutput(onStdout, onStderr func(string)) *Output {
	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()

	o := &Output{Stdout: stdoutW, Stderr: stderrW}
	o.readers.Go(func() error { return o.pump(stdoutR, onStdout) })
	o.readers.Go(func() error { return o.pump(stderrR, onStderr) })
	return o
}

// pump decodes r as UTF-8 and hands every line to handler.
func (o *Output) pump(r *io.PipeReader, handler func(string)) error {
	defer func() { _ = r.Close() }()

	br := bufio.NewReader(transform.NewReader(r, unicode.UTF8BOM.NewDecoder()))
	for {
		line, err := br.ReadString('\n')
		if line != "" && handler != nil {
			o.mu.Lock()
			handler(strings.TrimRight(line, "\r\n"))
			o.mu.Unlock()
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// Close ends both streams and waits for the remaining lines.
func (o *Output) Close() error {
	o.once.Do(func() {
		_ = o.Stdout.Close()
		_ = o.Stderr.Close()
		o.err = o.readers.Wait()
	})
	return o.err
}
