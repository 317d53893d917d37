package stream

import (
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/s4ke/moar/pkg/moa"
)

// Filter returns a reader yielding the lines of r that contain a match of m,
// or, with invert set, the lines that do not. m is reused for every line and
// must not be used elsewhere until the reader is drained.
func Filter(r io.Reader, m *moa.Matcher, invert bool) io.Reader {
	return LineFilter(r, func(line []byte) bool {
		m.Reuse(string(trimNewline(line)))
		return m.NextMatch() != invert
	})
}

// Replace returns a reader yielding the lines of r with every match of m
// replaced by fn's result. fn reads the current match from the matcher it
// receives.
func Replace(r io.Reader, m *moa.Matcher, fn func(*moa.Matcher) string) io.Reader {
	return LineTransform(r, func(line []byte) []byte {
		body := trimNewline(line)
		m.Reuse(string(body))
		out := []byte(m.ReplaceAllFunc(fn))
		return append(out, line[len(body):]...)
	})
}

// LineFilter returns an io.Reader that only outputs lines matching the
// predicate. The newline is included in the line passed to pred and in the
// output.
//
//	r := stream.LineFilter(input, func(line []byte) bool {
//	    return bytes.Contains(line, []byte("ERROR"))
//	})
func LineFilter(r io.Reader, pred func(line []byte) bool) io.Reader {
	return newLineReader(r, DefaultConfig(), func(line []byte) []byte {
		if pred(line) {
			return line
		}
		return nil
	})
}

// LineTransform returns an io.Reader that rewrites each line with fn. The
// newline is included in the line passed to fn; fn returns the replacement
// including a newline if one is wanted.
func LineTransform(r io.Reader, fn func(line []byte) []byte) io.Reader {
	return newLineReader(r, DefaultConfig(), fn)
}

// NewReader is LineTransform with an explicit configuration.
func NewReader(r io.Reader, cfg Config, fn func(line []byte) []byte) (io.Reader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newLineReader(r, cfg.withDefaults(), fn), nil
}

func trimNewline(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\n' {
		return line[:n-1]
	}
	return line
}

// lineReader splits its source into lines and emits fn's output for each.
type lineReader struct {
	source io.Reader
	cfg    Config
	fn     func(line []byte) []byte

	buf       []byte
	bufStart  int
	sourceEOF bool

	output      []byte
	outputStart int

	err error
}

func newLineReader(r io.Reader, cfg Config, fn func(line []byte) []byte) *lineReader {
	return &lineReader{
		source: r,
		cfg:    cfg,
		fn:     fn,
		buf:    make([]byte, 0, cfg.BufferSize),
	}
}

func (r *lineReader) Read(p []byte) (int, error) {
	for r.outputStart == len(r.output) {
		r.output, r.outputStart = r.output[:0], 0
		if r.err != nil {
			return 0, r.err
		}
		r.err = r.processMore()
	}

	n := copy(p, r.output[r.outputStart:])
	r.outputStart += n
	return n, nil
}

// processMore reads one chunk and emits every complete line in the buffer.
// It returns io.EOF once the source is exhausted and the tail is flushed.
func (r *lineReader) processMore() error {
	if r.bufStart > 0 {
		rest := copy(r.buf, r.buf[r.bufStart:])
		r.buf = r.buf[:rest]
		r.bufStart = 0
	}

	if !r.sourceEOF {
		if cap(r.buf)-len(r.buf) < r.cfg.BufferSize/2 || cap(r.buf) == len(r.buf) {
			grown := make([]byte, len(r.buf), len(r.buf)+r.cfg.BufferSize)
			copy(grown, r.buf)
			r.buf = grown
		}
		n, err := r.source.Read(r.buf[len(r.buf):cap(r.buf)])
		r.buf = r.buf[:len(r.buf)+n]
		switch {
		case err == io.EOF:
			r.sourceEOF = true
		case err != nil:
			return errors.Wrap(err, "stream: read")
		}
	}

	data := r.buf
	for {
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			break
		}
		r.output = append(r.output, r.fn(data[:idx+1])...)
		data = data[idx+1:]
		r.bufStart += idx + 1
	}

	if r.sourceEOF {
		if len(data) > 0 {
			r.output = append(r.output, r.fn(data)...)
			r.bufStart = len(r.buf)
		}
		return io.EOF
	}
	if max := r.cfg.MaxLineLength; max > 0 && len(data) > max {
		return errors.Wrapf(ErrLineTooLong, "more than %d bytes without a newline", max)
	}
	return nil
}
