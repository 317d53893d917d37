// Package stream applies a matcher to line-oriented input.
//
// The automaton always sees one whole line at a time, without its trailing
// newline, so bounds like $ and \z hold at the end of each line. Memory use
// is bounded by the longest line, which Config.MaxLineLength caps.
//
//	file, _ := os.Open("access.log")
//	defer file.Close()
//
//	m := pattern.Matcher("")
//	io.Copy(os.Stdout, stream.Filter(file, m, false))
package stream

import (
	"github.com/pkg/errors"
)

// ErrLineTooLong is returned by readers when a line exceeds MaxLineLength.
var ErrLineTooLong = errors.New("stream: line too long")

// Config tunes the line readers.
type Config struct {
	// BufferSize is the chunk size for reading from the source.
	// Default: 64KB.
	BufferSize int

	// MaxLineLength caps the bytes buffered for a single line. A longer line
	// fails the reader with ErrLineTooLong. Zero means the default (16MB);
	// -1 means unlimited.
	MaxLineLength int
}

// DefaultConfig returns a Config with a 64KB buffer and a 16MB line cap.
func DefaultConfig() Config {
	return Config{
		BufferSize:    64 * 1024,
		MaxLineLength: 16 << 20,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.BufferSize < 0 {
		return errors.Errorf("stream: negative buffer size %d", c.BufferSize)
	}
	if c.MaxLineLength < -1 {
		return errors.Errorf("stream: invalid max line length %d", c.MaxLineLength)
	}
	return nil
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.BufferSize == 0 {
		c.BufferSize = def.BufferSize
	}
	if c.MaxLineLength == 0 {
		c.MaxLineLength = def.MaxLineLength
	}
	return c
}
