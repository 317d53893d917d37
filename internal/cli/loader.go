package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/s4ke/moar/pkg/moar"
)

// CatalogPrefix marks an automaton argument as a catalog name.
const CatalogPrefix = "@"

// formatOf picks the description format from a file extension.
func formatOf(path string) moar.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return moar.FormatYAML
	default:
		return moar.FormatJSON
	}
}

// loadPattern resolves an automaton argument: a description file or an
// @name catalog reference.
func (o *RootOptions) loadPattern(ref string) (*moar.Pattern, error) {
	if name, ok := strings.CutPrefix(ref, CatalogPrefix); ok {
		store, err := o.catalog()
		if err != nil {
			return nil, err
		}
		entry, err := store.Get(name)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "loading "+ref, err)
		}
		o.logger.Log("loaded %s from catalog (%s)", ref, humanize.Bytes(uint64(len(entry.Description))))
		return o.load(ref, entry.Description, moar.FormatJSON)
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "reading automaton", err)
	}
	o.logger.Log("loaded %s (%s)", ref, humanize.Bytes(uint64(len(data))))
	return o.load(ref, data, formatOf(ref))
}

func (o *RootOptions) load(ref string, data []byte, format moar.Format) (*moar.Pattern, error) {
	p, err := o.cache.Load(data, format)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid automaton "+ref, err)
	}
	if re := p.Regex(); re != "" {
		o.logger.Log("regex: %s", re)
	}
	return p, nil
}

// input is one named source of lines.
type input struct {
	name string
	open func() (io.ReadCloser, error)
}

// inputs maps file arguments to sources; no files means stdin, as does "-".
func inputs(files []string, stdin io.Reader) []input {
	if len(files) == 0 {
		files = []string{"-"}
	}
	out := make([]input, len(files))
	for i, f := range files {
		if f == "-" {
			out[i] = input{name: "(standard input)", open: func() (io.ReadCloser, error) {
				return io.NopCloser(stdin), nil
			}}
			continue
		}
		out[i] = input{name: f, open: func() (io.ReadCloser, error) { return os.Open(f) }}
	}
	return out
}

// ctxReader fails reads once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// wrapRead marks a failed input read as a command error.
func wrapRead(err error, name string) error {
	return WrapExitError(ExitCommandError, "reading "+name, err)
}
