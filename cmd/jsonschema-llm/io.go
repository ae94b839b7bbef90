package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	goccyjson "github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// readJSONFile decodes path (or stdin, for "-") into Go's generic JSON
// representation, preserving numeric fidelity via json.Number the way the
// core package's own decode paths do.
func readJSONFile(path string) (any, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s", path)
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errors.Wrapf(err, "parsing JSON from %s", path)
	}
	return v, nil
}

// writeJSONFile pretty-encodes v to path (or stdout, for "-"/""), using
// goccy/go-json for the faster encode path on larger schemas/codecs.
func writeJSONFile(path string, v any) error {
	out, err := goccyjson.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding output")
	}
	out = append(bytes.TrimRight(out, "\n"), '\n')

	if path == "" || path == "-" {
		_, err := os.Stdout.Write(out)
		return errors.Wrap(err, "writing to stdout")
	}

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}
