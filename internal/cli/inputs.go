package cli

import (
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/gangsheet/pkg/errors"
	"github.com/matzehuels/gangsheet/pkg/pipeline"
)

// designExts are the file types picked up when a design argument names a
// directory.
var designExts = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff"}

// designArg is one parsed path[:category[:copies]] argument.
type designArg struct {
	Path   string
	Label  string
	Copies int
}

// parseDesignArg splits path[:category[:copies]]. Missing fields fall back
// to defLabel and one copy.
func parseDesignArg(arg, defLabel string) (designArg, error) {
	d := designArg{Label: defLabel, Copies: 1}

	fields := strings.Split(arg, ":")
	if len(fields) > 3 {
		return d, errors.New(errors.ErrCodeInvalidInput, "%q: want path[:category[:copies]]", arg)
	}
	d.Path = fields[0]
	if d.Path == "" {
		return d, errors.New(errors.ErrCodeInvalidPath, "%q: missing design path", arg)
	}
	if len(fields) > 1 && fields[1] != "" {
		d.Label = fields[1]
	}
	if len(fields) > 2 {
		n, err := strconv.Atoi(strings.TrimSpace(fields[2]))
		if err != nil {
			return d, errors.New(errors.ErrCodeInvalidInput, "%q: copies must be a whole number", arg)
		}
		d.Copies = n
	}
	return d, nil
}

// expand turns a directory argument into one argument per design file, in
// name order. File arguments are returned unchanged.
func (d designArg) expand() ([]designArg, error) {
	info, err := os.Stat(d.Path)
	if err != nil || !info.IsDir() {
		return []designArg{d}, nil
	}

	entries, err := os.ReadDir(d.Path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", d.Path)
	}
	var out []designArg
	for _, e := range entries {
		if e.IsDir() || !slices.Contains(designExts, strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		f := d
		f.Path = filepath.Join(d.Path, e.Name())
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidPath, "no designs found in %s", d.Path)
	}
	return out, nil
}

// input converts the argument into a pipeline input that reads the file
// when the run gets to it.
func (d designArg) input() pipeline.Input {
	path := d.Path
	return pipeline.Input{
		Name:   filepath.Base(path),
		Label:  d.Label,
		Copies: d.Copies,
		Open: func() ([]byte, error) {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeDecodeFailure, err, "read %s", path)
			}
			return data, nil
		},
	}
}

// parseDesignArgs parses and expands every argument.
func parseDesignArgs(args []string, defLabel string) ([]designArg, error) {
	var out []designArg
	for _, a := range args {
		d, err := parseDesignArg(a, defLabel)
		if err != nil {
			return nil, err
		}
		files, err := d.expand()
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	return out, nil
}

func toInputs(args []designArg) []pipeline.Input {
	inputs := make([]pipeline.Input, len(args))
	for i, a := range args {
		inputs[i] = a.input()
	}
	return inputs
}
