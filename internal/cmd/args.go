// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aibor/memgo/internal/driver"
	"github.com/aibor/memgo/internal/store"
)

const (
	optionPrefix  = "-memgo"
	argFilePrefix = "@"
)

// buildValueFlags are the go build flags that take their value as separate
// argument.
var buildValueFlags = map[string]bool{
	"C":             true,
	"asmflags":      true,
	"buildmode":     true,
	"compiler":      true,
	"covermode":     true,
	"coverpkg":      true,
	"gccgoflags":    true,
	"gcflags":       true,
	"installsuffix": true,
	"ldflags":       true,
	"mod":           true,
	"modfile":       true,
	"o":             true,
	"overlay":       true,
	"p":             true,
	"pgo":           true,
	"pkgdir":        true,
	"tags":          true,
	"toolexec":      true,
}

// args is the parsed command line.
type args struct {
	help      bool
	out       bool
	debug     bool
	run       *driver.RunSpec
	classpath []string
	archive   string
	codec     store.Codec

	buildFlags []string
	sources    []string
}

// parser parses command lines. Its file system access is replaceable for
// tests.
type parser struct {
	readFile func(name string) ([]byte, error)
	isDir    func(name string) bool
}

var defaultParser = parser{
	readFile: os.ReadFile,
	isDir: func(name string) bool {
		info, err := os.Stat(name)
		return err == nil && info.IsDir()
	},
}

// parse parses the given command line.
//
// It returns a [MalformedOptionError] for invalid memgo options.
func (p parser) parse(cmdline []string) (*args, error) {
	expanded, err := p.expand(cmdline, nil)
	if err != nil {
		return nil, err
	}

	result := &args{}

	for idx := 0; idx < len(expanded); idx++ {
		arg := expanded[idx]

		switch {
		case strings.HasPrefix(arg, optionPrefix):
			err := result.setOption(arg)
			if err != nil {
				return nil, err
			}
		case isSource(arg, p.isDir):
			result.sources = append(result.sources, arg)
		default:
			result.buildFlags = append(result.buildFlags, arg)

			if takesValue(arg) && idx+1 < len(expanded) {
				idx++
				result.buildFlags = append(result.buildFlags, expanded[idx])
			}
		}
	}

	return result, nil
}

// expand replaces argument file references by the lines of the file,
// recursively.
func (p parser) expand(cmdline []string, stack []string) ([]string, error) {
	var result []string

	for _, arg := range cmdline {
		name, isArgFile := strings.CutPrefix(arg, argFilePrefix)
		if !isArgFile {
			result = append(result, arg)
			continue
		}

		abs, err := filepath.Abs(name)
		if err != nil {
			return nil, fmt.Errorf("argument file %s: %w", name, err)
		}

		if slices.Contains(stack, abs) {
			return nil, fmt.Errorf("%w: %s", ErrArgFileCycle, name)
		}

		content, err := p.readFile(name)
		if err != nil {
			return nil, fmt.Errorf("argument file: %w", err)
		}

		nested, err := p.expand(lines(string(content)), append(stack, abs))
		if err != nil {
			return nil, err
		}

		result = append(result, nested...)
	}

	return result, nil
}

func (a *args) setOption(arg string) error {
	option, value, hasValue := strings.Cut(arg, ":")

	malformed := func(err error) error {
		return &MalformedOptionError{Option: arg, Err: err}
	}

	boolOptions := map[string]*bool{
		optionPrefix + "-help":  &a.help,
		optionPrefix + "-out":   &a.out,
		optionPrefix + "-debug": &a.debug,
	}

	if target, isBool := boolOptions[option]; isBool {
		if hasValue {
			return malformed(nil)
		}

		*target = true

		return nil
	}

	switch option {
	case optionPrefix + "-run":
		segments := nonEmpty(strings.Split(value, ":"))
		if len(segments) == 0 {
			return malformed(nil)
		}

		a.run = &driver.RunSpec{
			Name: segments[0],
			Args: segments[1:],
		}
	case optionPrefix + "-classpath":
		entries := splitList(value)
		if len(entries) == 0 {
			return malformed(nil)
		}

		a.classpath = append(a.classpath, entries...)
	case optionPrefix + "-archive":
		if value == "" {
			return malformed(nil)
		}

		a.archive = value
	case optionPrefix + "-compress":
		err := a.codec.UnmarshalText([]byte(value))
		if err != nil {
			return malformed(err)
		}
	default:
		return malformed(nil)
	}

	return nil
}

// isSource returns true for go files and for existing directories given with
// an explicit path prefix.
func isSource(arg string, isDir func(string) bool) bool {
	if strings.HasPrefix(arg, "-") {
		return false
	}

	if strings.HasSuffix(arg, ".go") {
		return true
	}

	for _, prefix := range []string{"./", "../", "/"} {
		if strings.HasPrefix(arg, prefix) {
			return isDir(arg)
		}
	}

	return false
}

func takesValue(arg string) bool {
	if strings.Contains(arg, "=") {
		return false
	}

	name := strings.TrimLeft(arg, "-")

	return len(arg) > len(name) && buildValueFlags[name]
}

func nonEmpty(segments []string) []string {
	return slices.DeleteFunc(segments, func(s string) bool {
		return s == ""
	})
}
