// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	argsEnvVar      = "MEMGO_ARGS"
	classpathEnvVar = "MEMGO_CLASSPATH"
	localConfigFile = ".memgo-args"
)

// EnvArgs returns memgo arguments from the environment.
func EnvArgs() []string {
	return strings.Fields(os.Getenv(argsEnvVar))
}

// EnvClasspath returns the classpath from the environment. It is nil if the
// variable is not set or empty.
func EnvClasspath() []string {
	return splitList(os.Getenv(classpathEnvVar))
}

// LocalConfigArgs returns memgo arguments from a local config file.
//
// The file's format is one argument per line. Environment variables may be used
// and are expanded with [os.ExpandEnv].
func LocalConfigArgs(fsys fs.FS, file string) ([]string, error) {
	conf, err := fs.ReadFile(fsys, file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("read file: %w", err)
	}

	return lines(os.ExpandEnv(string(conf))), nil
}

// MergedArgs returns the given args prepended with the args from the local
// config file and the environment, in that order.
func MergedArgs(args []string, fsys fs.FS, file string) ([]string, error) {
	localArgs, err := LocalConfigArgs(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("local config: %w", err)
	}

	merged := append(localArgs, EnvArgs()...)

	return append(merged, args...), nil
}

func lines(content string) []string {
	result := []string{}

	for line := range strings.SplitSeq(content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			result = append(result, line)
		}
	}

	return result
}

func splitList(list string) []string {
	var entries []string

	for entry := range strings.SplitSeq(list, string(filepath.ListSeparator)) {
		if entry != "" {
			entries = append(entries, entry)
		}
	}

	return entries
}
