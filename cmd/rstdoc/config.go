// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"io"
	"os"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/golangee/rstdoc/doc"
	"github.com/golangee/rstdoc/encoder"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// environment variables providing defaults for flags which are not set explicitly
const (
	envFormat     = "RSTDOC_FORMAT"
	envExtensions = "RSTDOC_EXTENSIONS"
	envLogLevel   = "RSTDOC_LOG_LEVEL"
)

type config struct {
	format     encoder.Format
	extensions doc.Extensions
	logLevel   logrus.Level
	// input is empty for stdin.
	input string
	// output is empty for stdout.
	output string
	ast    bool
	stats  bool
}

func parseConfig(args []string, stderr io.Writer) (config, error) {
	fs := flag.NewFlagSet("rstdoc", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		envFile    = fs.String("env", ".env", "Path to environment file")
		format     = fs.String("f", "html", "Output format (html, latex, groff, odf)")
		extensions = fs.String("x", "", "Comma separated extensions (smart, notes, filter-html, filter-styles, strike, dlists, all)")
		output     = fs.String("o", "", "Output file, stdout if empty")
		logLevel   = fs.String("log-level", "info", "Logging level (debug, info, warn, error)")
		ast        = fs.Bool("ast", false, "Dump the document tree to stderr")
		stats      = fs.Bool("stats", false, "Log allocation and timing statistics")
	)

	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	if fs.NArg() > 1 {
		return config{}, errors.Errorf("expected at most one input file, got %d", fs.NArg())
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config{}, errors.Wrapf(err, "cannot load %s", *envFile)
	}

	set := mapset.NewThreadUnsafeSet[string]()
	fs.Visit(func(f *flag.Flag) {
		set.Add(f.Name)
	})

	fromEnv := func(name, key string, value *string) {
		if v, ok := os.LookupEnv(key); ok && !set.Contains(name) {
			*value = v
		}
	}

	fromEnv("f", envFormat, format)
	fromEnv("x", envExtensions, extensions)
	fromEnv("log-level", envLogLevel, logLevel)

	cfg := config{
		input:  fs.Arg(0),
		output: *output,
		ast:    *ast,
		stats:  *stats,
	}

	var err error
	if cfg.format, err = encoder.ParseFormat(*format); err != nil {
		return config{}, err
	}

	if cfg.extensions, err = doc.ParseExtensions(*extensions); err != nil {
		return config{}, err
	}

	if cfg.logLevel, err = logrus.ParseLevel(*logLevel); err != nil {
		return config{}, errors.Wrap(err, "invalid log level")
	}

	return cfg, nil
}
