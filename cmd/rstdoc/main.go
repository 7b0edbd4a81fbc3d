// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

// Command rstdoc converts a reStructuredText document into HTML, LaTeX, groff or ODF.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golangee/rstdoc"
	"github.com/golangee/rstdoc/doc"
	"github.com/golangee/rstdoc/encoder"
	"github.com/golangee/rstdoc/metrics"
	"github.com/golangee/rstdoc/parser"
	"github.com/google/uuid"
	"github.com/k0kubun/pp"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}

		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := parseConfig(args, stderr)
	if err != nil {
		return err
	}

	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetLevel(cfg.logLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	log := logger.WithField("run", uuid.New().String())

	src, err := readInput(cfg.input, stdin)
	if err != nil {
		return err
	}

	opts := rstdoc.Options{
		Extensions: cfg.extensions,
		Logger:     log,
	}

	if cfg.input != "" && cfg.input != "-" {
		opts.File = filepath.Base(cfg.input)
		opts.Includer = rstdoc.DirIncluder(os.DirFS(filepath.Dir(cfg.input)))
	}

	reg := prometheus.NewRegistry()
	if cfg.stats {
		c := metrics.NewCollector(reg)
		opts.Recorder = c
		opts.Observer = c
	}

	start := time.Now()

	d, err := rstdoc.Resolve(src, opts)
	if err != nil {
		var perr *parser.ParseError
		if errors.As(err, &perr) && perr.Range.BeginPos.File == opts.File {
			fmt.Fprint(stderr, perr.Explain(src))
		}

		return err
	}

	defer d.Close()

	if cfg.ast {
		pp.ColoringEnabled = false

		if _, err := pp.Fprintln(stderr, doc.OutlineOf(d.Root)); err != nil {
			return errors.Wrap(err, "cannot dump the document tree")
		}
	}

	out, closeOut, err := openOutput(cfg.output, stdout)
	if err != nil {
		return err
	}

	if err := encoder.Render(out, d.Root, cfg.format, cfg.extensions); err != nil {
		_ = closeOut()
		return err
	}

	if err := closeOut(); err != nil {
		return errors.Wrap(err, "cannot close output")
	}

	if cfg.stats {
		logStats(log, reg, d.Arena.Stats(), len(src), time.Since(start))
	}

	return nil
}

func readInput(name string, stdin io.Reader) (string, error) {
	var (
		buf []byte
		err error
	)

	if name == "" || name == "-" {
		buf, err = io.ReadAll(stdin)
	} else {
		buf, err = os.ReadFile(name)
	}

	if err != nil {
		return "", errors.Wrap(err, "cannot read input")
	}

	return string(buf), nil
}

func openOutput(name string, stdout io.Writer) (io.Writer, func() error, error) {
	if name == "" || name == "-" {
		return stdout, func() error { return nil }, nil
	}

	f, err := os.Create(name)
	if err != nil {
		return nil, nil, errors.Wrap(err, "cannot create output")
	}

	return f, f.Close, nil
}

// logStats reports the arena accounting and the pass durations collected by the metrics registry.
func logStats(log logrus.FieldLogger, reg prometheus.Gatherer, s doc.Stats, size int, d time.Duration) {
	log.WithFields(logrus.Fields{
		"input":    humanize.Bytes(uint64(size)),
		"nodes":    humanize.Comma(int64(s.Nodes)),
		"buffers":  humanize.Comma(int64(s.Buffers)),
		"live":     humanize.Comma(int64(s.LiveNodes)),
		"duration": d,
	}).Info("converted document")

	families, err := reg.Gather()
	if err != nil {
		log.WithError(err).Warn("cannot gather metrics")
		return
	}

	for _, mf := range families {
		if mf.GetName() != "rstdoc_pass_duration_seconds" {
			continue
		}

		for _, m := range mf.GetMetric() {
			fields := logrus.Fields{}
			for _, l := range m.GetLabel() {
				fields[l.GetName()] = l.GetValue()
			}

			fields["duration"] = time.Duration(m.GetHistogram().GetSampleSum() * float64(time.Second))
			log.WithFields(fields).Info("pass")
		}
	}
}
