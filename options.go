// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package rstdoc

import (
	"time"

	"github.com/golangee/rstdoc/doc"
	"github.com/golangee/rstdoc/parser"
	"github.com/sirupsen/logrus"
)

// DefaultMaxIncludeDepth bounds nested include directives if Options.MaxIncludeDepth is zero.
const DefaultMaxIncludeDepth = 8

// Options configures the resolve functions. The zero value is usable.
type Options struct {
	// File names the input in error positions and is the base of relative includes.
	File       string
	Extensions doc.Extensions
	// Arena allocates every node. Each call uses a new arena if nil. A shared
	// arena keeps only live nodes, so it may serve any number of Resolve and
	// Close cycles.
	Arena *doc.Arena
	// Recorder observes allocations of arenas created by a call.
	Recorder doc.Recorder
	// Observer is notified after every pass.
	Observer Observer
	// Includer loads the documents of include directives. Includes fail if nil.
	Includer        Includer
	Logger          logrus.FieldLogger
	MaxIncludeDepth int
	// Strict turns precondition violations into panics.
	Strict bool
}

// An Observer receives the outcome and duration of each parser pass.
type Observer interface {
	ObservePass(pass parser.Pass, d time.Duration, err error)
}

func (o Options) logger() logrus.FieldLogger {
	if o.Logger == nil {
		return logrus.StandardLogger()
	}

	return o.Logger
}

func (o Options) arena() *doc.Arena {
	if o.Arena != nil {
		return o.Arena
	}

	return doc.NewArena(doc.WithRecorder(o.Recorder), doc.WithLogger(o.Logger), doc.Strict(o.Strict))
}

func (o Options) maxIncludeDepth() int {
	if o.MaxIncludeDepth <= 0 {
		return DefaultMaxIncludeDepth
	}

	return o.MaxIncludeDepth
}
