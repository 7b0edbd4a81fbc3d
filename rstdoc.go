// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

// Package rstdoc resolves reStructuredText into a document tree. The input
// is parsed three times: the first pass collects hyperlink targets, the
// second collects footnotes and the third builds the tree, with the tables
// of the earlier passes visible to it.
package rstdoc

import (
	"time"

	"github.com/golangee/rstdoc/doc"
	"github.com/golangee/rstdoc/parser"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Document is a resolved tree together with the arena that owns it.
type Document struct {
	Root  *doc.Node
	Arena *doc.Arena
}

// Close releases the tree. It is safe to call Close more than once.
func (d *Document) Close() {
	if d.Root == nil {
		return
	}

	doc.DestroyTree(d.Root)
	d.Root = nil
}

// DestroyTree releases a tree or table and everything it owns.
func DestroyTree(root *doc.Node) {
	doc.DestroyTree(root)
}

// DestroyNode releases a single node and its payload but neither its children nor its siblings.
func DestroyNode(n *doc.Node) {
	doc.DestroyNode(n)
}

// CollectReferences runs the first pass and returns the reference table.
func CollectReferences(text string, opts Options) (*doc.Node, error) {
	r := newResolver(opts, opts.arena(), opts.File, 0)

	refs, err := r.pass(parser.PassReferences, r.session(text).References)
	if err != nil {
		return nil, errors.Wrap(err, "cannot collect references")
	}

	return refs, nil
}

// CollectNotes runs the second pass with refs visible and returns the note
// table. Without the Notes extension it returns nil and allocates nothing.
func CollectNotes(text string, opts Options, refs *doc.Node) (*doc.Node, error) {
	if !opts.Extensions.Has(doc.Notes) {
		return nil, nil
	}

	r := newResolver(opts, opts.arena(), opts.File, 0)
	s := r.session(text)
	s.SetReferences(refs)

	notes, err := r.pass(parser.PassNotes, s.Notes)
	if err != nil {
		return nil, errors.Wrap(err, "cannot collect notes")
	}

	return notes, nil
}

// ParseDocument runs the final pass with both tables visible and returns the
// root of the document. The tables are only read.
func ParseDocument(text string, opts Options, refs, notes *doc.Node) (*doc.Node, error) {
	r := newResolver(opts, opts.arena(), opts.File, 0)
	s := r.session(text)
	s.SetReferences(refs)
	s.SetNotes(notes)

	root, err := r.pass(parser.PassDocument, s.Document)
	if err != nil {
		return nil, errors.Wrap(err, "cannot parse document")
	}

	return root, nil
}

// Resolve runs all passes in one arena. The tables are released once the
// document is built. If any pass fails, everything allocated by the call is
// released before the error is returned.
func Resolve(text string, opts Options) (*Document, error) {
	a := opts.arena()
	r := newResolver(opts, a, opts.File, 0)

	root, err := r.resolve(text)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot resolve %s", describe(opts.File))
	}

	return &Document{Root: root, Arena: a}, nil
}

func describe(file string) string {
	if file == "" {
		return "document"
	}

	return file
}

// resolver runs the passes over one input. Included documents get their own
// resolver sharing the arena.
type resolver struct {
	opts  Options
	arena *doc.Arena
	file  string
	depth int
	log   logrus.FieldLogger
}

func newResolver(opts Options, a *doc.Arena, file string, depth int) *resolver {
	return &resolver{
		opts:  opts,
		arena: a,
		file:  file,
		depth: depth,
		log:   opts.logger().WithFields(logrus.Fields{"file": file, "depth": depth}),
	}
}

func (r *resolver) session(text string) *parser.Session {
	return parser.New(text, parser.Config{
		File:       r.file,
		Extensions: r.opts.Extensions,
		Arena:      r.arena,
		Include:    r.include,
		Logger:     r.log,
		Strict:     r.opts.Strict,
	})
}

func (r *resolver) resolve(text string) (root *doc.Node, err error) {
	mark := r.arena.Mark()
	defer func() {
		if err != nil {
			r.arena.Rollback(mark)
		}
	}()

	s := r.session(text)

	refs, err := r.pass(parser.PassReferences, s.References)
	if err != nil {
		return nil, err
	}

	s.SetReferences(refs)

	var notes *doc.Node
	if r.opts.Extensions.Has(doc.Notes) {
		if notes, err = r.pass(parser.PassNotes, s.Notes); err != nil {
			return nil, err
		}

		s.SetNotes(notes)
	}

	if root, err = r.pass(parser.PassDocument, s.Document); err != nil {
		return nil, err
	}

	doc.DestroyTree(refs)
	doc.DestroyTree(notes)

	return root, nil
}

func (r *resolver) pass(p parser.Pass, run func() (*doc.Node, error)) (*doc.Node, error) {
	log := r.log.WithField("pass", p.String())
	log.Debug("pass started")

	start := time.Now()
	n, err := run()
	d := time.Since(start)

	if r.opts.Observer != nil {
		r.opts.Observer.ObservePass(p, d, err)
	}

	if err != nil {
		log.WithError(err).Debug("pass failed")
		return nil, err
	}

	log.WithFields(logrus.Fields{"nodes": doc.Len(n), "duration": d}).Debug("pass finished")

	return n, nil
}

// include resolves an included document in a new session on the same arena,
// so the tables of the including document stay untouched.
func (r *resolver) include(name string) (*doc.Node, error) {
	if r.opts.Includer == nil {
		return nil, ErrNoIncluder
	}

	if r.depth >= r.opts.maxIncludeDepth() {
		return nil, errors.WithStack(ErrIncludeDepth)
	}

	file := includePath(r.file, name)

	text, err := r.opts.Includer.Include(file)
	if err != nil {
		return nil, err
	}

	r.log.WithField("include", file).Debug("including document")

	return newResolver(r.opts, r.arena, file, r.depth+1).resolve(text)
}
