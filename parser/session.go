// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/golangee/rstdoc/doc"
	"github.com/golangee/rstdoc/token"
	"github.com/sirupsen/logrus"
)

// Config configures a Session.
type Config struct {
	// File names the input in positions, it may be empty.
	File       string
	Extensions doc.Extensions
	// Arena allocates all nodes. A new arena is used if nil.
	Arena *doc.Arena
	// Include resolves the argument of an include directive into a block
	// sequence allocated in Arena. Includes fail if nil.
	Include func(name string) (*doc.Node, error)
	Logger  logrus.FieldLogger
	// Strict turns precondition violations into panics.
	Strict bool
}

// A Session holds everything one parse of one input needs: the input, the
// reference and note tables and the per document state. Sessions are
// independent of each other, so nested and concurrent parses each use their own.
type Session struct {
	cfg   Config
	src   string
	lines []line
	arena *doc.Arena
	log   logrus.FieldLogger

	refs  *doc.Node
	notes *doc.Node

	// collected by the references pass
	explicitRefs, implicitRefs doc.List
	// collected by the notes pass
	noteList  doc.List
	autoCount int

	// document pass state
	titleStyles []string
	titleStyle  string
	level       int
	blocksSeen  bool
	noteIndex   []noteEntry
	autoUsed    int
	symbolUsed  int
}

// New creates a session over src.
func New(src string, cfg Config) *Session {
	if cfg.Arena == nil {
		cfg.Arena = doc.NewArena(doc.WithLogger(cfg.Logger), doc.Strict(cfg.Strict))
	}

	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	return &Session{
		cfg:   cfg,
		src:   src,
		arena: cfg.Arena,
		log:   cfg.Logger.WithField("file", cfg.File),
	}
}

// Arena returns the arena all nodes of this session are allocated in.
func (s *Session) Arena() *doc.Arena {
	return s.arena
}

// SetReferences makes a reference table visible to the following passes.
// The table is only read.
func (s *Session) SetReferences(refs *doc.Node) {
	s.refs = refs
}

// SetNotes makes a note table visible to the document pass. The table is only read.
func (s *Session) SetNotes(notes *doc.Node) {
	s.notes = notes
}

// References runs the first pass. It returns the sequence of REFERENCE
// nodes of all hyperlink targets, explicit ones first, followed by the
// implicit targets of section titles.
func (s *Session) References() (*doc.Node, error) {
	err := s.run(PassReferences, func(b *blocks) error {
		_, err := b.parse(s.lines)
		return err
	})
	if err != nil {
		s.explicitRefs.Take()
		s.implicitRefs.Take()

		return nil, err
	}

	var table doc.List
	table.Push(s.explicitRefs.Take())
	table.Push(s.implicitRefs.Take())

	return table.Head(), nil
}

// Notes runs the second pass and returns the sequence of NOTE nodes. The
// reference table set before is visible to the note bodies. Calling it
// without the Notes extension is a precondition violation.
func (s *Session) Notes() (*doc.Node, error) {
	if !s.cfg.Extensions.Has(doc.Notes) {
		if s.cfg.Strict {
			panic("parser: notes pass without the notes extension")
		}

		s.log.Warn("notes pass requested without the notes extension")

		return nil, nil
	}

	err := s.run(PassNotes, func(b *blocks) error {
		_, err := b.parse(s.lines)
		return err
	})
	if err != nil {
		s.noteList.Take()
		return nil, err
	}

	return s.noteList.Take(), nil
}

// Document runs the final pass and returns the LIST root of the document.
func (s *Session) Document() (*doc.Node, error) {
	s.titleStyles, s.titleStyle, s.level, s.blocksSeen = nil, "", 0, false
	s.indexNotes()

	var root *doc.Node
	err := s.run(PassDocument, func(b *blocks) error {
		body, err := b.parse(s.lines)
		if err != nil {
			return err
		}

		root = s.arena.Element(doc.LIST, body)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return root, nil
}

// run executes one pass. Whatever the pass allocated is released if it fails.
func (s *Session) run(pass Pass, fn func(b *blocks) error) error {
	if err := s.validate(pass); err != nil {
		return err
	}

	if s.lines == nil {
		s.lines = splitLines(s.cfg.File, s.src)
	}

	mark := s.arena.Mark()
	b := &blocks{s: s, pass: pass, top: true}

	if err := fn(b); err != nil {
		s.arena.Rollback(mark)
		return err
	}

	return nil
}

func (s *Session) validate(pass Pass) error {
	if utf8.ValidString(s.src) {
		return nil
	}

	line, col, off := 1, 1, 0
	for off < len(s.src) {
		r, size := utf8.DecodeRuneInString(s.src[off:])
		if r == utf8.RuneError && size <= 1 {
			break
		}

		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}

		off += size
	}

	pos := token.Pos{File: s.cfg.File, Line: line, Col: col, Offset: off}

	return newParseError(pass, token.NewNode(pos, pos), "cannot decode input").withCause(ErrInvalidUTF8)
}

// lookupReference finds the target of a reference name in the reference
// table. Indirect targets, whose url is itself a reference, are followed.
func (s *Session) lookupReference(name string) (doc.Link, bool) {
	key := doc.NormalizeName(name)

	for hops := 0; hops < 16; hops++ {
		ref, ok := s.findReference(key)
		if !ok {
			return doc.Link{}, false
		}

		target, indirect := indirectName(ref.URL)
		if !indirect {
			return ref, true
		}

		key = doc.NormalizeName(target)
	}

	return doc.Link{}, false
}

func (s *Session) findReference(key string) (doc.Link, bool) {
	for n := s.refs; n != nil; n = n.Next() {
		l, ok := n.Link()
		if ok && doc.NormalizeName(doc.PlainText(l.Label)) == key {
			return l, true
		}
	}

	return doc.Link{}, false
}

// indirectName reports whether url refers to another target, like "other_" or "`other name`_".
func indirectName(url string) (string, bool) {
	if !strings.HasSuffix(url, "_") || strings.HasSuffix(url, "\\_") || strings.ContainsAny(url, "/") {
		return "", false
	}

	name := strings.TrimSuffix(url, "_")
	if strings.HasPrefix(name, "`") && strings.HasSuffix(name, "`") && len(name) > 1 {
		return name[1 : len(name)-1], true
	}

	if name == "" || strings.ContainsAny(name, " `") {
		return "", false
	}

	return name, true
}
