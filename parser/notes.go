// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/golangee/rstdoc/doc"
)

// footnote symbols in the order of their use, repeated symbols follow.
var noteSymbols = []string{"*", "†", "‡", "§", "¶", "#", "♠", "♥", "♦", "♣"}

// noteEntry is a footnote of the note table together with the label shown to readers.
type noteEntry struct {
	label   string
	display string
	node    *doc.Node
}

// indexNotes numbers the note table. Auto-numbered notes take the smallest
// numbers not used by an explicitly numbered note.
func (s *Session) indexNotes() {
	s.noteIndex = s.noteIndex[:0]
	s.autoUsed = 0
	s.symbolUsed = 0

	used := mapset.NewThreadUnsafeSet[string]()
	for n := s.notes; n != nil; n = n.Next() {
		if label, ok := n.Text(); ok {
			used.Add(label)
		}
	}

	next := 1
	symbols := 0

	for n := s.notes; n != nil; n = n.Next() {
		label, ok := n.Text()
		if !ok {
			continue
		}

		display := label
		switch {
		case label == "*":
			display = symbol(symbols)
			symbols++
		case strings.HasPrefix(label, "#"):
			for used.Contains(strconv.Itoa(next)) {
				next++
			}

			display = strconv.Itoa(next)
			used.Add(display)
			next++
		}

		s.noteIndex = append(s.noteIndex, noteEntry{label: label, display: display, node: n})
	}
}

func symbol(k int) string {
	return strings.Repeat(noteSymbols[k%len(noteSymbols)], k/len(noteSymbols)+1)
}

// noteFor finds the note of a footnote reference label. Anonymous "#" and
// "*" references take the next unused note of their kind.
func (s *Session) noteFor(label string) (noteEntry, bool) {
	switch label {
	case "#":
		if e, ok := s.nthNote("#", s.autoUsed); ok {
			s.autoUsed++
			return e, true
		}

		return noteEntry{}, false
	case "*":
		if e, ok := s.nthNote("*", s.symbolUsed); ok {
			s.symbolUsed++
			return e, true
		}

		return noteEntry{}, false
	}

	for _, e := range s.noteIndex {
		if e.label == label {
			return e, true
		}
	}

	return noteEntry{}, false
}

func (s *Session) nthNote(label string, k int) (noteEntry, bool) {
	for _, e := range s.noteIndex {
		if e.label != label {
			continue
		}

		if k == 0 {
			return e, true
		}

		k--
	}

	return noteEntry{}, false
}
