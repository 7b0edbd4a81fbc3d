// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package token

import (
	"strconv"

	"github.com/alecthomas/participle/v2/lexer"
)

// Node contains access to the start and end positions of a token.
type Node interface {
	Begin() Pos
	End() Pos
}

// A Pos describes a resolved position within a file.
type Pos struct {
	// File contains the name of the source, which may be empty for anonymous input.
	File string
	// Line denotes the one-based line number in the denoted File.
	Line int
	// Col denotes the one-based column number in the denoted Line.
	Col int
	// Offset denotes the zero-based byte offset in the denoted File.
	Offset int
}

// String returns the content in the "file:line:col" format.
func (p Pos) String() string {
	return p.File + ":" + strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Col)
}

// Advance returns the position of the given column offset within the same line.
func (p Pos) Advance(cols, bytes int) Pos {
	p.Col += cols
	p.Offset += bytes

	return p
}

// FromLexer converts a participle position, which is relative to a fragment starting at origin,
// into an absolute position.
func FromLexer(origin Pos, lp lexer.Position) Pos {
	if lp.Line <= 1 {
		return Pos{
			File:   origin.File,
			Line:   origin.Line,
			Col:    origin.Col + lp.Column - 1,
			Offset: origin.Offset + lp.Offset,
		}
	}

	return Pos{
		File:   origin.File,
		Line:   origin.Line + lp.Line - 1,
		Col:    lp.Column,
		Offset: origin.Offset + lp.Offset,
	}
}

// Position is a range between two positions and implements Node.
type Position struct {
	BeginPos Pos
	EndPos   Pos
}

func (p Position) Begin() Pos {
	return p.BeginPos
}

func (p Position) End() Pos {
	return p.EndPos
}

// NewNode creates a Node spanning begin to end.
func NewNode(begin, end Pos) Node {
	return Position{BeginPos: begin, EndPos: end}
}
