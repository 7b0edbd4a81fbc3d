// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"fmt"

	"github.com/golangee/rstdoc/token"
	"github.com/pkg/errors"
)

// ErrInvalidUTF8 is the cause of a ParseError for input that is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("invalid utf-8 sequence")

// Pass identifies an entry point of the parser.
type Pass int

const (
	PassReferences Pass = iota + 1
	PassNotes
	PassDocument
)

func (p Pass) String() string {
	switch p {
	case PassReferences:
		return "references"
	case PassNotes:
		return "notes"
	case PassDocument:
		return "document"
	default:
		return fmt.Sprintf("Pass(%d)", int(p))
	}
}

// ParseError is a grammar failure: the input does not match the expected
// production at some position.
type ParseError struct {
	Pass  Pass
	Range token.Position
	Msg   string
	Hint  string
	Cause error
}

func newParseError(pass Pass, node token.Node, msg string) *ParseError {
	return &ParseError{
		Pass:  pass,
		Range: token.Position{BeginPos: node.Begin(), EndPos: node.End()},
		Msg:   msg,
	}
}

func (e *ParseError) withHint(hint string) *ParseError {
	e.Hint = hint
	return e
}

func (e *ParseError) withCause(err error) *ParseError {
	e.Cause = err
	return e
}

// Pos returns the position where the failure starts.
func (e *ParseError) Pos() token.Pos {
	return e.Range.BeginPos
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s: %s pass: %s", e.Range.BeginPos, e.Pass, e.Msg)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}

	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Explain renders the failure with the offending source line of src.
func (e *ParseError) Explain(src string) string {
	return token.NewPosError(e.Range, e.Pass.String()+" pass: "+e.Msg).
		SetHint(e.Hint).
		SetCause(e.Cause).
		Explain(src)
}
