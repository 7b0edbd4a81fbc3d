// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package token

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrDetail is a message attached to a source range.
type ErrDetail struct {
	Node    Node
	Message string
}

func NewErrDetail(node Node, msg string) ErrDetail {
	return ErrDetail{
		Node:    node,
		Message: msg,
	}
}

// PosError is an error with one or more positional details and an optional hint.
type PosError struct {
	Details []ErrDetail
	Cause   error
	Hint    string
}

func NewPosError(node Node, msg string, details ...ErrDetail) *PosError {
	tmp := append([]ErrDetail{}, ErrDetail{
		Node:    node,
		Message: msg,
	})
	tmp = append(tmp, details...)

	return &PosError{
		Details: tmp,
	}
}

func (p *PosError) SetCause(err error) *PosError {
	p.Cause = err
	return p
}

func (p *PosError) SetHint(str string) *PosError {
	p.Hint = str
	return p
}

func (p *PosError) Unwrap() error {
	return p.Cause
}

func (p *PosError) firstDetail() ErrDetail {
	if len(p.Details) > 0 {
		return p.Details[0]
	}

	return ErrDetail{}
}

func (p *PosError) Error() string {
	d := p.firstDetail()
	msg := d.Message
	if d.Node != nil {
		msg = d.Node.Begin().String() + ": " + msg
	}

	if p.Cause == nil {
		return msg
	}

	return msg + ": " + p.Cause.Error()
}

func posLine(lines []string, pos Pos) string {
	no := pos.Line - 1

	if no >= len(lines) {
		no = len(lines) - 1
	}

	ltext := ""
	if no < len(lines) && no >= 0 {
		ltext = lines[no]
	}

	return ltext
}

// Explain renders every detail with the offending line of src and a caret marker, e.g.
//
//	doc.rst:3:1
//	  |
//	3 |.. frobnicate:: x
//	  |^~~~ unknown directive "frobnicate"
func (p *PosError) Explain(src string) string {
	lines := strings.Split(src, "\n")

	// grab the required indent for the line numbers
	indent := 0

	for _, detail := range p.Details {
		if detail.Node == nil {
			continue
		}

		l := len(strconv.Itoa(detail.Node.Begin().Line))
		if l > indent {
			indent = l
		}
	}

	sb := &strings.Builder{}

	for i, detail := range p.Details {
		if detail.Node == nil {
			sb.WriteString(detail.Message)
			sb.WriteString("\n")

			continue
		}

		begin, end := detail.Node.Begin(), detail.Node.End()
		line := posLine(lines, begin)

		if i == 0 {
			sb.WriteString(begin.String())
			sb.WriteString("\n")
		}

		sb.WriteString(fmt.Sprintf("%"+strconv.Itoa(indent)+"s |\n", ""))
		sb.WriteString(fmt.Sprintf("%"+strconv.Itoa(indent)+"d |", begin.Line))
		sb.WriteString(line)
		sb.WriteString("\n")

		sb.WriteString(fmt.Sprintf("%"+strconv.Itoa(indent)+"s |", ""))
		sb.WriteString(strings.Repeat(" ", max(begin.Col-1, 0)))

		if end.Line != begin.Line || end.Col-begin.Col <= 1 {
			sb.WriteString("^~~~ ")
		} else {
			sb.WriteString(strings.Repeat("^", end.Col-begin.Col))
			sb.WriteRune(' ')
		}

		sb.WriteString(detail.Message)
		sb.WriteString("\n")

		if i < len(p.Details)-1 {
			sb.WriteString(strings.Repeat(" ", indent))
			sb.WriteString("...\n")
		}
	}

	if p.Hint != "" {
		sb.WriteString(fmt.Sprintf("%"+strconv.Itoa(indent)+"s |\n", ""))
		sb.WriteString(fmt.Sprintf("%"+strconv.Itoa(indent)+"s = hint: %s\n", "", p.Hint))
	}

	return sb.String()
}
