// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

// Package encoder renders a resolved document tree into an output format.
// Encoders only read the tree.
package encoder

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/golangee/rstdoc/doc"
	"github.com/pkg/errors"
)

// Format is an output format.
type Format int

const (
	HTML Format = iota
	LaTeX
	GroffMM
	ODF
)

var formatNames = map[Format]string{
	HTML:    "html",
	LaTeX:   "latex",
	GroffMM: "groff",
	ODF:     "odf",
}

func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}

	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat parses a format name like "html" or "groff-mm".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "html", "":
		return HTML, nil
	case "latex", "tex":
		return LaTeX, nil
	case "groff", "groff-mm", "mm":
		return GroffMM, nil
	case "odf", "fodt":
		return ODF, nil
	}

	return 0, fmt.Errorf("unknown output format %q", s)
}

// Encoder renders a tree.
type Encoder interface {
	Encode(root *doc.Node) error
}

// New returns the encoder of the format writing to w.
func New(w io.Writer, format Format, ext doc.Extensions) (Encoder, error) {
	switch format {
	case HTML:
		return NewHTMLEncoder(w, ext), nil
	case LaTeX:
		return NewLaTeXEncoder(w, ext), nil
	case GroffMM:
		return NewGroffEncoder(w, ext), nil
	case ODF:
		return NewODFEncoder(w, ext), nil
	}

	return nil, fmt.Errorf("unknown output format %s", format)
}

// Render writes the tree starting at root in the given format.
func Render(w io.Writer, root *doc.Node, format Format, ext doc.Extensions) error {
	enc, err := New(w, format, ext)
	if err != nil {
		return err
	}

	return enc.Encode(root)
}

// output is the buffered writer shared by all encoders. The first write
// error is kept and reported by finalize.
type output struct {
	writer *bufio.Writer
	ext    doc.Extensions
	err    error
}

func newOutput(w io.Writer, ext doc.Extensions) output {
	return output{writer: bufio.NewWriter(w), ext: ext}
}

// writeString is a convenience method to write strings to the underlying writer.
func (o *output) writeString(s string) {
	if o.err != nil {
		return
	}

	_, o.err = o.writer.WriteString(s)
}

func (o *output) finalize() error {
	if o.err != nil {
		return errors.Wrap(o.err, "cannot write output")
	}

	return errors.Wrap(o.writer.Flush(), "cannot flush output")
}

func text(n *doc.Node) string {
	s, _ := n.Text()
	return s
}

// children returns the children of n as a slice.
func children(n *doc.Node) []*doc.Node {
	var res []*doc.Node
	for c := n.FirstChild(); c != nil; c = c.Next() {
		res = append(res, c)
	}

	return res
}
