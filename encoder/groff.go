// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package encoder

import (
	"io"
	"strconv"
	"strings"

	"github.com/golangee/rstdoc/doc"
)

// GroffEncoder writes groff using the mm macro package.
type GroffEncoder struct {
	output
	// bol is set if the output is at the beginning of a line.
	bol bool
}

func NewGroffEncoder(w io.Writer, ext doc.Extensions) *GroffEncoder {
	return &GroffEncoder{output: newOutput(w, ext), bol: true}
}

func (e *GroffEncoder) Encode(root *doc.Node) error {
	e.elements(root)

	return e.finalize()
}

// write tracks whether the output ends with a newline.
func (e *GroffEncoder) write(s string) {
	if s == "" {
		return
	}

	e.writeString(s)
	e.bol = strings.HasSuffix(s, "\n")
}

func (e *GroffEncoder) newline() {
	if !e.bol {
		e.write("\n")
	}
}

// request starts a macro request on its own line.
func (e *GroffEncoder) request(s string) {
	e.newline()
	e.write(s + "\n")
}

func (e *GroffEncoder) elements(n *doc.Node) {
	for ; n != nil; n = n.Next() {
		e.element(n)
	}
}

func (e *GroffEncoder) wrap(open string, n *doc.Node, close string) {
	e.write(open)
	e.elements(n.FirstChild())
	e.write(close)
}

func (e *GroffEncoder) element(n *doc.Node) {
	switch n.Tag() {
	case doc.STR, doc.RAW:
		e.text(text(n))
	case doc.SPACE:
		e.write(text(n))
	case doc.LINEBREAK:
		e.request(".br")
	case doc.ELLIPSIS:
		e.write("...")
	case doc.EMDASH:
		e.write(`\[em]`)
	case doc.ENDASH:
		e.write(`\[en]`)
	case doc.APOSTROPHE:
		e.write("'")
	case doc.SINGLEQUOTED:
		e.wrap("`", n, "'")
	case doc.DOUBLEQUOTED:
		e.wrap(`\[lq]`, n, `\[rq]`)
	case doc.CODE:
		e.write(`\fC`)
		e.text(text(n))
		e.write(`\fR`)
	case doc.HTML, doc.HTMLBLOCK, doc.REFERENCE, doc.TABLESEPARATOR, doc.CELLSPAN:
		// not representable
	case doc.LINK:
		l, _ := n.Link()
		e.elements(l.Label)
		if plain := doc.PlainText(l.Label); plain != l.URL {
			e.write(" (")
			e.text(l.URL)
			e.write(")")
		}
	case doc.IMAGE:
		l, _ := n.Link()
		e.write("[IMAGE: ")
		e.text(doc.PlainText(l.Label))
		e.write("]")
	case doc.EMPH:
		e.wrap(`\fI`, n, `\fR`)
	case doc.STRONG:
		e.wrap(`\fB`, n, `\fR`)
	case doc.STRIKE, doc.LIST:
		e.elements(n.FirstChild())
	case doc.PLAIN:
		e.elements(n.FirstChild())
		e.newline()
	case doc.H1TITLE:
		e.heading(n, 1)
	case doc.H1, doc.H2, doc.H3, doc.H4, doc.H5, doc.H6:
		e.heading(n, n.Tag().Level())
	case doc.PARA:
		e.request(".P")
		e.elements(n.FirstChild())
		e.newline()
	case doc.HRULE:
		e.request(".sp")
		e.request(`\l'\n(.lu'`)
	case doc.VERBATIM:
		e.verbatim(text(n))
	case doc.CODEBLOCK:
		c, _ := n.Code()
		e.verbatim(c.Str)
	case doc.BULLETLIST:
		e.list(".BL", n)
	case doc.ORDEREDLIST:
		e.list(".AL", n)
	case doc.LISTITEM:
		e.request(".LI")
		e.elements(n.FirstChild())
	case doc.BLOCKQUOTE:
		e.request(".DS I")
		e.elements(n.FirstChild())
		e.request(".DE")
	case doc.NOTE:
		e.write(`\*F`)
		e.request(".FS")
		e.elements(n.FirstChild())
		e.request(".FE")
	case doc.DEFINITIONLIST:
		e.request(".VL 4")
		e.elements(n.FirstChild())
		e.request(".LE 1")
	case doc.DEFTITLE:
		e.request(`.LI "` + quoteGroff(doc.PlainText(n.FirstChild())) + `"`)
	case doc.DEFDATA:
		e.elements(n.FirstChild())
	case doc.TABLE:
		e.table(n)
	default:
		e.elements(n.FirstChild())
	}
}

func (e *GroffEncoder) heading(n *doc.Node, level int) {
	e.request(".H " + strconv.Itoa(level) + ` "` + quoteGroff(doc.PlainText(n.FirstChild())) + `"`)
}

func (e *GroffEncoder) list(macro string, n *doc.Node) {
	e.request(macro)
	e.elements(n.FirstChild())
	e.request(".LE 1")
}

func (e *GroffEncoder) verbatim(s string) {
	e.request(".VERBON 2")
	for _, l := range strings.Split(s, "\n") {
		e.write(escapeGroffLine(l) + "\n")
	}

	e.request(".VERBOFF")
}

func (e *GroffEncoder) text(s string) {
	s = escapeGroff(s)
	if e.bol {
		s = escapeGroffLine(s)
	}

	e.write(s)
}

func (e *GroffEncoder) table(n *doc.Node) {
	cols := 0
	for _, part := range children(n) {
		for _, row := range children(part) {
			cols = max(cols, doc.Len(row.FirstChild()))
		}
	}

	e.request(".TS")
	e.request("allbox;")
	e.request(strings.TrimSpace(strings.Repeat("l ", cols)) + ".")

	for _, part := range children(n) {
		for _, row := range children(part) {
			cells := make([]string, 0, cols)
			for _, cell := range children(row) {
				cells = append(cells, escapeGroff(doc.PlainText(cell.FirstChild())))
			}

			e.write(strings.Join(cells, "\t") + "\n")
		}
	}

	e.request(".TE")
}

var groffEscaper = strings.NewReplacer(`\`, `\e`)

// escapeGroff escapes the groff escape character.
func escapeGroff(s string) string {
	return groffEscaper.Replace(s)
}

// quoteGroff escapes s for a quoted macro argument.
func quoteGroff(s string) string {
	return strings.ReplaceAll(escapeGroff(s), `"`, `\(dq`)
}

// escapeGroffLine protects a line starting with a control character.
func escapeGroffLine(s string) string {
	if strings.HasPrefix(s, ".") || strings.HasPrefix(s, "'") {
		return `\&` + s
	}

	return s
}
