// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package encoder

import (
	"io"
	"strings"

	"github.com/golangee/rstdoc/doc"
)

var latexSections = [...]string{"", `\section`, `\subsection`, `\subsubsection`, `\paragraph`, `\subparagraph`, `\textbf`}

// LaTeXEncoder writes the body of a LaTeX document.
type LaTeXEncoder struct {
	output
}

func NewLaTeXEncoder(w io.Writer, ext doc.Extensions) *LaTeXEncoder {
	return &LaTeXEncoder{output: newOutput(w, ext)}
}

func (e *LaTeXEncoder) Encode(root *doc.Node) error {
	e.elements(root)

	return e.finalize()
}

func (e *LaTeXEncoder) elements(n *doc.Node) {
	for ; n != nil; n = n.Next() {
		e.element(n)
	}
}

func (e *LaTeXEncoder) wrap(open string, n *doc.Node, close string) {
	e.writeString(open)
	e.elements(n.FirstChild())
	e.writeString(close)
}

func (e *LaTeXEncoder) element(n *doc.Node) {
	switch n.Tag() {
	case doc.STR, doc.RAW:
		e.writeString(escapeLaTeX(text(n)))
	case doc.SPACE:
		e.writeString(text(n))
	case doc.LINEBREAK:
		e.writeString("\\\\\n")
	case doc.ELLIPSIS:
		e.writeString(`\ldots{}`)
	case doc.EMDASH:
		e.writeString("---")
	case doc.ENDASH:
		e.writeString("--")
	case doc.APOSTROPHE:
		e.writeString("'")
	case doc.SINGLEQUOTED:
		e.wrap("`", n, "'")
	case doc.DOUBLEQUOTED:
		e.wrap("``", n, "''")
	case doc.CODE:
		e.writeString(`\texttt{` + escapeLaTeX(text(n)) + "}")
	case doc.HTML, doc.HTMLBLOCK, doc.REFERENCE, doc.TABLESEPARATOR, doc.CELLSPAN:
		// not representable
	case doc.LINK:
		l, _ := n.Link()
		e.writeString(`\href{` + l.URL + "}{")
		e.elements(l.Label)
		e.writeString("}")
	case doc.IMAGE:
		l, _ := n.Link()
		e.writeString(`\includegraphics{` + l.URL + "}")
	case doc.EMPH:
		e.wrap(`\emph{`, n, "}")
	case doc.STRONG:
		e.wrap(`\textbf{`, n, "}")
	case doc.STRIKE:
		e.wrap(`\sout{`, n, "}")
	case doc.LIST, doc.PLAIN:
		e.elements(n.FirstChild())
	case doc.H1TITLE:
		e.wrap(`\title{`, n, "}\n\\maketitle\n\n")
	case doc.H1, doc.H2, doc.H3, doc.H4, doc.H5, doc.H6:
		e.wrap(latexSections[n.Tag().Level()]+"{", n, "}\n\n")
	case doc.PARA:
		e.wrap("", n, "\n\n")
	case doc.HRULE:
		e.writeString("\\begin{center}\\rule{3in}{0.4pt}\\end{center}\n\n")
	case doc.VERBATIM:
		e.writeString("\\begin{verbatim}\n" + text(n) + "\n\\end{verbatim}\n\n")
	case doc.CODEBLOCK:
		c, _ := n.Code()
		e.writeString("\\begin{verbatim}\n" + c.Str + "\n\\end{verbatim}\n\n")
	case doc.BULLETLIST:
		e.wrap("\\begin{itemize}\n", n, "\\end{itemize}\n\n")
	case doc.ORDEREDLIST:
		e.wrap("\\begin{enumerate}\n", n, "\\end{enumerate}\n\n")
	case doc.LISTITEM:
		e.wrap(`\item `, n, "\n")
	case doc.BLOCKQUOTE:
		e.wrap("\\begin{quote}\n", n, "\\end{quote}\n\n")
	case doc.NOTE:
		e.writeString(`\footnote{`)
		e.writeString(strings.TrimSpace(e.capture(n.FirstChild())))
		e.writeString("}")
	case doc.DEFINITIONLIST:
		e.wrap("\\begin{description}\n", n, "\\end{description}\n\n")
	case doc.DEFTITLE:
		e.wrap(`\item[`, n, "] ")
	case doc.DEFDATA:
		e.wrap("", n, "\n")
	case doc.TABLE:
		e.table(n)
	default:
		e.elements(n.FirstChild())
	}
}

// capture renders a sequence into a string.
func (e *LaTeXEncoder) capture(n *doc.Node) string {
	var sb strings.Builder
	sub := NewLaTeXEncoder(&sb, e.ext)
	sub.elements(n)
	_ = sub.finalize()

	return sb.String()
}

func (e *LaTeXEncoder) table(n *doc.Node) {
	cols := 0
	for _, part := range children(n) {
		for _, row := range children(part) {
			cols = max(cols, doc.Len(row.FirstChild()))
		}
	}

	e.writeString("\\begin{tabular}{" + strings.Repeat("l", cols) + "}\n")

	for _, part := range children(n) {
		for _, row := range children(part) {
			for k, cell := range children(row) {
				if k > 0 {
					e.writeString(" & ")
				}

				e.writeString(strings.TrimSpace(e.capture(cell.FirstChild())))
			}

			e.writeString(" \\\\\n")
		}

		if part.Tag() == doc.TABLEHEAD {
			e.writeString("\\hline\n")
		}
	}

	e.writeString("\\end{tabular}\n\n")
}

var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	"{", `\{`,
	"}", `\}`,
	"$", `\$`,
	"&", `\&`,
	"#", `\#`,
	"%", `\%`,
	"_", `\_`,
	"^", `\^{}`,
	"~", `\ensuremath{\sim}`,
	"<", `$<$`,
	">", `$>$`,
	"|", `\textbar{}`,
)

// escapeLaTeX replaces the characters with a special meaning in LaTeX.
func escapeLaTeX(s string) string {
	return latexEscaper.Replace(s)
}
