// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package encoder

import (
	"io"
	"strconv"
	"strings"

	"github.com/golangee/rstdoc/doc"
)

// HTMLEncoder writes an html fragment. Footnotes are collected and written
// as a numbered list after the document.
type HTMLEncoder struct {
	output
	// notes are the NOTE nodes in the order of their references.
	notes []*doc.Node
	// inHead is set while writing the header rows of a table.
	inHead bool
}

func NewHTMLEncoder(w io.Writer, ext doc.Extensions) *HTMLEncoder {
	return &HTMLEncoder{output: newOutput(w, ext)}
}

// Encode writes the tree and flushes the output.
func (e *HTMLEncoder) Encode(root *doc.Node) error {
	e.elements(root)
	e.endnotes()

	return e.finalize()
}

func (e *HTMLEncoder) elements(n *doc.Node) {
	for ; n != nil; n = n.Next() {
		e.element(n)
	}
}

func (e *HTMLEncoder) wrap(open string, n *doc.Node, close string) {
	e.writeString(open)
	e.elements(n.FirstChild())
	e.writeString(close)
}

func (e *HTMLEncoder) element(n *doc.Node) {
	switch n.Tag() {
	case doc.STR:
		e.writeString(escapeHTML(text(n)))
	case doc.SPACE:
		e.writeString(text(n))
	case doc.LINEBREAK:
		e.writeString("<br/>\n")
	case doc.ELLIPSIS:
		e.writeString("&hellip;")
	case doc.EMDASH:
		e.writeString("&mdash;")
	case doc.ENDASH:
		e.writeString("&ndash;")
	case doc.APOSTROPHE:
		e.writeString("&rsquo;")
	case doc.SINGLEQUOTED:
		e.wrap("&lsquo;", n, "&rsquo;")
	case doc.DOUBLEQUOTED:
		e.wrap("&ldquo;", n, "&rdquo;")
	case doc.CODE:
		e.writeString("<code>" + escapeHTML(text(n)) + "</code>")
	case doc.HTML, doc.HTMLBLOCK:
		if !e.ext.Has(doc.FilterHTML) {
			e.writeString(text(n))
			if n.Tag() == doc.HTMLBLOCK {
				e.writeString("\n\n")
			}
		}
	case doc.RAW:
		e.writeString(escapeHTML(text(n)))
	case doc.LINK:
		l, _ := n.Link()
		e.writeString(`<a href="` + escapeHTML(l.URL) + `"`)
		if l.Title != "" {
			e.writeString(` title="` + escapeHTML(l.Title) + `"`)
		}

		e.writeString(">")
		e.elements(l.Label)
		e.writeString("</a>")
	case doc.IMAGE:
		l, _ := n.Link()
		e.writeString(`<img src="` + escapeHTML(l.URL) + `" alt="` + escapeHTML(doc.PlainText(l.Label)) + `"`)
		if l.Title != "" {
			e.writeString(` title="` + escapeHTML(l.Title) + `"`)
		}

		e.writeString(" />")
	case doc.EMPH:
		e.wrap("<em>", n, "</em>")
	case doc.STRONG:
		e.wrap("<strong>", n, "</strong>")
	case doc.STRIKE:
		e.wrap("<del>", n, "</del>")
	case doc.LIST, doc.PLAIN:
		e.elements(n.FirstChild())
	case doc.H1TITLE:
		e.heading(n, 1, ` class="title"`)
	case doc.H1, doc.H2, doc.H3, doc.H4, doc.H5, doc.H6:
		e.heading(n, n.Tag().Level(), "")
	case doc.PARA:
		e.wrap("<p>", n, "</p>\n\n")
	case doc.HRULE:
		e.writeString("<hr />\n\n")
	case doc.VERBATIM:
		e.writeString("<pre><code>" + escapeHTML(text(n)) + "\n</code></pre>\n\n")
	case doc.CODEBLOCK:
		c, _ := n.Code()
		e.writeString("<pre><code")
		if c.Lang != "" {
			e.writeString(` class="language-` + escapeHTML(c.Lang) + `"`)
		}

		e.writeString(">" + escapeHTML(c.Str) + "\n</code></pre>\n\n")
	case doc.BULLETLIST:
		e.wrap("<ul>\n", n, "</ul>\n\n")
	case doc.ORDEREDLIST:
		e.wrap("<ol>\n", n, "</ol>\n\n")
	case doc.LISTITEM:
		e.wrap("<li>", n, "</li>\n")
	case doc.BLOCKQUOTE:
		e.wrap("<blockquote>\n", n, "</blockquote>\n\n")
	case doc.DEFINITIONLIST:
		e.wrap("<dl>\n", n, "</dl>\n\n")
	case doc.DEFTITLE:
		e.wrap("<dt>", n, "</dt>\n")
	case doc.DEFDATA:
		e.wrap("<dd>", n, "</dd>\n")
	case doc.TABLE:
		e.wrap("<table>\n", n, "</table>\n\n")
	case doc.TABLEHEAD:
		e.inHead = true
		e.wrap("<thead>\n", n, "</thead>\n")
		e.inHead = false
	case doc.TABLEBODY:
		e.wrap("<tbody>\n", n, "</tbody>\n")
	case doc.TABLEROW:
		e.wrap("<tr>", n, "</tr>\n")
	case doc.TABLECELL:
		if e.inHead {
			e.wrap("<th>", n, "</th>")
		} else {
			e.wrap("<td>", n, "</td>")
		}
	case doc.NOTE:
		e.notes = append(e.notes, n)
		num := strconv.Itoa(len(e.notes))
		e.writeString(`<a class="noteref" id="fnref` + num + `" href="#fn` + num + `" title="Jump to note ` +
			escapeHTML(text(n)) + `">[` + escapeHTML(text(n)) + `]</a>`)
	case doc.REFERENCE, doc.TABLESEPARATOR, doc.CELLSPAN:
		// nothing to show
	default:
		e.elements(n.FirstChild())
	}
}

func (e *HTMLEncoder) heading(n *doc.Node, level int, attrs string) {
	h := strconv.Itoa(level)
	id := doc.Slug(doc.PlainText(n.FirstChild()))

	e.writeString("<h" + h + attrs)
	if id != "" {
		e.writeString(` id="` + id + `"`)
	}

	e.wrap(">", n, "</h"+h+">\n\n")
}

// endnotes writes the collected footnotes. A note body may reference further notes.
func (e *HTMLEncoder) endnotes() {
	if len(e.notes) == 0 {
		return
	}

	e.writeString("<hr/>\n<ol id=\"notes\">\n")

	for i := 0; i < len(e.notes); i++ {
		num := strconv.Itoa(i + 1)
		e.writeString(`<li id="fn` + num + `">` + "\n")
		e.elements(e.notes[i].FirstChild())
		e.writeString(`<a href="#fnref` + num + `" class="reversefootnote">&#8617;</a>` + "\n</li>\n")
	}

	e.writeString("</ol>\n")
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

// escapeHTML replaces all occurrences of reserved characters in html: <>&".
func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
