// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package encoder

import (
	"io"
	"strconv"
	"strings"

	"github.com/golangee/rstdoc/doc"
)

const odfHeader = `<?xml version="1.0" encoding="utf-8" ?>
<office:document xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"
    xmlns:style="urn:oasis:names:tc:opendocument:xmlns:style:1.0"
    xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0"
    xmlns:table="urn:oasis:names:tc:opendocument:xmlns:table:1.0"
    xmlns:draw="urn:oasis:names:tc:opendocument:xmlns:drawing:1.0"
    xmlns:fo="urn:oasis:names:tc:opendocument:xmlns:xsl-fo-compatible:1.0"
    xmlns:xlink="http://www.w3.org/1999/xlink"
    office:version="1.2" office:mimetype="application/vnd.oasis.opendocument.text">
<office:styles>
    <style:style style:name="Title" style:family="paragraph"/>
    <style:style style:name="Quotations" style:family="paragraph"/>
    <style:style style:name="Preformatted_20_Text" style:family="paragraph"/>
    <style:style style:name="Horizontal_20_Line" style:family="paragraph"/>
    <style:style style:name="Source_20_Text" style:family="text"/>
    <style:style style:name="Emphasis" style:family="text">
        <style:text-properties fo:font-style="italic"/>
    </style:style>
    <style:style style:name="Strong" style:family="text">
        <style:text-properties fo:font-weight="bold"/>
    </style:style>
    <style:style style:name="Strike" style:family="text">
        <style:text-properties style:text-line-through-style="solid"/>
    </style:style>
</office:styles>
<office:body>
<office:text>
`

const odfFooter = "</office:text>\n</office:body>\n</office:document>\n"

// ODFEncoder writes a flat OpenDocument text file.
type ODFEncoder struct {
	output
	// notes counts the footnotes for their ids.
	notes int
}

func NewODFEncoder(w io.Writer, ext doc.Extensions) *ODFEncoder {
	return &ODFEncoder{output: newOutput(w, ext)}
}

func (e *ODFEncoder) Encode(root *doc.Node) error {
	e.writeString(odfHeader)
	e.elements(root)
	e.writeString(odfFooter)

	return e.finalize()
}

func (e *ODFEncoder) elements(n *doc.Node) {
	for ; n != nil; n = n.Next() {
		e.element(n)
	}
}

func (e *ODFEncoder) wrap(open string, n *doc.Node, close string) {
	e.writeString(open)
	e.elements(n.FirstChild())
	e.writeString(close)
}

func (e *ODFEncoder) span(style string, n *doc.Node) {
	e.wrap(`<text:span text:style-name="`+style+`">`, n, "</text:span>")
}

// paragraph writes inline content in a paragraph of the given style.
func (e *ODFEncoder) paragraph(style string, content *doc.Node) {
	e.writeString(`<text:p text:style-name="` + style + `">`)
	e.elements(content)
	e.writeString("</text:p>\n")
}

func (e *ODFEncoder) element(n *doc.Node) {
	switch n.Tag() {
	case doc.STR, doc.RAW:
		e.writeString(escapeXML(text(n)))
	case doc.SPACE:
		e.writeString(" ")
	case doc.LINEBREAK:
		e.writeString("<text:line-break/>")
	case doc.ELLIPSIS:
		e.writeString("…")
	case doc.EMDASH:
		e.writeString("—")
	case doc.ENDASH:
		e.writeString("–")
	case doc.APOSTROPHE:
		e.writeString("’")
	case doc.SINGLEQUOTED:
		e.wrap("‘", n, "’")
	case doc.DOUBLEQUOTED:
		e.wrap("“", n, "”")
	case doc.CODE:
		e.writeString(`<text:span text:style-name="Source_20_Text">` + escapeXML(text(n)) + "</text:span>")
	case doc.HTML, doc.HTMLBLOCK, doc.REFERENCE, doc.TABLESEPARATOR, doc.CELLSPAN:
		// not representable
	case doc.LINK:
		l, _ := n.Link()
		e.writeString(`<text:a xlink:type="simple" xlink:href="` + escapeXML(l.URL) + `">`)
		e.elements(l.Label)
		e.writeString("</text:a>")
	case doc.IMAGE:
		l, _ := n.Link()
		e.writeString(`<draw:frame draw:name="` + escapeXML(doc.PlainText(l.Label)) + `">` +
			`<draw:image xlink:href="` + escapeXML(l.URL) + `" xlink:type="simple" xlink:show="embed"/></draw:frame>`)
	case doc.EMPH:
		e.span("Emphasis", n)
	case doc.STRONG:
		e.span("Strong", n)
	case doc.STRIKE:
		e.span("Strike", n)
	case doc.LIST, doc.DEFINITIONLIST:
		e.elements(n.FirstChild())
	case doc.PLAIN, doc.PARA:
		e.paragraph("Standard", n.FirstChild())
	case doc.H1TITLE:
		e.paragraph("Title", n.FirstChild())
	case doc.H1, doc.H2, doc.H3, doc.H4, doc.H5, doc.H6:
		e.writeString(`<text:h text:outline-level="` + strconv.Itoa(n.Tag().Level()) + `">`)
		e.elements(n.FirstChild())
		e.writeString("</text:h>\n")
	case doc.HRULE:
		e.writeString(`<text:p text:style-name="Horizontal_20_Line"/>` + "\n")
	case doc.VERBATIM:
		e.preformatted(text(n))
	case doc.CODEBLOCK:
		c, _ := n.Code()
		e.preformatted(c.Str)
	case doc.BULLETLIST, doc.ORDEREDLIST:
		e.wrap("<text:list>\n", n, "</text:list>\n")
	case doc.LISTITEM:
		e.wrap("<text:list-item>\n", n, "</text:list-item>\n")
	case doc.BLOCKQUOTE:
		for c := n.FirstChild(); c != nil; c = c.Next() {
			if c.Tag() == doc.PARA || c.Tag() == doc.PLAIN {
				e.paragraph("Quotations", c.FirstChild())
				continue
			}

			e.element(c)
		}
	case doc.DEFTITLE:
		e.writeString(`<text:p text:style-name="Standard"><text:span text:style-name="Strong">`)
		e.elements(n.FirstChild())
		e.writeString("</text:span></text:p>\n")
	case doc.DEFDATA:
		e.elements(n.FirstChild())
	case doc.NOTE:
		e.note(n)
	case doc.TABLE:
		e.table(n)
	default:
		e.elements(n.FirstChild())
	}
}

func (e *ODFEncoder) preformatted(s string) {
	e.writeString(`<text:p text:style-name="Preformatted_20_Text">`)
	for i, l := range strings.Split(s, "\n") {
		if i > 0 {
			e.writeString("<text:line-break/>")
		}

		e.writeString(escapeXML(l))
	}

	e.writeString("</text:p>\n")
}

func (e *ODFEncoder) note(n *doc.Node) {
	e.notes++
	id := "ftn" + strconv.Itoa(e.notes)

	e.writeString(`<text:note text:id="` + id + `" text:note-class="footnote">`)
	e.writeString("<text:note-citation>" + escapeXML(text(n)) + "</text:note-citation>")
	e.writeString("<text:note-body>")

	e.elements(n.FirstChild())

	e.writeString("</text:note-body></text:note>")
}

func (e *ODFEncoder) table(n *doc.Node) {
	cols := 0
	for _, part := range children(n) {
		for _, row := range children(part) {
			cols = max(cols, doc.Len(row.FirstChild()))
		}
	}

	e.writeString("<table:table>\n")
	e.writeString(`<table:table-column table:number-columns-repeated="` + strconv.Itoa(cols) + `"/>` + "\n")

	for _, part := range children(n) {
		if part.Tag() == doc.TABLEHEAD {
			e.writeString("<table:table-header-rows>\n")
		}

		for _, row := range children(part) {
			e.writeString("<table:table-row>\n")
			for _, cell := range children(row) {
				e.writeString("<table:table-cell>")
				e.cell(cell.FirstChild())
				e.writeString("</table:table-cell>\n")
			}

			e.writeString("</table:table-row>\n")
		}

		if part.Tag() == doc.TABLEHEAD {
			e.writeString("</table:table-header-rows>\n")
		}
	}

	e.writeString("</table:table>\n")
}

// cell writes cell content, which is either inline content or blocks.
func (e *ODFEncoder) cell(content *doc.Node) {
	if content != nil && isBlock(content.Tag()) {
		e.elements(content)
		return
	}

	e.paragraph("Standard", content)
}

func isBlock(t doc.Tag) bool {
	switch t {
	case doc.PARA, doc.PLAIN, doc.BULLETLIST, doc.ORDEREDLIST, doc.BLOCKQUOTE, doc.VERBATIM,
		doc.CODEBLOCK, doc.TABLE, doc.HRULE, doc.DEFINITIONLIST, doc.HTMLBLOCK:
		return true
	}

	return false
}

var xmlEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;", "&", "&amp;", `"`, "&quot;")

// escapeXML replaces all occurrences of reserved characters in XML: <>&".
func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
