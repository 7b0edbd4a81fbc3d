// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"regexp"
	"strings"

	"github.com/golangee/rstdoc/doc"
)

// blocks is the block level grammar. The same grammar runs in every pass,
// so all passes agree on the extent of each construct, but only the
// document pass builds nodes for ordinary blocks. The other passes only
// collect their table entries.
type blocks struct {
	s    *Session
	pass Pass
	// top is set for the document level, the only place for section titles.
	top bool
	// inNote is set while parsing a footnote body.
	inNote bool
}

func (b *blocks) document() bool {
	return b.pass == PassDocument
}

func (b *blocks) arena() *doc.Arena {
	return b.s.arena
}

// nested returns the grammar for a container body.
func (b *blocks) nested() *blocks {
	return &blocks{s: b.s, pass: b.pass, inNote: b.inNote}
}

// parse parses a sequence of blocks.
func (b *blocks) parse(ls []line) (*doc.Node, error) {
	var out doc.List

	for i := 0; i < len(ls); {
		if ls[i].blank() {
			i++
			continue
		}

		n, node, err := b.block(ls, i)
		if err != nil {
			return nil, err
		}

		out.Push(node)
		i += n

		if b.top && b.document() {
			b.s.blocksSeen = true
		}
	}

	return out.Head(), nil
}

var (
	bulletRe = regexp.MustCompile(`^([-*+•‣⁃])( +|$)`)
	enumRe   = regexp.MustCompile(`^(\()?([0-9]+|#|[a-zA-Z]|[ivxlcdm]+|[IVXLCDM]+)([.)])( +|$)`)
)

// block parses the block starting at ls[i] and returns the number of consumed lines.
func (b *blocks) block(ls []line, i int) (int, *doc.Node, error) {
	l := ls[i]
	if l.indent() > 0 {
		return b.blockQuote(ls, i)
	}

	text := l.text

	switch {
	case text == ".." || strings.HasPrefix(text, ".. "):
		return b.explicit(ls, i)
	case strings.HasPrefix(text, "__ "):
		// anonymous targets are not referenced by name
		return indentedEnd(ls, i+1) - i, nil, nil
	case isTableBorder(text):
		return b.table(ls, i)
	}

	if b.top {
		if n, node, ok, err := b.section(ls, i); ok || err != nil {
			return n, node, err
		}
	}

	if _, ok := adornment(text); ok && len(text) >= 4 && (i+1 == len(ls) || ls[i+1].blank()) {
		if !b.document() {
			return 1, nil, nil
		}

		return 1, b.arena().Element(doc.HRULE, nil), nil
	}

	switch {
	case bulletRe.MatchString(text):
		return b.bulletList(ls, i)
	case enumMatch(text) != nil:
		return b.enumList(ls, i)
	case text == "|" || strings.HasPrefix(text, "| "):
		return b.lineBlock(ls, i)
	case strings.HasPrefix(text, ">>>"):
		return b.doctest(ls, i)
	case b.s.cfg.Extensions.Has(doc.DefinitionLists) && definitionStart(ls, i):
		return b.definitionList(ls, i)
	}

	return b.paragraph(ls, i)
}

// section recognizes a title with an underline and an optional overline.
func (b *blocks) section(ls []line, i int) (int, *doc.Node, bool, error) {
	var (
		title    line
		style    string
		consumed int
	)

	if c, ok := adornment(ls[i].text); ok {
		if i+2 >= len(ls) || ls[i+1].blank() {
			return 0, nil, false, nil
		}

		under, ok := adornment(ls[i+2].text)
		if !ok || under != c {
			return 0, nil, false, nil
		}

		title = ls[i+1].strip(ls[i+1].indent())
		style = "o" + string(c)
		consumed = 3
	} else {
		if i+1 >= len(ls) || ls[i+1].indent() > 0 {
			return 0, nil, false, nil
		}

		under, ok := adornment(ls[i+1].text)
		if !ok || (len(ls[i+1].text) < width(ls[i].text) && len(ls[i+1].text) < 4) {
			return 0, nil, false, nil
		}

		title = ls[i]
		style = "u" + string(under)
		consumed = 2
	}

	switch b.pass {
	case PassReferences:
		toks, err := b.tokens([]line{title})
		if err != nil {
			return 0, nil, true, err
		}

		name := plain(toks)
		b.s.implicitRefs.Push(b.arena().Link(doc.REFERENCE,
			b.arena().Text(doc.STR, name), "#"+doc.Slug(name), ""))

		return consumed, nil, true, nil
	case PassNotes:
		return consumed, nil, true, nil
	}

	tag, err := b.headingTag(style, ls[i])
	if err != nil {
		return 0, nil, true, err
	}

	content, err := b.inline([]line{title})
	if err != nil {
		return 0, nil, true, err
	}

	return consumed, b.arena().Element(tag, content), true, nil
}

// headingTag assigns levels to title styles in the order of their first appearance.
func (b *blocks) headingTag(style string, at line) (doc.Tag, error) {
	s := b.s

	if s.titleStyle != "" && style == s.titleStyle {
		return doc.H1TITLE, nil
	}

	if !s.blocksSeen && style[0] == 'o' && len(s.titleStyles) == 0 {
		s.titleStyle = style
		return doc.H1TITLE, nil
	}

	idx := -1
	for k, st := range s.titleStyles {
		if st == style {
			idx = k
			break
		}
	}

	switch {
	case idx < 0 && len(s.titleStyles) > s.level:
		return 0, newParseError(b.pass, at.node(), "title level inconsistent").
			withHint("a new title style must not skip a section level")
	case idx < 0:
		s.titleStyles = append(s.titleStyles, style)
		idx = len(s.titleStyles) - 1
	case idx > s.level:
		return 0, newParseError(b.pass, at.node(), "title level inconsistent").
			withHint("the title is nested deeper than the current section allows")
	}

	s.level = idx + 1

	return doc.Heading(s.level), nil
}

// paragraph parses a paragraph and a literal block introduced by a trailing "::".
func (b *blocks) paragraph(ls []line, i int) (int, *doc.Node, error) {
	j := i
	for j < len(ls) && !ls[j].blank() && ls[j].indent() == 0 {
		j++
	}

	para := append([]line(nil), ls[i:j]...)
	consumed := j - i

	var literal []line
	last := para[len(para)-1]
	isLiteral := strings.HasSuffix(last.text, "::")

	if isLiteral {
		k := j
		for k < len(ls) && ls[k].blank() {
			k++
		}

		if k < len(ls) && ls[k].indent() > 0 {
			end := indentedEnd(ls, k)
			literal = dedent(ls[k:end])
			consumed = end - i
		}
	}

	if !b.document() {
		return consumed, nil, nil
	}

	var out doc.List

	if isLiteral {
		switch {
		case last.text == "::":
			para = para[:len(para)-1]
		case strings.HasSuffix(last.text, " ::"):
			para[len(para)-1].text = strings.TrimSuffix(last.text, " ::")
		default:
			para[len(para)-1].text = strings.TrimSuffix(last.text, ":")
		}
	}

	if len(para) > 0 {
		content, err := b.inline(para)
		if err != nil {
			return 0, nil, err
		}

		out.Push(b.arena().Element(doc.PARA, content))
	}

	if literal != nil {
		out.Push(b.arena().Text(doc.VERBATIM, joinText(literal)))
	}

	return consumed, out.Head(), nil
}

// blockQuote parses an indented block.
func (b *blocks) blockQuote(ls []line, i int) (int, *doc.Node, error) {
	end := indentedEnd(ls, i)
	body := dedent(ls[i:end])

	// an attribution closes a quote and is not content
	if k := len(body) - 1; k > 0 && (strings.HasPrefix(body[k].text, "-- ") || strings.HasPrefix(body[k].text, "— ")) && body[k-1].blank() {
		body = body[:k]
	}

	children, err := b.nested().parse(body)
	if err != nil {
		return 0, nil, err
	}

	if !b.document() {
		return end - i, nil, nil
	}

	return end - i, b.arena().Element(doc.BLOCKQUOTE, children), nil
}

// listItem is the body of one list item and whether blank lines separate its parts.
type listItem struct {
	body  []line
	loose bool
}

// items collects the items of a list whose markers are recognized by marker.
// The marker function returns the width of the marker and its style.
func collectItems(ls []line, i int, marker func(text string) (int, string, bool)) ([]listItem, int, bool) {
	var (
		items []listItem
		loose bool
		style string
	)

	j := i
	for j < len(ls) {
		w, st, ok := marker(ls[j].text)
		if !ok || (style != "" && st != style) {
			break
		}

		style = st

		end := indentedEnd(ls, j+1)
		body := append([]line{ls[j].strip(w)}, stripCols(ls[j+1:end], w)...)
		item := listItem{body: body}

		for _, l := range ls[j+1 : end] {
			if l.blank() {
				item.loose = true
			}
		}

		items = append(items, item)

		k := end
		for k < len(ls) && ls[k].blank() {
			k++
		}

		if k > end && k < len(ls) {
			if _, st, ok := marker(ls[k].text); ok && st == style {
				loose = true
			}
		}

		j = k
	}

	for _, it := range items {
		loose = loose || it.loose
	}

	return items, j - i, loose
}

// stripCols removes up to n leading columns of each line.
func stripCols(ls []line, n int) []line {
	res := make([]line, len(ls))
	for k, l := range ls {
		res[k] = l.strip(min(n, l.indent()))
	}

	return res
}

func (b *blocks) bulletList(ls []line, i int) (int, *doc.Node, error) {
	items, consumed, loose := collectItems(ls, i, func(text string) (int, string, bool) {
		m := bulletRe.FindStringSubmatch(text)
		if m == nil {
			return 0, "", false
		}

		return len(m[0]), m[1], true
	})

	node, err := b.list(doc.BULLETLIST, items, loose)

	return consumed, node, err
}

// enumMatch returns the submatches of an enumerator or nil.
func enumMatch(text string) []string {
	m := enumRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	// "(1." is not an enumerator
	if m[1] == "(" && m[3] != ")" {
		return nil
	}

	return m
}

func enumStyle(m []string) string {
	kind := "alpha"
	switch {
	case m[2] == "#":
		kind = "auto"
	case m[2][0] >= '0' && m[2][0] <= '9':
		kind = "arabic"
	case len(m[2]) > 1:
		kind = "roman"
	}

	return m[1] + kind + m[3]
}

func (b *blocks) enumList(ls []line, i int) (int, *doc.Node, error) {
	items, consumed, loose := collectItems(ls, i, func(text string) (int, string, bool) {
		m := enumMatch(text)
		if m == nil {
			return 0, "", false
		}

		return len(m[0]), enumStyle(m), true
	})

	node, err := b.list(doc.ORDEREDLIST, items, loose)

	return consumed, node, err
}

// list builds a list node. The leading paragraph of each item of a tight
// list is recycled into a PLAIN node.
func (b *blocks) list(tag doc.Tag, items []listItem, loose bool) (*doc.Node, error) {
	a := b.arena()

	var out doc.List
	for _, it := range items {
		children, err := b.nested().parse(it.body)
		if err != nil {
			return nil, err
		}

		if !b.document() {
			continue
		}

		if !loose && children != nil && children.Tag() == doc.PARA {
			rest := children.DetachNext()
			content := children.DetachChildren()
			doc.DestroyNode(children)

			var seq doc.List
			seq.Push(a.Element(doc.PLAIN, content))
			seq.Push(rest)
			children = seq.Head()
		}

		out.Push(a.Element(doc.LISTITEM, children))
	}

	if !b.document() {
		return nil, nil
	}

	return a.Element(tag, out.Head()), nil
}

// lineBlock parses lines starting with "|" into a paragraph with hard line breaks.
func (b *blocks) lineBlock(ls []line, i int) (int, *doc.Node, error) {
	var rows [][]line

	j := i
rows:
	for ; j < len(ls) && !ls[j].blank(); j++ {
		l := ls[j]
		switch {
		case l.text == "|":
			rows = append(rows, nil)
		case strings.HasPrefix(l.text, "| "):
			rows = append(rows, []line{l.strip(2)})
		case l.indent() > 0 && len(rows) > 0:
			rows[len(rows)-1] = append(rows[len(rows)-1], l.strip(l.indent()))
		default:
			break rows
		}
	}

	if !b.document() {
		return j - i, nil, nil
	}

	var out doc.List
	for k, row := range rows {
		if k > 0 {
			out.Push(b.arena().Element(doc.LINEBREAK, nil))
		}

		if len(row) == 0 {
			continue
		}

		content, err := b.inline(row)
		if err != nil {
			return 0, nil, err
		}

		out.Push(content)
	}

	return j - i, b.arena().Element(doc.PARA, out.Head()), nil
}

// doctest parses an interactive session block, which ends at a blank line.
func (b *blocks) doctest(ls []line, i int) (int, *doc.Node, error) {
	j := i
	for j < len(ls) && !ls[j].blank() {
		j++
	}

	if !b.document() {
		return j - i, nil, nil
	}

	return j - i, b.arena().Text(doc.VERBATIM, joinText(ls[i:j])), nil
}

func definitionStart(ls []line, i int) bool {
	return i+1 < len(ls) && !ls[i].blank() && ls[i].indent() == 0 && !ls[i+1].blank() && ls[i+1].indent() > 0
}

// definitionList parses terms followed by indented definitions.
func (b *blocks) definitionList(ls []line, i int) (int, *doc.Node, error) {
	a := b.arena()

	var out doc.List

	j := i
	for j < len(ls) && definitionStart(ls, j) {
		term := ls[j]
		if k := strings.Index(term.text, " : "); k > 0 {
			term.text = term.text[:k]
		}

		end := indentedEnd(ls, j+1)
		children, err := b.nested().parse(dedent(ls[j+1 : end]))
		if err != nil {
			return 0, nil, err
		}

		if b.document() {
			title, err := b.inline([]line{term})
			if err != nil {
				return 0, nil, err
			}

			out.Push(a.Element(doc.DEFTITLE, title))
			out.Push(a.Element(doc.DEFDATA, children))
		}

		k := end
		for k < len(ls) && ls[k].blank() {
			k++
		}

		if k < len(ls) && !definitionStart(ls, k) {
			j = end
			break
		}

		j = k
	}

	if !b.document() {
		return j - i, nil, nil
	}

	return j - i, a.Element(doc.DEFINITIONLIST, out.Head()), nil
}
