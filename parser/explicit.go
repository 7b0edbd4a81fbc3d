// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"fmt"
	"regexp"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/golangee/rstdoc/doc"
	"github.com/sirupsen/logrus"
)

var (
	footnoteRe     = regexp.MustCompile(`^\.\. \[([^\]]+)\](?: +(.*))?$`)
	directiveRe    = regexp.MustCompile(`^\.\. +([A-Za-z0-9][A-Za-z0-9_+:.-]*?)::(?: +(.*))?$`)
	substitutionRe = regexp.MustCompile(`^\.\. +\|[^|]+\| +`)
	optionRe       = regexp.MustCompile(`^:([^:]+):(?: +(.*))?$`)
	numberRe       = regexp.MustCompile(`^(?:[0-9]+|#[\w.-]*|\*)$`)
)

// explicit parses an explicit markup block, which starts with "..". Its
// extent is the first line and all following indented lines.
func (b *blocks) explicit(ls []line, i int) (int, *doc.Node, error) {
	end := indentedEnd(ls, i+1)
	consumed := end - i
	first := ls[i]
	rest := dedent(ls[i+1 : end])

	if strings.HasPrefix(first.text, ".. _") {
		return consumed, nil, b.target(first, rest)
	}

	if m := footnoteRe.FindStringSubmatch(first.text); m != nil {
		if !numberRe.MatchString(m[1]) {
			// citations are not supported and read like comments
			return consumed, nil, nil
		}

		node, err := b.note(first, m[1], m[2], rest)

		return consumed, node, err
	}

	if substitutionRe.MatchString(first.text) {
		return consumed, nil, nil
	}

	if m := directiveRe.FindStringSubmatch(first.text); m != nil {
		node, err := b.directive(first, strings.ToLower(m[1]), strings.TrimSpace(m[2]), rest)
		return consumed, node, err
	}

	// anything else is a comment
	return consumed, nil, nil
}

// target registers a hyperlink target like ".. _name: url" in the references pass.
func (b *blocks) target(first line, rest []line) error {
	if b.pass != PassReferences {
		return nil
	}

	name, url, ok := splitTarget(strings.TrimPrefix(first.text, ".. _"))
	if !ok {
		return newParseError(b.pass, first.node(), "malformed hyperlink target").
			withHint(`a target reads ".. _name: url"`)
	}

	// anonymous targets are not referenced by name
	if name == "_" {
		return nil
	}

	parts := []string{url}
	for _, l := range rest {
		parts = append(parts, strings.TrimSpace(l.text))
	}

	url = strings.Join(parts, "")
	if url == "" {
		url = "#" + doc.Slug(name)
	}

	a := b.arena()
	b.s.explicitRefs.Push(a.Link(doc.REFERENCE, a.Text(doc.STR, name), unescape(url), ""))

	return nil
}

// splitTarget splits "name: url" or "`name`: url". A colon in an unquoted
// name is escaped by a backslash.
func splitTarget(s string) (string, string, bool) {
	if strings.HasPrefix(s, "`") {
		k := strings.IndexByte(s[1:], '`') + 1
		if k < 1 || k+1 >= len(s) || s[k+1] != ':' {
			return "", "", false
		}

		return s[1:k], strings.TrimSpace(s[k+2:]), true
	}

	for k := 0; k < len(s); k++ {
		switch s[k] {
		case '\\':
			k++
		case ':':
			name := strings.ReplaceAll(s[:k], `\:`, ":")
			if strings.TrimSpace(name) == "" {
				return "", "", false
			}

			return name, strings.TrimSpace(s[k+1:]), true
		}
	}

	return "", "", false
}

// note collects a footnote in the notes pass. The body is parsed with the
// document grammar, so the reference table is visible to it.
func (b *blocks) note(first line, label, text string, rest []line) (*doc.Node, error) {
	if b.pass != PassNotes || !b.s.cfg.Extensions.Has(doc.Notes) {
		return nil, nil
	}

	var body []line
	if text != "" {
		l := first.strip(len(first.text) - len(text))
		body = append(body, l)
	}

	body = append(body, rest...)

	nb := &blocks{s: b.s, pass: PassDocument, inNote: true}

	children, err := nb.parse(body)
	if err != nil {
		return nil, err
	}

	b.s.noteList.Push(b.arena().Note(label, children))

	return nil, nil
}

// directiveBody splits the lines following a directive into its options
// and its content.
func directiveBody(ls []line) (map[string]string, []line) {
	opts := map[string]string{}

	k := 0
	for ; k < len(ls); k++ {
		m := optionRe.FindStringSubmatch(ls[k].text)
		if m == nil {
			break
		}

		opts[strings.ToLower(m[1])] = strings.TrimSpace(m[2])
	}

	return opts, trimBlank(ls[k:])
}

var admonitions = map[string]string{
	"attention": "Attention",
	"caution":   "Caution",
	"danger":    "Danger",
	"error":     "Error",
	"hint":      "Hint",
	"important": "Important",
	"note":      "Note",
	"tip":       "Tip",
	"warning":   "Warning",
	"seealso":   "See also",
}

var ignoredDirectives = mapset.NewSet(
	"contents",
	"sectnum",
	"section-numbering",
	"highlight",
	"default-role",
	"meta",
	"title",
	"role",
	"target-notes",
	"header",
	"footer",
)

// directive parses ".. name:: arg" with its options and content.
func (b *blocks) directive(first line, name, arg string, rest []line) (*doc.Node, error) {
	opts, content := directiveBody(rest)
	a := b.arena()

	if title, ok := admonitions[name]; ok {
		body := content
		if arg != "" {
			body = append([]line{first.strip(len(first.text) - len(arg))}, content...)
		}

		return b.titled(title, body)
	}

	switch name {
	case "admonition", "topic", "sidebar":
		return b.titled(arg, content)
	case "epigraph", "pull-quote", "highlights":
		children, err := b.nested().parse(content)
		if err != nil || !b.document() {
			return nil, err
		}

		return a.Element(doc.BLOCKQUOTE, children), nil
	case "container", "compound", "class":
		return b.nested().parse(content)
	case "rubric":
		if !b.document() {
			return nil, nil
		}

		return a.Element(doc.PARA, a.Element(doc.STRONG, b.textRun(arg))), nil
	case "code-block", "code", "sourcecode":
		if !b.document() {
			return nil, nil
		}

		return a.Code(arg, joinText(content)), nil
	case "raw":
		return b.raw(first, arg, content)
	case "image", "figure":
		return b.image(name, arg, opts, content)
	case "include":
		return b.include(first, arg)
	}

	if ignoredDirectives.Contains(name) {
		return nil, nil
	}

	return nil, newParseError(b.pass, first.node(), fmt.Sprintf("unknown directive type %q", name))
}

// titled builds an admonition: a block quote starting with a strong title.
func (b *blocks) titled(title string, body []line) (*doc.Node, error) {
	children, err := b.nested().parse(body)
	if err != nil || !b.document() {
		return nil, err
	}

	a := b.arena()

	var seq doc.List
	if title != "" {
		seq.Push(a.Element(doc.PARA, a.Element(doc.STRONG, b.textRun(title))))
	}

	seq.Push(children)

	return a.Element(doc.BLOCKQUOTE, seq.Head()), nil
}

func (b *blocks) raw(first line, format string, content []line) (*doc.Node, error) {
	if !b.document() {
		return nil, nil
	}

	ext := b.s.cfg.Extensions

	if !strings.EqualFold(format, "html") {
		b.s.log.WithFields(logrus.Fields{"line": first.pos.Line, "format": format}).Info("skipping raw block")
		return nil, nil
	}

	if ext.Has(doc.FilterHTML) {
		return nil, nil
	}

	html := joinText(content)
	if ext.Has(doc.FilterStyles) {
		filtered, err := stripStyles(html)
		if err != nil {
			return nil, newParseError(b.pass, first.node(), "cannot filter raw html").withCause(err)
		}

		html = filtered
	}

	return b.arena().Text(doc.HTMLBLOCK, html), nil
}

func (b *blocks) image(name, url string, opts map[string]string, content []line) (*doc.Node, error) {
	var caption *doc.Node
	if name == "figure" {
		var err error
		if caption, err = b.nested().parse(content); err != nil {
			return nil, err
		}
	}

	if !b.document() {
		return nil, nil
	}

	a := b.arena()

	alt := opts["alt"]
	if alt == "" {
		alt = url
	}

	img := a.Link(doc.IMAGE, b.textRun(alt), url, opts["title"])
	if target, ok := opts["target"]; ok && target != "" {
		if ref, isRef := indirectName(target); isRef {
			if l, found := b.s.lookupReference(ref); found {
				target = l.URL
			}
		}

		img = a.Link(doc.LINK, img, target, "")
	}

	var seq doc.List
	seq.Push(a.Element(doc.PARA, img))
	seq.Push(caption)

	return seq.Head(), nil
}

// include splices a separately resolved document into this one.
func (b *blocks) include(first line, name string) (*doc.Node, error) {
	if !b.document() {
		return nil, nil
	}

	if b.s.cfg.Include == nil {
		return nil, newParseError(b.pass, first.node(), fmt.Sprintf("cannot include %q", name)).
			withHint("no includer is configured")
	}

	root, err := b.s.cfg.Include(name)
	if err != nil {
		return nil, newParseError(b.pass, first.node(), fmt.Sprintf("cannot include %q", name)).withCause(err)
	}

	if root == nil {
		return nil, nil
	}

	// the included LIST root is replaced by its blocks
	if root.Tag() == doc.LIST && root.Next() == nil {
		body := root.DetachChildren()
		doc.DestroyNode(root)

		return body, nil
	}

	return root, nil
}
