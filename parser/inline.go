// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"errors"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/golangee/rstdoc/doc"
	"github.com/golangee/rstdoc/token"
)

const (
	// sName is a simple reference name: alphanumerics with isolated inner punctuation.
	sName = `[\p{L}\p{N}]+(?:[-_.:+][\p{L}\p{N}]+)*`

	// sRoleName is the name of an interpreted text role, like "strong" or "raw-html".
	sRoleName = `[A-Za-z][\w.+-]*`
)

// inlineLexer splits a paragraph into markup and text tokens. The first
// matching rule wins, so markup rules come before the plain text rules.
var inlineLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Literal", Pattern: "``[^`\\s](?:[^`]|`[^`])*``"},
	{Name: "Strong", Pattern: `\*\*[^*\s](?:[^*]|\*[^*])*\*\*`},
	{Name: "Emph", Pattern: `\*[^*\s][^*]*\*`},
	{Name: "Strike", Pattern: `~~[^~\s](?:[^~]|~[^~])*~~`},
	{Name: "Role", Pattern: ":" + sRoleName + ":`[^`]+`|`[^`]+`:" + sRoleName + ":"},
	{Name: "Embedded", Pattern: "`[^`<]*<[^`>]+>`__?"},
	{Name: "Phrase", Pattern: "`[^`]+`__?"},
	{Name: "Interpreted", Pattern: "`[^`]+`"},
	{Name: "Footnote", Pattern: `\[(?:[0-9]+|#[\w.-]*|\*)\]_`},
	{Name: "URI", Pattern: `(?:https?://|ftp://|mailto:)[^\s<>"]*[^\s<>".,;:!?)\]'*]`},
	{Name: "Ref", Pattern: sName + `__?`},
	{Name: "Escape", Pattern: `\\.`},
	{Name: "Ellipsis", Pattern: `\.\.\.`},
	{Name: "Dash", Pattern: `---?`},
	{Name: "Quote", Pattern: `["']`},
	{Name: "Newline", Pattern: `\n`},
	{Name: "Space", Pattern: `[^\S\n]+`},
	{Name: "Word", Pattern: `[\p{L}\p{N}]+`},
	{Name: "Punct", Pattern: `\S`},
})

type inlineSeq struct {
	Items []*inlineItem `parser:"@@*"`
}

type inlineItem struct {
	Pos lexer.Position

	Literal     string `parser:"  @Literal"`
	Strong      string `parser:"| @Strong"`
	Emph        string `parser:"| @Emph"`
	Strike      string `parser:"| @Strike"`
	Role        string `parser:"| @Role"`
	Embedded    string `parser:"| @Embedded"`
	Phrase      string `parser:"| @Phrase"`
	Interpreted string `parser:"| @Interpreted"`
	Footnote    string `parser:"| @Footnote"`
	URI         string `parser:"| @URI"`
	Ref         string `parser:"| @Ref"`
	Escape      string `parser:"| @Escape"`
	Ellipsis    string `parser:"| @Ellipsis"`
	Dash        string `parser:"| @Dash"`
	Quote       string `parser:"| @Quote"`
	Newline     string `parser:"| @Newline"`
	Space       string `parser:"| @Space"`
	Word        string `parser:"| @Word"`
	Punct       string `parser:"| @Punct"`
}

var inlineParser = participle.MustBuild[inlineSeq](participle.Lexer(inlineLexer))

type tokenKind int

const (
	tkWord tokenKind = iota
	tkPunct
	tkSpace
	tkNewline
	tkQuote
	tkDash
	tkEllipsis
	tkEscape
	tkLiteral
	tkStrong
	tkEmph
	tkStrike
	tkRole
	tkEmbedded
	tkPhrase
	tkInterpreted
	tkFootnote
	tkURI
	tkRef
)

type inlineToken struct {
	kind tokenKind
	text string
}

func (it *inlineItem) token() inlineToken {
	for _, c := range []struct {
		kind tokenKind
		text string
	}{
		{tkLiteral, it.Literal},
		{tkStrong, it.Strong},
		{tkEmph, it.Emph},
		{tkStrike, it.Strike},
		{tkRole, it.Role},
		{tkEmbedded, it.Embedded},
		{tkPhrase, it.Phrase},
		{tkInterpreted, it.Interpreted},
		{tkFootnote, it.Footnote},
		{tkURI, it.URI},
		{tkRef, it.Ref},
		{tkEscape, it.Escape},
		{tkEllipsis, it.Ellipsis},
		{tkDash, it.Dash},
		{tkQuote, it.Quote},
		{tkNewline, it.Newline},
		{tkSpace, it.Space},
		{tkWord, it.Word},
	} {
		if c.text != "" {
			return inlineToken{kind: c.kind, text: c.text}
		}
	}

	return inlineToken{kind: tkPunct, text: it.Punct}
}

// separator reports whether markup may start after or end before a token of kind k.
func (k tokenKind) separator() bool {
	switch k {
	case tkSpace, tkNewline, tkPunct, tkQuote, tkDash, tkEllipsis:
		return true
	}

	return false
}

// inline parses the inline content of the given lines.
func (b *blocks) inline(ls []line) (*doc.Node, error) {
	toks, err := b.tokens(ls)
	if err != nil || len(toks) == 0 {
		return nil, err
	}

	return b.convert(toks), nil
}

// tokens splits the inline content of the given lines into tokens.
func (b *blocks) tokens(ls []line) ([]inlineToken, error) {
	if len(ls) == 0 {
		return nil, nil
	}

	seq, err := inlineParser.ParseString(ls[0].pos.File, joinText(ls))
	if err != nil {
		var perr participle.Error
		if errors.As(err, &perr) {
			pos := token.FromLexer(ls[0].pos, perr.Position())
			return nil, newParseError(b.pass, token.NewNode(pos, pos), perr.Message())
		}

		return nil, newParseError(b.pass, ls[0].node(), "invalid inline markup").withCause(err)
	}

	toks := make([]inlineToken, len(seq.Items))
	for i, it := range seq.Items {
		toks[i] = it.token()
	}

	return toks, nil
}

// plain returns the text of the tokens with the delimiters of inline markup
// removed. It allocates no nodes, so the references pass can name section
// targets the way their headings read.
func plain(toks []inlineToken) string {
	var sb strings.Builder

	for i, t := range toks {
		s := t.text

		switch t.kind {
		case tkWord, tkPunct, tkQuote, tkDash, tkEllipsis:
			sb.WriteString(s)

			continue
		case tkSpace, tkNewline:
			sb.WriteByte(' ')

			continue
		case tkEscape:
			if s[1:] != " " {
				sb.WriteString(s[1:])
			}

			continue
		}

		delimited := (i == 0 || toks[i-1].kind.separator()) && (i+1 == len(toks) || toks[i+1].kind.separator())
		if !delimited {
			sb.WriteString(s)
			continue
		}

		switch t.kind {
		case tkLiteral, tkStrong, tkStrike:
			sb.WriteString(s[2 : len(s)-2])
		case tkEmph, tkInterpreted:
			sb.WriteString(unescape(s[1 : len(s)-1]))
		case tkRole:
			_, body := splitRole(s)
			sb.WriteString(body)
		case tkPhrase:
			name := strings.TrimRight(s, "_")
			sb.WriteString(name[1 : len(name)-1])
		case tkRef:
			sb.WriteString(strings.TrimRight(s, "_"))
		case tkEmbedded:
			inner := strings.TrimRight(s, "_")
			inner = inner[1 : len(inner)-1]
			label := strings.TrimSpace(inner[:strings.LastIndex(inner, "<")])
			if label == "" {
				label = inner[strings.LastIndex(inner, "<")+1 : len(inner)-1]
			}

			sb.WriteString(label)
		default:
			sb.WriteString(s)
		}
	}

	return sb.String()
}

// convert turns tokens into inline nodes. Markup which is not delimited by
// whitespace or punctuation is kept as text, as are unresolved references.
func (b *blocks) convert(toks []inlineToken) *doc.Node {
	var (
		a       = b.arena()
		ext     = b.s.cfg.Extensions
		out     doc.List
		pending strings.Builder
	)

	emit := func(n *doc.Node) {
		if pending.Len() > 0 {
			out.Push(a.Text(doc.STR, pending.String()))
			pending.Reset()
		}

		out.Push(n)
	}

	for i := 0; i < len(toks); i++ {
		t := toks[i]

		switch t.kind {
		case tkWord, tkPunct:
			pending.WriteString(t.text)
		case tkSpace:
			emit(a.Text(doc.SPACE, " "))
		case tkNewline:
			emit(a.Text(doc.SPACE, "\n"))
		case tkEscape:
			// an escaped space disappears
			if t.text[1:] != " " {
				pending.WriteString(t.text[1:])
			}
		case tkEllipsis:
			if ext.Has(doc.Smart) {
				emit(a.Element(doc.ELLIPSIS, nil))
			} else {
				pending.WriteString(t.text)
			}
		case tkDash:
			switch {
			case !ext.Has(doc.Smart):
				pending.WriteString(t.text)
			case t.text == "---":
				emit(a.Element(doc.EMDASH, nil))
			default:
				emit(a.Element(doc.ENDASH, nil))
			}
		case tkQuote:
			if !ext.Has(doc.Smart) {
				pending.WriteString(t.text)
				continue
			}

			if t.text == "'" && i > 0 && toks[i-1].kind == tkWord {
				emit(a.Element(doc.APOSTROPHE, nil))
				continue
			}

			if k := closingQuote(toks, i); k > 0 {
				tag := doc.DOUBLEQUOTED
				if t.text == "'" {
					tag = doc.SINGLEQUOTED
				}

				emit(a.Element(tag, b.convert(toks[i+1:k])))
				i = k

				continue
			}

			pending.WriteString(t.text)
		default:
			delimited := (i == 0 || toks[i-1].kind.separator()) && (i+1 == len(toks) || toks[i+1].kind.separator())
			if !delimited {
				pending.WriteString(t.text)
				continue
			}

			n, ok := b.markup(t)
			if !ok {
				pending.WriteString(t.text)
				continue
			}

			emit(n)
		}
	}

	if pending.Len() > 0 {
		out.Push(a.Text(doc.STR, pending.String()))
	}

	return out.Head()
}

// closingQuote returns the index of the quote closing the one at i, or -1.
func closingQuote(toks []inlineToken, i int) int {
	if i > 0 && !toks[i-1].kind.separator() {
		return -1
	}

	if i+1 == len(toks) || toks[i+1].kind == tkSpace || toks[i+1].kind == tkNewline {
		return -1
	}

	for k := i + 2; k < len(toks); k++ {
		if toks[k].kind != tkQuote || toks[k].text != toks[i].text {
			continue
		}

		if toks[k-1].kind == tkSpace || toks[k-1].kind == tkNewline {
			continue
		}

		if k+1 < len(toks) && toks[k+1].kind == tkWord {
			continue
		}

		return k
	}

	return -1
}

// markup converts a delimited markup token. A nil node with ok set means
// the construct is dropped, !ok keeps its source text.
func (b *blocks) markup(t inlineToken) (*doc.Node, bool) {
	a := b.arena()
	ext := b.s.cfg.Extensions
	s := t.text

	switch t.kind {
	case tkLiteral:
		return a.Text(doc.CODE, s[2:len(s)-2]), true
	case tkStrong:
		return a.Element(doc.STRONG, b.textRun(s[2:len(s)-2])), true
	case tkEmph:
		return a.Element(doc.EMPH, b.textRun(s[1:len(s)-1])), true
	case tkStrike:
		if !ext.Has(doc.Strike) {
			return nil, false
		}

		return a.Element(doc.STRIKE, b.textRun(s[2:len(s)-2])), true
	case tkInterpreted:
		return a.Element(doc.EMPH, b.textRun(s[1:len(s)-1])), true
	case tkRole:
		return b.role(s)
	case tkPhrase:
		name := strings.TrimRight(s, "_")
		name = name[1 : len(name)-1]

		return b.reference(name, name)
	case tkRef:
		name := strings.TrimRight(s, "_")
		return b.reference(name, name)
	case tkEmbedded:
		return b.embedded(strings.TrimRight(s, "_"))
	case tkFootnote:
		return b.footnote(s[1 : len(s)-2])
	case tkURI:
		return a.Link(doc.LINK, a.Text(doc.STR, s), s, ""), true
	}

	return nil, false
}

// textRun converts the content of simple markup into STR and SPACE nodes.
func (b *blocks) textRun(s string) *doc.Node {
	a := b.arena()

	var out doc.List

	for i := 0; i < len(s); {
		j := i
		if isSpace(s[i]) {
			for j < len(s) && isSpace(s[j]) {
				j++
			}

			out.Push(a.Text(doc.SPACE, " "))
			i = j

			continue
		}

		for j < len(s) && !isSpace(s[j]) {
			j++
		}

		out.Push(a.Text(doc.STR, unescape(s[i:j])))
		i = j
	}

	return out.Head()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n'
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}

		sb.WriteByte(s[i])
	}

	return sb.String()
}

// reference resolves a named reference against the reference table.
func (b *blocks) reference(name, label string) (*doc.Node, bool) {
	ref, ok := b.s.lookupReference(name)
	if !ok {
		return nil, false
	}

	return b.arena().Link(doc.LINK, b.textRun(label), ref.URL, ref.Title), true
}

// embedded converts "`label <url>`". A url ending in "_" names a target.
func (b *blocks) embedded(s string) (*doc.Node, bool) {
	inner := s[1 : len(s)-1]
	lt := strings.LastIndex(inner, "<")
	label := strings.TrimSpace(inner[:lt])
	url := strings.Join(strings.Fields(inner[lt+1:len(inner)-1]), "")

	if label == "" {
		label = url
	}

	if strings.HasSuffix(url, "_") && !strings.HasSuffix(url, `\_`) {
		return b.reference(strings.TrimSuffix(url, "_"), label)
	}

	return b.arena().Link(doc.LINK, b.textRun(label), unescape(url), ""), true
}

// footnote resolves a footnote reference into a NOTE carrying a copy of the note body.
func (b *blocks) footnote(label string) (*doc.Node, bool) {
	if b.inNote || !b.s.cfg.Extensions.Has(doc.Notes) {
		return nil, false
	}

	e, ok := b.s.noteFor(label)
	if !ok {
		return nil, false
	}

	a := b.arena()

	return a.Note(e.display, a.Copy(e.node.FirstChild())), true
}

// role converts interpreted text with an explicit role, ":role:`text`" or "`text`:role:".
func (b *blocks) role(s string) (*doc.Node, bool) {
	name, body := splitRole(s)

	a := b.arena()
	ext := b.s.cfg.Extensions

	switch strings.ToLower(name) {
	case "emphasis", "title-reference", "title", "t":
		return a.Element(doc.EMPH, b.textRun(body)), true
	case "strong":
		return a.Element(doc.STRONG, b.textRun(body)), true
	case "literal", "code":
		return a.Text(doc.CODE, body), true
	case "raw-html", "html":
		if ext.Has(doc.FilterHTML) {
			return nil, true
		}

		return a.Text(doc.HTML, body), true
	case "strike", "del":
		if ext.Has(doc.Strike) {
			return a.Element(doc.STRIKE, b.textRun(body)), true
		}
	default:
		b.s.log.WithField("role", name).Debug("unknown role rendered as text")
	}

	return b.textRun(body), true
}

// splitRole separates ":role:`text`" or "`text`:role:" into the role name and the text.
func splitRole(s string) (name, body string) {
	if s[0] == ':' {
		k := strings.IndexByte(s[1:], ':') + 1
		return s[1:k], s[k+2 : len(s)-1]
	}

	k := strings.IndexByte(s[1:], '`') + 1

	return s[k+2 : len(s)-1], s[1:k]
}
