// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/golangee/rstdoc/doc"
	"github.com/r3labs/diff/v2"
	"github.com/sirupsen/logrus"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return l
}

func newSession(text string, ext doc.Extensions) *Session {
	return New(text, Config{
		File:       "test.rst",
		Extensions: ext,
		Arena:      doc.NewArena(doc.Strict(true)),
		Logger:     quietLogger(),
		Strict:     true,
	})
}

// parse runs every pass like the pipeline does and returns the outline of the body.
func parse(t *testing.T, text string, ext doc.Extensions) []doc.Outline {
	t.Helper()

	s := newSession(text, ext)

	refs, err := s.References()
	if err != nil {
		t.Fatal(err)
	}

	s.SetReferences(refs)

	if ext.Has(doc.Notes) {
		notes, err := s.Notes()
		if err != nil {
			t.Fatal(err)
		}

		s.SetNotes(notes)
	}

	root, err := s.Document()
	if err != nil {
		t.Fatal(err)
	}

	if root.Tag() != doc.LIST {
		t.Fatalf("expected a LIST root, got %s", root.Tag())
	}

	return doc.OutlineOf(root.FirstChild())
}

func str(s string) doc.Outline {
	return doc.Outline{Tag: "STR", Text: s}
}

func sp() doc.Outline {
	return doc.Outline{Tag: "SPACE", Text: " "}
}

func nl() doc.Outline {
	return doc.Outline{Tag: "SPACE", Text: "\n"}
}

func el(tag string, children ...doc.Outline) doc.Outline {
	return doc.Outline{Tag: tag, Children: children}
}

func txt(tag, s string) doc.Outline {
	return doc.Outline{Tag: tag, Text: s}
}

func link(url string, label ...doc.Outline) doc.Outline {
	return doc.Outline{Tag: "LINK", URL: url, Label: label}
}

func note(display string, children ...doc.Outline) doc.Outline {
	return doc.Outline{Tag: "NOTE", Text: display, Children: children}
}

func TestDocument(t *testing.T) {
	tests := []struct {
		name string
		ext  doc.Extensions
		text string
		want []doc.Outline
	}{
		{
			name: "overlined title and section",
			text: "=====\nTitle\n=====\n\nIntro\n-----\n\nText.\n",
			want: []doc.Outline{el("H1TITLE", str("Title")), el("H1", str("Intro")), el("PARA", str("Text."))},
		},
		{
			name: "underlined first title is a section",
			text: "Title\n=====\n\nSub\n---\n",
			want: []doc.Outline{el("H1", str("Title")), el("H2", str("Sub"))},
		},
		{
			name: "multi line paragraph",
			text: "one\ntwo\n",
			want: []doc.Outline{el("PARA", str("one"), nl(), str("two"))},
		},
		{
			name: "tight bullet list",
			text: "- a\n- b\n",
			want: []doc.Outline{el("BULLETLIST",
				el("LISTITEM", el("PLAIN", str("a"))),
				el("LISTITEM", el("PLAIN", str("b"))),
			)},
		},
		{
			name: "loose enumerated list",
			text: "1. a\n\n2. b\n",
			want: []doc.Outline{el("ORDEREDLIST",
				el("LISTITEM", el("PARA", str("a"))),
				el("LISTITEM", el("PARA", str("b"))),
			)},
		},
		{
			name: "nested list",
			text: "- a\n\n  - b\n",
			want: []doc.Outline{el("BULLETLIST",
				el("LISTITEM", el("PARA", str("a")), el("BULLETLIST", el("LISTITEM", el("PLAIN", str("b"))))),
			)},
		},
		{
			name: "literal block",
			text: "Example::\n\n    code\n      more\n",
			want: []doc.Outline{el("PARA", str("Example:")), txt("VERBATIM", "code\n  more")},
		},
		{
			name: "expanded literal marker",
			text: "Example ::\n\n    code\n",
			want: []doc.Outline{el("PARA", str("Example")), txt("VERBATIM", "code")},
		},
		{
			name: "lone literal marker",
			text: "::\n\n    code\n",
			want: []doc.Outline{txt("VERBATIM", "code")},
		},
		{
			name: "block quote with attribution",
			text: "Text.\n\n    Quoted.\n\n    -- Someone\n",
			want: []doc.Outline{el("PARA", str("Text.")), el("BLOCKQUOTE", el("PARA", str("Quoted.")))},
		},
		{
			name: "line block",
			text: "| one\n| two\n",
			want: []doc.Outline{el("PARA", str("one"), el("LINEBREAK"), str("two"))},
		},
		{
			name: "transition",
			text: "a\n\n----\n\nb\n",
			want: []doc.Outline{el("PARA", str("a")), el("HRULE"), el("PARA", str("b"))},
		},
		{
			name: "doctest",
			text: ">>> 1 + 1\n2\n",
			want: []doc.Outline{txt("VERBATIM", ">>> 1 + 1\n2")},
		},
		{
			name: "definition list",
			ext:  doc.DefinitionLists,
			text: "term : classifier\n    definition\n",
			want: []doc.Outline{el("DEFINITIONLIST",
				el("DEFTITLE", str("term")),
				el("DEFDATA", el("PARA", str("definition"))),
			)},
		},
		{
			name: "definition list without extension",
			text: "term\n    definition\n",
			want: []doc.Outline{el("PARA", str("term")), el("BLOCKQUOTE", el("PARA", str("definition")))},
		},
		{
			name: "simple table",
			text: "=====  =====\nA      B\n=====  =====\n1      2\n3\n=====  =====\n",
			want: []doc.Outline{el("TABLE",
				el("TABLEHEAD", el("TABLEROW", el("TABLECELL", str("A")), el("TABLECELL", str("B")))),
				el("TABLEBODY",
					el("TABLEROW", el("TABLECELL", str("1")), el("TABLECELL", str("2"))),
					el("TABLEROW", el("TABLECELL", str("3")), el("TABLECELL")),
				),
			)},
		},
		{
			name: "table without header",
			text: "===  ===\na    b\n===  ===\n",
			want: []doc.Outline{el("TABLE",
				el("TABLEBODY", el("TABLEROW", el("TABLECELL", str("a")), el("TABLECELL", str("b")))),
			)},
		},
		{
			name: "table with wide characters",
			text: "=====  =====\nA      B\n=====  =====\nééééé  x\nñandú  y\n=====  =====\n",
			want: []doc.Outline{el("TABLE",
				el("TABLEHEAD", el("TABLEROW", el("TABLECELL", str("A")), el("TABLECELL", str("B")))),
				el("TABLEBODY",
					el("TABLEROW", el("TABLECELL", str("ééééé")), el("TABLECELL", str("x"))),
					el("TABLEROW", el("TABLECELL", str("ñandú")), el("TABLECELL", str("y"))),
				),
			)},
		},
		{
			name: "section target named by the plain title",
			text: "*Sub* part\n==========\n\nSee `Sub part`_.\n",
			want: []doc.Outline{
				el("H1", el("EMPH", str("Sub")), sp(), str("part")),
				el("PARA", str("See"), sp(), link("#sub-part", str("Sub"), sp(), str("part")), str(".")),
			},
		},
		{
			name: "code block",
			text: ".. code-block:: go\n\n   x := 1\n",
			want: []doc.Outline{{Tag: "CODEBLOCK", Lang: "go", Text: "x := 1"}},
		},
		{
			name: "image",
			text: ".. image:: a.png\n   :alt: An image\n",
			want: []doc.Outline{el("PARA", doc.Outline{Tag: "IMAGE", URL: "a.png", Label: []doc.Outline{str("An"), sp(), str("image")}})},
		},
		{
			name: "admonition",
			text: ".. note:: Be careful.\n",
			want: []doc.Outline{el("BLOCKQUOTE",
				el("PARA", el("STRONG", str("Note"))),
				el("PARA", str("Be"), sp(), str("careful.")),
			)},
		},
		{
			name: "raw html",
			text: ".. raw:: html\n\n   <b>x</b>\n",
			want: []doc.Outline{txt("HTMLBLOCK", "<b>x</b>")},
		},
		{
			name: "raw html filtered",
			ext:  doc.FilterHTML,
			text: ".. raw:: html\n\n   <b>x</b>\n\nText.\n",
			want: []doc.Outline{el("PARA", str("Text."))},
		},
		{
			name: "raw latex is skipped",
			text: ".. raw:: latex\n\n   \\newpage\n",
			want: nil,
		},
		{
			name: "comment and substitution",
			text: ".. a comment\n   continued\n\n.. |name| replace:: x\n\nText.\n",
			want: []doc.Outline{el("PARA", str("Text."))},
		},
		{
			name: "ignored directive",
			text: ".. contents::\n\nText.\n",
			want: []doc.Outline{el("PARA", str("Text."))},
		},
	}

	t.Parallel()

	for _, tt := range tests {
		test := tt

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			got := parse(t, test.text, test.ext)

			changes, err := diff.Diff(test.want, got)
			if err != nil {
				t.Fatal(err)
			}

			if len(changes) > 0 {
				t.Errorf("Test '%s' failed:\n%+v\ngot %+v", test.name, changes, got)
			}
		})
	}
}

func TestInline(t *testing.T) {
	tests := []struct {
		name string
		ext  doc.Extensions
		text string
		want []doc.Outline
	}{
		{
			name: "emphasis and strong",
			text: "*a* **b** ``c``\n",
			want: []doc.Outline{el("EMPH", str("a")), sp(), el("STRONG", str("b")), sp(), txt("CODE", "c")},
		},
		{
			name: "roles",
			text: ":strong:`a` and `b`:literal:\n",
			want: []doc.Outline{el("STRONG", str("a")), sp(), str("and"), sp(), txt("CODE", "b")},
		},
		{
			name: "unknown role is text",
			text: ":sup:`2`\n",
			want: []doc.Outline{str("2")},
		},
		{
			name: "raw html role",
			text: ":raw-html:`<br/>`\n",
			want: []doc.Outline{txt("HTML", "<br/>")},
		},
		{
			name: "escapes",
			text: `\*not emph\*` + "\n",
			want: []doc.Outline{str("*not"), sp(), str("emph*")},
		},
		{
			name: "markup needs separators",
			text: "a*b*c\n",
			want: []doc.Outline{str("a*b*c")},
		},
		{
			name: "smart punctuation",
			ext:  doc.Smart,
			text: `"Hi" -- it's... yes---no` + "\n",
			want: []doc.Outline{
				el("DOUBLEQUOTED", str("Hi")), sp(), el("ENDASH"), sp(),
				str("it"), el("APOSTROPHE"), str("s"), el("ELLIPSIS"), sp(),
				str("yes"), el("EMDASH"), str("no"),
			},
		},
		{
			name: "plain punctuation",
			text: `"Hi" -- it's...` + "\n",
			want: []doc.Outline{str(`"Hi"`), sp(), str("--"), sp(), str("it's...")},
		},
		{
			name: "strike",
			ext:  doc.Strike,
			text: "~~gone~~\n",
			want: []doc.Outline{el("STRIKE", str("gone"))},
		},
		{
			name: "strike without extension",
			text: "~~gone~~\n",
			want: []doc.Outline{str("~~gone~~")},
		},
		{
			name: "standalone uri",
			text: "Visit http://example.com.\n",
			want: []doc.Outline{str("Visit"), sp(), link("http://example.com", str("http://example.com")), str(".")},
		},
		{
			name: "embedded uri",
			text: "`Go <https://go.dev>`_\n",
			want: []doc.Outline{link("https://go.dev", str("Go"))},
		},
		{
			name: "indirect target",
			text: ".. _Go site: https://go.dev\n.. _alias: `Go site`_\n\nSee alias_ and `Go site`_.\n",
			want: []doc.Outline{
				str("See"), sp(), link("https://go.dev", str("alias")), sp(), str("and"), sp(),
				link("https://go.dev", str("Go"), sp(), str("site")), str("."),
			},
		},
		{
			name: "section target",
			text: "Intro\n=====\n\nSee Intro_.\n",
			want: []doc.Outline{str("See"), sp(), link("#intro", str("Intro")), str(".")},
		},
		{
			name: "unmatched reference",
			text: "See nowhere_.\n",
			want: []doc.Outline{str("See"), sp(), str("nowhere_.")},
		},
	}

	t.Parallel()

	for _, tt := range tests {
		test := tt

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			blocks := parse(t, test.text, test.ext)

			var got []doc.Outline
			for _, b := range blocks {
				if b.Tag == "PARA" {
					got = b.Children
				}
			}

			changes, err := diff.Diff(test.want, got)
			if err != nil {
				t.Fatal(err)
			}

			if len(changes) > 0 {
				t.Errorf("Test '%s' failed:\n%+v\ngot %+v", test.name, changes, got)
			}
		})
	}
}

func TestFootnotes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []doc.Outline
	}{
		{
			name: "auto numbered and symbol",
			text: "A [#]_ B [*]_\n\n.. [#] one\n.. [*] two\n",
			want: []doc.Outline{el("PARA",
				str("A"), sp(), note("1", el("PARA", str("one"))), sp(),
				str("B"), sp(), note("*", el("PARA", str("two"))),
			)},
		},
		{
			name: "auto numbers skip explicit numbers",
			text: "[#]_ [1]_\n\n.. [1] x\n.. [#] y\n",
			want: []doc.Outline{el("PARA",
				note("2", el("PARA", str("y"))), sp(), note("1", el("PARA", str("x"))),
			)},
		},
		{
			name: "named auto number",
			text: "[#a]_\n\n.. [#a] x\n",
			want: []doc.Outline{el("PARA", note("1", el("PARA", str("x"))))},
		},
		{
			name: "note body sees references",
			text: "[1]_\n\n.. [1] see home_\n.. _home: http://example.com\n",
			want: []doc.Outline{el("PARA", note("1", el("PARA", str("see"), sp(), link("http://example.com", str("home")))))},
		},
		{
			name: "note references inside notes are text",
			text: "[1]_\n\n.. [1] see [2]_\n.. [2] x\n",
			want: []doc.Outline{el("PARA", note("1", el("PARA", str("see"), sp(), str("[2]_"))))},
		},
		{
			name: "unknown note is text",
			text: "[3]_\n",
			want: []doc.Outline{el("PARA", str("[3]_"))},
		},
		{
			name: "citations are comments",
			text: "Text.\n\n.. [CIT2002] A citation.\n",
			want: []doc.Outline{el("PARA", str("Text."))},
		},
	}

	t.Parallel()

	for _, tt := range tests {
		test := tt

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			got := parse(t, test.text, doc.Notes)

			changes, err := diff.Diff(test.want, got)
			if err != nil {
				t.Fatal(err)
			}

			if len(changes) > 0 {
				t.Errorf("Test '%s' failed:\n%+v\ngot %+v", test.name, changes, got)
			}
		})
	}
}

func TestReferences(t *testing.T) {
	text := "Intro\n=====\n\n" +
		".. _a: http://a.example\n" +
		".. _`b: c`: http://b.example\n" +
		".. _long: http://exa\n   mple.com/\n" +
		".. _internal:\n" +
		".. __: http://anonymous.example\n" +
		".. _d\\:e: http://d.example\n\n" +
		"*Sub* ``part``\n--------------\n"

	s := newSession(text, 0)

	refs, err := s.References()
	if err != nil {
		t.Fatal(err)
	}

	ref := func(name, url string) doc.Outline {
		return doc.Outline{Tag: "REFERENCE", URL: url, Label: []doc.Outline{str(name)}}
	}

	want := []doc.Outline{
		ref("a", "http://a.example"),
		ref("b: c", "http://b.example"),
		ref("long", "http://example.com/"),
		ref("internal", "#internal"),
		ref("d:e", "http://d.example"),
		ref("Intro", "#intro"),
		ref("Sub part", "#sub-part"),
	}

	changes, err := diff.Diff(want, doc.OutlineOf(refs))
	if err != nil {
		t.Fatal(err)
	}

	if len(changes) > 0 {
		t.Errorf("unexpected reference table: %+v", changes)
	}

	again, err := s.References()
	if err != nil {
		t.Fatal(err)
	}

	if changes, _ := diff.Diff(doc.OutlineOf(refs), doc.OutlineOf(again)); len(changes) > 0 {
		t.Errorf("a second references pass differs: %+v", changes)
	}
}

func TestDocumentTwice(t *testing.T) {
	s := newSession("=====\nTitle\n=====\n\nSub\n---\n\n- a\n", 0)

	first, err := s.Document()
	if err != nil {
		t.Fatal(err)
	}

	second, err := s.Document()
	if err != nil {
		t.Fatal(err)
	}

	if changes, _ := diff.Diff(doc.OutlineOf(first), doc.OutlineOf(second)); len(changes) > 0 {
		t.Errorf("a second document pass differs: %+v", changes)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		pass Pass
		msg  string
		hint string
		line int
	}{
		{
			name: "unknown directive",
			text: "Text.\n\n.. frobnicate:: x\n",
			pass: PassReferences,
			msg:  `unknown directive type "frobnicate"`,
			line: 3,
		},
		{
			name: "new title style skips a level",
			text: "AA\n==\n\nBB\n--\n\nCC\n==\n\nDD\n~~\n",
			pass: PassDocument,
			msg:  "title level inconsistent",
			hint: "a new title style must not skip a section level",
			line: 10,
		},
		{
			name: "known title style skips a level",
			text: "AA\n==\n\nBB\n--\n\nCC\n~~\n\nDD\n==\n\nEE\n~~\n",
			pass: PassDocument,
			msg:  "title level inconsistent",
			hint: "the title is nested deeper than the current section allows",
			line: 13,
		},
		{
			name: "text in a column margin",
			text: "=====  =====\nabcdefg  B\n=====  =====\n",
			pass: PassReferences,
			msg:  "malformed table",
			hint: "text in a column margin",
			line: 2,
		},
		{
			name: "wide text in a column margin",
			text: "=====  =====\néééééé   B\n=====  =====\n",
			pass: PassReferences,
			msg:  "malformed table",
			hint: "text in a column margin",
			line: 2,
		},
		{
			name: "missing bottom border",
			text: "=====  =====\nA      B\n",
			pass: PassReferences,
			msg:  "malformed table",
			hint: "no bottom table border found",
			line: 1,
		},
		{
			name: "text after the bottom border",
			text: "===  ===\nA    B\n===  ===\n1    2\n===  ===\nmore\n",
			pass: PassReferences,
			msg:  "malformed table",
			hint: "text follows the bottom table border",
			line: 6,
		},
		{
			name: "include without includer",
			text: ".. include:: other.rst\n",
			pass: PassDocument,
			msg:  `cannot include "other.rst"`,
			hint: "no includer is configured",
			line: 1,
		},
	}

	t.Parallel()

	for _, tt := range tests {
		test := tt

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			s := newSession(test.text, 0)

			var err error
			for _, run := range []func() (*doc.Node, error){s.References, s.Document} {
				var n *doc.Node
				if n, err = run(); err != nil {
					break
				}

				doc.DestroyTree(n)
			}

			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected a parse error, got %v", err)
			}

			if perr.Pass != test.pass || perr.Msg != test.msg || perr.Hint != test.hint {
				t.Errorf("got %s pass %q (hint %q), want %s pass %q (hint %q)",
					perr.Pass, perr.Msg, perr.Hint, test.pass, test.msg, test.hint)
			}

			if perr.Pos().Line != test.line {
				t.Errorf("expected the error at line %d, got %s", test.line, perr.Pos())
			}

			if explained := perr.Explain(test.text); !strings.Contains(explained, test.msg) {
				t.Errorf("expected the message in\n%s", explained)
			}

			if live := s.Arena().Stats().LiveNodes; live != 0 {
				t.Errorf("expected the failed pass to release its nodes, %d are live", live)
			}
		})
	}
}

func TestInvalidUTF8(t *testing.T) {
	for _, pass := range []Pass{PassReferences, PassNotes, PassDocument} {
		s := newSession("ok\nab\xff\n", doc.Notes)

		var err error
		switch pass {
		case PassReferences:
			_, err = s.References()
		case PassNotes:
			_, err = s.Notes()
		case PassDocument:
			_, err = s.Document()
		}

		if !errors.Is(err, ErrInvalidUTF8) {
			t.Fatalf("%s: expected ErrInvalidUTF8, got %v", pass, err)
		}

		var perr *ParseError
		if errors.As(err, &perr) && (perr.Pos().Line != 2 || perr.Pos().Col != 3 || perr.Pass != pass) {
			t.Errorf("%s: unexpected position %s in the %s pass", pass, perr.Pos(), perr.Pass)
		}
	}
}

func TestNotesWithoutExtension(t *testing.T) {
	s := New("Text.\n", Config{Logger: quietLogger()})

	notes, err := s.Notes()
	if notes != nil || err != nil {
		t.Errorf("expected nothing, got %v, %v", notes, err)
	}

	defer func() {
		if recover() == nil {
			t.Errorf("expected a strict session to panic")
		}
	}()

	_, _ = newSession("Text.\n", 0).Notes()
}

func TestStripStyles(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<style>p {}</style><p>a</p>", "<p>a</p>"},
		{"<div><style>x</style>b</div>", "<div>b</div>"},
		{"plain", "plain"},
	}

	for _, test := range tests {
		got, err := stripStyles(test.in)
		if err != nil {
			t.Fatal(err)
		}

		if got != test.want {
			t.Errorf("stripStyles(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}

func TestCutWideCharacters(t *testing.T) {
	l := splitLines("test.rst", "ab\nééx y\n")[1]

	got := l.cut(2)
	if got.text != "x y" || got.pos.Col != 3 || got.pos.Offset != 3+4 {
		t.Errorf("unexpected cut %q at %s offset %d", got.text, got.pos, got.pos.Offset)
	}

	if got := l.cut(10); got.text != "" || got.pos.Col != 6 {
		t.Errorf("expected an empty line at column 6, got %q at %s", got.text, got.pos)
	}

	if got := slice(l.text, 1, 3); got != "éx" {
		t.Errorf("slice() = %q", got)
	}

	if got := slice(l.text, 4, 2); got != "" {
		t.Errorf("expected an empty slice, got %q", got)
	}
}

func TestMarkers(t *testing.T) {
	type reg struct {
		name  string
		match func(string) bool
		ok    []string
		fail  []string
	}

	table := []reg{
		{
			name:  "bullet",
			match: bulletRe.MatchString,
			ok:    []string{"- a", "* a", "+ a", "• a", "-"},
			fail:  []string{"-a", "a - b"},
		},
		{
			name:  "enumerator",
			match: func(s string) bool { return enumMatch(s) != nil },
			ok:    []string{"1. a", "1) a", "(1) a", "#. a", "a. b", "iv. x", "IV) x"},
			fail:  []string{"(1. a", "1.a", "ab. c"},
		},
		{
			name:  "table border",
			match: isTableBorder,
			ok:    []string{"===  ===", "=  =  ="},
			fail:  []string{"=====", "=== ---", "text"},
		},
		{
			name: "indirect target",
			match: func(s string) bool {
				_, ok := indirectName(s)
				return ok
			},
			ok:   []string{"other_", "`other name`_"},
			fail: []string{"http://x.example/a_", "a b_", `a\_`},
		},
	}

	for _, r := range table {
		for _, s := range r.ok {
			if !r.match(s) {
				t.Errorf("%s: expected %q to match", r.name, s)
			}
		}

		for _, s := range r.fail {
			if r.match(s) {
				t.Errorf("%s: expected %q not to match", r.name, s)
			}
		}
	}
}
