// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package encoder_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/golangee/rstdoc"
	"github.com/golangee/rstdoc/doc"
	"github.com/golangee/rstdoc/encoder"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/sirupsen/logrus"
)

func quietOptions(ext doc.Extensions) rstdoc.Options {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return rstdoc.Options{Extensions: ext, Logger: l, Strict: true}
}

func render(t *testing.T, text string, ext doc.Extensions, format encoder.Format) string {
	t.Helper()

	d, err := rstdoc.Resolve(text, quietOptions(ext))
	if err != nil {
		t.Fatal(err)
	}

	defer d.Close()

	var buf bytes.Buffer
	if err := encoder.Render(&buf, d.Root, format, ext); err != nil {
		t.Fatal(err)
	}

	return buf.String()
}

func TestHTMLEncode(t *testing.T) {
	tests := []struct {
		name string
		ext  doc.Extensions
		text string
		want string
	}{
		{
			name: "emphasis",
			text: "Hello *world*.\n",
			want: "<p>Hello <em>world</em>.</p>",
		},
		{
			name: "reference",
			text: ".. _foo: http://example.com\n\nSee foo_.\n",
			want: `<p>See <a href="http://example.com">foo</a>.</p>`,
		},
		{
			name: "unmatched reference",
			text: "See bar_.\n",
			want: "<p>See bar_.</p>",
		},
		{
			name: "titles",
			text: "=====\nTitle\n=====\n\nSub\n---\n\nText\n",
			want: `<h1 class="title" id="title">Title</h1>
					<h1 id="sub">Sub</h1>
					<p>Text</p>`,
		},
		{
			name: "tight list",
			text: "- a\n- b\n",
			want: "<ul><li>a</li><li>b</li></ul>",
		},
		{
			name: "literal block",
			text: "Example::\n\n    code here\n",
			want: "<p>Example:</p><pre><code>code here\n</code></pre>",
		},
		{
			name: "code block",
			text: ".. code-block:: go\n\n   fmt.Println(1)\n",
			want: `<pre><code class="language-go">fmt.Println(1)</code></pre>`,
		},
		{
			name: "smart punctuation",
			ext:  doc.Smart,
			text: "\"Hi\" -- it's...\n",
			want: "<p>&ldquo;Hi&rdquo; &ndash; it&rsquo;s&hellip;</p>",
		},
		{
			name: "no smart punctuation",
			text: "\"Hi\" -- it's...\n",
			want: "<p>&quot;Hi&quot; -- it's...</p>",
		},
		{
			name: "simple table",
			text: "=====  =====\nA      B\n=====  =====\n1      2\n=====  =====\n",
			want: `<table>
						<thead><tr><th>A</th><th>B</th></tr></thead>
						<tbody><tr><td>1</td><td>2</td></tr></tbody>
					</table>`,
		},
		{
			name: "special chars",
			text: "<tag></tag>&\n",
			want: "<p>&lt;tag&gt;&lt;/tag&gt;&amp;</p>",
		},
	}

	t.Parallel()

	for _, tt := range tests {
		test := tt

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			got := render(t, test.text, test.ext, encoder.HTML)
			if !StringsEqual(test.want, got) {
				dmp := diffmatchpatch.New()
				diffs := dmp.DiffMain(stripSpace(test.want), stripSpace(got), false)
				t.Errorf("Test '%s' failed:\n%s", test.name, dmp.DiffPrettyText(diffs))
			}
		})
	}
}

func TestHTMLNotes(t *testing.T) {
	out := render(t, "Text [#]_ and [#]_.\n\n.. [#] First.\n.. [#] Second.\n", doc.Notes, encoder.HTML)

	dom, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}

	refs := dom.Find("a.noteref")
	if refs.Length() != 2 {
		t.Fatalf("expected 2 note references, got %d in %s", refs.Length(), out)
	}

	if href := refs.First().AttrOr("href", ""); href != "#fn1" {
		t.Errorf("expected a link to #fn1, got %q", href)
	}

	items := dom.Find("ol#notes > li")
	if items.Length() != 2 {
		t.Fatalf("expected 2 endnotes, got %d", items.Length())
	}

	if got := strings.TrimSpace(items.Eq(1).Find("p").Text()); got != "Second." {
		t.Errorf("expected the second note body, got %q", got)
	}
}

func TestHTMLFilters(t *testing.T) {
	text := ".. raw:: html\n\n   <style>p {}</style><div>kept</div>\n\nSome :raw-html:`<b>bold</b>` text.\n"

	t.Run("filter html", func(t *testing.T) {
		out := render(t, text, doc.FilterHTML, encoder.HTML)
		if strings.Contains(out, "<div>") || strings.Contains(out, "<b>") {
			t.Errorf("raw html was not filtered: %s", out)
		}
	})

	t.Run("filter styles", func(t *testing.T) {
		out := render(t, text, doc.FilterStyles, encoder.HTML)

		dom, err := goquery.NewDocumentFromReader(strings.NewReader(out))
		if err != nil {
			t.Fatal(err)
		}

		if dom.Find("style").Length() != 0 {
			t.Errorf("style element was not removed: %s", out)
		}

		if dom.Find("div").Text() != "kept" {
			t.Errorf("expected the div to be kept: %s", out)
		}

		if dom.Find("b").Text() != "bold" {
			t.Errorf("expected inline html to be kept: %s", out)
		}
	})
}

func TestOtherFormats(t *testing.T) {
	text := "Title\n=====\n\nSome **strong** text [#]_.\n\n- item\n\n.. [#] A note.\n"

	tests := []struct {
		format encoder.Format
		want   []string
	}{
		{encoder.LaTeX, []string{`\section{Title}`, `\textbf{strong}`, `\footnote{A note.}`, `\begin{itemize}`, `\item item`}},
		{encoder.GroffMM, []string{`.H 1 "Title"`, `\fBstrong\fR`, `\*F`, ".FS\n", ".BL\n.LI\nitem\n.LE 1"}},
		{encoder.ODF, []string{`<text:h text:outline-level="1">Title</text:h>`, `<text:span text:style-name="Strong">strong</text:span>`, `<text:note-citation>1</text:note-citation>`, "<text:list>"}},
	}

	for _, tt := range tests {
		test := tt

		t.Run(test.format.String(), func(t *testing.T) {
			out := render(t, text, doc.Notes, test.format)
			for _, want := range test.want {
				if !strings.Contains(out, want) {
					t.Errorf("expected %q in\n%s", want, out)
				}
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    encoder.Format
		wantErr bool
	}{
		{"html", encoder.HTML, false},
		{"LaTeX", encoder.LaTeX, false},
		{"groff-mm", encoder.GroffMM, false},
		{"odf", encoder.ODF, false},
		{"pdf", 0, true},
	}

	for _, test := range tests {
		got, err := encoder.ParseFormat(test.in)
		if (err != nil) != test.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", test.in, err, test.wantErr)
			continue
		}

		if !test.wantErr && got != test.want {
			t.Errorf("ParseFormat(%q) = %s, want %s", test.in, got, test.want)
		}
	}
}

// StringsEqual compares two given strings but ignores differences in whitespaces, tabs and newlines.
func StringsEqual(in1, in2 string) bool {
	return stripSpace(in1) == stripSpace(in2)
}

func stripSpace(s string) string {
	return strings.NewReplacer("\n", "", "\t", "", " ", "").Replace(s)
}
