// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package doc

import "testing"

func TestParseExtensions(t *testing.T) {
	tests := []struct {
		in      string
		want    Extensions
		wantErr bool
	}{
		{in: "", want: 0},
		{in: "smart,notes", want: Smart | Notes},
		{in: " Strike , dlists ", want: Strike | DefinitionLists},
		{in: "all", want: Smart | Notes | FilterHTML | FilterStyles | Strike | DefinitionLists},
		{in: "smart,bogus", wantErr: true},
	}

	for _, test := range tests {
		got, err := ParseExtensions(test.in)
		if (err != nil) != test.wantErr {
			t.Errorf("ParseExtensions(%q) error = %v, wantErr %v", test.in, err, test.wantErr)
			continue
		}

		if !test.wantErr && got != test.want {
			t.Errorf("ParseExtensions(%q) = %s, want %s", test.in, got, test.want)
		}
	}
}

func TestExtensionsIgnoreUnknownBits(t *testing.T) {
	e := Smart | Extensions(0x8000)

	if !e.Has(Smart) || e.Has(Notes) {
		t.Errorf("unexpected bits in %s", e)
	}

	if e.String() != "smart" {
		t.Errorf("expected unknown bits to be omitted, got %q", e.String())
	}
}

func TestTags(t *testing.T) {
	for level := 1; level <= 6; level++ {
		tag := Heading(level)
		if tag.Level() != level {
			t.Errorf("Heading(%d).Level() = %d", level, tag.Level())
		}
	}

	tests := []struct {
		tag  Tag
		kind PayloadKind
	}{
		{STR, PayloadText},
		{NOTE, PayloadText},
		{VERBATIM, PayloadText},
		{LINK, PayloadLink},
		{REFERENCE, PayloadLink},
		{CODEBLOCK, PayloadCode},
		{PARA, PayloadNone},
		{LIST, PayloadNone},
	}

	for _, test := range tests {
		if got := test.tag.Payload(); got != test.kind {
			t.Errorf("%s carries %s, want %s", test.tag, got, test.kind)
		}
	}

	if Tag(-1).Valid() || numTags.Valid() {
		t.Errorf("tags outside the closed set must be invalid")
	}
}

func TestPlainTextAndNames(t *testing.T) {
	a := NewArena(Strict(true))

	var seq List
	seq.Push(a.Text(STR, "Hello,"))
	seq.Push(a.Text(SPACE, " "))
	seq.Push(a.Element(EMPH, a.Text(STR, "World")))
	seq.Push(a.Element(ELLIPSIS, nil))

	if got := PlainText(seq.Head()); got != "Hello, World..." {
		t.Errorf("PlainText() = %q", got)
	}

	if got := Slug("Hello, World!"); got != "hello-world" {
		t.Errorf("Slug() = %q", got)
	}

	if got := NormalizeName("  Go\n  Site "); got != "go site" {
		t.Errorf("NormalizeName() = %q", got)
	}

	DestroyTree(seq.Head())

	if s := a.Stats(); s.LiveNodes != 0 || s.LiveBuffers != 0 {
		t.Errorf("expected everything to be released, got %+v", s)
	}
}
