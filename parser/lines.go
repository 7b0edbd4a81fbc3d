// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/golangee/rstdoc/token"
)

const tabWidth = 8

// line is a single source line with its tabs expanded and its trailing
// whitespace removed. Dedented copies keep the position of their first
// remaining character.
type line struct {
	text string
	pos  token.Pos
}

func (l line) blank() bool {
	return l.text == ""
}

// indent returns the number of leading spaces.
func (l line) indent() int {
	return len(l.text) - len(strings.TrimLeft(l.text, " "))
}

// strip removes n leading columns, which must be spaces.
func (l line) strip(n int) line {
	if n > len(l.text) {
		n = len(l.text)
	}

	return line{
		text: l.text[n:],
		pos:  l.pos.Advance(n, n),
	}
}

// cut removes the first n characters, which may be wider than one byte.
func (l line) cut(n int) line {
	off := byteOffset(l.text, n)

	return line{
		text: l.text[off:],
		pos:  l.pos.Advance(utf8.RuneCountInString(l.text[:off]), off),
	}
}

// byteOffset returns the byte offset of the character at column col, or len(s) if s is shorter.
func byteOffset(s string, col int) int {
	for off := range s {
		if col == 0 {
			return off
		}

		col--
	}

	return len(s)
}

// node returns a token.Node spanning the line.
func (l line) node() token.Node {
	return token.NewNode(l.pos, l.pos.Advance(utf8.RuneCountInString(l.text), len(l.text)))
}

// splitLines breaks src into lines.
func splitLines(file, src string) []line {
	var res []line

	offset := 0
	for i, raw := range strings.Split(src, "\n") {
		text := strings.TrimRightFunc(expandTabs(strings.TrimSuffix(raw, "\r")), unicode.IsSpace)
		res = append(res, line{
			text: text,
			pos:  token.Pos{File: file, Line: i + 1, Col: 1, Offset: offset},
		})
		offset += len(raw) + 1
	}

	// a trailing newline does not start another line
	if len(res) > 0 && strings.HasSuffix(src, "\n") {
		res = res[:len(res)-1]
	}

	return res
}

func expandTabs(s string) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}

	var sb strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := tabWidth - col%tabWidth
			sb.WriteString(strings.Repeat(" ", n))
			col += n

			continue
		}

		sb.WriteRune(r)
		col++
	}

	return sb.String()
}

// indentedEnd returns the end of the indented block starting at from: all
// following lines that are blank or indented. Trailing blank lines are not part of the block.
func indentedEnd(ls []line, from int) int {
	end := from
	for i := from; i < len(ls); i++ {
		if ls[i].blank() {
			continue
		}

		if ls[i].indent() == 0 {
			break
		}

		end = i + 1
	}

	return end
}

// dedent removes the common indentation of all non-blank lines.
func dedent(ls []line) []line {
	minIndent := -1
	for _, l := range ls {
		if l.blank() {
			continue
		}

		if in := l.indent(); minIndent < 0 || in < minIndent {
			minIndent = in
		}
	}

	if minIndent <= 0 {
		return ls
	}

	res := make([]line, len(ls))
	for i, l := range ls {
		res[i] = l.strip(minIndent)
	}

	return res
}

// trimBlank removes leading and trailing blank lines.
func trimBlank(ls []line) []line {
	for len(ls) > 0 && ls[0].blank() {
		ls = ls[1:]
	}

	for len(ls) > 0 && ls[len(ls)-1].blank() {
		ls = ls[:len(ls)-1]
	}

	return ls
}

// joinText joins the texts of the lines with newlines.
func joinText(ls []line) string {
	parts := make([]string, len(ls))
	for i, l := range ls {
		parts[i] = l.text
	}

	return strings.Join(parts, "\n")
}

const adornmentChars = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// adornment reports whether s is a run of at least two identical
// punctuation characters and returns that character.
func adornment(s string) (byte, bool) {
	if len(s) < 2 || !strings.ContainsRune(adornmentChars, rune(s[0])) {
		return 0, false
	}

	if strings.Count(s, s[:1]) != len(s) {
		return 0, false
	}

	return s[0], true
}

// width returns the display width of s, counted in runes.
func width(s string) int {
	return utf8.RuneCountInString(s)
}
