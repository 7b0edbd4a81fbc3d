// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package doc

import (
	"strings"
	"unicode"
)

// PlainText returns the textual content of a sequence without any markup.
func PlainText(seq *Node) string {
	var sb strings.Builder
	writePlain(&sb, seq)

	return sb.String()
}

func writePlain(sb *strings.Builder, seq *Node) {
	for n := seq; n != nil; n = n.next {
		switch n.tag {
		case SPACE, LINEBREAK:
			sb.WriteByte(' ')
			continue
		case ELLIPSIS:
			sb.WriteString("...")
			continue
		case EMDASH:
			sb.WriteString("---")
			continue
		case ENDASH:
			sb.WriteString("--")
			continue
		case APOSTROPHE:
			sb.WriteByte('\'')
			continue
		case SINGLEQUOTED:
			sb.WriteByte('\'')
			writePlain(sb, n.first)
			sb.WriteByte('\'')
			continue
		case DOUBLEQUOTED:
			sb.WriteByte('"')
			writePlain(sb, n.first)
			sb.WriteByte('"')
			continue
		case NOTE, HTML, HTMLBLOCK, RAW:
			continue
		}

		switch p := n.payload.(type) {
		case Text:
			sb.WriteString(string(p))
		case Link:
			writePlain(sb, p.Label)
		case Code:
			sb.WriteString(p.Str)
		}

		writePlain(sb, n.first)
	}
}

// NormalizeName folds a reference name for comparison: case-insensitive
// with all whitespace runs collapsed to one space.
func NormalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Slug turns a name into an identifier usable as an anchor, e.g. "Hello, World!" becomes "hello-world".
func Slug(s string) string {
	var sb strings.Builder
	dash := false

	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && sb.Len() > 0 {
				sb.WriteByte('-')
			}

			dash = false
			sb.WriteRune(r)

			continue
		}

		dash = true
	}

	return sb.String()
}
