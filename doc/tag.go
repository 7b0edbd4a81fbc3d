// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package doc

import "strconv"

// Tag identifies the kind of a Node. The set is closed.
type Tag int

const (
	LIST Tag = iota // a generic sequence of blocks, also the document root
	RAW
	SPACE
	LINEBREAK
	ELLIPSIS
	EMDASH
	ENDASH
	APOSTROPHE
	SINGLEQUOTED
	DOUBLEQUOTED
	STR
	LINK
	IMAGE
	CODE
	HTML
	EMPH
	STRONG
	STRIKE
	PLAIN // paragraph content of a tight list item
	PARA
	LISTITEM
	BULLETLIST
	ORDEREDLIST
	H1TITLE
	H1 // H1 to H6 are contiguous
	H2
	H3
	H4
	H5
	H6
	TABLE
	TABLESEPARATOR
	TABLECELL
	CELLSPAN
	TABLEROW
	TABLEBODY
	TABLEHEAD
	CODEBLOCK
	BLOCKQUOTE
	VERBATIM
	HTMLBLOCK
	HRULE
	REFERENCE
	NOTE
	DEFINITIONLIST
	DEFTITLE
	DEFDATA
	numTags
)

var tagNames = [...]string{
	LIST:           "LIST",
	RAW:            "RAW",
	SPACE:          "SPACE",
	LINEBREAK:      "LINEBREAK",
	ELLIPSIS:       "ELLIPSIS",
	EMDASH:         "EMDASH",
	ENDASH:         "ENDASH",
	APOSTROPHE:     "APOSTROPHE",
	SINGLEQUOTED:   "SINGLEQUOTED",
	DOUBLEQUOTED:   "DOUBLEQUOTED",
	STR:            "STR",
	LINK:           "LINK",
	IMAGE:          "IMAGE",
	CODE:           "CODE",
	HTML:           "HTML",
	EMPH:           "EMPH",
	STRONG:         "STRONG",
	STRIKE:         "STRIKE",
	PLAIN:          "PLAIN",
	PARA:           "PARA",
	LISTITEM:       "LISTITEM",
	BULLETLIST:     "BULLETLIST",
	ORDEREDLIST:    "ORDEREDLIST",
	H1TITLE:        "H1TITLE",
	H1:             "H1",
	H2:             "H2",
	H3:             "H3",
	H4:             "H4",
	H5:             "H5",
	H6:             "H6",
	TABLE:          "TABLE",
	TABLESEPARATOR: "TABLESEPARATOR",
	TABLECELL:      "TABLECELL",
	CELLSPAN:       "CELLSPAN",
	TABLEROW:       "TABLEROW",
	TABLEBODY:      "TABLEBODY",
	TABLEHEAD:      "TABLEHEAD",
	CODEBLOCK:      "CODEBLOCK",
	BLOCKQUOTE:     "BLOCKQUOTE",
	VERBATIM:       "VERBATIM",
	HTMLBLOCK:      "HTMLBLOCK",
	HRULE:          "HRULE",
	REFERENCE:      "REFERENCE",
	NOTE:           "NOTE",
	DEFINITIONLIST: "DEFINITIONLIST",
	DEFTITLE:       "DEFTITLE",
	DEFDATA:        "DEFDATA",
}

func (t Tag) String() string {
	if t.Valid() {
		return tagNames[t]
	}

	return "Tag(" + strconv.Itoa(int(t)) + ")"
}

// Valid reports whether t is a member of the closed tag set.
func (t Tag) Valid() bool {
	return t >= 0 && t < numTags
}

// PayloadKind names which payload variant a tag carries.
type PayloadKind int

const (
	PayloadNone PayloadKind = iota
	PayloadText
	PayloadLink
	PayloadCode
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadText:
		return "text"
	case PayloadLink:
		return "link"
	case PayloadCode:
		return "code"
	default:
		return "none"
	}
}

// Payload returns the payload variant that is live for nodes of this tag.
func (t Tag) Payload() PayloadKind {
	switch t {
	case STR, SPACE, RAW, HTMLBLOCK, HTML, VERBATIM, CODE, NOTE:
		return PayloadText
	case LINK, IMAGE, REFERENCE:
		return PayloadLink
	case CODEBLOCK:
		return PayloadCode
	default:
		return PayloadNone
	}
}

// Heading returns the heading tag for the one-based level, clamped to H1..H6.
func Heading(level int) Tag {
	switch {
	case level < 1:
		return H1
	case level > 6:
		return H6
	}

	return H1 + Tag(level-1)
}

// Level returns the one-based heading level of H1..H6, zero for H1TITLE and
// -1 for every other tag.
func (t Tag) Level() int {
	switch {
	case t == H1TITLE:
		return 0
	case t >= H1 && t <= H6:
		return int(t-H1) + 1
	}

	return -1
}
