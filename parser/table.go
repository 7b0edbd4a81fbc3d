// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"strings"

	"github.com/golangee/rstdoc/doc"
)

// column is the character range of one column, taken from a table border.
type column struct {
	start, end int
}

// isTableBorder reports whether s is a simple table border with at least two columns.
func isTableBorder(s string) bool {
	if !strings.HasPrefix(s, "=") || strings.Trim(s, "= ") != "" {
		return false
	}

	return len(strings.Fields(s)) >= 2
}

func columns(border string) []column {
	var cols []column

	start := -1
	for i := 0; i <= len(border); i++ {
		if i < len(border) && border[i] == '=' {
			if start < 0 {
				start = i
			}

			continue
		}

		if start >= 0 {
			cols = append(cols, column{start, i})
			start = -1
		}
	}

	return cols
}

// table parses a simple table. Between the top and the bottom border an
// optional third border separates the header rows from the body rows.
func (b *blocks) table(ls []line, i int) (int, *doc.Node, error) {
	cols := columns(ls[i].text)
	borders := []int{i}

	j := i + 1
	for {
		if j >= len(ls) {
			return 0, nil, newParseError(b.pass, ls[i].node(), "malformed table").
				withHint("no bottom table border found")
		}

		if isTableBorder(ls[j].text) {
			borders = append(borders, j)
			if j+1 == len(ls) || ls[j+1].blank() {
				break
			}

			if len(borders) == 3 {
				return 0, nil, newParseError(b.pass, ls[j+1].node(), "malformed table").
					withHint("text follows the bottom table border")
			}
		}

		j++
	}

	consumed := j + 1 - i

	var head, body [][][]line

	var err error
	if len(borders) == 3 {
		if head, err = b.rows(ls[borders[0]+1:borders[1]], cols); err != nil {
			return 0, nil, err
		}
	}

	if body, err = b.rows(ls[borders[len(borders)-2]+1:borders[len(borders)-1]], cols); err != nil {
		return 0, nil, err
	}

	a := b.arena()

	var sections doc.List

	for _, part := range []struct {
		tag  doc.Tag
		rows [][][]line
	}{{doc.TABLEHEAD, head}, {doc.TABLEBODY, body}} {
		if len(part.rows) == 0 {
			continue
		}

		var rows doc.List
		for _, row := range part.rows {
			var cells doc.List
			for _, cell := range row {
				node, err := b.cell(cell)
				if err != nil {
					return 0, nil, err
				}

				cells.Push(node)
			}

			if b.document() {
				rows.Push(a.Element(doc.TABLEROW, cells.Head()))
			}
		}

		if b.document() {
			sections.Push(a.Element(part.tag, rows.Head()))
		}
	}

	if !b.document() {
		return consumed, nil, nil
	}

	return consumed, a.Element(doc.TABLE, sections.Head()), nil
}

// rows splits the lines between two borders into rows of cells. A line with
// an empty first column continues the previous row.
func (b *blocks) rows(ls []line, cols []column) ([][][]line, error) {
	var rows [][][]line

	for _, l := range ls {
		if l.blank() {
			continue
		}

		cells := make([][]line, len(cols))
		for k, c := range cols {
			if k > 0 {
				gap := slice(l.text, cols[k-1].end, c.start)
				if strings.TrimSpace(gap) != "" {
					return nil, newParseError(b.pass, l.node(), "malformed table").
						withHint("text in a column margin")
				}
			}

			end := c.end
			if k == len(cols)-1 {
				end = width(l.text)
			}

			text := slice(l.text, c.start, end)
			cell := l.cut(c.start)
			cell.text = strings.TrimRight(text, " ")
			cells[k] = []line{cell}
		}

		if strings.TrimSpace(cells[0][0].text) == "" && len(rows) > 0 {
			prev := rows[len(rows)-1]
			for k := range cells {
				prev[k] = append(prev[k], cells[k]...)
			}

			continue
		}

		rows = append(rows, cells)
	}

	return rows, nil
}

// slice returns the characters of s from column start up to column end.
func slice(s string, start, end int) string {
	from := byteOffset(s, start)

	return s[from:byteOffset(s, max(start, end))]
}

// cell parses the content of a table cell. A single paragraph is unwrapped.
func (b *blocks) cell(ls []line) (*doc.Node, error) {
	children, err := b.nested().parse(dedent(trimBlank(ls)))
	if err != nil || !b.document() {
		return nil, err
	}

	if children != nil && children.Tag() == doc.PARA && children.Next() == nil {
		content := children.DetachChildren()
		doc.DestroyNode(children)
		children = content
	}

	return b.arena().Element(doc.TABLECELL, children), nil
}
