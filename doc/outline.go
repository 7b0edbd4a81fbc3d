// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package doc

// Outline is a plain value rendition of a node, used to compare trees and to dump them.
type Outline struct {
	Tag      string
	Text     string    `json:",omitempty"`
	URL      string    `json:",omitempty"`
	Title    string    `json:",omitempty"`
	Lang     string    `json:",omitempty"`
	Label    []Outline `json:",omitempty"`
	Children []Outline `json:",omitempty"`
}

// OutlineOf returns the outline of every node in the sequence starting at seq.
func OutlineOf(seq *Node) []Outline {
	var res []Outline

	for n := seq; n != nil; n = n.next {
		o := Outline{Tag: n.tag.String()}

		switch p := n.payload.(type) {
		case Text:
			o.Text = string(p)
		case Link:
			o.URL = p.URL
			o.Title = p.Title
			o.Label = OutlineOf(p.Label)
		case Code:
			o.Lang = p.Lang
			o.Text = p.Str
		}

		o.Children = OutlineOf(n.first)
		res = append(res, o)
	}

	return res
}
