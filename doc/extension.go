// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package doc

import (
	"fmt"
	"strings"
)

// Extensions is an open bitset of optional grammar features. Bits without a
// name are ignored by every consumer, so new extensions are additive.
type Extensions uint32

const (
	Smart           Extensions = 0x01 // typographic quotes, dashes and ellipses
	Notes           Extensions = 0x02 // footnotes
	FilterHTML      Extensions = 0x04 // drop raw html blocks and inline html
	FilterStyles    Extensions = 0x08 // drop <style> elements from raw html
	Strike          Extensions = 0x10 // ~~strike-through~~
	DefinitionLists Extensions = 0x20
)

var extensionNames = []struct {
	ext  Extensions
	name string
}{
	{Smart, "smart"},
	{Notes, "notes"},
	{FilterHTML, "filter-html"},
	{FilterStyles, "filter-styles"},
	{Strike, "strike"},
	{DefinitionLists, "dlists"},
}

// Has reports whether all bits of x are enabled.
func (e Extensions) Has(x Extensions) bool {
	return x != 0 && e&x == x
}

func (e Extensions) String() string {
	var names []string
	for _, n := range extensionNames {
		if e.Has(n.ext) {
			names = append(names, n.name)
		}
	}

	return strings.Join(names, ",")
}

// ParseExtensions parses a comma separated list of extension names, like "smart,notes".
// The name "all" enables every known extension.
func ParseExtensions(s string) (Extensions, error) {
	var e Extensions

	for _, field := range strings.Split(s, ",") {
		field = strings.ToLower(strings.TrimSpace(field))
		if field == "" {
			continue
		}

		if field == "all" {
			for _, n := range extensionNames {
				e |= n.ext
			}

			continue
		}

		found := false
		for _, n := range extensionNames {
			if n.name == field {
				e |= n.ext
				found = true

				break
			}
		}

		if !found {
			return 0, fmt.Errorf("unknown extension %q", field)
		}
	}

	return e, nil
}
